package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvera/comanda-service/internal/apperr"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/stock"
	"github.com/arvera/comanda-service/internal/stock/dto"
	"github.com/arvera/comanda-service/pkg/logger"
)

type fakeStockRepo struct {
	mu        sync.Mutex
	items     map[string]*model.MenuItem
	movements []model.StockMovement
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{items: make(map[string]*model.MenuItem)}
}

func (r *fakeStockRepo) addItem(id, name string, stockQty, minStock int) {
	item := &model.MenuItem{Name: name, Available: true, Stock: stockQty, MinStock: minStock}
	item.ID = id
	r.items[id] = item
}

func (r *fakeStockRepo) GetItem(_ context.Context, itemID string) (*model.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, apperr.NotFound("menu item", itemID)
	}
	cp := *item
	return &cp, nil
}

func (r *fakeStockRepo) ReserveWithMovement(_ context.Context, itemID string, qty int, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return apperr.NotFound("menu item", itemID)
	}
	if item.Stock < qty {
		return apperr.ErrInsufficientStock
	}
	m.StockBefore = item.Stock
	item.Stock -= qty
	m.StockAfter = item.Stock
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeStockRepo) ReleaseWithMovement(_ context.Context, itemID string, qty int, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return apperr.NotFound("menu item", itemID)
	}
	m.StockBefore = item.Stock
	item.Stock += qty
	m.StockAfter = item.Stock
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeStockRepo) SetStockWithMovement(_ context.Context, itemID string, newStock int, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return apperr.NotFound("menu item", itemID)
	}
	item.Stock = newStock
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeStockRepo) StockReport(_ context.Context) ([]model.StockReportEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockReportEntry
	for _, item := range r.items {
		out = append(out, model.StockReportEntry{
			ItemID:   item.ID,
			Name:     item.Name,
			Stock:    item.Stock,
			MinStock: item.MinStock,
		})
	}
	return out, nil
}

func (r *fakeStockRepo) ListMovements(_ context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if filters != nil && filters.ItemID != "" && m.ItemID != filters.ItemID {
			continue
		}
		out = append(out, m)
	}
	return out, len(out), nil
}

var _ stock.Repository = (*fakeStockRepo)(nil)

func newTestUseCase(repo *fakeStockRepo) stock.UseCase {
	log := logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", Encoding: "console"})
	// nil cache: locking is skipped, which is the single-instance behavior.
	return NewStockUseCase(repo, nil, log)
}

func TestReserve_RecordsMovement(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("cerveza", "Cerveza artesanal", 8, 4)
	uc := newTestUseCase(repo)

	err := uc.Reserve(context.Background(), "cerveza", 3, "order-1")
	require.NoError(t, err)

	assert.Equal(t, 5, repo.items["cerveza"].Stock)
	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, model.MovementReserve, m.MovementType)
	assert.Equal(t, -3, m.Delta)
	assert.Equal(t, 8, m.StockBefore)
	assert.Equal(t, 5, m.StockAfter)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, "order-1", *m.ReferenceID)
}

func TestReserve_ConcurrentLastUnit(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("pisco", "Pisco sour", 1, 2)
	uc := newTestUseCase(repo)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- uc.Reserve(context.Background(), "pisco", 1, "order-race")
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, conflictCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, apperr.ErrInsufficientStock):
			conflictCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, conflictCount)
	assert.Equal(t, 0, repo.items["pisco"].Stock, "stock never goes negative")
	assert.Len(t, repo.movements, 1, "only the winning reservation is logged")
}

func TestReserve_InvalidInputs(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("cerveza", "Cerveza artesanal", 8, 4)
	uc := newTestUseCase(repo)

	err := uc.Reserve(context.Background(), "cerveza", 0, "")
	assert.True(t, apperr.IsValidation(err))

	err = uc.Reserve(context.Background(), "no-such-item", 1, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRelease_DefaultsToReleaseMovement(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("cerveza", "Cerveza artesanal", 2, 4)
	uc := newTestUseCase(repo)

	err := uc.Release(context.Background(), &dto.ReleaseInput{
		ItemID: "cerveza", Quantity: 3, Reason: "reversion de creacion de pedido",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.items["cerveza"].Stock)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, model.MovementRelease, repo.movements[0].MovementType)

	err = uc.Release(context.Background(), &dto.ReleaseInput{
		ItemID:       "cerveza",
		Quantity:     1,
		MovementType: model.MovementCancel,
		Reason:       "cancelacion de pedido",
		ReferenceID:  "order-9",
		ActorID:      "mozo-1",
	})
	require.NoError(t, err)
	m := repo.movements[1]
	assert.Equal(t, model.MovementCancel, m.MovementType)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, "mozo-1", *m.CreatedBy)
}

func TestRestock_AddsAndClassifies(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("lomo", "Lomo Saltado", 1, 6)
	uc := newTestUseCase(repo)

	res, err := uc.Restock(context.Background(), &dto.RestockInput{
		ItemID: "lomo", Quantity: 4, Reason: "compra semanal", ActorID: "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Stock)
	assert.Equal(t, model.SeverityLow, res.Severity) // 5 <= 6 but above half
	assert.Empty(t, res.Error)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, model.MovementRestock, m.MovementType)
	assert.Equal(t, 4, m.Delta)
	assert.Equal(t, 1, m.StockBefore)
	assert.Equal(t, 5, m.StockAfter)
}

func TestRestockMany_PartialFailure(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("lomo", "Lomo Saltado", 2, 4)
	repo.addItem("causa", "Causa Limeña", 1, 4)
	uc := newTestUseCase(repo)

	results := uc.RestockMany(context.Background(), []dto.RestockInput{
		{ItemID: "lomo", Quantity: 10, Reason: "compra"},
		{ItemID: "fantasma", Quantity: 5, Reason: "compra"},
		{ItemID: "causa", Quantity: 3, Reason: "compra"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, 12, results[0].Stock)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error, "unknown item reports its own failure")
	assert.Equal(t, "fantasma", results[1].ItemID)
	assert.Equal(t, 4, results[2].Stock, "failure in one slot never blocks the rest")
	assert.Empty(t, results[2].Error)
}

func TestAdjust_Modes(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("lomo", "Lomo Saltado", 10, 8)
	uc := newTestUseCase(repo)

	res, err := uc.Adjust(context.Background(), &dto.AdjustInput{
		ItemID: "lomo", Quantity: 5, Mode: "aumentar", Reason: "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, res.Stock)

	res, err = uc.Adjust(context.Background(), &dto.AdjustInput{
		ItemID: "lomo", Quantity: 12, Mode: "disminuir", Reason: "merma",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stock)
	assert.Equal(t, model.SeverityCritical, res.Severity)

	res, err = uc.Adjust(context.Background(), &dto.AdjustInput{
		ItemID: "lomo", Quantity: 0, Mode: "establecer", Reason: "inventario cerrado",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stock)
	assert.Equal(t, model.SeverityOut, res.Severity)

	// The adjustment log carries the signed delta of each write.
	require.Len(t, repo.movements, 3)
	assert.Equal(t, 5, repo.movements[0].Delta)
	assert.Equal(t, -12, repo.movements[1].Delta)
	assert.Equal(t, -3, repo.movements[2].Delta)
}

func TestAdjust_Rejections(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("lomo", "Lomo Saltado", 2, 4)
	uc := newTestUseCase(repo)

	_, err := uc.Adjust(context.Background(), &dto.AdjustInput{
		ItemID: "lomo", Quantity: 5, Mode: "disminuir", Reason: "merma",
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	_, err = uc.Adjust(context.Background(), &dto.AdjustInput{
		ItemID: "lomo", Quantity: 1, Mode: "duplicar", Reason: "x",
	})
	assert.True(t, apperr.IsValidation(err))

	_, err = uc.Adjust(context.Background(), &dto.AdjustInput{
		ItemID: "lomo", Quantity: -1, Mode: "aumentar", Reason: "x",
	})
	assert.True(t, apperr.IsValidation(err))

	assert.Equal(t, 2, repo.items["lomo"].Stock, "rejected adjustments leave stock untouched")
	assert.Empty(t, repo.movements)
}

func TestReport_FiltersBySeverity(t *testing.T) {
	repo := newFakeStockRepo()
	repo.addItem("a", "Agotado", 0, 5)
	repo.addItem("b", "Crítico", 2, 5)
	repo.addItem("c", "Bajo", 4, 5)
	repo.addItem("d", "Normal", 20, 5)
	uc := newTestUseCase(repo)

	all, err := uc.Report(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	bySeverity := make(map[model.StockSeverity]int)
	for _, entry := range all {
		bySeverity[entry.Severity]++
	}
	assert.Equal(t, 1, bySeverity[model.SeverityOut])
	assert.Equal(t, 1, bySeverity[model.SeverityCritical])
	assert.Equal(t, 1, bySeverity[model.SeverityLow])
	assert.Equal(t, 1, bySeverity[model.SeverityNormal])

	critical, err := uc.Report(context.Background(), model.SeverityCritical)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "b", critical[0].ItemID)
}
