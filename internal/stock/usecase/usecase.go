package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arvera/comanda-service/internal/apperr"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/stock"
	"github.com/arvera/comanda-service/internal/stock/dto"
	"github.com/arvera/comanda-service/pkg/cache"
	"github.com/arvera/comanda-service/pkg/logger"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type stockUseCase struct {
	repo   stock.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewStockUseCase(repo stock.Repository, cache *cache.RedisClient, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *stockUseCase) Reserve(ctx context.Context, itemID string, qty int, referenceID string) error {
	if qty < 1 {
		return apperr.Validation("quantity", "must be at least 1")
	}

	var ref *string
	if referenceID != "" {
		ref = &referenceID
	}
	movement := newMovement(itemID, model.MovementReserve, -qty, "reserva por pedido", ref, nil)
	return uc.repo.ReserveWithMovement(ctx, itemID, qty, movement)
}

func (uc *stockUseCase) Release(ctx context.Context, input *dto.ReleaseInput) error {
	if input.Quantity < 1 {
		return apperr.Validation("quantity", "must be at least 1")
	}

	movementType := input.MovementType
	if movementType == "" {
		movementType = model.MovementRelease
	}

	var actor *string
	if input.ActorID != "" {
		actor = &input.ActorID
	}
	var ref *string
	if input.ReferenceID != "" {
		ref = &input.ReferenceID
	}

	movement := newMovement(input.ItemID, movementType, input.Quantity, input.Reason, ref, actor)
	return uc.repo.ReleaseWithMovement(ctx, input.ItemID, input.Quantity, movement)
}

func (uc *stockUseCase) Restock(ctx context.Context, input *dto.RestockInput) (*dto.StockResult, error) {
	if input.Quantity < 1 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}

	unlock, err := uc.lockItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, err := uc.repo.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	newStock := item.Stock + input.Quantity
	var actor *string
	if input.ActorID != "" {
		actor = &input.ActorID
	}

	movement := newMovement(input.ItemID, model.MovementRestock, input.Quantity, input.Reason, nil, actor)
	movement.StockBefore = item.Stock
	movement.StockAfter = newStock

	if err := uc.repo.SetStockWithMovement(ctx, input.ItemID, newStock, movement); err != nil {
		return nil, err
	}

	return &dto.StockResult{
		ItemID:   input.ItemID,
		Stock:    newStock,
		Severity: model.ClassifySeverity(newStock, item.MinStock),
	}, nil
}

func (uc *stockUseCase) RestockMany(ctx context.Context, inputs []dto.RestockInput) []dto.StockResult {
	results := make([]dto.StockResult, 0, len(inputs))
	for _, input := range inputs {
		res, err := uc.Restock(ctx, &input)
		if err != nil {
			// Each slot is independent; record the failure and keep going.
			uc.logger.Warn("restock failed for item",
				zap.String("item_id", input.ItemID), zap.Error(err))
			results = append(results, dto.StockResult{ItemID: input.ItemID, Error: err.Error()})
			continue
		}
		results = append(results, *res)
	}
	return results
}

func (uc *stockUseCase) Adjust(ctx context.Context, input *dto.AdjustInput) (*dto.StockResult, error) {
	if input.Quantity < 0 {
		return nil, apperr.Validation("quantity", "must not be negative")
	}

	unlock, err := uc.lockItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, err := uc.repo.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	var newStock int
	switch input.Mode {
	case "aumentar":
		newStock = item.Stock + input.Quantity
	case "disminuir":
		newStock = item.Stock - input.Quantity
	case "establecer":
		newStock = input.Quantity
	default:
		return nil, apperr.Validation("mode", "must be aumentar, disminuir or establecer")
	}

	if newStock < 0 {
		return nil, apperr.ErrInsufficientStock
	}

	var actor *string
	if input.ActorID != "" {
		actor = &input.ActorID
	}

	movement := newMovement(input.ItemID, model.MovementAdjust, newStock-item.Stock, input.Reason, nil, actor)
	movement.StockBefore = item.Stock
	movement.StockAfter = newStock

	if err := uc.repo.SetStockWithMovement(ctx, input.ItemID, newStock, movement); err != nil {
		return nil, err
	}

	return &dto.StockResult{
		ItemID:   input.ItemID,
		Stock:    newStock,
		Severity: model.ClassifySeverity(newStock, item.MinStock),
	}, nil
}

func (uc *stockUseCase) Report(ctx context.Context, severity model.StockSeverity) ([]model.StockReportEntry, error) {
	entries, err := uc.repo.StockReport(ctx)
	if err != nil {
		return nil, err
	}

	report := make([]model.StockReportEntry, 0, len(entries))
	for _, entry := range entries {
		entry.Severity = model.ClassifySeverity(entry.Stock, entry.MinStock)
		if severity != "" && entry.Severity != severity {
			continue
		}
		report = append(report, entry)
	}
	return report, nil
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

// lockItem serializes read-modify-write stock operations on one item across
// service instances. Reservation does not need it; its guard is the
// conditional update itself.
func (uc *stockUseCase) lockItem(ctx context.Context, itemID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:stock:%s", itemID)
	lockValue := uuid.New().String()

	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire stock lock", zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
					uc.logger.Warn("failed to release stock lock", zap.String("key", lockKey), zap.Error(err))
				}
			}, nil
		}
		time.Sleep(lockBackoff)
	}

	return nil, errors.New("stock busy, please try again later")
}

func newMovement(itemID, movementType string, delta int, reason string, referenceID, actor *string) *model.StockMovement {
	return &model.StockMovement{
		ID:           uuid.New().String(),
		ItemID:       itemID,
		MovementType: movementType,
		Delta:        delta,
		Reason:       reason,
		ReferenceID:  referenceID,
		CreatedBy:    actor,
		CreatedAt:    time.Now(),
	}
}
