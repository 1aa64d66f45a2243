package stock

import (
	"context"

	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/stock/dto"
)

type Repository interface {
	GetItem(ctx context.Context, itemID string) (*model.MenuItem, error)

	// ReserveWithMovement performs the check-and-decrement as a single
	// conditional statement and logs the movement in the same transaction.
	// Returns apperr.ErrInsufficientStock when stock < qty.
	ReserveWithMovement(ctx context.Context, itemID string, qty int, m *model.StockMovement) error
	ReleaseWithMovement(ctx context.Context, itemID string, qty int, m *model.StockMovement) error
	// SetStockWithMovement writes an absolute stock value computed by the
	// caller while it holds the per-item lock.
	SetStockWithMovement(ctx context.Context, itemID string, newStock int, m *model.StockMovement) error

	StockReport(ctx context.Context) ([]model.StockReportEntry, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
