package stock

import (
	"context"

	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/stock/dto"
)

type UseCase interface {
	// Reserve atomically checks and decrements stock for a new order line.
	Reserve(ctx context.Context, itemID string, qty int, referenceID string) error
	// Release returns previously reserved stock, used for creation rollback
	// and for cancellations that never reached preparation.
	Release(ctx context.Context, input *dto.ReleaseInput) error
	Restock(ctx context.Context, input *dto.RestockInput) (*dto.StockResult, error)
	// RestockMany treats every item independently; one failure never rolls
	// back the others.
	RestockMany(ctx context.Context, inputs []dto.RestockInput) []dto.StockResult
	Adjust(ctx context.Context, input *dto.AdjustInput) (*dto.StockResult, error)
	Report(ctx context.Context, severity model.StockSeverity) ([]model.StockReportEntry, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
