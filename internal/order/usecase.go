package order

import (
	"context"

	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/order/dto"
)

type UseCase interface {
	// CreateOrder prices every line from the catalog and reserves stock for
	// all lines atomically: any failure releases the reservations already
	// made for this request.
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)

	// Station update operations. All persist conditionally on the order
	// version and fail with ErrConcurrentModification on a lost race.
	TransitionStation(ctx context.Context, input *dto.TransitionInput) (*model.Order, error)
	CancelOrder(ctx context.Context, input *dto.CancelInput) (*model.Order, error)
	MarkDelivered(ctx context.Context, input *dto.DeliverInput) (*model.Order, error)

	// Read-side projections.
	StationFeed(ctx context.Context, station model.Station, includeReady bool) ([]model.Order, error)
	WaiterFeed(ctx context.Context, creatorID string) ([]model.Order, error)
	ListByTable(ctx context.Context, tableID string) ([]model.Order, error)
	ListCancelled(ctx context.Context) ([]model.Order, error)
	AdminFeed(ctx context.Context) (*dto.AdminSummary, error)
}
