package order

import (
	"context"

	"github.com/arvera/comanda-service/internal/model"
)

type Repository interface {
	// Create inserts the order together with its lines and line extras in
	// one transaction.
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// UpdateWithVersion persists the mutable order fields only if the stored
	// version still equals expectedVersion, bumping it by one. Returns
	// apperr.ErrConcurrentModification when another writer won the race.
	UpdateWithVersion(ctx context.Context, o *model.Order, expectedVersion int64) error

	// Feeds are ordered by creation time ascending so stations work FIFO.
	ListForStation(ctx context.Context, station model.Station, includeReady bool) ([]model.Order, error)
	ListActiveByCreator(ctx context.Context, creatorID string) ([]model.Order, error)
	ListByTable(ctx context.Context, tableID string) ([]model.Order, error)
	ListCancelled(ctx context.Context) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
}
