package catalog

import (
	"context"

	"github.com/arvera/comanda-service/internal/catalog/dto"
	"github.com/arvera/comanda-service/internal/model"
)

type UseCase interface {
	GetItem(ctx context.Context, id string) (*model.MenuItem, error)
	GetExtra(ctx context.Context, id string) (*model.Extra, error)
	GetExtras(ctx context.Context, ids []string) ([]model.Extra, error)
	IsAvailable(ctx context.Context, id string) (bool, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.MenuItem, int, error)
	ListExtras(ctx context.Context) ([]model.Extra, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	SetAvailability(ctx context.Context, id string, available bool) (*model.MenuItem, error)
}
