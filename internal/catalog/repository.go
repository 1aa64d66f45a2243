package catalog

import (
	"context"

	"github.com/arvera/comanda-service/internal/catalog/dto"
	"github.com/arvera/comanda-service/internal/model"
)

type Repository interface {
	GetItem(ctx context.Context, id string) (*model.MenuItem, error)
	GetItemsByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error)
	GetExtra(ctx context.Context, id string) (*model.Extra, error)
	GetExtrasByIDs(ctx context.Context, ids []string) ([]model.Extra, error)
	FindItems(ctx context.Context, filters *dto.ItemFilters) ([]model.MenuItem, int, error)
	FindExtras(ctx context.Context) ([]model.Extra, error)
	FindCategories(ctx context.Context) ([]model.Category, error)
	UpdateAvailability(ctx context.Context, id string, available bool) error
}
