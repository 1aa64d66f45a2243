package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arvera/comanda-service/internal/catalog"
	"github.com/arvera/comanda-service/internal/catalog/dto"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/pkg/cache"
	"github.com/arvera/comanda-service/pkg/logger"
	"github.com/arvera/comanda-service/pkg/search"
)

const (
	itemCachePrefix = "cache:menu_items:"
	itemCacheTTL    = 5 * time.Minute
	itemIndexName   = "menu_items"
)

type catalogUseCase struct {
	repo   catalog.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *catalogUseCase) GetItem(ctx context.Context, id string) (*model.MenuItem, error) {
	return uc.repo.GetItem(ctx, id)
}

func (uc *catalogUseCase) GetExtra(ctx context.Context, id string) (*model.Extra, error) {
	return uc.repo.GetExtra(ctx, id)
}

func (uc *catalogUseCase) GetExtras(ctx context.Context, ids []string) ([]model.Extra, error) {
	return uc.repo.GetExtrasByIDs(ctx, ids)
}

func (uc *catalogUseCase) IsAvailable(ctx context.Context, id string) (bool, error) {
	item, err := uc.repo.GetItem(ctx, id)
	if err != nil {
		return false, err
	}
	return item.Sellable(), nil
}

func (uc *catalogUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.MenuItem, int, error) {
	// Free-text search goes through Elasticsearch when it is up; everything
	// else (and the ES-down case) is answered by SQL.
	if filters.Search != "" && uc.es != nil {
		items, count, err := uc.searchItems(ctx, filters)
		if err == nil {
			return items, count, nil
		}
		uc.logger.Warn("menu search via elasticsearch failed, falling back to SQL", zap.Error(err))
	}

	cacheKey, keyErr := uc.cacheKey(filters)
	if keyErr == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached struct {
				Items []model.MenuItem
				Count int
			}
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Items, cached.Count, nil
			}
		}
	}

	items, count, err := uc.repo.FindItems(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if keyErr == nil && uc.cache != nil {
		payload, err := json.Marshal(struct {
			Items []model.MenuItem
			Count int
		}{items, count})
		if err == nil {
			if err := uc.cache.Client.Set(ctx, cacheKey, payload, itemCacheTTL).Err(); err != nil {
				uc.logger.Warn("failed to cache menu item list", zap.Error(err))
			}
		}
	}

	return items, count, nil
}

func (uc *catalogUseCase) searchItems(ctx context.Context, filters *dto.ItemFilters) ([]model.MenuItem, int, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  filters.Search,
				"fields": []string{"name^2", "description"},
			},
		},
		"size": 50,
	}

	ids, err := uc.es.SearchIDs(ctx, itemIndexName, query)
	if err != nil {
		return nil, 0, err
	}

	items, err := uc.repo.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	if filters.OnlyAvailable {
		filtered := items[:0]
		for _, item := range items {
			if item.Sellable() {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	return items, len(items), nil
}

func (uc *catalogUseCase) ListExtras(ctx context.Context) ([]model.Extra, error) {
	return uc.repo.FindExtras(ctx)
}

func (uc *catalogUseCase) ListCategories(ctx context.Context) ([]model.Category, error) {
	return uc.repo.FindCategories(ctx)
}

func (uc *catalogUseCase) SetAvailability(ctx context.Context, id string, available bool) (*model.MenuItem, error) {
	if err := uc.repo.UpdateAvailability(ctx, id, available); err != nil {
		return nil, err
	}

	item, err := uc.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	go uc.invalidateItemCache(context.Background())
	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

func (uc *catalogUseCase) cacheKey(filters *dto.ItemFilters) (string, error) {
	raw, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", itemCachePrefix, md5.Sum(raw)), nil
}

func (uc *catalogUseCase) invalidateItemCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	iter := uc.cache.Client.Scan(ctx, 0, itemCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := uc.cache.Client.Del(ctx, iter.Val()).Err(); err != nil {
			uc.logger.Warn("failed to invalidate menu cache key", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		uc.logger.Warn("menu cache invalidation scan failed", zap.Error(err))
	}
}

func (uc *catalogUseCase) syncToElastic(ctx context.Context, item *model.MenuItem) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"description": { "type": "text" },
				"station": { "type": "keyword" },
				"price": { "type": "double" },
				"available": { "type": "boolean" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, itemIndexName, mapping)

	if err := uc.es.Index(ctx, itemIndexName, item.ID, item); err != nil {
		uc.logger.Error("failed to index menu item", zap.String("item_id", item.ID), zap.Error(err))
	}
}
