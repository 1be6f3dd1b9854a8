package service

import (
	"context"

	"storefront/catalog/internal/cache"
	"storefront/catalog/internal/domain"
	"storefront/catalog/internal/repository"

	log "github.com/sirupsen/logrus"
)

// CatalogService answers the catalog API on top of the item repository.
// The category cache is optional and its failures never fail a request.
type CatalogService struct {
	repository repository.ItemRepository
	cache      cache.CategoryCache
}

func NewCatalogService(repository repository.ItemRepository, categoryCache cache.CategoryCache) *CatalogService {
	return &CatalogService{
		repository: repository,
		cache:      categoryCache,
	}
}

func (s *CatalogService) ListItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error) {
	items, err := s.repository.ListItems(ctx, filter)
	if err != nil {
		log.Errorf("❌ Failed to list items for %+v: %v", filter, err)
		return nil, err
	}

	log.Debugf("Listed %d items for %+v", len(items), filter)
	return items, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if s.cache != nil {
		categories, ok, err := s.cache.GetCategories(ctx)
		switch {
		case err != nil:
			log.Warnf("⚠️ Category cache unavailable, reading from database: %v", err)
		case ok:
			return categories, nil
		}
	}

	categories, err := s.repository.ListCategories(ctx)
	if err != nil {
		log.Errorf("❌ Failed to list categories: %v", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			log.Warnf("⚠️ Failed to cache categories: %v", err)
		}
	}

	return categories, nil
}

// GetItem returns repository.ErrItemNotFound for unknown or inactive items.
func (s *CatalogService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.repository.GetItem(ctx, id)
}

func (s *CatalogService) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}
