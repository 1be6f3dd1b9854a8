// Package registry holds the set of known catalog categories.
package registry

import (
	"context"
	"slices"
	"strings"
	"sync"

	"storefront/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

type CategorySource interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Registry loads categories once and is read-only afterwards.
// A failed load leaves it empty; callers degrade to "no category filter".
type Registry struct {
	source CategorySource

	once       sync.Once
	mutex      sync.RWMutex
	categories []domain.Category
	err        error
}

func New(source CategorySource) *Registry {
	return &Registry{source: source}
}

// Load fetches the category list on the first call. Later calls return the
// first outcome without contacting the service again.
func (r *Registry) Load(ctx context.Context) ([]domain.Category, error) {
	r.once.Do(func() {
		categories, err := r.source.ListCategories(ctx)
		if err != nil {
			log.Warnf("⚠️ Category list unavailable, category filter disabled: %v", err)
			r.mutex.Lock()
			r.err = domain.AsServiceError("list categories", err)
			r.mutex.Unlock()
			return
		}

		unique := normalize(categories)
		r.mutex.Lock()
		r.categories = unique
		r.mutex.Unlock()
		log.Infof("✅ Loaded %d categories", len(unique))
	})

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	return slices.Clone(r.categories), nil
}

// Categories returns the loaded categories in service order.
func (r *Registry) Categories() []domain.Category {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Clone(r.categories)
}

// Available reports whether a category filter can be offered.
func (r *Registry) Available() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.categories) > 0
}

// normalize drops blank labels and duplicates, keeping first-seen order
func normalize(categories []domain.Category) []domain.Category {
	seen := make(map[domain.Category]struct{}, len(categories))
	result := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result
}
