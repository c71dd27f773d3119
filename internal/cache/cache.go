// Package cache keeps a short-lived copy of the normalized catalog so that
// catalog pages do not hit the marketplace API on every request.
package cache

import (
	"context"
	"time"

	"github.com/dukerupert/artesania/internal/domain"
)

// CatalogKey is the single key the catalog snapshot is stored under.
const CatalogKey = "artesania:catalog"

type CatalogCache interface {
	Get(ctx context.Context, key string) (*domain.Catalog, bool, error)
	Set(ctx context.Context, key string, value *domain.Catalog, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type NoopCatalogCache struct{}

func (NoopCatalogCache) Get(_ context.Context, _ string) (*domain.Catalog, bool, error) {
	return nil, false, nil
}

func (NoopCatalogCache) Set(_ context.Context, _ string, _ *domain.Catalog, _ time.Duration) error {
	return nil
}

func (NoopCatalogCache) Delete(_ context.Context, _ string) error {
	return nil
}
