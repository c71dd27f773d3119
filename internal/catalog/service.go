package catalog

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/artesania/internal/cache"
	"github.com/dukerupert/artesania/internal/domain"
)

// Source is the part of the marketplace API the catalog reads from.
type Source interface {
	ListProducts(ctx context.Context) ([]any, error)
	ListCategories(ctx context.Context) ([]any, error)
}

// Service loads the normalized catalog.
type Service interface {
	Load(ctx context.Context) (*domain.Catalog, error)
	Product(ctx context.Context, id string) (domain.Product, error)
}

type service struct {
	source     Source
	cache      cache.CatalogCache
	ttl        time.Duration
	normalizer Normalizer
	logger     *slog.Logger
}

// NewService creates a catalog Service. A nil cache disables caching.
func NewService(source Source, c cache.CatalogCache, ttl time.Duration, n Normalizer) Service {
	if c == nil {
		c = cache.NoopCatalogCache{}
	}
	return &service{
		source:     source,
		cache:      c,
		ttl:        ttl,
		normalizer: n,
		logger:     slog.Default().With("component", "catalog"),
	}
}

// Load returns products and categories. Both are fetched concurrently and
// the load fails as a whole when either request fails.
func (s *service) Load(ctx context.Context) (*domain.Catalog, error) {
	if cached, ok, err := s.cache.Get(ctx, cache.CatalogKey); err != nil {
		s.logger.Warn("catalog cache read failed", "error", err)
	} else if ok {
		return cached, nil
	}

	var rawProducts, rawCategories []any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawProducts, err = s.source.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rawCategories, err = s.source.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := &domain.Catalog{
		Products:   s.normalizer.Products(rawProducts),
		Categories: s.normalizer.Categories(rawCategories),
	}

	if s.ttl > 0 {
		if err := s.cache.Set(ctx, cache.CatalogKey, catalog, s.ttl); err != nil {
			s.logger.Warn("catalog cache write failed", "error", err)
		}
	}

	return catalog, nil
}

// Product finds a single product in the current catalog.
func (s *service) Product(ctx context.Context, id string) (domain.Product, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	p, ok := catalog.Product(id)
	if !ok {
		return domain.Product{}, domain.NotFound("catalog.product", "product", id)
	}
	return p, nil
}
