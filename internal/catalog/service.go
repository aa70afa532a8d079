// Package catalog serves products, categories and the homepage through a read-through cache.
package catalog

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/aniayu/storefront-go/internal/clients"
)

const DefaultBestSellerLimit = 8

type API interface {
	ListProducts(ctx context.Context, q clients.ProductQuery) (clients.ProductPage, error)
	GetProduct(ctx context.Context, id string) (clients.Product, error)
	RelatedProducts(ctx context.Context, id string) ([]clients.Product, error)
	ListCategories(ctx context.Context) ([]clients.Category, error)
	GetCategory(ctx context.Context, slug string) (clients.Category, error)
	Homepage(ctx context.Context) (clients.Homepage, error)
}

type Service struct {
	api    API
	cache  Cache
	sfg    singleflight.Group
	logger *log.Logger
}

func NewService(api API, cache Cache, logger *log.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{api: api, cache: cache, logger: logger}
}

// cached reads kind/key from the cache, falling back to load on a miss. Concurrent
// misses for one key share a single load. Cache failures are logged and skipped.
func cached[T any](ctx context.Context, s *Service, kind, key string, load func(context.Context) (T, error)) (T, error) {
	ck := cacheKey(kind, key)
	// The shared load outlives any one caller; each caller still stops waiting on its own ctx.
	waitCtx := ctx
	ctx = context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(ck, func() (any, error) {
		var hit T
		err := s.cache.Get(ctx, ck, &hit)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Printf("catalog: cache get: %v", err)
		}

		fresh, err := load(ctx)
		if err != nil {
			return fresh, err
		}
		if err := s.cache.Set(ctx, ck, fresh); err != nil {
			s.logger.Printf("catalog: cache set: %v", err)
		}
		return fresh, nil
	})

	var zero T
	select {
	case <-waitCtx.Done():
		return zero, waitCtx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (s *Service) Products(ctx context.Context, q clients.ProductQuery) (clients.ProductPage, error) {
	return cached(ctx, s, "products", q.Values().Encode(), func(ctx context.Context) (clients.ProductPage, error) {
		page, err := s.api.ListProducts(ctx, q)
		if err != nil {
			return page, err
		}
		page.Products = NormalizeAll(page.Products)
		return page, nil
	})
}

func (s *Service) Product(ctx context.Context, id string) (clients.Product, error) {
	return cached(ctx, s, "product", id, func(ctx context.Context) (clients.Product, error) {
		p, err := s.api.GetProduct(ctx, id)
		if err != nil {
			return p, err
		}
		return Normalize(p), nil
	})
}

// FreshProduct skips the cache read so the price is the one the API holds now.
// The result replaces whatever was cached for id.
func (s *Service) FreshProduct(ctx context.Context, id string) (clients.Product, error) {
	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return p, err
	}
	p = Normalize(p)
	if err := s.cache.Set(ctx, cacheKey("product", id), p); err != nil {
		s.logger.Printf("catalog: cache set: %v", err)
	}
	return p, nil
}

func (s *Service) Related(ctx context.Context, id string) ([]clients.Product, error) {
	return cached(ctx, s, "related", id, func(ctx context.Context) ([]clients.Product, error) {
		list, err := s.api.RelatedProducts(ctx, id)
		if err != nil {
			return nil, err
		}
		return NormalizeAll(list), nil
	})
}

func (s *Service) Categories(ctx context.Context) ([]clients.Category, error) {
	return cached(ctx, s, "categories", "all", func(ctx context.Context) ([]clients.Category, error) {
		list, err := s.api.ListCategories(ctx)
		if list == nil && err == nil {
			list = []clients.Category{}
		}
		return list, err
	})
}

func (s *Service) Category(ctx context.Context, slug string) (clients.Category, error) {
	return cached(ctx, s, "category", slug, func(ctx context.Context) (clients.Category, error) {
		return s.api.GetCategory(ctx, slug)
	})
}

func (s *Service) Homepage(ctx context.Context) (clients.Homepage, error) {
	return cached(ctx, s, "homepage", "all", func(ctx context.Context) (clients.Homepage, error) {
		return s.api.Homepage(ctx)
	})
}

// BestSellers ranks the featured products.
func (s *Service) BestSellers(ctx context.Context, limit int) ([]clients.BestSeller, error) {
	if limit <= 0 {
		limit = DefaultBestSellerLimit
	}
	return cached(ctx, s, "best-sellers", strconv.Itoa(limit), func(ctx context.Context) ([]clients.BestSeller, error) {
		featured := true
		page, err := s.api.ListProducts(ctx, clients.ProductQuery{Featured: &featured, Limit: limit})
		if err != nil {
			return nil, err
		}
		out := make([]clients.BestSeller, 0, len(page.Products))
		for i, p := range page.Products {
			out = append(out, toBestSeller(p, i+1))
		}
		return out, nil
	})
}

var bestSellerMarkup = decimal.RequireFromString("1.25")

func toBestSeller(p clients.Product, rank int) clients.BestSeller {
	original := p.Price.Mul(bestSellerMarkup)
	if p.OriginalPrice != nil && p.OriginalPrice.IsPositive() {
		original = *p.OriginalPrice
	}
	desc := p.ShortDescription
	if desc == "" {
		desc = p.Description
	}
	return clients.BestSeller{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: original,
		Image:         MainImage(p),
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		SalesCount:    int(p.Rating * float64(p.ReviewCount) * 10),
		Rank:          rank,
		Description:   desc,
		AgeRange:      p.AgeRange,
	}
}
