package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"practice-api/internal/cache"
	"practice-api/internal/db"
	"practice-api/internal/models"
)

// ProductListKey holds the cached bulk listing.
const ProductListKey = "products:all"

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProductSummaries(ctx context.Context) ([]models.ProductSummary, error)
	SearchProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error)
}

// ProductService serves the bulk listing cache-aside. Writes never touch the
// cache, so a new product shows up in ListAll only after the cached listing
// expires. Get and Search always read the store.
type ProductService struct {
	store ProductStore
	cache cache.Cache
	ttl   time.Duration
}

func NewProductService(store ProductStore, c cache.Cache, ttl time.Duration) *ProductService {
	return &ProductService{store: store, cache: c, ttl: ttl}
}

// ListAll reports cached=true when the listing came from the cache. Cache
// failures fall through to the store.
func (s *ProductService) ListAll(ctx context.Context) ([]models.ProductSummary, bool, error) {
	raw, found, err := s.cache.Get(ctx, ProductListKey)
	if err != nil {
		log.Printf("CACHE_DEGRADED | op=get key=%s err=%v", ProductListKey, err)
	}
	if found {
		var products []models.ProductSummary
		decodeErr := json.Unmarshal(raw, &products)
		if decodeErr == nil {
			return products, true, nil
		}
		log.Printf("CACHE_DEGRADED | op=decode key=%s err=%v", ProductListKey, decodeErr)
	}

	products, err := s.store.ListProductSummaries(ctx)
	if err != nil {
		return nil, false, Internal(err)
	}

	if encoded, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, ProductListKey, encoded, s.ttl); err != nil {
			log.Printf("CACHE_DEGRADED | op=set key=%s err=%v", ProductListKey, err)
		}
	}
	return products, false, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, NotFound("Product not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return p, nil
}

func (s *ProductService) Search(ctx context.Context, f models.ProductFilter) ([]models.Product, models.Pagination, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, models.Pagination{}, BadRequest("minPrice must not exceed maxPrice")
	}

	products, total, err := s.store.SearchProducts(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, Internal(err)
	}
	return products, models.NewPagination(f.Page, total), nil
}

func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return BadRequest("Name and price required")
	}
	if p.Price < 0 {
		return BadRequest("Price must not be negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return BadRequest("Stock must not be negative")
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return Internal(err)
	}
	return nil
}
