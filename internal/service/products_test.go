package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-api/internal/cache"
	"practice-api/internal/models"
)

func TestListAll_CacheAsideStaleness(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	c := cache.NewMemoryWithClock(func() time.Time { return now })
	svc := NewProductService(store, c, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Product{Name: "Laptop", Price: 999, Category: "Electronics"}))

	list, cached, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, list, 1)

	list, cached, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Len(t, list, 1)

	fresh := &models.Product{Name: "Mouse", Price: 20, Category: "Electronics"}
	require.NoError(t, svc.Create(ctx, fresh))

	now = now.Add(59 * time.Minute)
	list, cached, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Len(t, list, 1, "new product hidden until the listing expires")

	got, err := svc.Get(ctx, fresh.ID)
	require.NoError(t, err, "point reads are always fresh")
	assert.Equal(t, "Mouse", got.Name)

	now = now.Add(2 * time.Minute)
	list, cached, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, list, 2)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Close() error                         { return nil }

func TestListAll_CacheFailureFallsBackToStore(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store, brokenCache{}, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Product{Name: "Desk", Price: 120, Category: "Home"}))

	list, cached, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, list, 1)
}

func TestListAll_CorruptEntryIsIgnored(t *testing.T) {
	store := newTestStore(t)
	c := cache.NewMemory()
	svc := NewProductService(store, c, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ProductListKey, []byte("{not json"), time.Hour))

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	list, cached, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Empty(t, list)

	assert.Contains(t, logs.String(), "op=decode")
	assert.NotContains(t, logs.String(), "err=<nil>")
}

func TestSearch_BypassesCacheAndPaginates(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store, cache.NewMemory(), time.Hour)
	ctx := context.Background()

	_, _, err := svc.ListAll(ctx)
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		require.NoError(t, svc.Create(ctx, &models.Product{Name: "Widget", Price: float64(i), Category: "Tools"}))
	}

	products, pg, err := svc.Search(ctx, models.ProductFilter{Page: models.Page{Page: 2, Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, products, 10)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 10, Total: 25, Pages: 3}, pg)

	lo, hi := 10.0, 5.0
	_, _, err = svc.Search(ctx, models.ProductFilter{MinPrice: &lo, MaxPrice: &hi, Page: models.Page{Page: 1, Limit: 10}})
	requireKind(t, KindBadRequest, err)
}

func TestProductCreateAndGet(t *testing.T) {
	svc := NewProductService(newTestStore(t), cache.NewMemory(), time.Hour)
	ctx := context.Background()

	requireKind(t, KindBadRequest, svc.Create(ctx, &models.Product{Name: "  ", Price: 1}))
	requireKind(t, KindBadRequest, svc.Create(ctx, &models.Product{Name: "x", Price: -1}))

	_, err := svc.Get(ctx, "missing")
	requireKind(t, KindNotFound, err)
}
