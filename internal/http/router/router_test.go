package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"practice-api/internal/cache"
	"practice-api/internal/config"
	"practice-api/internal/db"
	"practice-api/internal/models"
	"practice-api/internal/security"
)

type testServer struct {
	handler http.Handler
	db      *db.DB
	now     time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.RateLimit = 0

	dsn := filepath.Join(t.TempDir(), "api.db") + "?_busy_timeout=5000"
	database, err := db.Init(context.Background(), "sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ts := &testServer{db: database, now: time.Now()}
	c := cache.NewMemoryWithClock(func() time.Time { return ts.now })
	tokens := security.NewTokenIssuer("test-secret", cfg.TokenTTL)
	hasher := &security.Hasher{Cost: bcrypt.MinCost}

	ts.handler = Setup(cfg, database, c, tokens, hasher)
	return ts
}

type call struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

func (ts *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (ts *testServer) register(t *testing.T, email string, role models.Role) authBody {
	t.Helper()
	rec := ts.do(t, call{method: "POST", path: "/api/auth/register",
		body: map[string]string{"email": email, "password": "pw-" + email, "role": string(role)}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](t, rec)
}

func TestAliceScenario(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, call{method: "POST", path: "/api/auth/register",
		body: map[string]string{"email": "alice@example.com", "password": "secret1"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decode[authBody](t, rec)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "user", reg.User.Role)

	rec = ts.do(t, call{method: "POST", path: "/api/auth/login",
		body: map[string]string{"email": "alice@example.com", "password": "secret1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[authBody](t, rec).Token
	assert.NotEmpty(t, token)

	rec = ts.do(t, call{method: "POST", path: "/api/auth/login",
		body: map[string]string{"email": "alice@example.com", "password": "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())

	submit := call{method: "POST", path: "/api/forms/submit", token: token,
		headers: map[string]string{"Idempotency-Key": "abc"},
		body:    map[string]any{"formData": map[string]any{"name": "Alice", "plan": "pro"}}}

	type submitBody struct {
		Data struct {
			ID       string          `json:"id"`
			FormData json.RawMessage `json:"formData"`
		} `json:"data"`
		Duplicate bool `json:"duplicate"`
	}

	first := ts.do(t, submit)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	firstBody := decode[submitBody](t, first)
	assert.False(t, firstBody.Duplicate)

	second := ts.do(t, submit)
	require.Equal(t, http.StatusOK, second.Code)
	secondBody := decode[submitBody](t, second)
	assert.True(t, secondBody.Duplicate)
	assert.Equal(t, firstBody.Data.ID, secondBody.Data.ID)
	assert.JSONEq(t, string(firstBody.Data.FormData), string(secondBody.Data.FormData))
}

func TestRegister_Errors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, call{method: "POST", path: "/api/auth/register", body: map[string]string{"email": "x@example.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Email and password required"}`, rec.Body.String())

	ts.register(t, "taken@example.com", "")
	rec = ts.do(t, call{method: "POST", path: "/api/auth/register",
		body: map[string]string{"email": "taken@example.com", "password": "pw"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"User already exists"}`, rec.Body.String())
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice@example.com", "")

	rec := ts.do(t, call{method: "GET", path: "/api/auth/me", token: alice.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Equal(t, "alice@example.com", decode[map[string]any](t, rec)["email"])

	rec = ts.do(t, call{method: "GET", path: "/api/auth/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, call{method: "GET", path: "/api/auth/me", token: "garbage"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFormSubmit_RequiresKey(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice@example.com", "")

	rec := ts.do(t, call{method: "POST", path: "/api/forms/submit", token: alice.Token,
		body: map[string]any{"formData": map[string]string{}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Idempotency-Key header required"}`, rec.Body.String())
}

func TestRoleGate(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "user@example.com", "")

	// payload validity does not matter
	calls := []call{
		{method: "POST", path: "/api/products", body: map[string]any{"name": "Valid", "price": 10}},
		{method: "POST", path: "/api/products", body: map[string]any{}},
		{method: "PATCH", path: "/api/orders/anything/status", body: map[string]string{"status": "shipped"}},
		{method: "POST", path: "/api/blog/posts", body: map[string]any{"title": "t", "slug": "s", "content": "c"}},
		{method: "GET", path: "/api/users"},
		{method: "GET", path: "/api/stats"},
	}
	for _, c := range calls {
		c.token = user.Token
		rec := ts.do(t, c)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", c.method, c.path)
		assert.JSONEq(t, `{"error":"Insufficient permissions"}`, rec.Body.String())
	}
}

func TestOrderOwnership(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice@example.com", "")
	bob := ts.register(t, "bob@example.com", "")
	admin := ts.register(t, "admin@example.com", models.RoleAdmin)

	rec := ts.do(t, call{method: "POST", path: "/api/orders", token: alice.Token, body: map[string]any{
		"items": []map[string]any{{"productId": "p1", "quantity": 2, "price": 5}},
		"total": 10,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderPending, order.Status)

	rec = ts.do(t, call{method: "GET", path: "/api/orders/" + order.ID, token: alice.Token})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, call{method: "GET", path: "/api/orders/" + order.ID, token: bob.Token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rec.Body.String())

	rec = ts.do(t, call{method: "GET", path: "/api/orders", token: bob.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.do(t, call{method: "PATCH", path: "/api/orders/" + order.ID + "/status", token: admin.Token,
		body: map[string]string{"status": "processing"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderProcessing, decode[models.Order](t, rec).Status)

	rec = ts.do(t, call{method: "PATCH", path: "/api/orders/" + order.ID + "/status", token: admin.Token,
		body: map[string]string{"status": "pending"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, call{method: "PATCH", path: "/api/orders/missing/status", token: admin.Token,
		body: map[string]string{"status": "shipped"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductListing_CacheStaleness(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register(t, "admin@example.com", models.RoleAdmin)

	create := func(name string) string {
		rec := ts.do(t, call{method: "POST", path: "/api/products", token: admin.Token,
			body: map[string]any{"name": name, "price": 10, "category": "Books"}})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[models.Product](t, rec).ID
	}

	type listBody struct {
		Products []models.ProductSummary `json:"products"`
		Cached   bool                    `json:"cached"`
	}

	create("First")
	rec := ts.do(t, call{method: "GET", path: "/api/products"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[listBody](t, rec).Cached)

	newID := create("Second")

	rec = ts.do(t, call{method: "GET", path: "/api/products"})
	list := decode[listBody](t, rec)
	assert.True(t, list.Cached)
	assert.Len(t, list.Products, 1)

	rec = ts.do(t, call{method: "GET", path: "/api/products/" + newID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Second", decode[models.Product](t, rec).Name)

	ts.now = ts.now.Add(time.Hour + time.Second)
	rec = ts.do(t, call{method: "GET", path: "/api/products"})
	list = decode[listBody](t, rec)
	assert.False(t, list.Cached)
	assert.Len(t, list.Products, 2)

	rec = ts.do(t, call{method: "GET", path: "/api/products/nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())
}

func TestProduct_OptionalFieldsRenderNull(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register(t, "admin@example.com", models.RoleAdmin)

	rec := ts.do(t, call{method: "POST", path: "/api/products", token: admin.Token,
		body: map[string]any{"name": "Sparse", "price": 1}})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[models.Product](t, rec).ID

	rec = ts.do(t, call{method: "GET", path: "/api/products/" + id})
	body := decode[map[string]any](t, rec)
	for _, field := range []string{"description", "stock", "imageUrl"} {
		v, ok := body[field]
		assert.True(t, ok, field)
		assert.Nil(t, v, field)
	}

	rec = ts.do(t, call{method: "POST", path: "/api/products", token: admin.Token, body: map[string]any{"name": "No price"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductSearch_Pagination(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register(t, "admin@example.com", models.RoleAdmin)

	for i := 0; i < 25; i++ {
		rec := ts.do(t, call{method: "POST", path: "/api/products", token: admin.Token,
			body: map[string]any{"name": fmt.Sprintf("Gadget %d", i), "price": i, "category": "Electronics"}})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	type searchBody struct {
		Products   []models.Product  `json:"products"`
		Pagination models.Pagination `json:"pagination"`
	}

	all := decode[searchBody](t, ts.do(t, call{method: "GET", path: "/api/products/search?limit=100"}))
	require.Len(t, all.Products, 25)

	rec := ts.do(t, call{method: "GET", path: "/api/products/search?page=2&limit=10"})
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[searchBody](t, rec)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 10, Total: 25, Pages: 3}, page.Pagination)
	require.Len(t, page.Products, 10)
	for i, p := range page.Products {
		assert.Equal(t, all.Products[10+i].ID, p.ID)
	}

	rec = ts.do(t, call{method: "GET", path: "/api/products/search?page=4611686018427387905&limit=2"})
	require.Equal(t, http.StatusOK, rec.Code)
	beyond := decode[searchBody](t, rec)
	assert.Empty(t, beyond.Products)
	assert.Equal(t, 25, beyond.Pagination.Total)

	rec = ts.do(t, call{method: "GET", path: "/api/products/search?q=gadget%201&category=Electronics&minPrice=10&maxPrice=12"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[searchBody](t, rec).Pagination.Total)

	rec = ts.do(t, call{method: "GET", path: "/api/products/search?minPrice=cheap"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlog(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register(t, "editor@example.com", models.RoleAdmin)

	for _, p := range []map[string]any{
		{"title": "Live", "slug": "live", "content": "hello", "published": true, "tags": []string{"go"}},
		{"title": "Draft", "slug": "draft", "content": "wip"},
	} {
		rec := ts.do(t, call{method: "POST", path: "/api/blog/posts", token: admin.Token, body: p})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := ts.do(t, call{method: "POST", path: "/api/blog/posts", token: admin.Token,
		body: map[string]any{"title": "Again", "slug": "live", "content": "x"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	type listBody struct {
		Posts      []models.BlogPost `json:"posts"`
		Pagination models.Pagination `json:"pagination"`
	}
	list := decode[listBody](t, ts.do(t, call{method: "GET", path: "/api/blog/posts"}))
	assert.Equal(t, 1, list.Pagination.Total)
	assert.Equal(t, 10, list.Pagination.Limit)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "editor@example.com", list.Posts[0].Author.Email)

	rec = ts.do(t, call{method: "GET", path: "/api/blog/posts/live"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode[models.BlogPost](t, rec).PublishedAt)

	rec = ts.do(t, call{method: "GET", path: "/api/blog/posts/draft"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminViews(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register(t, "admin@example.com", models.RoleAdmin)
	ts.register(t, "someone@example.com", "")

	rec := ts.do(t, call{method: "GET", path: "/api/users?q=someone", token: admin.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[struct {
		Data       []models.User     `json:"data"`
		Pagination models.Pagination `json:"pagination"`
	}](t, rec)
	assert.Equal(t, 1, users.Pagination.Total)

	rec = ts.do(t, call{method: "GET", path: "/api/stats", token: admin.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[struct {
		Statistics db.Stats `json:"statistics"`
	}](t, rec)
	assert.Equal(t, 2, stats.Statistics.Users)
}

func TestFallbacks(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, call{method: "GET", path: "/api/nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())

	rec = ts.do(t, call{method: "DELETE", path: "/api/products"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = ts.do(t, call{method: "GET", path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", decode[map[string]string](t, rec)["status"])
}
