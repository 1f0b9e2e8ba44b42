package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"practice-api/internal/http/respond"
	"practice-api/internal/models"
	"practice-api/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List serves the full catalog projection, possibly stale by up to the
// cache TTL.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, cached, err := h.products.ListAll(r.Context())
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"products": products,
		"cached":   cached,
	})
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Page:     pageFromQuery(r, 20),
	}

	var err error
	if filter.MinPrice, err = floatParam(r, "minPrice"); err != nil {
		respond.Err(w, r, err)
		return
	}
	if filter.MaxPrice, err = floatParam(r, "maxPrice"); err != nil {
		respond.Err(w, r, err)
		return
	}

	products, pagination, err := h.products.Search(r.Context(), filter)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"products":   products,
		"pagination": pagination,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    string   `json:"category"`
		Stock       *int     `json:"stock"`
		ImageURL    *string  `json:"imageUrl"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}
	if req.Price == nil {
		respond.Error(w, http.StatusBadRequest, "Name and price required")
		return
	}

	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}
