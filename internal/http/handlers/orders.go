package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"practice-api/internal/http/respond"
	"practice-api/internal/models"
	"practice-api/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []models.OrderItem `json:"items"`
		Total float64            `json:"total"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	o, err := h.orders.Create(r.Context(), caller(r).ID, req.Items, req.Total)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), caller(r).ID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), mux.Vars(r)["id"], caller(r).ID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, o)
}
