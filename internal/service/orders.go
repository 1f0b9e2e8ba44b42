package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"practice-api/internal/db"
	"practice-api/internal/models"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetOrderForUser(ctx context.Context, id, userID string) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, time.Time, error)
}

type OrderService struct {
	store OrderStore
}

func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{store: store}
}

// Create stores the order as given. The total is the client's and stock is
// not reserved.
func (s *OrderService) Create(ctx context.Context, userID string, items []models.OrderItem, total float64) (*models.Order, error) {
	if items == nil {
		return nil, BadRequest("Items required")
	}
	for i, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, BadRequest(fmt.Sprintf("Item %d needs a productId and a positive quantity", i))
		}
	}

	o := &models.Order{
		UserID: userID,
		Items:  items,
		Status: models.OrderPending,
		Total:  total,
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, Internal(err)
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return orders, nil
}

// Get returns NotFound for orders owned by someone else.
func (s *OrderService) Get(ctx context.Context, id, userID string) (*models.Order, error) {
	o, err := s.store.GetOrderForUser(ctx, id, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, NotFound("Order not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return o, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, BadRequest("Invalid status")
	}

	o, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, NotFound("Order not found")
	}
	if err != nil {
		return nil, Internal(err)
	}

	if !o.Status.CanTransition(status) {
		return nil, Conflict(fmt.Sprintf("Cannot change status from %s to %s", o.Status, status))
	}
	if o.Status == status {
		return o, nil
	}

	updated, at, err := s.store.UpdateOrderStatus(ctx, id, o.Status, status)
	if err != nil {
		return nil, Internal(err)
	}
	if !updated {
		return nil, Conflict("Order status changed concurrently")
	}

	o.Status = status
	o.UpdatedAt = at
	return o, nil
}
