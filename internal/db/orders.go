package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"practice-api/internal/models"
)

const orderColumns = "id, user_id, items, status, total, created_at, updated_at"

func (db *DB) CreateOrder(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}

	o.ID = newID()
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt

	query := "INSERT INTO orders (" + orderColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err = db.exec(ctx, query, o.ID, o.UserID, string(items), string(o.Status), o.Total, o.CreatedAt, o.UpdatedAt)
	return storeErr("create order", err)
}

// ListOrdersByUser returns the user's orders, newest first.
func (db *DB) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC"
	rows, err := db.query(ctx, query, userID)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, storeErr("scan order", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list orders", err)
	}
	return orders, nil
}

// GetOrderForUser only matches orders owned by userID.
func (db *DB) GetOrderForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = ? AND user_id = ?"
	o, err := scanOrder(db.queryRow(ctx, query, id, userID))
	if err != nil {
		return nil, storeErr("get order", err)
	}
	return o, nil
}

func (db *DB) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = ?"
	o, err := scanOrder(db.queryRow(ctx, query, id))
	if err != nil {
		return nil, storeErr("get order", err)
	}
	return o, nil
}

// UpdateOrderStatus moves the order from one status to another. It reports
// false when the order no longer has status from.
func (db *DB) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, time.Time, error) {
	updatedAt := now()
	query := "UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?"
	res, err := db.exec(ctx, query, string(to), updatedAt, id, string(from))
	if err != nil {
		return false, time.Time{}, storeErr("update order status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, time.Time{}, storeErr("update order status", err)
	}
	return n == 1, updatedAt, nil
}

func scanOrder(row scanner) (*models.Order, error) {
	o := &models.Order{}
	var items, status string
	if err := row.Scan(&o.ID, &o.UserID, &items, &status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	o.Status = models.OrderStatus(status)
	return o, nil
}
