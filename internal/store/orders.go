package store

import (
	"context"

	"marketplace-api/internal/models"

	"github.com/lib/pq"
)

const orderColumns = "id, user_id, product_ids, total, payment, created_at, updated_at"

// OrderFields holds the columns an order update may change
type OrderFields struct {
	UserID     *int64
	ProductIDs []int64
	Total      *float64
	Payment    *bool
}

// ListOrders returns one page of orders, newest first, and the total order count
func (s *Store) ListOrders(ctx context.Context, page models.PageRequest) ([]models.Order, int64, error) {
	total, err := s.count(ctx, "orders")
	if err != nil {
		return nil, 0, err
	}

	orders := []models.Order{}
	err = s.q.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.q.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// CreateOrder creates a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, product_ids, total, payment)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + orderColumns

	return translate(s.q.GetContext(ctx, order, query,
		order.UserID, order.ProductIDs, order.Total, order.Payment))
}

// UpdateOrder changes only the supplied columns
func (s *Store) UpdateOrder(ctx context.Context, id int64, fields OrderFields) (*models.Order, error) {
	b := NewUpdate("orders").Touch("updated_at")
	if fields.UserID != nil {
		b.Set("user_id", *fields.UserID)
	}
	if fields.ProductIDs != nil {
		b.Set("product_ids", pq.Int64Array(fields.ProductIDs))
	}
	if fields.Total != nil {
		b.Set("total", *fields.Total)
	}
	if fields.Payment != nil {
		b.Set("payment", *fields.Payment)
	}

	query, args, err := b.Build("id", id, orderColumns)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.q.GetContext(ctx, &order, query, args...); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// DeleteOrder removes an order and returns the deleted row
func (s *Store) DeleteOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.q.GetContext(ctx, &order, "DELETE FROM orders WHERE id = $1 RETURNING "+orderColumns, id)
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}
