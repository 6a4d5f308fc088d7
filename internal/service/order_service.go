package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"marketplace-api/internal/broker"
	"marketplace-api/internal/errs"
	"marketplace-api/internal/models"
	"marketplace-api/internal/store"
	"marketplace-api/internal/util"
	"marketplace-api/internal/validation"

	"github.com/lib/pq"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	store          *store.Store
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	events         *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service. idempotency may be nil.
func NewOrderService(
	store *store.Store,
	idempotency IdempotencyStore,
	idempotencyTTL time.Duration,
	events *broker.EventPublisher,
) *OrderService {
	return &OrderService{
		store:          store,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
		events:         events,
		logger:         util.GetLogger(),
	}
}

// ListOrders returns one page of orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, page models.PageRequest) (*models.Page[models.Order], error) {
	orders, total, err := s.store.ListOrders(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &models.Page[models.Order]{Items: orders, Pagination: models.NewPagination(page, total)}, nil
}

// GetOrder retrieves an order with its owner and the products it references
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.OrderDetail, error) {
	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Order not found", "")
	}

	detail := &models.OrderDetail{Order: *order}

	detail.User, err = s.store.GetUserByID(ctx, order.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load order user: %w", err)
	}

	detail.Products, err = s.store.GetProductsByIDs(ctx, lo.Uniq([]int64(order.ProductIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to load order products: %w", err)
	}

	return detail, nil
}

// CreateOrder validates the references, computes the total and stores the
// order. A repeated idempotencyKey returns the first order and replayed=true.
func (s *OrderService) CreateOrder(ctx context.Context, req validation.OrderCreate, idempotencyKey string) (order *models.Order, replayed bool, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder", attribute.Int64("user.id", req.UserID))
	defer func() {
		if !replayed {
			recordMutation("order", "create", err)
		}
		util.EndSpan(span, err)
	}()

	if err := validate(req); err != nil {
		return nil, false, err
	}

	if existing := s.replay(ctx, idempotencyKey); existing != nil {
		util.IdempotentReplaysTotal.Inc()
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", idempotencyKey),
			zap.Int64("order_id", existing.ID))
		return existing, true, nil
	}

	order = &models.Order{
		UserID:     req.UserID,
		ProductIDs: pq.Int64Array(req.ProductIDs),
		Payment:    lo.FromPtr(req.Payment),
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := requireUser(ctx, tx, req.UserID); err != nil {
			return err
		}

		products, err := requireProducts(ctx, tx, req.ProductIDs)
		if err != nil {
			return err
		}

		order.Total = TotalWithTax(req.ProductIDs, products)
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, false, storeError(err, "User not found", "")
	}

	util.OrderTotalAmount.Observe(order.Total)
	s.logger.Info("Order created", zap.Int64("order_id", order.ID), zap.Float64("total", order.Total))

	if err := s.events.PublishOrder(ctx, models.EventTypeOrderCreated, order); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}
	s.remember(ctx, idempotencyKey, order.ID)

	return order, false, nil
}

// UpdateOrder changes the supplied fields, recomputing the total when the product list changes
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, req validation.OrderUpdate) (order *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrder", attribute.Int64("order.id", id))
	defer func() {
		recordMutation("order", "update", err)
		util.EndSpan(span, err)
	}()

	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, errs.NewBadRequestError(msgNoFields)
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.GetOrderByID(ctx, id); err != nil {
			return err
		}

		fields := store.OrderFields{UserID: req.UserID, Payment: req.Payment}
		if req.UserID != nil {
			if err := requireUser(ctx, tx, *req.UserID); err != nil {
				return err
			}
		}
		if req.ProductIDs != nil {
			products, err := requireProducts(ctx, tx, *req.ProductIDs)
			if err != nil {
				return err
			}
			total := TotalWithTax(*req.ProductIDs, products)
			fields.ProductIDs = *req.ProductIDs
			fields.Total = &total
		}

		var err error
		order, err = tx.UpdateOrder(ctx, id, fields)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Order not found", "")
	}

	s.logger.Info("Order updated", zap.Int64("order_id", id))
	if err := s.events.PublishOrder(ctx, models.EventTypeOrderUpdated, order); err != nil {
		s.logger.Error("Failed to publish OrderUpdated event", zap.Error(err))
	}
	return order, nil
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) (order *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder", attribute.Int64("order.id", id))
	defer func() {
		recordMutation("order", "delete", err)
		util.EndSpan(span, err)
	}()

	order, err = s.store.DeleteOrder(ctx, id)
	if err != nil {
		return nil, storeError(err, "Order not found", "")
	}

	s.logger.Info("Order deleted", zap.Int64("order_id", id))
	if err := s.events.PublishOrder(ctx, models.EventTypeOrderDeleted, order); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}
	return order, nil
}

// replay returns the order previously created under key, if it still exists
func (s *OrderService) replay(ctx context.Context, key string) *models.Order {
	if key == "" || s.idempotency == nil {
		return nil
	}

	value, ok, err := s.idempotency.GetIdempotencyKey(ctx, key)
	if err != nil {
		s.logger.Warn("Idempotency lookup failed", zap.String("idempotency_key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	orderID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		s.logger.Warn("Ignoring malformed idempotency entry", zap.String("idempotency_key", key))
		return nil
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Failed to load replayed order", zap.Int64("order_id", orderID), zap.Error(err))
		}
		return nil
	}
	return order
}

func (s *OrderService) remember(ctx context.Context, key string, orderID int64) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.SetIdempotencyKey(ctx, key, strconv.FormatInt(orderID, 10), s.idempotencyTTL); err != nil {
		s.logger.Warn("Failed to store idempotency key", zap.String("idempotency_key", key), zap.Error(err))
	}
}
