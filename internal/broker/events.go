package broker

import (
	"context"
	"fmt"

	"marketplace-api/internal/models"
)

// EventWriter is satisfied by *Producer
type EventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing domain events. A nil publisher, or one
// without a writer, drops every event.
type EventPublisher struct {
	writer EventWriter
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(writer EventWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, event interface{}) error {
	if ep == nil || ep.writer == nil {
		return nil
	}
	return ep.writer.PublishEvent(ctx, key, event)
}

// PublishProduct publishes a product lifecycle event
func (ep *EventPublisher) PublishProduct(ctx context.Context, eventType string, p *models.Product) error {
	return ep.publish(ctx, fmt.Sprintf("product-%d", p.ID), &models.ProductEvent{
		BaseEvent: models.NewBaseEvent(eventType),
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
	})
}

// PublishProductScore publishes a recomputed aggregate score
func (ep *EventPublisher) PublishProductScore(ctx context.Context, productID int64, score float64, reviewIDs []int64) error {
	return ep.publish(ctx, fmt.Sprintf("product-%d", productID), &models.ProductScoreEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeProductScoreUpdated),
		ProductID: productID,
		Score:     score,
		ReviewIDs: reviewIDs,
	})
}

// PublishUser publishes a user lifecycle event
func (ep *EventPublisher) PublishUser(ctx context.Context, eventType string, u *models.User) error {
	return ep.publish(ctx, fmt.Sprintf("user-%d", u.ID), &models.UserEvent{
		BaseEvent: models.NewBaseEvent(eventType),
		UserID:    u.ID,
		Username:  u.Username,
	})
}

// PublishOrder publishes an order lifecycle event
func (ep *EventPublisher) PublishOrder(ctx context.Context, eventType string, o *models.Order) error {
	return ep.publish(ctx, fmt.Sprintf("order-%d", o.ID), &models.OrderEvent{
		BaseEvent:  models.NewBaseEvent(eventType),
		OrderID:    o.ID,
		UserID:     o.UserID,
		ProductIDs: o.ProductIDs,
		Total:      o.Total,
		Payment:    o.Payment,
	})
}

// PublishReview publishes a review lifecycle event
func (ep *EventPublisher) PublishReview(ctx context.Context, eventType string, r *models.Review) error {
	return ep.publish(ctx, fmt.Sprintf("review-%d", r.ID), &models.ReviewEvent{
		BaseEvent: models.NewBaseEvent(eventType),
		ReviewID:  r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Score:     r.Score,
	})
}
