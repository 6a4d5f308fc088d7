package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeProductCreated      = "PRODUCT_CREATED"
	EventTypeProductDeleted      = "PRODUCT_DELETED"
	EventTypeProductScoreUpdated = "PRODUCT_SCORE_UPDATED"
	EventTypeUserCreated         = "USER_CREATED"
	EventTypeUserUpdated         = "USER_UPDATED"
	EventTypeUserDeleted         = "USER_DELETED"
	EventTypeOrderCreated        = "ORDER_CREATED"
	EventTypeOrderUpdated        = "ORDER_UPDATED"
	EventTypeOrderDeleted        = "ORDER_DELETED"
	EventTypeReviewCreated       = "REVIEW_CREATED"
	EventTypeReviewUpdated       = "REVIEW_UPDATED"
	EventTypeReviewDeleted       = "REVIEW_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a fresh event id and the current time
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// ProductEvent published when a product is created or deleted
type ProductEvent struct {
	BaseEvent
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// ProductScoreEvent published after a product's aggregate score is recomputed
type ProductScoreEvent struct {
	BaseEvent
	ProductID int64   `json:"product_id"`
	Score     float64 `json:"score"`
	ReviewIDs []int64 `json:"review_ids"`
}

// UserEvent published when a user is created, updated or deleted
type UserEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// OrderEvent published when an order is created, updated or deleted
type OrderEvent struct {
	BaseEvent
	OrderID    int64   `json:"order_id"`
	UserID     int64   `json:"user_id"`
	ProductIDs []int64 `json:"product_ids"`
	Total      float64 `json:"total"`
	Payment    bool    `json:"payment"`
}

// ReviewEvent published when a review is created, updated or deleted
type ReviewEvent struct {
	BaseEvent
	ReviewID  int64 `json:"review_id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Score     int   `json:"score"`
}
