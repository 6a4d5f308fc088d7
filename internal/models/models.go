package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a product in the catalog
type Product struct {
	ID        int64         `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	About     string        `db:"about" json:"about"`
	Price     float64       `db:"price" json:"price"`
	Score     float64       `db:"score" json:"score"`
	ReviewIDs pq.Int64Array `db:"review_ids" json:"reviewIds"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}

// User represents a marketplace account. The password hash never leaves the store layer.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Order represents a customer order
type Order struct {
	ID         int64         `db:"id" json:"id"`
	UserID     int64         `db:"user_id" json:"userId"`
	ProductIDs pq.Int64Array `db:"product_ids" json:"productIds"`
	Total      float64       `db:"total" json:"total"`
	Payment    bool          `db:"payment" json:"payment"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updatedAt"`
}

// Review represents a user's review of a product
type Review struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	ProductID int64     `db:"product_id" json:"productId"`
	Score     int       `db:"score" json:"score"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ProductReview is a review enriched with the reviewer's identity
type ProductReview struct {
	Review
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}

// ReviewDetail is a review joined with reviewer and product names
type ReviewDetail struct {
	Review
	Username    string `db:"username" json:"username"`
	Email       string `db:"email" json:"email"`
	ProductName string `db:"product_name" json:"productName"`
}

// ProductDetail is a product with its reviews, newest first
type ProductDetail struct {
	Product
	Reviews []ProductReview `json:"reviews"`
}

// OrderDetail is an order with its owner and the referenced products
type OrderDetail struct {
	Order
	User     *User     `json:"user"`
	Products []Product `json:"products"`
}

// ReviewScore is the minimal projection needed to aggregate a product score
type ReviewScore struct {
	ID    int64 `db:"id"`
	Score int   `db:"score"`
}

// Game is a free-to-play catalog entry shaped like a product. It is never persisted.
type Game struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	About       string  `json:"about"`
	Price       float64 `json:"price"`
	URL         string  `json:"url"`
	Genre       string  `json:"genre"`
	Platform    string  `json:"platform"`
	Thumbnail   string  `json:"thumbnail"`
	Publisher   string  `json:"publisher"`
	Developer   string  `json:"developer"`
	ReleaseDate string  `json:"releaseDate"`
}

// GameIDPrefix marks catalog ids so they cannot be mistaken for store product ids
const GameIDPrefix = "f2p-"

// Search types reported by the product search path
const (
	SearchTypeExternalGames    = "external-games"
	SearchTypeDatabaseProducts = "database-products"
)
