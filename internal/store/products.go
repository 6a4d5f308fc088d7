package store

import (
	"context"

	"marketplace-api/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const productColumns = "id, name, about, price, score, review_ids, created_at"

// ListProducts returns one page of products ordered by id and the total product count
func (s *Store) ListProducts(ctx context.Context, page models.PageRequest) ([]models.Product, int64, error) {
	total, err := s.count(ctx, "products")
	if err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	err = s.q.SelectContext(ctx, &products,
		"SELECT "+productColumns+" FROM products ORDER BY id ASC LIMIT $1 OFFSET $2",
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.q.GetContext(ctx, &product, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT "+productColumns+" FROM products WHERE id IN (?) ORDER BY id ASC", ids)
	if err != nil {
		return nil, err
	}
	query = s.q.Rebind(query)

	products := []models.Product{}
	err = s.q.SelectContext(ctx, &products, query, args...)
	return products, err
}

// CreateProduct inserts a product and fills its generated fields
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, about, price)
		VALUES ($1, $2, $3)
		RETURNING ` + productColumns

	return translate(s.q.GetContext(ctx, product, query, product.Name, product.About, product.Price))
}

// DeleteProduct removes a product and returns the deleted row. Its reviews cascade.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.q.GetContext(ctx, &product, "DELETE FROM products WHERE id = $1 RETURNING "+productColumns, id)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// UpdateProductScore stores a recomputed aggregate score and review-id list
func (s *Store) UpdateProductScore(ctx context.Context, id int64, score float64, reviewIDs []int64) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE products SET score = $1, review_ids = $2 WHERE id = $3",
		score, pq.Int64Array(reviewIDs), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ProductExists reports whether a product row exists
func (s *Store) ProductExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.q.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", id)
	return exists, err
}

// ListProductReviews returns a product's reviews with reviewer identity, newest first
func (s *Store) ListProductReviews(ctx context.Context, productID int64) ([]models.ProductReview, error) {
	reviews := []models.ProductReview{}
	err := s.q.SelectContext(ctx, &reviews, `
		SELECT r.id, r.user_id, r.product_id, r.score, r.content, r.created_at, r.updated_at,
		       u.username, u.email
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC, r.id DESC`, productID)
	return reviews, err
}
