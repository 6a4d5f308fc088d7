package store

import (
	"context"

	"marketplace-api/internal/models"
)

const reviewColumns = "id, user_id, product_id, score, content, created_at, updated_at"

// ReviewFields holds the columns a review update may change
type ReviewFields struct {
	UserID    *int64
	ProductID *int64
	Score     *int
	Content   *string
}

// ListReviews returns one page of reviews, newest first, and the total review count
func (s *Store) ListReviews(ctx context.Context, page models.PageRequest) ([]models.Review, int64, error) {
	total, err := s.count(ctx, "reviews")
	if err != nil {
		return nil, 0, err
	}

	reviews := []models.Review{}
	err = s.q.SelectContext(ctx, &reviews,
		"SELECT "+reviewColumns+" FROM reviews ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// GetReviewByID retrieves a review by ID
func (s *Store) GetReviewByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := s.q.GetContext(ctx, &review, "SELECT "+reviewColumns+" FROM reviews WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// GetReviewDetail retrieves a review joined with reviewer and product names
func (s *Store) GetReviewDetail(ctx context.Context, id int64) (*models.ReviewDetail, error) {
	var review models.ReviewDetail
	err := s.q.GetContext(ctx, &review, `
		SELECT r.id, r.user_id, r.product_id, r.score, r.content, r.created_at, r.updated_at,
		       u.username, u.email, p.name AS product_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN products p ON p.id = r.product_id
		WHERE r.id = $1`, id)
	if err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// ReviewExistsForPair reports whether userID already reviewed productID, ignoring excludeID
func (s *Store) ReviewExistsForPair(ctx context.Context, userID, productID, excludeID int64) (bool, error) {
	var exists bool
	err := s.q.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2 AND id <> $3)",
		userID, productID, excludeID)
	return exists, err
}

// CreateReview inserts a review
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (user_id, product_id, score, content)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reviewColumns

	return translate(s.q.GetContext(ctx, review, query,
		review.UserID, review.ProductID, review.Score, review.Content))
}

// UpdateReview changes only the supplied columns
func (s *Store) UpdateReview(ctx context.Context, id int64, fields ReviewFields) (*models.Review, error) {
	b := NewUpdate("reviews").Touch("updated_at")
	if fields.UserID != nil {
		b.Set("user_id", *fields.UserID)
	}
	if fields.ProductID != nil {
		b.Set("product_id", *fields.ProductID)
	}
	if fields.Score != nil {
		b.Set("score", *fields.Score)
	}
	if fields.Content != nil {
		b.Set("content", *fields.Content)
	}

	query, args, err := b.Build("id", id, reviewColumns)
	if err != nil {
		return nil, err
	}

	var review models.Review
	if err := s.q.GetContext(ctx, &review, query, args...); err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// DeleteReview removes a review and returns the deleted row
func (s *Store) DeleteReview(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := s.q.GetContext(ctx, &review, "DELETE FROM reviews WHERE id = $1 RETURNING "+reviewColumns, id)
	if err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// ListReviewScores returns a product's review scores ordered by review id
func (s *Store) ListReviewScores(ctx context.Context, productID int64) ([]models.ReviewScore, error) {
	scores := []models.ReviewScore{}
	err := s.q.SelectContext(ctx, &scores,
		"SELECT id, score FROM reviews WHERE product_id = $1 ORDER BY id ASC", productID)
	return scores, err
}
