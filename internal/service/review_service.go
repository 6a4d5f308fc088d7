package service

import (
	"context"
	"fmt"

	"marketplace-api/internal/broker"
	"marketplace-api/internal/errs"
	"marketplace-api/internal/models"
	"marketplace-api/internal/store"
	"marketplace-api/internal/util"
	"marketplace-api/internal/validation"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const msgDuplicateReview = "User has already reviewed this product"

// ReviewService handles review business logic. Every review mutation
// recomputes the affected product scores in the same transaction.
type ReviewService struct {
	store  *store.Store
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store *store.Store, events *broker.EventPublisher) *ReviewService {
	return &ReviewService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// ListReviews returns one page of reviews, newest first
func (s *ReviewService) ListReviews(ctx context.Context, page models.PageRequest) (*models.Page[models.Review], error) {
	reviews, total, err := s.store.ListReviews(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return &models.Page[models.Review]{Items: reviews, Pagination: models.NewPagination(page, total)}, nil
}

// GetReview retrieves a review with the reviewer and product names
func (s *ReviewService) GetReview(ctx context.Context, id int64) (*models.ReviewDetail, error) {
	review, err := s.store.GetReviewDetail(ctx, id)
	if err != nil {
		return nil, storeError(err, "Review not found", "")
	}
	return review, nil
}

// CreateReview stores a review and recomputes the product's score
func (s *ReviewService) CreateReview(ctx context.Context, req validation.ReviewCreate) (review *models.Review, err error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.CreateReview", attribute.Int64("product.id", req.ProductID))
	defer func() {
		recordMutation("review", "create", err)
		util.EndSpan(span, err)
	}()

	if err := validate(req); err != nil {
		return nil, err
	}

	review = &models.Review{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Score:     req.Score,
		Content:   req.Content,
	}

	var update scoreUpdate
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := requireUser(ctx, tx, req.UserID); err != nil {
			return err
		}
		if err := requireProduct(ctx, tx, req.ProductID); err != nil {
			return err
		}
		if err := checkReviewPair(ctx, tx, req.UserID, req.ProductID, 0); err != nil {
			return err
		}
		if err := tx.CreateReview(ctx, review); err != nil {
			return err
		}

		var err error
		update, err = recomputeScore(ctx, tx, req.ProductID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Product not found", msgDuplicateReview)
	}

	s.logger.Info("Review created",
		zap.Int64("review_id", review.ID),
		zap.Int64("product_id", review.ProductID),
		zap.Float64("score", update.score))
	s.publish(ctx, models.EventTypeReviewCreated, review, []scoreUpdate{update})
	return review, nil
}

// UpdateReview changes the supplied fields. Moving a review to another
// product rescores both the old and the new product.
func (s *ReviewService) UpdateReview(ctx context.Context, id int64, req validation.ReviewUpdate) (review *models.Review, err error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.UpdateReview", attribute.Int64("review.id", id))
	defer func() {
		recordMutation("review", "update", err)
		util.EndSpan(span, err)
	}()

	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, errs.NewBadRequestError(msgNoFields)
	}

	var updates []scoreUpdate
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		current, err := tx.GetReviewByID(ctx, id)
		if err != nil {
			return err
		}

		userID := lo.FromPtrOr(req.UserID, current.UserID)
		productID := lo.FromPtrOr(req.ProductID, current.ProductID)

		if userID != current.UserID {
			if err := requireUser(ctx, tx, userID); err != nil {
				return err
			}
		}
		if productID != current.ProductID {
			if err := requireProduct(ctx, tx, productID); err != nil {
				return err
			}
		}
		if userID != current.UserID || productID != current.ProductID {
			if err := checkReviewPair(ctx, tx, userID, productID, id); err != nil {
				return err
			}
		}

		review, err = tx.UpdateReview(ctx, id, store.ReviewFields{
			UserID:    req.UserID,
			ProductID: req.ProductID,
			Score:     req.Score,
			Content:   req.Content,
		})
		if err != nil {
			return err
		}

		for _, pid := range lo.Uniq([]int64{current.ProductID, review.ProductID}) {
			update, err := recomputeScore(ctx, tx, pid)
			if err != nil {
				return err
			}
			updates = append(updates, update)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "Review not found", msgDuplicateReview)
	}

	s.logger.Info("Review updated", zap.Int64("review_id", id), zap.Int("rescored_products", len(updates)))
	s.publish(ctx, models.EventTypeReviewUpdated, review, updates)
	return review, nil
}

// DeleteReview removes a review and recomputes its product's score
func (s *ReviewService) DeleteReview(ctx context.Context, id int64) (review *models.Review, err error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.DeleteReview", attribute.Int64("review.id", id))
	defer func() {
		recordMutation("review", "delete", err)
		util.EndSpan(span, err)
	}()

	var update scoreUpdate
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		review, err = tx.DeleteReview(ctx, id)
		if err != nil {
			return err
		}

		update, err = recomputeScore(ctx, tx, review.ProductID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Review not found", "")
	}

	s.logger.Info("Review deleted", zap.Int64("review_id", id), zap.Int64("product_id", review.ProductID))
	s.publish(ctx, models.EventTypeReviewDeleted, review, []scoreUpdate{update})
	return review, nil
}

func (s *ReviewService) publish(ctx context.Context, eventType string, review *models.Review, updates []scoreUpdate) {
	if err := s.events.PublishReview(ctx, eventType, review); err != nil {
		s.logger.Error("Failed to publish review event", zap.String("event_type", eventType), zap.Error(err))
	}
	publishScores(ctx, s.events, s.logger, updates)
}

func checkReviewPair(ctx context.Context, tx *store.Store, userID, productID, excludeID int64) error {
	exists, err := tx.ReviewExistsForPair(ctx, userID, productID, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return errs.NewConflictError(msgDuplicateReview)
	}
	return nil
}
