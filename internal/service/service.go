package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketplace-api/internal/broker"
	"marketplace-api/internal/catalog"
	"marketplace-api/internal/errs"
	"marketplace-api/internal/models"
	"marketplace-api/internal/store"
	"marketplace-api/internal/util"
	"marketplace-api/internal/validation"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	msgNoFields     = "At least one field must be provided"
	msgInvalidValue = "Invalid field value"
)

// IdempotencyStore remembers which order a client-supplied key created.
// *redisclient.Client satisfies it.
type IdempotencyStore interface {
	GetIdempotencyKey(ctx context.Context, key string) (string, bool, error)
	SetIdempotencyKey(ctx context.Context, key, value string, ttl time.Duration) error
}

// CatalogCache holds raw catalog payloads. *redisclient.Client satisfies it.
type CatalogCache interface {
	GetCachedCatalog(ctx context.Context, key string) ([]byte, bool, error)
	SetCachedCatalog(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// GameCatalog is the external games catalog. *catalog.Client satisfies it.
type GameCatalog interface {
	ListGames(ctx context.Context, f catalog.Filter) ([]models.Game, error)
	GetGame(ctx context.Context, id int64) (*models.Game, error)
}

func validate(v interface{}) error {
	if fields := validation.Validate(v); len(fields) > 0 {
		return errs.NewValidationError(fields)
	}
	return nil
}

// storeError maps store sentinels onto client-facing errors. Errors that are
// already *errs.HTTPError pass through; an empty conflictMsg leaves conflicts
// unclassified.
func storeError(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := errs.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidRef):
		return errs.NewNotFoundError(notFoundMsg).WithCause(err)
	case errors.Is(err, store.ErrNoFields):
		return errs.NewBadRequestError(msgNoFields)
	case errors.Is(err, store.ErrInvalidVal):
		return errs.NewBadRequestError(msgInvalidValue).WithCause(err)
	case errors.Is(err, store.ErrConflict) && conflictMsg != "":
		return errs.NewConflictError(conflictMsg).WithCause(err)
	}
	return err
}

// recordMutation counts a create/update/delete by outcome
func recordMutation(resource, action string, err error) {
	if err == nil {
		util.ResourceMutationsTotal.WithLabelValues(resource, action).Inc()
		return
	}

	reason := "internal"
	if httpErr, ok := errs.As(err); ok {
		reason = strings.ToLower(httpErr.Code)
	}
	util.ResourceMutationsFailed.WithLabelValues(resource, action, reason).Inc()
}

func requireUser(ctx context.Context, tx *store.Store, id int64) error {
	ok, err := tx.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !ok {
		return errs.NewNotFoundError("User not found")
	}
	return nil
}

func requireProduct(ctx context.Context, tx *store.Store, id int64) error {
	ok, err := tx.ProductExists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !ok {
		return errs.NewNotFoundError("Product not found")
	}
	return nil
}

// requireProducts fetches every distinct referenced product and fails when any is missing
func requireProducts(ctx context.Context, tx *store.Store, ids []int64) ([]models.Product, error) {
	unique := lo.Uniq(ids)
	products, err := tx.GetProductsByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	found := lo.KeyBy(products, func(p models.Product) int64 { return p.ID })
	missing := lo.Filter(unique, func(id int64, _ int) bool {
		_, ok := found[id]
		return !ok
	})
	if len(missing) > 0 {
		labels := lo.Map(missing, func(id int64, _ int) string { return strconv.FormatInt(id, 10) })
		return nil, errs.NewNotFoundError("Product not found: " + strings.Join(labels, ", "))
	}
	return products, nil
}

type scoreUpdate struct {
	productID int64
	score     float64
	reviewIDs []int64
}

// recomputeScore rewrites a product's aggregate score from its current reviews
func recomputeScore(ctx context.Context, tx *store.Store, productID int64) (scoreUpdate, error) {
	start := time.Now()
	defer func() {
		util.ScoreRecomputeLatency.Observe(time.Since(start).Seconds())
	}()

	scores, err := tx.ListReviewScores(ctx, productID)
	if err != nil {
		return scoreUpdate{}, fmt.Errorf("failed to load review scores: %w", err)
	}

	score, ids := AggregateScore(scores)
	if err := tx.UpdateProductScore(ctx, productID, score, ids); err != nil {
		return scoreUpdate{}, fmt.Errorf("failed to update product score: %w", err)
	}
	return scoreUpdate{productID: productID, score: score, reviewIDs: ids}, nil
}

func publishScores(ctx context.Context, events *broker.EventPublisher, logger *zap.Logger, updates []scoreUpdate) {
	for _, u := range updates {
		if err := events.PublishProductScore(ctx, u.productID, u.score, u.reviewIDs); err != nil {
			logger.Error("Failed to publish ProductScoreUpdated event",
				zap.Int64("product_id", u.productID), zap.Error(err))
		}
	}
}
