package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"marketplace-api/internal/broker"
	"marketplace-api/internal/models"
	"marketplace-api/internal/store"
	"marketplace-api/internal/util"
	"marketplace-api/internal/validation"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProductService handles product business logic
type ProductService struct {
	store  *store.Store
	games  *GameService
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store *store.Store, games *GameService, events *broker.EventPublisher) *ProductService {
	return &ProductService{
		store:  store,
		games:  games,
		events: events,
		logger: util.GetLogger(),
	}
}

// ProductSearch holds the raw search query parameters
type ProductSearch struct {
	Name  string
	About string
	Price string
}

// Active reports whether any search parameter was supplied
func (q ProductSearch) Active() bool {
	return q.Name != "" || q.About != "" || q.Price != ""
}

// SearchResult is a page of either catalog games or store products
type SearchResult struct {
	Products   interface{}
	Pagination models.Pagination
	SearchType string
}

// ListProducts returns one page of products
func (s *ProductService) ListProducts(ctx context.Context, page models.PageRequest) (*models.Page[models.Product], error) {
	products, total, err := s.store.ListProducts(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &models.Page[models.Product]{Items: products, Pagination: models.NewPagination(page, total)}, nil
}

// SearchProducts searches the games catalog, falling back to plain store
// pagination when the catalog cannot be reached.
func (s *ProductService) SearchProducts(ctx context.Context, q ProductSearch, page models.PageRequest) (*SearchResult, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.SearchProducts")
	defer span.End()

	games, err := s.games.allGames(ctx)
	if err != nil {
		s.logger.Warn("Catalog search failed, falling back to stored products", zap.Error(err))
		util.SearchFallbackTotal.Inc()
		span.SetAttributes(attribute.Bool("search.fallback", true))

		p, err := s.ListProducts(ctx, page)
		if err != nil {
			return nil, err
		}
		return &SearchResult{
			Products:   p.Items,
			Pagination: p.Pagination,
			SearchType: models.SearchTypeDatabaseProducts,
		}, nil
	}

	matched := filterGames(games, q)
	total := len(matched)
	start := min(page.Offset(), total)
	end := start + min(max(page.Limit, 0), total-start)

	return &SearchResult{
		Products:   matched[start:end],
		Pagination: models.NewPagination(page, int64(total)),
		SearchType: models.SearchTypeExternalGames,
	}, nil
}

// filterGames keeps games whose name and about contain the query text,
// ignoring case, and whose price does not exceed a numeric price.
func filterGames(games []models.Game, q ProductSearch) []models.Game {
	name := strings.ToLower(q.Name)
	about := strings.ToLower(q.About)
	maxPrice, priceErr := strconv.ParseFloat(q.Price, 64)
	hasPrice := q.Price != "" && priceErr == nil

	return lo.Filter(games, func(g models.Game, _ int) bool {
		if name != "" && !strings.Contains(strings.ToLower(g.Name), name) {
			return false
		}
		if about != "" && !strings.Contains(strings.ToLower(g.About), about) {
			return false
		}
		if hasPrice && g.Price > maxPrice {
			return false
		}
		return true
	})
}

// GetProduct retrieves a product with its reviews, newest first
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.ProductDetail, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Product not found", "")
	}

	reviews, err := s.store.ListProductReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list product reviews: %w", err)
	}

	return &models.ProductDetail{Product: *product, Reviews: reviews}, nil
}

// CreateProduct validates and stores a new product
func (s *ProductService) CreateProduct(ctx context.Context, req validation.ProductCreate) (product *models.Product, err error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer func() {
		recordMutation("product", "create", err)
		util.EndSpan(span, err)
	}()

	if err := validate(req); err != nil {
		return nil, err
	}

	product = &models.Product{Name: req.Name, About: req.About, Price: req.Price}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, storeError(fmt.Errorf("failed to create product: %w", err), "", "")
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	if err := s.events.PublishProduct(ctx, models.EventTypeProductCreated, product); err != nil {
		s.logger.Error("Failed to publish ProductCreated event", zap.Error(err))
	}
	return product, nil
}

// DeleteProduct removes a product and its reviews
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) (product *models.Product, err error) {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct", attribute.Int64("product.id", id))
	defer func() {
		recordMutation("product", "delete", err)
		util.EndSpan(span, err)
	}()

	product, err = s.store.DeleteProduct(ctx, id)
	if err != nil {
		return nil, storeError(err, "Product not found", "")
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	if err := s.events.PublishProduct(ctx, models.EventTypeProductDeleted, product); err != nil {
		s.logger.Error("Failed to publish ProductDeleted event", zap.Error(err))
	}
	return product, nil
}
