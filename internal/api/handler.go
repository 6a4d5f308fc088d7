package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"marketplace-api/internal/catalog"
	"marketplace-api/internal/models"
	"marketplace-api/internal/service"
	"marketplace-api/internal/util"
	"marketplace-api/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ProductService is implemented by *service.ProductService
type ProductService interface {
	ListProducts(ctx context.Context, page models.PageRequest) (*models.Page[models.Product], error)
	SearchProducts(ctx context.Context, q service.ProductSearch, page models.PageRequest) (*service.SearchResult, error)
	GetProduct(ctx context.Context, id int64) (*models.ProductDetail, error)
	CreateProduct(ctx context.Context, req validation.ProductCreate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*models.Product, error)
}

// UserService is implemented by *service.UserService
type UserService interface {
	ListUsers(ctx context.Context, page models.PageRequest) (*models.Page[models.User], error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, req validation.UserCreate) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req validation.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (*models.User, error)
}

// OrderService is implemented by *service.OrderService
type OrderService interface {
	ListOrders(ctx context.Context, page models.PageRequest) (*models.Page[models.Order], error)
	GetOrder(ctx context.Context, id int64) (*models.OrderDetail, error)
	CreateOrder(ctx context.Context, req validation.OrderCreate, idempotencyKey string) (*models.Order, bool, error)
	UpdateOrder(ctx context.Context, id int64, req validation.OrderUpdate) (*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) (*models.Order, error)
}

// ReviewService is implemented by *service.ReviewService
type ReviewService interface {
	ListReviews(ctx context.Context, page models.PageRequest) (*models.Page[models.Review], error)
	GetReview(ctx context.Context, id int64) (*models.ReviewDetail, error)
	CreateReview(ctx context.Context, req validation.ReviewCreate) (*models.Review, error)
	UpdateReview(ctx context.Context, id int64, req validation.ReviewUpdate) (*models.Review, error)
	DeleteReview(ctx context.Context, id int64) (*models.Review, error)
}

// GameService is implemented by *service.GameService
type GameService interface {
	ListGames(ctx context.Context, f catalog.Filter) ([]models.Game, error)
	GetGame(ctx context.Context, rawID string) (*models.Game, error)
}

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the handlers' dependencies
type Services struct {
	Products ProductService
	Users    UserService
	Orders   OrderService
	Reviews  ReviewService
	Games    GameService
}

// Handler contains HTTP handlers
type Handler struct {
	products ProductService
	users    UserService
	orders   OrderService
	reviews  ReviewService
	games    GameService
	checks   map[string]Pinger
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. checks are pinged by /ready.
func NewHandler(svc Services, checks map[string]Pinger) *Handler {
	return &Handler{
		products: svc.Products,
		users:    svc.Users,
		orders:   svc.Orders,
		reviews:  svc.Reviews,
		games:    svc.Games,
		checks:   checks,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/", h.root)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	products := router.Group("/products")
	{
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
		products.POST("", h.createProduct)
		products.DELETE("/:id", h.deleteProduct)
	}

	users := router.Group("/users")
	{
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.POST("", h.createUser)
		users.PUT("/:id", h.updateUser)
		users.PATCH("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}

	orders := router.Group("/orders")
	{
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.POST("", h.createOrder)
		orders.PUT("/:id", h.updateOrder)
		orders.PATCH("/:id", h.updateOrder)
		orders.DELETE("/:id", h.deleteOrder)
	}

	reviews := router.Group("/reviews")
	{
		reviews.GET("", h.listReviews)
		reviews.GET("/:id", h.getReview)
		reviews.POST("", h.createReview)
		reviews.PUT("/:id", h.updateReview)
		reviews.PATCH("/:id", h.updateReview)
		reviews.DELETE("/:id", h.deleteReview)
	}

	router.GET("/f2p-games", h.listGames)
	router.GET("/f2p-games/:id", h.getGame)
}

func (h *Handler) root(c *gin.Context) {
	c.String(http.StatusOK, "Marketplace API is running")
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": results,
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
