package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"marketplace-api/internal/broker"
	"marketplace-api/internal/models"
	"marketplace-api/internal/util"
	"marketplace-api/internal/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var catalogGames = []models.Game{
	{ID: "f2p-1", Name: "Warframe", About: "Cooperative space ninja shooter", Genre: "Shooter"},
	{ID: "f2p-2", Name: "War Thunder", About: "Military vehicle combat", Genre: "Shooter"},
	{ID: "f2p-3", Name: "Path of Exile", About: "Dark fantasy action RPG", Genre: "ARPG"},
}

func newProductService(t *testing.T, cat GameCatalog) (*ProductService, sqlmock.Sqlmock, *recordingWriter) {
	s, mock := newMockStore(t)
	events, w := newRecordingPublisher()
	return NewProductService(s, NewGameService(cat, nil, 0), events), mock, w
}

func TestCreateProductReportsEveryViolation(t *testing.T) {
	svc, _, _ := newProductService(t, &fakeCatalog{})

	_, err := svc.CreateProduct(context.Background(), validation.ProductCreate{})
	httpErr := requireStatus(t, err, http.StatusBadRequest, "Validation failed")
	assert.Len(t, httpErr.Errors, 3)
}

func TestCreateProduct(t *testing.T) {
	svc, mock, w := newProductService(t, &fakeCatalog{})

	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Lamp", "Desk lamp", 19.99).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(4, "Lamp", "Desk lamp", 19.99, 0.0, "{}", time.Now()))

	product, err := svc.CreateProduct(context.Background(), validation.ProductCreate{Name: "Lamp", About: "Desk lamp", Price: 19.99})
	require.NoError(t, err)
	assert.Equal(t, int64(4), product.ID)
	assert.Equal(t, []string{"product-4"}, w.keys)
}

func TestCreateProductColumnRejectionIsBadRequest(t *testing.T) {
	svc, mock, w := newProductService(t, &fakeCatalog{})

	mock.ExpectQuery("INSERT INTO products").
		WillReturnError(&pq.Error{Code: "23514", Constraint: "products_price_check"})

	_, err := svc.CreateProduct(context.Background(), validation.ProductCreate{Name: "Lamp", About: "Desk lamp", Price: 0.01})
	requireStatus(t, err, http.StatusBadRequest, msgInvalidValue)
	assert.Empty(t, w.keys)
}

func TestGetProductNotFound(t *testing.T) {
	svc, mock, _ := newProductService(t, &fakeCatalog{})

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\$1").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := svc.GetProduct(context.Background(), 9)
	requireStatus(t, err, http.StatusNotFound, "Product not found")
}

func TestGetProductIncludesReviews(t *testing.T) {
	svc, mock, _ := newProductService(t, &fakeCatalog{})
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\$1").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(2, "Lamp", "Desk lamp", 10.0, 4.5, "{7,8}", now))
	mock.ExpectQuery("FROM reviews r\\s+JOIN users u").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(append(reviewCols, "username", "email")).
			AddRow(8, 1, 2, 5, "great", now, now, "alice", "alice@example.com").
			AddRow(7, 3, 2, 4, "good", now, now, "carol", "carol@example.com"))

	detail, err := svc.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, detail.Score)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "alice", detail.Reviews[0].Username)
	assert.Equal(t, int64(8), detail.Reviews[0].ID)
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, mock, w := newProductService(t, &fakeCatalog{})

	mock.ExpectQuery("DELETE FROM products WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := svc.DeleteProduct(context.Background(), 5)
	requireStatus(t, err, http.StatusNotFound, "Product not found")
	assert.Empty(t, w.keys)
}

func TestSearchProductsFiltersCatalog(t *testing.T) {
	tests := []struct {
		name  string
		query ProductSearch
		page  models.PageRequest
		want  []string
		total int64
	}{
		{"name substring ignores case", ProductSearch{Name: "WAR"}, models.PageRequest{Page: 1, Limit: 10}, []string{"f2p-1", "f2p-2"}, 2},
		{"about substring", ProductSearch{About: "rpg"}, models.PageRequest{Page: 1, Limit: 10}, []string{"f2p-3"}, 1},
		{"name and about combine", ProductSearch{Name: "war", About: "vehicle"}, models.PageRequest{Page: 1, Limit: 10}, []string{"f2p-2"}, 1},
		{"price keeps free games", ProductSearch{Price: "0"}, models.PageRequest{Page: 1, Limit: 10}, []string{"f2p-1", "f2p-2", "f2p-3"}, 3},
		{"non-numeric price ignored", ProductSearch{Name: "path", Price: "cheap"}, models.PageRequest{Page: 1, Limit: 10}, []string{"f2p-3"}, 1},
		{"negative price excludes all", ProductSearch{Price: "-1"}, models.PageRequest{Page: 1, Limit: 10}, []string{}, 0},
		{"second page", ProductSearch{Name: "a"}, models.PageRequest{Page: 2, Limit: 2}, []string{"f2p-3"}, 3},
		{"page past the end", ProductSearch{Name: "a"}, models.PageRequest{Page: 5, Limit: 2}, []string{}, 3},
		{"huge page number", ProductSearch{Name: "a"}, models.PageRequest{Page: 1e18, Limit: 10}, []string{}, 3},
		{"huge limit", ProductSearch{Name: "a"}, models.PageRequest{Page: 1, Limit: math.MaxInt}, []string{"f2p-1", "f2p-2", "f2p-3"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newProductService(t, &fakeCatalog{games: catalogGames})

			result, err := svc.SearchProducts(context.Background(), tt.query, tt.page)
			require.NoError(t, err)
			assert.Equal(t, models.SearchTypeExternalGames, result.SearchType)
			assert.Equal(t, tt.total, result.Pagination.Total)

			games, ok := result.Products.([]models.Game)
			require.True(t, ok)
			ids := make([]string, 0, len(games))
			for _, g := range games {
				ids = append(ids, g.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearchProductsFallsBackToStore(t *testing.T) {
	svc, mock, _ := newProductService(t, &fakeCatalog{err: errors.New("connection refused")})

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY id ASC").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(1, "Lamp", "Desk lamp", 10.0, 0.0, "{}", time.Now()))

	result, err := svc.SearchProducts(context.Background(), ProductSearch{Name: "lamp"}, models.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeDatabaseProducts, result.SearchType)

	products, ok := result.Products.([]models.Product)
	require.True(t, ok)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, result.Pagination.TotalPages)
}

func TestProductSearchActive(t *testing.T) {
	assert.False(t, ProductSearch{}.Active())
	assert.True(t, ProductSearch{Price: "10"}.Active())
}

type failingWriter struct{}

func (failingWriter) PublishEvent(ctx context.Context, key string, event interface{}) error {
	return errors.New("broker unavailable")
}

func TestPublishFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	util.SetLogger(zap.New(core))
	defer util.SetLogger(nil)

	s, mock := newMockStore(t)
	svc := NewProductService(s, NewGameService(&fakeCatalog{}, nil, 0), broker.NewEventPublisher(failingWriter{}))

	mock.ExpectQuery("INSERT INTO products").
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(4, "Lamp", "Desk lamp", 19.99, 0.0, "{}", time.Now()))

	_, err := svc.CreateProduct(context.Background(), validation.ProductCreate{Name: "Lamp", About: "Desk lamp", Price: 19.99})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Failed to publish ProductCreated event").Len())
}
