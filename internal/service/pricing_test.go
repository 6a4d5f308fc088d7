package service

import (
	"testing"

	"marketplace-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTotalWithTax(t *testing.T) {
	products := []models.Product{
		{ID: 1, Price: 10},
		{ID: 2, Price: 20},
		{ID: 3, Price: 19.99},
		{ID: 4, Price: 0.0375},
	}

	tests := []struct {
		name string
		ids  []int64
		want float64
	}{
		{"two products", []int64{1, 2}, 36.00},
		{"repeated reference counts twice", []int64{1, 1}, 24.00},
		{"cents", []int64{3}, 23.99},
		{"rounds half up", []int64{4}, 0.05},
		{"unknown reference contributes zero", []int64{1, 99}, 12.00},
		{"no references", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalWithTax(tt.ids, products))
		})
	}
}

func TestAggregateScore(t *testing.T) {
	tests := []struct {
		name      string
		reviews   []models.ReviewScore
		wantScore float64
		wantIDs   []int64
	}{
		{"none", nil, 0, []int64{}},
		{"single", []models.ReviewScore{{ID: 5, Score: 3}}, 3, []int64{5}},
		{"mean", []models.ReviewScore{{ID: 1, Score: 4}, {ID: 2, Score: 5}}, 4.5, []int64{1, 2}},
		{"repeating decimal", []models.ReviewScore{{ID: 1, Score: 1}, {ID: 2, Score: 1}, {ID: 3, Score: 2}}, 1.33, []int64{1, 2, 3}},
		{"ids sorted", []models.ReviewScore{{ID: 9, Score: 2}, {ID: 4, Score: 3}}, 2.5, []int64{4, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ids := AggregateScore(tt.reviews)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
