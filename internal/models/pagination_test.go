package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name       string
		req        PageRequest
		total      int64
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"first of many", PageRequest{Page: 1, Limit: 10}, 25, 3, true, false},
		{"last page holds remainder", PageRequest{Page: 3, Limit: 10}, 25, 3, false, true},
		{"exact fit", PageRequest{Page: 2, Limit: 5}, 10, 2, false, true},
		{"empty", PageRequest{Page: 1, Limit: 10}, 0, 0, false, false},
		{"single page", PageRequest{Page: 1, Limit: 10}, 7, 1, false, false},
		{"limit beyond total", PageRequest{Page: 1, Limit: math.MaxInt}, 3, 1, false, false},
		{"page far past the end", PageRequest{Page: 1e18, Limit: 10}, 3, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.req, tt.total)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, PageRequest{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, PageRequest{Page: 0, Limit: 10}.Offset())
	assert.Equal(t, math.MaxInt32, PageRequest{Page: 1e18, Limit: 10}.Offset())
	assert.Equal(t, math.MaxInt32-47, PageRequest{Page: MaxPage, Limit: MaxLimit}.Offset())
}
