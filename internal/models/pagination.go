package models

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// maxOffset keeps OFFSET inside Postgres' int4 parameter range
	maxOffset = math.MaxInt32

	// MaxPage is the highest page whose offset fits maxOffset at MaxLimit
	MaxPage = maxOffset/MaxLimit + 1
)

// PageRequest is a 1-based page number and a page size
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip, saturating at maxOffset
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > maxOffset/p.Limit {
		return maxOffset
	}
	return (p.Page - 1) * p.Limit
}

// Pagination describes where a page sits within the full result set
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes page counts for total rows
func NewPagination(req PageRequest, total int64) Pagination {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int(total / int64(req.Limit))
		if total%int64(req.Limit) != 0 {
			totalPages++
		}
	}
	return Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}
}

// Page is one page of rows plus its pagination metadata
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
