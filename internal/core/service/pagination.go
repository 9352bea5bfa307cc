package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pageWindow validates the 1-based page and size and returns the store page.
func pageWindow(page, size, limit int) (ports.Page, int, int, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = defaultPageSize
	}
	if page < 1 {
		return ports.Page{}, 0, 0, domain.NewValidationError("page", "must be greater than or equal to 1")
	}
	if size < 1 || size > limit {
		return ports.Page{}, 0, 0, domain.NewValidationError("size", "must be between 1 and "+strconv.Itoa(limit))
	}
	if int64(page-1) > math.MaxInt64/int64(size) {
		return ports.Page{}, 0, 0, domain.NewValidationError("page", "is too large")
	}
	return ports.Page{Skip: int64(page-1) * int64(size), Limit: int64(size)}, page, size, nil
}

// pageCount is ceil(total/size).
func pageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// sortSpec validates field against allowed and builds the store sort.
func sortSpec(field, order string, allowed []string) (*ports.Sort, error) {
	if field == "" {
		field = "created_at"
	}
	found := false
	for _, a := range allowed {
		if a == field {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.NewValidationError("sort_by", "must be one of: "+strings.Join(allowed, ", "))
	}

	var desc bool
	switch order {
	case "", "desc":
		desc = true
	case "asc":
	default:
		return nil, domain.NewValidationError("sort_order", "must be one of: asc, desc")
	}
	return &ports.Sort{Field: field, Desc: desc}, nil
}
