package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams holds the normalized pagination parameters for a list
// request. Page is 1-indexed; Skip = (Page-1)*Limit.
type PageParams struct {
	Page  int
	Limit int
	Skip  int
}

// ParsePageParams reads page/limit from the query string. Defaults are
// page=1, limit=10; limit is clamped to MaxPageSize and both values are
// floored at 1. Malformed values fall back to the defaults.
func ParsePageParams(c *gin.Context) PageParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return PageParams{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// NewPagination builds pagination metadata for a response.
func NewPagination(params PageParams, total int64) Pagination {
	totalPages := int(total) / params.Limit
	if int(total)%params.Limit != 0 {
		totalPages++
	}

	return Pagination{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
