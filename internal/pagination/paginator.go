package pagination

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination holds the parsed paging window for list endpoints
type Pagination struct {
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
	Page     int   `json:"page"`
	MaxLimit int   `json:"maxLimit"`
	Total    int64 `json:"total"`
}

// ParsePagination reads query params `limit` and `page` and enforces max limit from env `MAX_LIMIT`.
// Defaults: limit=20, maxLimit=500 (if env absent)
func ParsePagination(c *gin.Context) Pagination {
	// defaults
	defaultLimit := 20
	maxLimit := 500

	if ml := os.Getenv("MAX_LIMIT"); ml != "" {
		if v, err := strconv.Atoi(ml); err == nil && v > 0 {
			maxLimit = v
		}
	}

	// read limit
	limit := defaultLimit
	if ls := c.Query("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		} else if ls != "" {
			// invalid param, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid limit parameter"})
			c.Abort()
			return Pagination{}
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	// read page
	page := 1
	if ps := c.Query("page"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 {
			page = v
		} else if ps != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid page parameter"})
			c.Abort()
			return Pagination{}
		}
	}

	offset := (page - 1) * limit

	return Pagination{Limit: limit, Offset: offset, Page: page, MaxLimit: maxLimit}
}

// Meta records total on p and returns the "pagination" object returned next to list data.
func (p *Pagination) Meta(total int64) gin.H {
	p.Total = total
	return gin.H{
		"total":     p.Total,
		"limit":     p.Limit,
		"page":      p.Page,
		"max_limit": p.MaxLimit,
	}
}
