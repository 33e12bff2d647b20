package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/yigit/paperarchive/internal/pkg/apperrors"
)

const (
	DefaultPage     = 1 // pages are 1-based
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a validated 1-based page request
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip for this page. It saturates at
// math.MaxUint64 instead of wrapping around for huge pages.
func (p PageRequest) Offset() uint64 {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	pages, limit := uint64(p.Page-1), uint64(p.Limit)
	if pages > math.MaxUint64/limit {
		return math.MaxUint64
	}
	return pages * limit
}

// ParsePageRequest parses raw page/limit query values. Empty values fall back
// to DefaultPage and defaultLimit. Non-numeric or non-positive values are a
// validation error. Limits above maxLimit are clamped to maxLimit.
func ParsePageRequest(rawPage, rawLimit string, defaultLimit, maxLimit int) (PageRequest, error) {
	if maxLimit <= 0 {
		maxLimit = MaxPageSize
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = DefaultPageSize
		if defaultLimit > maxLimit {
			defaultLimit = maxLimit
		}
	}

	req := PageRequest{Page: DefaultPage, Limit: defaultLimit}

	if s := strings.TrimSpace(rawPage); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return PageRequest{}, apperrors.NewValidationError("page", "page must be a positive integer")
		}
		req.Page = page
	}

	if s := strings.TrimSpace(rawLimit); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			return PageRequest{}, apperrors.NewValidationError("limit", "limit must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		req.Limit = limit
	}

	return req, nil
}

// TotalPages returns ceil(totalItems/limit), with an empty result set
// reported as a single (empty) page.
func TotalPages(totalItems int64, limit int) int {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if totalItems <= 0 {
		return 1
	}
	return int((totalItems + int64(limit) - 1) / int64(limit))
}
