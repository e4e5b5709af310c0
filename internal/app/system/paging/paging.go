// internal/app/system/paging/paging.go
package paging

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows returned when the caller does not
// supply a page size.
const DefaultPageSize = 10

// ErrInvalidArgument is returned for page or pageSize values below 1.
// It is reported before any store access.
var ErrInvalidArgument = errors.New("page and pageSize must be >= 1")

// Params is a validated page request. Page is 1-based.
type Params struct {
	Page     int
	PageSize int
}

// New validates page/pageSize and applies defaults: page 0 means page 1,
// pageSize 0 means DefaultPageSize. Negative values are rejected with
// ErrInvalidArgument.
func New(page, pageSize int) (Params, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 || pageSize < 1 {
		return Params{}, ErrInvalidArgument
	}
	return Params{Page: page, PageSize: pageSize}, nil
}

// Parse extracts "page" and "pageSize" query parameters from a request.
// Missing parameters fall back to defaults; non-numeric or out-of-range
// values fail with ErrInvalidArgument.
func Parse(r *http.Request) (Params, error) {
	page, err := parseIntParam(r, "page")
	if err != nil {
		return Params{}, err
	}
	size, err := parseIntParam(r, "pageSize")
	if err != nil {
		return Params{}, err
	}
	return New(page, size)
}

func parseIntParam(r *http.Request, name string) (int, error) {
	s := query.Get(r, name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidArgument
	}
	return n, nil
}

// Skip returns the number of rows to skip for this page.
func (p Params) Skip() int64 {
	return int64(p.PageSize) * int64(p.Page-1)
}

// Limit returns the page size as int64 for Find().SetLimit().
func (p Params) Limit() int64 {
	return int64(p.PageSize)
}

// PageCount returns ceil(total / pageSize) so callers can render
// pagination without a second round trip.
func (p Params) PageCount(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
