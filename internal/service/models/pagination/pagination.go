package pagination

import (
	"errors"
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	MinPage      = 1
)

var (
	ErrInvalidPage  = errors.New("page must be >= 1")
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
)

// PageRequest represents one paginated listing request parsed from raw query
// parameters. Filters holds every parameter that is not a reserved paging key;
// which of those are honored is decided by the entity's filter spec.
type PageRequest struct {
	Page      int
	Limit     int
	Skip      int
	HasSkip   bool
	SortBy    string
	SortOrder string
	Search    string
	Filters   map[string]string
}

// reserved paging keys, everything else lands in Filters.
var reservedParams = map[string]struct{}{
	"page":      {},
	"limit":     {},
	"skip":      {},
	"sortBy":    {},
	"sortOrder": {},
	"search":    {},
}

// ExtractPageRequest parses raw query parameters into a PageRequest.
// Missing or unparsable page/limit fall back to defaults, limit is clamped to
// MaxLimit, skip is honored only when explicitly present.
func ExtractPageRequest(raw url.Values) PageRequest {
	req := PageRequest{
		Page:      MinPage,
		Limit:     DefaultLimit,
		SortBy:    raw.Get("sortBy"),
		SortOrder: raw.Get("sortOrder"),
		Search:    raw.Get("search"),
		Filters:   map[string]string{},
	}

	if page, err := strconv.Atoi(raw.Get("page")); err == nil && page != 0 {
		req.Page = page
	}

	if limit, err := strconv.Atoi(raw.Get("limit")); err == nil && limit != 0 {
		req.Limit = limit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if skipStr := raw.Get("skip"); skipStr != "" {
		if skip, err := strconv.Atoi(skipStr); err == nil {
			req.Skip = skip
			req.HasSkip = true
		}
	}

	for key, values := range raw {
		if _, ok := reservedParams[key]; ok {
			continue
		}
		if len(values) > 0 {
			req.Filters[key] = values[0]
		}
	}

	return req
}

// Validate rejects malformed requests instead of silently clamping so that
// behavior stays deterministic for callers.
func (r PageRequest) Validate() error {
	if r.Page < MinPage {
		return ErrInvalidPage
	}
	if r.Limit < 1 || r.Limit > MaxLimit {
		return ErrInvalidLimit
	}

	return nil
}

// Offset returns the row offset for the request: the explicit skip when one
// was supplied, (page-1)*limit otherwise.
func (r PageRequest) Offset() int {
	if r.HasSkip {
		return r.Skip
	}

	return (r.Page - 1) * r.Limit
}

// Desc reports the sort direction; any sortOrder other than "asc" sorts
// descending.
func (r PageRequest) Desc() bool {
	return r.SortOrder != "asc"
}

// Meta is the pagination metadata of one page.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
	NextPage     *int  `json:"nextPage"`
	PrevPage     *int  `json:"prevPage"`
}

// PageResult is one page of entities plus pagination metadata.
type PageResult[T any] struct {
	Items      []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// NewPageResult computes pagination metadata for a fetched page.
// CurrentPage echoes the request even when it lies beyond the last page.
func NewPageResult[T any](items []T, totalItems int64, page, limit int) *PageResult[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))

	meta := Meta{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}

	if meta.HasNextPage {
		next := page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevPage {
		prev := page - 1
		meta.PrevPage = &prev
	}

	return &PageResult[T]{
		Items:      items,
		Pagination: meta,
	}
}
