// internal/search/pagination/pagination.go
package pagination

import "math"

// Pagination describes one page of a filtered, sorted result set.
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// Result is the envelope returned to callers.
type Result[T any] struct {
	Results    []T        `json:"results"`
	Pagination Pagination `json:"pagination"`
}

// TotalPages is ceil(total/limit), 0 when there is nothing to show.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// Assemble slices items to the 1-based page. page and limit are expected to
// be normalised by the caller; non-positive values are treated as 1.
func Assemble[T any](items []T, page, limit int) Result[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	total := len(items)
	pages := TotalPages(total, limit)
	if page > pages {
		// Past the end; (page-1)*limit may not fit in an int.
		return build(items, total, page, limit, total)
	}
	return build(items, (page-1)*limit, page, limit, total)
}

// AssembleOffset slices from an arbitrary offset. The reported page is the
// page the offset falls on.
func AssembleOffset[T any](items []T, offset, limit int) Result[T] {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 1
	}
	page := offset / limit
	if page < math.MaxInt {
		page++
	}
	return build(items, offset, page, limit, len(items))
}

func build[T any](items []T, start, page, limit, total int) Result[T] {
	pages := TotalPages(total, limit)
	out := Result[T]{
		Results: []T{},
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: pages,
			HasMore:    start < total && limit < total-start,
		},
	}
	if start >= total {
		return out
	}
	end := total
	if limit < total-start {
		end = start + limit
	}
	out.Results = append(out.Results, items[start:end]...)
	return out
}
