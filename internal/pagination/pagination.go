// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import (
	"strconv"
	"strings"
)

// PageSize is the number of items per page for every listing view.
const PageSize = 10

// Params carries the resolved page number and the LIMIT/OFFSET to apply to
// the backing query.
type Params struct {
	Number int
	Limit  int
	Offset int
}

// Paginate resolves a raw `page` query value against the total number of
// items. Non-numeric or non-positive input falls back to page 1; numbers past
// the end clamp to the last page. It never fails: page 1 of an empty set is
// a valid, empty page.
func Paginate(total int64, rawPage string) Params {
	number, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || number < 1 {
		number = 1
	}
	if last := TotalPages(total); number > last {
		number = last
	}
	return Params{
		Number: number,
		Limit:  PageSize,
		Offset: (number - 1) * PageSize,
	}
}

// TotalPages returns the number of pages needed for total items, at least 1.
func TotalPages(total int64) int {
	pages := int((total + PageSize - 1) / PageSize)
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Page is one fixed-size slice of an ordered result set plus the metadata a
// view needs to render pager controls.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Number     int   `json:"number"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPage wraps one page worth of items with its metadata.
func NewPage[T any](items []T, total int64, number int) Page[T] {
	pages := TotalPages(total)
	return Page[T]{
		Items:      items,
		Number:     number,
		TotalPages: pages,
		TotalItems: total,
		HasNext:    number < pages,
		HasPrev:    number > 1,
	}
}
