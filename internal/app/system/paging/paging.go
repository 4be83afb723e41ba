// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// WindowSize is the fixed offset-window size used when a full result set
// must be read in pieces. The backing store caps a single query at a default
// row limit, so full-set reads (catalog scans, cache re-fetches) walk the
// collection in windows of this size.
const WindowSize = 1000

// PageSize is the default number of rows returned by paged list endpoints.
const PageSize = 50

// MaxPageSize bounds client-requested page sizes.
const MaxPageSize = 200

// ParsePage extracts the 1-based "page" query parameter. Returns 1 if not
// present or invalid.
func ParsePage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePageSize extracts the "page_size" query parameter, clamped to
// [1, MaxPageSize]. Returns PageSize if not present or invalid.
func ParsePageSize(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page_size"))
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Offset converts a 1-based page and page size to a skip count.
func Offset(page, pageSize int) int64 {
	return int64(page-1) * int64(pageSize)
}
