package shared

import (
	"math"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortDir is the direction of a list ordering.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. A non-positive perPage means
// a single page holding every row.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = total
		if perPage == 0 {
			perPage = 1
		}
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Paginate slices rows according to p.
func Paginate[T any](rows []T, p Pagination) []T {
	start := (p.Page - 1) * p.PerPage
	if start >= len(rows) {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English, collate.IgnoreCase)
)

// CompareText orders display strings the way a user expects (case-insensitive, locale aware).
func CompareText(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// ContainsFold reports whether term occurs in s ignoring case. An empty term matches.
func ContainsFold(s, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// Directed flips cmp for descending orderings.
func Directed(cmp int, dir SortDir) int {
	if dir == SortDesc {
		return -cmp
	}
	return cmp
}
