package walks

import "strings"

const (
	// DefaultPageSize is used when the caller omits or zeroes the size.
	DefaultPageSize = 10
	// MaxPageSize caps the page size regardless of what the caller asks for.
	MaxPageSize = 100
)

// SortDirection is either "asc" or "desc" after normalization.
type SortDirection = string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListOptions carries pagination and ordering intent from the transport
// layer down to the repositories. Zero values are valid and normalized.
type ListOptions struct {
	Page int
	Size int
	Sort string
	Dir  SortDirection
}

// Normalize clamps the options against an allowlist of sortable columns.
// Unknown sort keys fall back to defaultSort, page numbers are floored at
// zero, and the size is clamped into (0, MaxPageSize].
func (o ListOptions) Normalize(allowedSort map[string]string, defaultSort string) ListOptions {
	if o.Page < 0 {
		o.Page = 0
	}

	if o.Size <= 0 {
		o.Size = DefaultPageSize
	}

	if o.Size > MaxPageSize {
		o.Size = MaxPageSize
	}

	if col, ok := allowedSort[o.Sort]; ok {
		o.Sort = col
	} else {
		o.Sort = defaultSort
	}

	o.Dir = NormalizeDirection(o.Dir)

	return o
}

// Offset returns the row offset implied by the page number and size.
func (o ListOptions) Offset() int {
	return o.Page * o.Size
}

// OrderExpr returns the "column direction" clause for bun's Order.
func (o ListOptions) OrderExpr() string {
	return o.Sort + " " + strings.ToUpper(o.Dir)
}

// NormalizeDirection maps any casing of "desc" to SortDesc and everything
// else to SortAsc.
func NormalizeDirection(dir string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(dir), SortDesc) {
		return SortDesc
	}
	return SortAsc
}

// Page is a single page of results together with paging metadata.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"total_pages"`
}

// NewPage assembles paging metadata from a result slice and total count.
func NewPage[T any](items []T, total int, opts ListOptions) Page[T] {
	if items == nil {
		items = []T{}
	}

	pages := 0
	if opts.Size > 0 {
		pages = (total + opts.Size - 1) / opts.Size
	}

	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       opts.Page,
		Size:       opts.Size,
		TotalPages: pages,
	}
}
