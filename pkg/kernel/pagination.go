package kernel

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationOptions is a 1-indexed page request
type PaginationOptions struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the options into a valid request. A non-positive page
// becomes 1, a non-positive size becomes defaultSize and an oversized one maxSize.
func (p PaginationOptions) Normalize(defaultSize, maxSize int) PaginationOptions {
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Offset is the index of the first row of the page
func (p PaginationOptions) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Range returns the inclusive row range [from, to] covered by the page
func (p PaginationOptions) Range() (from, to int) {
	from = p.Offset()
	return from, from + p.PageSize - 1
}

// Page describes where a result page sits in the full result
type Page struct {
	Number int `json:"number"`
	Size   int `json:"size"`
	Total  int `json:"total"`
	Pages  int `json:"pages"`
}

// Paginated is one page of items plus the total matching count
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"page"`
	Empty bool `json:"empty"`
}

// NewPaginated assembles a page; total is the count independent of paging
func NewPaginated[T any](items []T, opts PaginationOptions, total int) *Paginated[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if opts.PageSize > 0 {
		pages = (total + opts.PageSize - 1) / opts.PageSize
	}
	return &Paginated[T]{
		Items: items,
		Page: Page{
			Number: opts.Page,
			Size:   opts.PageSize,
			Total:  total,
			Pages:  pages,
		},
		Empty: len(items) == 0,
	}
}

// MapPaginated converts the items of a page, keeping its metadata
func MapPaginated[T, R any](p *Paginated[T], fn func(T) R) *Paginated[R] {
	items := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return &Paginated[R]{
		Items: items,
		Page:  p.Page,
		Empty: p.Empty,
	}
}
