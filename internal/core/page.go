package core

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Page is one page of a listing plus the figures clients need to paginate.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// NewPage wraps items with pagination figures. Pages is at least 1 even
// for an empty result, so clients can always render page 1 of 1.
func NewPage[T any](items []T, total, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	return Page[T]{Items: items, Total: total, Page: page, Size: size, Pages: pages}
}

// PageBounds normalizes the filter's page and size and returns the SQL
// limit and offset. Size defaults to DefaultPageSize and caps at
// MaxPageSize; page numbering starts at 1.
func (f Filter) PageBounds() (page, size, limit, offset int) {
	page = f.Page
	if page < 1 {
		page = 1
	}
	size = f.Size
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size, size, (page - 1) * size
}
