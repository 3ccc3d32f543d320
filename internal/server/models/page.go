package models

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page into valid bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Paginated is a page of results plus the counters clients use to navigate.
type Paginated[T any] struct {
	Docs        []T   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
}

// NewPaginated builds a Paginated from one page of docs and the total count.
func NewPaginated[T any](docs []T, total int64, p Page) Paginated[T] {
	p = p.Normalize()
	if docs == nil {
		docs = []T{}
	}
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Paginated[T]{
		Docs:        docs,
		TotalDocs:   total,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalPages:  pages,
		HasPrevPage: p.Page > 1,
		HasNextPage: p.Page < pages,
	}
}
