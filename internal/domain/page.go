package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page ?page=&limit= 分页，page 从 1 开始
type Page struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Paged 分页响应
type Paged[T any] struct {
	Rows       []T   `json:"rows"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func NewPaged[T any](rows []T, total int64, p Page) Paged[T] {
	p = p.Normalize()
	if rows == nil {
		rows = []T{}
	}
	return Paged[T]{
		Rows:       rows,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (total + int64(p.Limit) - 1) / int64(p.Limit),
	}
}
