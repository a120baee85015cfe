package pagination

import "gorm.io/gorm"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is the page/limit pair accepted by every list endpoint.
type Params struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=10"`
}

// Meta is the pagination envelope returned alongside list data.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func (p Params) Normalize() Params {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	return out
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Apply adds LIMIT/OFFSET clauses for the normalized params.
func (p Params) Apply(stmt *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return stmt.Offset(n.Offset()).Limit(n.Limit)
}

// NewMeta builds the response meta for a total row count.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	return Meta{
		Page:  n.Page,
		Limit: n.Limit,
		Total: total,
		Pages: pages,
	}
}
