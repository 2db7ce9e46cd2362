// Package utils holds small helpers shared across modules.
package utils

// Pagination normalizes page/page_size query parameters and carries the
// totals back to the client.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int64 `json:"pages"`
}

func NewPagination(page, pageSize int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 1000 {
		pageSize = 1000
	}

	pages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Pages:    pages,
	}
}

// Offset is the database offset for the current page.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit is the database limit for the current page.
func (p *Pagination) Limit() int {
	return p.PageSize
}
