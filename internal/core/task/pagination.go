package task

// Pagination describes the page currently loaded. When Enabled is false the
// backend returned an unpaged list and the page controls are hidden.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PageSize    int
	Enabled     bool
}

// Unpaged describes a bare list of n items.
func Unpaged(n int) Pagination {
	return Pagination{TotalPages: 1, TotalItems: n, PageSize: n}
}

// HasPrev reports whether the previous-page control is enabled.
func (p Pagination) HasPrev() bool {
	return p.Enabled && p.TotalPages > 0 && p.CurrentPage > 0
}

// HasNext reports whether the next-page control is enabled.
func (p Pagination) HasNext() bool {
	return p.Enabled && p.TotalPages > 0 && p.CurrentPage < p.TotalPages-1
}

// Contains reports whether n is a selectable page.
func (p Pagination) Contains(n int) bool {
	return p.Enabled && n >= 0 && n < p.TotalPages
}

// Clamp forces CurrentPage into [0, TotalPages-1].
func (p Pagination) Clamp() Pagination {
	if p.TotalPages <= 0 {
		p.CurrentPage = 0
		return p
	}
	p.CurrentPage = min(max(p.CurrentPage, 0), p.TotalPages-1)
	return p
}
