package models

// Page is one window of an ordered listing.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// NewPage builds a page; more are available only when the page came back full.
func NewPage[T any](items []T, page, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasMore:  len(items) >= pageSize,
	}
}
