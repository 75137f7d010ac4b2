package dto

import "strings"

// FilterCriteria holds the optional search text and the optional single category.
// CategoryID 0 means no category is selected.
type FilterCriteria struct {
	Search     string `json:"search,omitempty"`
	CategoryID int64  `json:"category_id,omitempty"`
}

// Normalized trims the search text.
func (c FilterCriteria) Normalized() FilterCriteria {
	return FilterCriteria{Search: strings.TrimSpace(c.Search), CategoryID: c.CategoryID}
}

// IsEmpty reports whether no criterion is set.
func (c FilterCriteria) IsEmpty() bool {
	n := c.Normalized()
	return n.Search == "" && n.CategoryID <= 0
}
