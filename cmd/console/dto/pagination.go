package dto

// ListPage is everything the list template needs.
type ListPage struct {
	Cards             []Card
	Categories        []Category
	Criteria          FilterCriteria
	Filtered          bool
	Truncated         bool
	Total             int
	Page              int
	TotalPages        int
	PaginationVisible bool
	CanPrev           bool
	CanNext           bool
}

// PostPage is one page of summaries plus the server-side total.
type PostPage struct {
	Results []PostSummary `json:"results"`
	Count   int           `json:"count"`
}
