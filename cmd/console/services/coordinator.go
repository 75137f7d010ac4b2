package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"blog-console/cmd/console/dto"
	"blog-console/cmd/internal/logger"
)

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrStaleResponse  = errors.New("stale response discarded")
	ErrNotPaginated   = errors.New("pagination is disabled while a filter is active")
)

// Mode is the listing mode of a Coordinator: either Paginated or Filtered.
type Mode interface {
	isMode()
}

// Paginated is the default mode: one page of the server's ordering.
type Paginated struct {
	Page     int
	PageSize int
	Total    int
}

func (Paginated) isMode() {}

// TotalPages is ceil(Total / PageSize).
func (m Paginated) TotalPages() int {
	return totalPages(m.Total, m.PageSize)
}

// Filtered holds the whole matching result set for the active criteria.
// Truncated is set when the API returned more than the configured cap.
type Filtered struct {
	Criteria  dto.FilterCriteria
	Total     int
	Truncated bool
}

func (Filtered) isMode() {}

func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

type CoordinatorOptions struct {
	PageSize        int
	FilterResultCap int
}

// Coordinator owns the visible post collection, the pagination/filter mode and
// the category vocabulary of one console session.
//
// List and filter requests take a ticket before they are issued; a response is
// applied only while its ticket is the newest one, so a slow response can never
// overwrite the result of a request issued after it.
type Coordinator struct {
	client    PostLister
	pageSize  int
	filterCap int

	mu               sync.Mutex
	mode             Mode
	posts            []dto.PostSummary
	loaded           bool
	categories       []dto.Category
	categoriesLoaded bool
	issued           uint64
}

func NewCoordinator(client PostLister, opts CoordinatorOptions) *Coordinator {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Coordinator{
		client:    client,
		pageSize:  pageSize,
		filterCap: opts.FilterResultCap,
		mode:      Paginated{Page: 1, PageSize: pageSize},
	}
}

// LoadPage fetches page n and replaces the visible collection and total.
// On failure the previous state is kept. While a filter is active every page
// request is rejected with ErrNotPaginated; only ClearFilter or an empty
// ApplyFilter leave Filtered mode.
func (c *Coordinator) LoadPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if err := c.checkPageLocked(n); err != nil {
		c.mu.Unlock()
		return err
	}
	ticket := c.nextTicketLocked()
	c.mu.Unlock()

	return c.fetchPage(ctx, n, ticket)
}

// loadFirstPage returns to Paginated mode at page 1 regardless of the current mode.
func (c *Coordinator) loadFirstPage(ctx context.Context) error {
	c.mu.Lock()
	ticket := c.nextTicketLocked()
	c.mu.Unlock()

	return c.fetchPage(ctx, 1, ticket)
}

func (c *Coordinator) fetchPage(ctx context.Context, n int, ticket uint64) error {
	page, err := c.client.ListPosts(ctx, n, c.pageSize)
	if err != nil {
		logger.ErrorWithFields("coordinator load page failed", logger.Fields{
			"page":  n,
			"error": err.Error(),
		})
		return fmt.Errorf("load page %d: %w", n, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket != c.issued {
		return ErrStaleResponse
	}
	c.mode = Paginated{Page: n, PageSize: c.pageSize, Total: page.Count}
	c.posts = cloneSummaries(page.Results)
	c.loaded = true
	return nil
}

// checkPageLocked clamps navigation to [1, totalPages]. Before any total is
// known only page 1 is accepted.
func (c *Coordinator) checkPageLocked(n int) error {
	if n < 1 {
		return ErrPageOutOfRange
	}
	m, ok := c.mode.(Paginated)
	if !ok {
		return ErrNotPaginated
	}
	if n == 1 {
		return nil
	}
	if !c.loaded || n > m.TotalPages() {
		return ErrPageOutOfRange
	}
	return nil
}

func (c *Coordinator) nextTicketLocked() uint64 {
	c.issued++
	return c.issued
}

// NextPage loads the page after the current one.
func (c *Coordinator) NextPage(ctx context.Context) error {
	m, ok := c.Mode().(Paginated)
	if !ok {
		return ErrNotPaginated
	}
	return c.LoadPage(ctx, m.Page+1)
}

// PrevPage loads the page before the current one.
func (c *Coordinator) PrevPage(ctx context.Context) error {
	m, ok := c.Mode().(Paginated)
	if !ok {
		return ErrNotPaginated
	}
	return c.LoadPage(ctx, m.Page-1)
}

// ApplyFilter switches to Filtered mode for non-empty criteria and fetches the
// whole matching set in one request. Empty criteria load page 1 and leave
// Filtered mode.
func (c *Coordinator) ApplyFilter(ctx context.Context, criteria dto.FilterCriteria) error {
	criteria = criteria.Normalized()
	if criteria.IsEmpty() {
		return c.loadFirstPage(ctx)
	}

	c.mu.Lock()
	ticket := c.nextTicketLocked()
	c.mu.Unlock()

	results, err := c.client.FilterPosts(ctx, criteria)
	if err != nil {
		logger.ErrorWithFields("coordinator filter failed", logger.Fields{
			"search":   criteria.Search,
			"category": criteria.CategoryID,
			"error":    err.Error(),
		})
		return fmt.Errorf("filter posts: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket != c.issued {
		return ErrStaleResponse
	}

	total := len(results)
	truncated := false
	if c.filterCap > 0 && total > c.filterCap {
		logger.WarnWithFields("filter result truncated", logger.Fields{
			"total": total,
			"cap":   c.filterCap,
		})
		results = results[:c.filterCap]
		truncated = true
	}
	c.mode = Filtered{Criteria: criteria, Total: total, Truncated: truncated}
	c.posts = cloneSummaries(results)
	c.loaded = true
	return nil
}

// ClearFilter returns to Paginated mode at page 1.
func (c *Coordinator) ClearFilter(ctx context.Context) error {
	return c.loadFirstPage(ctx)
}

// Remove drops id from the visible collection only. The total is not adjusted
// and nothing is refetched. It reports whether the id was present.
func (c *Coordinator) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.posts[:0:0]
	removed := false
	for _, p := range c.posts {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if removed {
		c.posts = kept
	}
	return removed
}

// LoadCategories fetches the category vocabulary once per coordinator.
func (c *Coordinator) LoadCategories(ctx context.Context) error {
	c.mu.Lock()
	if c.categoriesLoaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	cats, err := c.client.ListCategories(ctx)
	if err != nil {
		logger.ErrorWithFields("coordinator load categories failed", logger.Fields{"error": err.Error()})
		return fmt.Errorf("load categories: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append([]dto.Category(nil), cats...)
	c.categoriesLoaded = true
	return nil
}

func (c *Coordinator) Categories() []dto.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dto.Category(nil), c.categories...)
}

func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Loaded reports whether any list or filter response has been applied yet.
func (c *Coordinator) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Coordinator) PageSize() int {
	return c.pageSize
}

// CoordinatorView is an immutable snapshot of the coordinator state.
type CoordinatorView struct {
	Mode       Mode
	Posts      []dto.PostSummary
	Categories []dto.Category
}

func (v CoordinatorView) TotalPages() int {
	if m, ok := v.Mode.(Paginated); ok {
		return m.TotalPages()
	}
	return 0
}

// PaginationVisible is true only in Paginated mode with more than one page.
func (v CoordinatorView) PaginationVisible() bool {
	return v.TotalPages() > 1
}

func (v CoordinatorView) CanPrev() bool {
	m, ok := v.Mode.(Paginated)
	return ok && m.Page > 1
}

func (v CoordinatorView) CanNext() bool {
	m, ok := v.Mode.(Paginated)
	return ok && m.Page < m.TotalPages()
}

// Total is the server total in Paginated mode or the match count in Filtered mode.
func (v CoordinatorView) Total() int {
	switch m := v.Mode.(type) {
	case Paginated:
		return m.Total
	case Filtered:
		return m.Total
	}
	return 0
}

func (c *Coordinator) View() CoordinatorView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CoordinatorView{
		Mode:       c.mode,
		Posts:      cloneSummaries(c.posts),
		Categories: append([]dto.Category(nil), c.categories...),
	}
}

func cloneSummaries(in []dto.PostSummary) []dto.PostSummary {
	out := make([]dto.PostSummary, 0, len(in))
	for _, p := range in {
		out = append(out, p.Clone())
	}
	return out
}
