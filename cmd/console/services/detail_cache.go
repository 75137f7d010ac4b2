package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"blog-console/cmd/console/dto"
	"blog-console/cmd/internal/logger"
)

// EvictionPolicy is consulted after every store with the stored id and the
// number of cached entries. Returning true evicts that id again.
type EvictionPolicy func(id int64, size int) bool

// KeepAll never evicts.
func KeepAll(int64, int) bool { return false }

type DetailCacheOptions struct {
	FetchTimeout time.Duration
	Policy       EvictionPolicy
}

// DetailCache memoizes full post records by id for one console session.
// Overlapping Gets for the same id share one fetch.
type DetailCache struct {
	fetcher PostFetcher
	timeout time.Duration
	policy  EvictionPolicy
	group   singleflight.Group

	mu      sync.RWMutex
	entries map[int64]dto.PostDetail
	loading map[int64]int
}

func NewDetailCache(fetcher PostFetcher, opts DetailCacheOptions) *DetailCache {
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	policy := opts.Policy
	if policy == nil {
		policy = KeepAll
	}
	return &DetailCache{
		fetcher: fetcher,
		timeout: timeout,
		policy:  policy,
		entries: make(map[int64]dto.PostDetail),
		loading: make(map[int64]int),
	}
}

// Get returns the cached record or fetches and stores it. A failed fetch stores
// nothing and is not retried.
func (c *DetailCache) Get(ctx context.Context, id int64) (dto.PostDetail, error) {
	if d, ok := c.Peek(id); ok {
		return d, nil
	}

	ch := c.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		if d, ok := c.Peek(id); ok {
			return d, nil
		}
		c.setLoading(id, 1)
		defer c.setLoading(id, -1)

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		d, err := c.fetcher.GetPost(fetchCtx, id)
		if err != nil {
			logger.ErrorWithFields("detail fetch failed", logger.Fields{
				"post_id": id,
				"error":   err.Error(),
			})
			return nil, fmt.Errorf("get post %d: %w", id, err)
		}
		c.store(id, d)
		return d, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return dto.PostDetail{}, res.Err
		}
		return res.Val.(dto.PostDetail).Clone(), nil
	case <-ctx.Done():
		return dto.PostDetail{}, ctx.Err()
	}
}

func (c *DetailCache) store(id int64, d dto.PostDetail) {
	c.mu.Lock()
	c.entries[id] = d.Clone()
	size := len(c.entries)
	c.mu.Unlock()

	if c.policy(id, size) {
		c.Evict(id)
	}
}

func (c *DetailCache) setLoading(id int64, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading[id] += delta
	if c.loading[id] <= 0 {
		delete(c.loading, id)
	}
}

// Peek returns a cached record without fetching.
func (c *DetailCache) Peek(id int64) (dto.PostDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[id]
	if !ok {
		return dto.PostDetail{}, false
	}
	return d.Clone(), true
}

// Loading reports whether a fetch for id is in flight.
func (c *DetailCache) Loading(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading[id] > 0
}

func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evict drops id. Used after a delete or a successful update so the next
// read sees the server's version.
func (c *DetailCache) Evict(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
