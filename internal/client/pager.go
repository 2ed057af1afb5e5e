package client

import (
	"context"
	"sync"

	"github.com/agrance/memorylane/internal/journal"
)

// PagerState names the phases of incremental pagination.
type PagerState string

const (
	PagerIdle         PagerState = "idle"
	PagerLoadingFirst PagerState = "loading-first-page"
	PagerReady        PagerState = "has-pages"
	PagerLoadingNext  PagerState = "loading-next-page"
	PagerError        PagerState = "error"
)

// Pager accumulates pages of a single sort order. Pages are concatenated in
// fetch order and server order is preserved within a page; ordering is a
// server concern and the pager never re-sorts. Any sort change or mutation
// discards the accumulated pages and restarts from page 1, which avoids
// offset-shift bugs when the row count changes mid-pagination.
type Pager struct {
	client *Client
	limit  int

	mu      sync.Mutex
	sort    string
	pages   []journal.MemoryPage
	state   PagerState
	hasMore bool
	total   int
	lastErr error
	gen     int
}

func NewPager(c *Client, limit int, sort string) *Pager {
	return &Pager{
		client: c,
		limit:  limit,
		sort:   sort,
		state:  PagerIdle,
	}
}

// Reload discards all pages and fetches page 1 under the current sort.
func (p *Pager) Reload(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	sort := p.sort
	p.pages = nil
	p.hasMore = false
	p.total = 0
	p.lastErr = nil
	p.state = PagerLoadingFirst
	p.mu.Unlock()

	res, err := p.client.ListMemories(ctx, 1, p.limit, sort)
	return p.apply(gen, res, err)
}

// LoadMore fetches the next page. It is a no-op unless the pager has pages,
// more exist, and no fetch is already in flight.
func (p *Pager) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.state != PagerReady || !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	p.state = PagerLoadingNext
	gen := p.gen
	page := len(p.pages) + 1
	sort := p.sort
	p.mu.Unlock()

	res, err := p.client.ListMemories(ctx, page, p.limit, sort)
	return p.apply(gen, res, err)
}

// SetSort switches the ordering. A change is a full refetch, never a re-sort
// of cached pages.
func (p *Pager) SetSort(ctx context.Context, sort string) error {
	p.mu.Lock()
	if p.sort == sort {
		p.mu.Unlock()
		return nil
	}
	p.sort = sort
	p.mu.Unlock()
	return p.Reload(ctx)
}

// Invalidate restarts pagination after a create, update or delete.
func (p *Pager) Invalidate(ctx context.Context) error {
	return p.Reload(ctx)
}

func (p *Pager) apply(gen int, res journal.MemoryPage, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		// A reload or sort change superseded this fetch; drop the result.
		return nil
	}
	if err != nil {
		p.state = PagerError
		p.lastErr = err
		return err
	}
	p.pages = append(p.pages, res)
	p.total = res.Total
	p.hasMore = res.HasMore
	p.state = PagerReady
	return nil
}

// Memories returns the concatenation of all fetched pages, page 1 first.
func (p *Pager) Memories() []journal.Memory {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []journal.Memory
	for _, page := range p.pages {
		out = append(out, page.Memories...)
	}
	return out
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

func (p *Pager) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *Pager) State() PagerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pager) Sort() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sort
}

// Err returns the failure that put the pager in the error state, if any.
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
