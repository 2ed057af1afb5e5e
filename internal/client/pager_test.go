package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/agrance/memorylane/internal/journal"
)

func seedMemories(t *testing.T, store journal.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.CreateMemory(context.Background(), journal.Memory{
			Name:        fmt.Sprintf("m%02d", i),
			Description: "d",
			Timestamp:   fmt.Sprintf("20%02d-01-01", i+10),
		})
		if err != nil {
			t.Fatalf("seed CreateMemory() error = %v", err)
		}
	}
}

func TestPagerAccumulatesPages(t *testing.T) {
	ts, store := newTestAPI(t, "pager")
	seedMemories(t, store, 7)

	c := New(Config{BaseURL: ts.URL})
	p := NewPager(c, 3, journal.SortOlder)
	ctx := context.Background()

	if p.State() != PagerIdle {
		t.Fatalf("initial state = %q, want %q", p.State(), PagerIdle)
	}

	if err := p.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := len(p.Memories()); got != 3 {
		t.Fatalf("after reload len = %d, want 3", got)
	}
	if !p.HasMore() || p.Total() != 7 || p.State() != PagerReady {
		t.Fatalf("after reload: hasMore=%t total=%d state=%q", p.HasMore(), p.Total(), p.State())
	}

	if err := p.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if got := len(p.Memories()); got != 6 {
		t.Fatalf("after second page len = %d, want 6", got)
	}

	if err := p.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	memories := p.Memories()
	if len(memories) != 7 || p.HasMore() {
		t.Fatalf("after final page len = %d hasMore = %t, want 7 and false", len(memories), p.HasMore())
	}

	// Server order, ascending, preserved across the merge.
	for i := 1; i < len(memories); i++ {
		if memories[i].Timestamp < memories[i-1].Timestamp {
			t.Fatalf("merge broke ordering at %d: %q < %q", i, memories[i].Timestamp, memories[i-1].Timestamp)
		}
	}

	// Exhausted pager: LoadMore is a no-op.
	if err := p.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore(no more) error = %v", err)
	}
	if got := len(p.Memories()); got != 7 {
		t.Fatalf("no-op LoadMore changed len to %d", got)
	}
}

func TestPagerSortChangeRefetches(t *testing.T) {
	ts, store := newTestAPI(t, "pager_sort")
	seedMemories(t, store, 7)

	c := New(Config{BaseURL: ts.URL})
	p := NewPager(c, 3, journal.SortOlder)
	ctx := context.Background()

	if err := p.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if err := p.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	oldest := p.Memories()[0]

	// Same sort: no refetch, pages stay.
	if err := p.SetSort(ctx, journal.SortOlder); err != nil {
		t.Fatalf("SetSort(same) error = %v", err)
	}
	if got := len(p.Memories()); got != 6 {
		t.Fatalf("SetSort(same) discarded pages: len = %d", got)
	}

	if err := p.SetSort(ctx, journal.SortNewer); err != nil {
		t.Fatalf("SetSort(newer) error = %v", err)
	}
	memories := p.Memories()
	if len(memories) != 3 {
		t.Fatalf("after sort change len = %d, want a single fresh page of 3", len(memories))
	}
	if memories[0].Timestamp <= oldest.Timestamp {
		t.Fatalf("descending fetch starts at %q, want newest first", memories[0].Timestamp)
	}
	if p.Sort() != journal.SortNewer {
		t.Fatalf("sort = %q, want %q", p.Sort(), journal.SortNewer)
	}
}

func TestPagerInvalidateAfterMutation(t *testing.T) {
	ts, store := newTestAPI(t, "pager_invalidate")
	seedMemories(t, store, 4)

	c := New(Config{BaseURL: ts.URL})
	p := NewPager(c, 10, journal.SortOlder)
	ctx := context.Background()

	if err := p.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if p.Total() != 4 {
		t.Fatalf("total = %d, want 4", p.Total())
	}

	if _, err := c.CreateMemory(ctx, journal.Memory{
		Name:        "fresh",
		Description: "d",
		Timestamp:   "2030-01-01",
	}); err != nil {
		t.Fatalf("CreateMemory() error = %v", err)
	}

	if err := p.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	memories := p.Memories()
	if len(memories) != 5 || p.Total() != 5 {
		t.Fatalf("after invalidate len = %d total = %d, want 5", len(memories), p.Total())
	}
	if memories[len(memories)-1].Name != "fresh" {
		t.Fatalf("newest memory = %q, want %q at the end of ascending order", memories[len(memories)-1].Name, "fresh")
	}
}

func TestPagerErrorState(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	p := NewPager(c, 5, journal.SortOlder)

	if err := p.Reload(context.Background()); err == nil {
		t.Fatalf("Reload() against dead server error = nil, want error")
	}
	if p.State() != PagerError {
		t.Fatalf("state = %q, want %q", p.State(), PagerError)
	}
	if p.Err() == nil {
		t.Fatalf("Err() = nil, want the fetch failure")
	}
}
