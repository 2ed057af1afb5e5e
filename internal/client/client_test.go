package client

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agrance/memorylane/internal/config"
	"github.com/agrance/memorylane/internal/httpapi"
	"github.com/agrance/memorylane/internal/journal"
	"github.com/agrance/memorylane/internal/observability"
	"github.com/agrance/memorylane/internal/upload"
)

func newTestAPI(t *testing.T, name string) (*httptest.Server, journal.Store) {
	t.Helper()

	cfg := config.Config{
		DefaultSort:      journal.SortOlder,
		DefaultPageLimit: 5,
		RateLimitMax:     10000,
		RateLimitWindow:  time.Minute,
	}
	store := journal.NewInMemoryStore()
	if err := store.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded() error = %v", err)
	}
	metrics := observability.NewMetrics(fmt.Sprintf("test_client_%s_%d", name, time.Now().UnixNano()))
	srv := httpapi.New(cfg, store, metrics, zap.NewNop())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func TestClientMemoryRoundTrip(t *testing.T) {
	ts, _ := newTestAPI(t, "roundtrip")
	c := New(Config{BaseURL: ts.URL})
	ctx := context.Background()

	id, err := c.CreateMemory(ctx, journal.Memory{
		Name:        "Road trip",
		Description: "Coast to coast",
		Timestamp:   "2023-08-10",
	})
	if err != nil {
		t.Fatalf("CreateMemory() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateMemory() id = %d, want positive", id)
	}

	got, err := c.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory(%d) error = %v", id, err)
	}
	if got.Name != "Road trip" || got.Image != journal.PlaceholderImage {
		t.Fatalf("GetMemory(%d) = %+v", id, got)
	}

	got.Description = "Coast to coast and back"
	if err := c.UpdateMemory(ctx, id, got); err != nil {
		t.Fatalf("UpdateMemory(%d) error = %v", id, err)
	}

	if err := c.DeleteMemory(ctx, id, ""); err != nil {
		t.Fatalf("DeleteMemory(%d) error = %v", id, err)
	}

	_, err = c.GetMemory(ctx, id)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("GetMemory(deleted) error = %v, want 404 APIError", err)
	}
	if apiErr.Message != "Memory not found" {
		t.Fatalf("error message = %q, want server message", apiErr.Message)
	}
}

func TestClientSurfacesValidationError(t *testing.T) {
	ts, _ := newTestAPI(t, "validation")
	c := New(Config{BaseURL: ts.URL})

	_, err := c.CreateMemory(context.Background(), journal.Memory{Name: "only name"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("CreateMemory(invalid) error = %v, want APIError", err)
	}
	if apiErr.Status != 400 {
		t.Fatalf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message == "" {
		t.Fatalf("missing server-provided message")
	}
}

func TestDeleteMemoryImageDeleteIsBestEffort(t *testing.T) {
	ts, store := newTestAPI(t, "besteffort")
	uploader := upload.NewMockUploader()
	uploader.DeleteErr = errors.New("upload service is down")
	c := New(Config{BaseURL: ts.URL, Uploader: uploader})
	ctx := context.Background()

	id, err := c.CreateMemory(ctx, journal.Memory{
		Name:        "With photo",
		Description: "d",
		Timestamp:   "2022-01-01",
		Image:       "https://upload.example/f/k123",
	})
	if err != nil {
		t.Fatalf("CreateMemory() error = %v", err)
	}

	if err := c.DeleteMemory(ctx, id, "k123"); err != nil {
		t.Fatalf("DeleteMemory() error = %v, want nil despite image delete failure", err)
	}

	if _, err := store.GetMemory(ctx, id); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("record still present after delete: err = %v", err)
	}
}

func TestClientUserProfile(t *testing.T) {
	ts, _ := newTestAPI(t, "profile")
	c := New(Config{BaseURL: ts.URL})
	ctx := context.Background()

	user, err := c.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.Name == "" {
		t.Fatalf("CurrentUser() = %+v, want seeded identity", user)
	}

	newName := "Explorer"
	if err := c.UpdateUser(ctx, &newName, nil); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	updated, err := c.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser() after update error = %v", err)
	}
	if updated.Name != "Explorer" {
		t.Fatalf("name = %q, want %q", updated.Name, "Explorer")
	}
	if updated.Description != user.Description {
		t.Fatalf("description changed on partial update")
	}
}
