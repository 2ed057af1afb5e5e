package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agrance/memorylane/internal/config"
	"github.com/agrance/memorylane/internal/journal"
	"github.com/agrance/memorylane/internal/observability"
)

func newTestServer(t *testing.T, name string) (*httptest.Server, journal.Store) {
	t.Helper()

	cfg := config.Config{
		DefaultSort:      journal.SortOlder,
		DefaultPageLimit: 5,
		RateLimitMax:     1000,
		RateLimitWindow:  time.Minute,
		AllowAnyOrigin:   true,
	}
	store := journal.NewInMemoryStore()
	if err := store.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded() error = %v", err)
	}
	// Prometheus registration is global, so each test needs its own namespace.
	metrics := observability.NewMetrics(fmt.Sprintf("test_httpapi_%s_%d", name, time.Now().UnixNano()))
	srv := New(cfg, store, metrics, zap.NewNop())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return res
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, url, err)
	}
	return res
}

func TestMemoryLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, "lifecycle")

	res := postJSON(t, ts.URL+"/memories", map[string]string{
		"name":        "Graduation",
		"description": "The big day",
		"timestamp":   "2022-07-01",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", res.StatusCode, http.StatusCreated)
	}
	var created struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID <= 0 || created.Message != "Memory created successfully" {
		t.Fatalf("create response = %+v", created)
	}

	getRes, err := http.Get(fmt.Sprintf("%s/memories/%d", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("GET memory error = %v", err)
	}
	defer getRes.Body.Close()
	if getRes.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want %d", getRes.StatusCode, http.StatusOK)
	}
	var fetched struct {
		Memory journal.Memory `json:"memory"`
	}
	if err := json.NewDecoder(getRes.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.Memory.Name != "Graduation" {
		t.Fatalf("fetched name = %q, want %q", fetched.Memory.Name, "Graduation")
	}
	if fetched.Memory.Image != journal.PlaceholderImage {
		t.Fatalf("fetched image = %q, want placeholder %q", fetched.Memory.Image, journal.PlaceholderImage)
	}

	updRes := doJSON(t, http.MethodPut, fmt.Sprintf("%s/memories/%d", ts.URL, created.ID), map[string]string{
		"name":        "Graduation day",
		"description": "The big day, updated",
		"timestamp":   "2022-07-02",
	})
	defer updRes.Body.Close()
	if updRes.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want %d", updRes.StatusCode, http.StatusOK)
	}

	delRes := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/memories/%d", ts.URL, created.ID), nil)
	defer delRes.Body.Close()
	if delRes.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want %d", delRes.StatusCode, http.StatusOK)
	}

	missingRes, err := http.Get(fmt.Sprintf("%s/memories/%d", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("GET deleted memory error = %v", err)
	}
	defer missingRes.Body.Close()
	if missingRes.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted status = %d, want %d", missingRes.StatusCode, http.StatusNotFound)
	}
}

func TestCreateMemoryValidation(t *testing.T) {
	ts, store := newTestServer(t, "validation")

	cases := []map[string]string{
		{"description": "d", "timestamp": "2020-01-01"},
		{"name": "n", "timestamp": "2020-01-01"},
		{"name": "n", "description": "d"},
		{"name": "  ", "description": "d", "timestamp": "2020-01-01"},
	}
	for i, body := range cases {
		res := postJSON(t, ts.URL+"/memories", body)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("case %d status = %d, want %d", i, res.StatusCode, http.StatusBadRequest)
		}
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		res.Body.Close()
		if e.Error == "" {
			t.Fatalf("case %d missing error message", i)
		}
	}

	page, err := store.ListMemories(context.Background(), journal.ListParams{})
	if err != nil {
		t.Fatalf("ListMemories() error = %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("total = %d after rejected creates, want 0", page.Total)
	}
}

func TestUpdateMissingMemoryReturns404(t *testing.T) {
	ts, _ := newTestServer(t, "update_missing")

	res := doJSON(t, http.MethodPut, ts.URL+"/memories/9999", map[string]string{
		"name":        "ghost",
		"description": "ghost",
		"timestamp":   "2020-01-01",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestDeleteMemoryIdempotent(t *testing.T) {
	ts, _ := newTestServer(t, "delete_twice")

	for i := 0; i < 2; i++ {
		res := doJSON(t, http.MethodDelete, ts.URL+"/memories/42", nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("delete #%d status = %d, want %d", i+1, res.StatusCode, http.StatusOK)
		}
		res.Body.Close()
	}
}

func TestListMemoriesPagination(t *testing.T) {
	ts, store := newTestServer(t, "list")
	ctx := context.Background()

	seed := []journal.Memory{
		{Name: "A", Description: "d", Timestamp: "2020-01-01"},
		{Name: "B", Description: "d", Timestamp: "2021-06-15"},
		{Name: "C", Description: "d", Timestamp: "2019-03-03"},
	}
	for _, m := range seed {
		if _, err := store.CreateMemory(ctx, m); err != nil {
			t.Fatalf("seed CreateMemory() error = %v", err)
		}
	}

	res, err := http.Get(ts.URL + "/memories?page=1&limit=2&sort=older")
	if err != nil {
		t.Fatalf("GET /memories error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var page journal.MemoryPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 3 || !page.HasMore || len(page.Memories) != 2 {
		t.Fatalf("page = %+v, want 2 of 3 with hasMore", page)
	}
	if page.Memories[0].Name != "C" || page.Memories[1].Name != "A" {
		t.Fatalf("page order = [%s, %s], want [C, A]", page.Memories[0].Name, page.Memories[1].Name)
	}

	// Garbage paging parameters coerce to the defaults instead of failing.
	res2, err := http.Get(ts.URL + "/memories?page=zero&limit=-4")
	if err != nil {
		t.Fatalf("GET /memories with bad params error = %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("bad params status = %d, want %d", res2.StatusCode, http.StatusOK)
	}
	var coerced journal.MemoryPage
	if err := json.NewDecoder(res2.Body).Decode(&coerced); err != nil {
		t.Fatalf("decode coerced page: %v", err)
	}
	if len(coerced.Memories) != 3 || coerced.Total != 3 {
		t.Fatalf("coerced page = %+v, want all 3 memories", coerced)
	}
}

func TestUserEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, "users")

	res, err := http.Get(ts.URL + "/users/current")
	if err != nil {
		t.Fatalf("GET /users/current error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var user journal.User
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Name == "" || user.Description == "" {
		t.Fatalf("seeded user = %+v, want default identity", user)
	}

	// Partial update: only the name changes, the biography stays.
	updRes := doJSON(t, http.MethodPut, ts.URL+"/users/current", map[string]string{"name": "New Name"})
	defer updRes.Body.Close()
	if updRes.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want %d", updRes.StatusCode, http.StatusOK)
	}

	res2, err := http.Get(ts.URL + "/users/current")
	if err != nil {
		t.Fatalf("GET /users/current after update error = %v", err)
	}
	defer res2.Body.Close()
	var updated journal.User
	if err := json.NewDecoder(res2.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated user: %v", err)
	}
	if updated.Name != "New Name" {
		t.Fatalf("name = %q, want %q", updated.Name, "New Name")
	}
	if updated.Description != user.Description {
		t.Fatalf("description changed on partial update: %q != %q", updated.Description, user.Description)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, "health")

	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
		res.Body.Close()
	}
}
