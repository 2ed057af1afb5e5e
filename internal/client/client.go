// Package client is the typed consumer of the memory journal REST API,
// including the pagination controller used by front-ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agrance/memorylane/internal/journal"
	"github.com/agrance/memorylane/internal/upload"
)

// APIError carries the server-provided message for a non-success response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Config wires a Client. Only BaseURL is required; Uploader enables the
// best-effort image delete on DeleteMemory.
type Config struct {
	BaseURL    string
	Uploader   upload.Uploader
	Logger     *zap.Logger
	HTTPClient *http.Client
}

type Client struct {
	baseURL  string
	http     *http.Client
	uploader upload.Uploader
	logger   *zap.Logger
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:     httpClient,
		uploader: cfg.Uploader,
		logger:   logger,
	}
}

// ListMemories fetches one page. Zero page/limit and empty sort fall back to
// the server defaults.
func (c *Client) ListMemories(ctx context.Context, page, limit int, sort string) (journal.MemoryPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if sort != "" {
		q.Set("sort", sort)
	}

	var out journal.MemoryPage
	if err := c.do(ctx, http.MethodGet, "/memories", q, nil, &out); err != nil {
		return journal.MemoryPage{}, err
	}
	return out, nil
}

func (c *Client) GetMemory(ctx context.Context, id int64) (journal.Memory, error) {
	var out struct {
		Memory journal.Memory `json:"memory"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/memories/%d", id), nil, nil, &out); err != nil {
		return journal.Memory{}, err
	}
	return out.Memory, nil
}

func (c *Client) CreateMemory(ctx context.Context, m journal.Memory) (int64, error) {
	var out struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/memories", nil, m, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) UpdateMemory(ctx context.Context, id int64, m journal.Memory) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/memories/%d", id), nil, m, nil)
}

// DeleteMemory removes the record. When imageKey is set and an uploader is
// configured, the remote image is deleted first, best-effort: a failure is
// logged and the record delete proceeds regardless.
func (c *Client) DeleteMemory(ctx context.Context, id int64, imageKey string) error {
	if imageKey != "" && c.uploader != nil {
		if err := c.uploader.Delete(ctx, imageKey); err != nil {
			c.logger.Warn("image delete failed, deleting record anyway",
				zap.Int64("memory_id", id),
				zap.String("image_key", imageKey),
				zap.Error(err),
			)
		}
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/memories/%d", id), nil, nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (journal.User, error) {
	var out journal.User
	if err := c.do(ctx, http.MethodGet, "/users/current", nil, nil, &out); err != nil {
		return journal.User{}, err
	}
	return out, nil
}

// UpdateUser sends a partial profile update; nil fields are left unchanged.
func (c *Client) UpdateUser(ctx context.Context, name, description *string) error {
	body := struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
	}{Name: name, Description: description}
	return c.do(ctx, http.MethodPut, "/users/current", nil, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode}
		var payload struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(io.LimitReader(res.Body, 4<<10)).Decode(&payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Code = payload.Code
		} else {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
