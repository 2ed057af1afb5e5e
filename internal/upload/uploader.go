// Package upload talks to the hosted image-upload service. The service owns
// image bytes; the journal only stores the returned URL and key.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Asset identifies a stored image: URL for display, Key for later deletion.
type Asset struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Uploader stores and removes images. Delete is best-effort from the
// caller's point of view: a failure must never block the owning memory.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (Asset, error)
	Delete(ctx context.Context, key string) error
}

// HTTPUploader forwards to an upload-service HTTP endpoint.
type HTTPUploader struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPUploader(baseURL, apiKey string) *HTTPUploader {
	return &HTTPUploader{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, filename string, r io.Reader) (Asset, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/upload", pr)
	if err != nil {
		return Asset{}, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("X-API-Key", u.apiKey)
	}

	res, err := u.client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("send upload request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Asset{}, fmt.Errorf("upload service status %d: %s", res.StatusCode, string(body))
	}

	var asset Asset
	if err := json.NewDecoder(res.Body).Decode(&asset); err != nil {
		return Asset{}, fmt.Errorf("decode upload response: %w", err)
	}
	if asset.URL == "" || asset.Key == "" {
		return Asset{}, fmt.Errorf("upload response missing url or key")
	}
	return asset, nil
}

func (u *HTTPUploader) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		u.baseURL+"/delete?key="+url.QueryEscape(key), nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	if u.apiKey != "" {
		req.Header.Set("X-API-Key", u.apiKey)
	}

	res, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("send delete request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("upload service status %d: %s", res.StatusCode, string(body))
	}
	return nil
}
