package upload

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MockUploader keeps assets in memory. Used in tests and when no upload
// service is configured.
type MockUploader struct {
	mu     sync.Mutex
	assets map[string]Asset

	// DeleteErr, when set, makes every Delete fail. Lets tests exercise the
	// best-effort path.
	DeleteErr error
}

func NewMockUploader() *MockUploader {
	return &MockUploader{assets: make(map[string]Asset)}
}

func (m *MockUploader) Upload(_ context.Context, filename string, r io.Reader) (Asset, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return Asset{}, err
	}
	if filename == "" {
		return Asset{}, errors.New("filename is required")
	}

	key := uuid.NewString()
	asset := Asset{
		URL: "https://upload.example/f/" + key,
		Key: key,
	}

	m.mu.Lock()
	m.assets[key] = asset
	m.mu.Unlock()
	return asset, nil
}

func (m *MockUploader) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	delete(m.assets, key)
	m.mu.Unlock()
	return nil
}

// Stored reports whether an asset with the key is still held.
func (m *MockUploader) Stored(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[key]
	return ok
}
