package journal

import (
	"context"
	"strings"
)

// NewStore picks the backend: postgres when a DATABASE_URL is configured,
// in-memory when no sqlite path is given, the embedded SQLite file otherwise.
func NewStore(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	if strings.TrimSpace(sqlitePath) == "" {
		return NewInMemoryStore(), nil
	}
	return NewSQLiteStore(sqlitePath)
}
