package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore is the default embedded store. The driver is the pure-Go
// ncruces build, so no cgo toolchain is needed.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS memories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	image TEXT
);
CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories (timestamp, id);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL
);
`

// NewSQLiteStore opens (or creates) the database at path. Use ":memory:" for
// an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL keeps reads concurrent with the single writer and gives
	// crash-consistency for the journal file.
	if _, err := db.Exec(`PRAGMA journal_mode=wal`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListMemories(ctx context.Context, p ListParams) (MemoryPage, error) {
	p = p.normalized()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&total); err != nil {
		return MemoryPage{}, fmt.Errorf("count memories: %w", err)
	}

	dir := "DESC"
	if p.Ascending() {
		dir = "ASC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, timestamp, image FROM memories
		 ORDER BY timestamp `+dir+`, id ASC LIMIT ? OFFSET ?`,
		p.Limit, p.Offset(),
	)
	if err != nil {
		return MemoryPage{}, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	memories := make([]Memory, 0, p.Limit)
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return MemoryPage{}, fmt.Errorf("scan memory row: %w", err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return MemoryPage{}, fmt.Errorf("iterate memory rows: %w", err)
	}

	return MemoryPage{
		Memories: memories,
		Total:    total,
		HasMore:  p.Offset()+len(memories) < total,
	}, nil
}

func (s *SQLiteStore) GetMemory(ctx context.Context, id int64) (Memory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, timestamp, image FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Memory{}, ErrNotFound
	}
	if err != nil {
		return Memory{}, fmt.Errorf("get memory: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) CreateMemory(ctx context.Context, m Memory) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (name, description, timestamp, image) VALUES (?, ?, ?, ?)`,
		m.Name, m.Description, m.Timestamp, m.imageOrPlaceholder(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert memory: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read new memory id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdateMemory(ctx context.Context, id int64, m Memory) error {
	if err := m.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET name = ?, description = ?, timestamp = ?, image = ? WHERE id = ?`,
		m.Name, m.Description, m.Timestamp, m.imageOrPlaceholder(), id,
	)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update memory rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteMemory(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM users LIMIT 1`).Scan(&u.ID, &u.Name, &u.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get current user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, name, description string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, description = ? WHERE id = 1`, name, description); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) EnsureSeeded(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, description) VALUES (?, ?)`,
		defaultUserName, defaultUserBio); err != nil {
		return fmt.Errorf("seed default user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (Memory, error) {
	var m Memory
	var image sql.NullString
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Timestamp, &image); err != nil {
		return Memory{}, err
	}
	m.Image = image.String
	return m, nil
}
