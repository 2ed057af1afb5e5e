package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the optional shared-database backend, selected when
// DATABASE_URL is configured.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			image TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories (timestamp, id);`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) ListMemories(ctx context.Context, p ListParams) (MemoryPage, error) {
	p = p.normalized()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM memories`).Scan(&total); err != nil {
		return MemoryPage{}, fmt.Errorf("count memories: %w", err)
	}

	dir := "DESC"
	if p.Ascending() {
		dir = "ASC"
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, timestamp, image FROM memories
		 ORDER BY timestamp `+dir+`, id ASC LIMIT $1 OFFSET $2`,
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

func (s *PostgresStore) GetMemory(ctx context.Context, id int64) (Memory, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, description, timestamp, image FROM memories WHERE id = $1`, id)
	m, err := scanMemory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Memory{}, ErrNotFound
	}
	if err != nil {
		return Memory{}, fmt.Errorf("get memory: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) CreateMemory(ctx context.Context, m Memory) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO memories (name, description, timestamp, image)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		m.Name, m.Description, m.Timestamp, m.imageOrPlaceholder(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert memory: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateMemory(ctx context.Context, id int64, m Memory) error {
	if err := m.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE memories SET name = $1, description = $2, timestamp = $3, image = $4 WHERE id = $5`,
		m.Name, m.Description, m.Timestamp, m.imageOrPlaceholder(), id,
	)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteMemory(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM memories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

func (s *PostgresStore) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description FROM users LIMIT 1`).Scan(&u.ID, &u.Name, &u.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get current user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, name, description string) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $1, description = $2 WHERE id = 1`, name, description); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *PostgresStore) EnsureSeeded(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO users (name, description) VALUES ($1, $2)`,
		defaultUserName, defaultUserBio); err != nil {
		return fmt.Errorf("seed default user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
