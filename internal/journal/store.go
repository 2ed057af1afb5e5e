package journal

import (
	"context"
	"errors"
)

// ErrNotFound signals that the referenced memory does not exist.
var ErrNotFound = errors.New("memory not found")

// ErrInvalid signals a memory with a blank required field.
var ErrInvalid = errors.New("name, description and timestamp must be non-empty")

// Default identity written by EnsureSeeded on first boot.
const (
	defaultUserName = "Agustin Grance"
	defaultUserBio  = "Agustín's journey is fueled by curiosity and a passion for building. " +
		"From exploring code at an early age to crafting web and mobile experiences, he thrives " +
		"on learning, problem-solving, and pushing creative boundaries. Embracing challenges and " +
		"new technologies, he continues to shape his ever-evolving path in the world of development. 🚀"
)

// Store persists memories and the singleton user profile.
type Store interface {
	// ListMemories returns one page ordered by timestamp (id breaks ties),
	// the total row count, and whether further pages exist.
	ListMemories(ctx context.Context, p ListParams) (MemoryPage, error)
	GetMemory(ctx context.Context, id int64) (Memory, error)
	// CreateMemory assigns and returns a new id. A blank image is replaced
	// by PlaceholderImage.
	CreateMemory(ctx context.Context, m Memory) (int64, error)
	// UpdateMemory replaces every mutable field. It returns ErrNotFound when
	// no row has the given id.
	UpdateMemory(ctx context.Context, id int64, m Memory) error
	// DeleteMemory is idempotent: deleting an absent id is not an error.
	DeleteMemory(ctx context.Context, id int64) error

	CurrentUser(ctx context.Context) (User, error)
	UpdateUser(ctx context.Context, name, description string) error
	// EnsureSeeded inserts the default identity iff no user row exists.
	EnsureSeeded(ctx context.Context) error

	Close() error
}
