package journal

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps everything in process memory. Used for tests and for
// running the server without any database file.
type InMemoryStore struct {
	mu       sync.RWMutex
	memories []Memory
	nextID   int64
	user     *User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) ListMemories(_ context.Context, p ListParams) (MemoryPage, error) {
	p = p.normalized()

	s.mu.RLock()
	ordered := make([]Memory, len(s.memories))
	copy(ordered, s.memories)
	s.mu.RUnlock()

	asc := p.Ascending()
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp != ordered[j].Timestamp {
			if asc {
				return ordered[i].Timestamp < ordered[j].Timestamp
			}
			return ordered[i].Timestamp > ordered[j].Timestamp
		}
		return ordered[i].ID < ordered[j].ID
	})

	total := len(ordered)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	page := make([]Memory, end-start)
	copy(page, ordered[start:end])

	return MemoryPage{
		Memories: page,
		Total:    total,
		HasMore:  p.Offset()+len(page) < total,
	}, nil
}

func (s *InMemoryStore) GetMemory(_ context.Context, id int64) (Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memories {
		if m.ID == id {
			return m, nil
		}
	}
	return Memory{}, ErrNotFound
}

func (s *InMemoryStore) CreateMemory(_ context.Context, m Memory) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID
	s.nextID++
	m.Image = m.imageOrPlaceholder()
	s.memories = append(s.memories, m)
	return m.ID, nil
}

func (s *InMemoryStore) UpdateMemory(_ context.Context, id int64, m Memory) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memories {
		if s.memories[i].ID == id {
			m.ID = id
			m.Image = m.imageOrPlaceholder()
			s.memories[i] = m
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) DeleteMemory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memories {
		if s.memories[i].ID == id {
			s.memories = append(s.memories[:i], s.memories[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *InMemoryStore) CurrentUser(_ context.Context) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, ErrNotFound
	}
	return *s.user, nil
}

func (s *InMemoryStore) UpdateUser(_ context.Context, name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	s.user.Name = name
	s.user.Description = description
	return nil
}

func (s *InMemoryStore) EnsureSeeded(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		return nil
	}
	s.user = &User{ID: 1, Name: defaultUserName, Description: defaultUserBio}
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
