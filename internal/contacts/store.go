package contacts

import (
	"context"
	"sort"
	"sync"
)

// Store persists contacts.
type Store interface {
	FindAll(ctx context.Context) ([]Contact, error)
	FindByID(ctx context.Context, id int64) (Contact, bool, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	// Save inserts c when c.ID is 0 (assigning an id) and replaces it
	// otherwise.
	Save(ctx context.Context, c Contact) (Contact, error)
	DeleteByID(ctx context.Context, id int64) error
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[int64]Contact
	nextID int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(seed ...Contact) *MemoryStore {
	s := &MemoryStore{rows: make(map[int64]Contact)}
	for _, c := range seed {
		_, _ = s.Save(context.Background(), c)
	}
	return s
}

func (s *MemoryStore) FindAll(context.Context) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Contact, 0, len(s.rows))
	for _, c := range s.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (Contact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.rows[id]
	return c, ok, nil
}

func (s *MemoryStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rows[id]
	return ok, nil
}

func (s *MemoryStore) Save(_ context.Context, c Contact) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	} else if c.ID > s.nextID {
		s.nextID = c.ID
	}
	s.rows[c.ID] = c
	return c, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	delete(s.rows, id)
	s.mu.Unlock()
	return nil
}
