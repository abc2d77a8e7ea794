package user

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("token not found")
)

// Store exposes user retrieval for handlers and the auth middleware seam.
type Store interface {
	Get(ctx context.Context, id string) (User, error)
	// List returns every known user, ordered by name.
	List(ctx context.Context) ([]User, error)
	// FindByToken resolves an access token issued by the auth service.
	FindByToken(ctx context.Context, token string) (User, error)
	// Upsert stores or replaces a user profile with its access token.
	Upsert(ctx context.Context, u User, token string) error
}

// MemoryStore implements Store with in-memory maps, suitable for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]User
	byToken map[string]string
}

// NewMemoryStore returns an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]User),
		byToken: make(map[string]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) FindByToken(_ context.Context, token string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok {
		return User{}, ErrTokenNotFound
	}
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryStore) Upsert(_ context.Context, u User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
	if token != "" {
		s.byToken[token] = u.ID
	}
	return nil
}
