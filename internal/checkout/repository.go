package checkout

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("checkout session not found")
)

// Repository persists sessions. Implementations store an encoded copy, so a
// Session returned by Get is never shared with another caller.
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// PurgeStale removes sessions last updated before cutoff, except the
	// ids in keep, and returns the ids it removed.
	PurgeStale(ctx context.Context, cutoff time.Time, keep []string) ([]string, error)
}

type storedSession struct {
	data      []byte
	updatedAt time.Time
}

// InMemoryRepository is used for tests and when no database is configured.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]storedSession
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{sessions: make(map[string]storedSession)}
}

func (r *InMemoryRepository) Save(_ context.Context, s *Session) error {
	b, err := encodeSession(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = storedSession{data: b, updatedAt: s.UpdatedAt}
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (*Session, error) {
	r.mu.RLock()
	stored, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeSession(stored.data)
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *InMemoryRepository) PurgeStale(_ context.Context, cutoff time.Time, keep []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for id, stored := range r.sessions {
		if stored.updatedAt.Before(cutoff) && !slices.Contains(keep, id) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	slices.Sort(removed)
	return removed, nil
}
