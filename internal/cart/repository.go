package cart

import (
	"context"
	"sync"
)

// Repository stores one cart per session id. Get returns an empty cart for an
// unknown session.
type Repository interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// InMemoryRepository is used for tests and single-process deployments.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewInMemoryRepository(seed map[string]*Cart) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[string]*Cart, len(seed))}
	for id, c := range seed {
		r.carts[id] = c.Clone()
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, sessionID string) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.carts[sessionID]; ok {
		return c.Clone(), nil
	}
	return New(), nil
}

func (r *InMemoryRepository) Save(_ context.Context, sessionID string, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Len() == 0 && !c.FormOpen {
		delete(r.carts, sessionID)
		return nil
	}
	r.carts[sessionID] = c.Clone()
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}
