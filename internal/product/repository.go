package product

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
)

// Repository is a read-only view over the loaded catalog.
type Repository interface {
	List() []Product
	GetByID(id int) (Product, error)
	GetByLabel(label string) (Product, error)
	// Search matches query case-insensitively against label, brand and model.
	// An empty typ matches every type.
	Search(query, typ string) []Product
	Types() []string
}

// InMemoryRepository holds catalog rows in file order.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	byID    map[int]int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		byID:    make(map[int]int, len(seed)),
	}
	for _, p := range seed {
		r.byID[p.ID] = len(r.storage)
		r.storage = append(r.storage, p)
	}
	return r
}

func (r *InMemoryRepository) List() []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, len(r.storage))
	copy(out, r.storage)
	return out
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.byID[id]; ok {
		return r.storage[i], nil
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) GetByLabel(label string) (Product, error) {
	id, err := ParseLabel(label)
	if err != nil {
		return Product{}, err
	}
	return r.GetByID(id)
}

func (r *InMemoryRepository) Search(query, typ string) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	typ = strings.TrimSpace(typ)
	out := make([]Product, 0)
	for _, p := range r.storage {
		if typ != "" && !strings.EqualFold(p.Type, typ) {
			continue
		}
		if q != "" && !matches(p, q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p Product, q string) bool {
	for _, field := range []string{p.Label(), p.Brand, p.Model} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Types returns the distinct product types, sorted.
func (r *InMemoryRepository) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := map[string]struct{}{}
	for _, p := range r.storage {
		if p.Type != "" {
			set[p.Type] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
