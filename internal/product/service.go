package product

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrUnavailable wraps every catalog load failure.
var ErrUnavailable = errors.New("catalog unavailable")

// Loader produces the full catalog.
type Loader func() ([]Product, error)

// FileLoader loads the catalog CSV at path.
func FileLoader(path string) Loader {
	return func() ([]Product, error) {
		return LoadFile(path)
	}
}

// Service memoizes the first successful load. A failed load is reported to the
// caller and attempted again on the next call; a partial catalog is never served.
type Service struct {
	mu     sync.Mutex
	load   Loader
	repo   Repository
	linker SearchLinker
}

func NewService(load Loader, linker SearchLinker) *Service {
	return &Service{load: load, linker: linker}
}

// NewServiceWithRepository serves an already loaded repository.
func NewServiceWithRepository(repo Repository, linker SearchLinker) *Service {
	return &Service{repo: repo, linker: linker}
}

func (s *Service) repository() (Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo != nil {
		return s.repo, nil
	}

	products, err := s.load()
	if err != nil {
		log.Printf("[catalog] load failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	log.Printf("[catalog] loaded %d products", len(products))
	s.repo = NewInMemoryRepository(products)
	return s.repo, nil
}

func (s *Service) List() ([]Product, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	return repo.List(), nil
}

func (s *Service) Search(query, typ string) ([]Product, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	return repo.Search(query, typ), nil
}

func (s *Service) Types() ([]string, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	return repo.Types(), nil
}

func (s *Service) GetByID(id int) (Product, error) {
	repo, err := s.repository()
	if err != nil {
		return Product{}, err
	}
	return repo.GetByID(id)
}

func (s *Service) GetByLabel(label string) (Product, error) {
	repo, err := s.repository()
	if err != nil {
		return Product{}, err
	}
	return repo.GetByLabel(label)
}

func (s *Service) SearchURL(p Product) string {
	return s.linker.URL(p)
}

func (s *Service) Detail(id int) (Detail, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Product: p, Label: p.Label(), SearchURL: s.linker.URL(p)}, nil
}
