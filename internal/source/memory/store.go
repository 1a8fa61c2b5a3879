// Package memory provides an in-process source store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"symexport/internal/source"
	"symexport/pkg/contracts/domain"
)

type library struct {
	symbols []string
	data    map[string]*domain.Dataset
}

// Store is an in-memory implementation of source.Reader. Symbols are listed
// in the order they were first put.
type Store struct {
	mu        sync.RWMutex
	libraries map[string]*library
	order     []string
	opened    int
	closed    int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{libraries: make(map[string]*library)}
}

// CreateLibrary registers an empty library. Creating an existing library is a no-op.
func (s *Store) CreateLibrary(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createLocked(name)
}

func (s *Store) createLocked(name string) *library {
	lib, ok := s.libraries[name]
	if !ok {
		lib = &library{data: make(map[string]*domain.Dataset)}
		s.libraries[name] = lib
		s.order = append(s.order, name)
	}
	return lib
}

// Put stores a copy of ds under symbol, creating the library if needed
func (s *Store) Put(libraryName, symbol string, ds *domain.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.createLocked(libraryName)
	if _, exists := lib.data[symbol]; !exists {
		lib.symbols = append(lib.symbols, symbol)
	}
	lib.data[symbol] = cloneDataset(ds)
}

// ListLibraries returns library names in creation order
func (s *Store) ListLibraries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...), nil
}

// ListSymbols returns the symbols of a library in insertion order
func (s *Store) ListSymbols(ctx context.Context, libraryName string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	lib, ok := s.libraries[libraryName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrLibraryNotFound, libraryName)
	}
	return append([]string(nil), lib.symbols...), nil
}

// ReadSymbol returns a copy of the stored dataset
func (s *Store) ReadSymbol(ctx context.Context, libraryName, symbol string) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	lib, ok := s.libraries[libraryName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrLibraryNotFound, libraryName)
	}
	ds, ok := lib.data[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", source.ErrSymbolNotFound, libraryName, symbol)
	}
	return cloneDataset(ds), nil
}

// Open returns a session over the store and counts it
func (s *Store) Open(ctx context.Context) (source.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()
	return &session{Store: s}, nil
}

// Sessions reports how many sessions were opened and closed
func (s *Store) Sessions() (opened, closed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opened, s.closed
}

type session struct {
	*Store
	once sync.Once
}

func (s *session) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed++
		s.mu.Unlock()
	})
	return nil
}

func cloneDataset(ds *domain.Dataset) *domain.Dataset {
	if ds == nil {
		return &domain.Dataset{}
	}
	out := &domain.Dataset{
		IndexName: ds.IndexName,
		Index:     append([]any(nil), ds.Index...),
		Columns:   make([]domain.Column, len(ds.Columns)),
	}
	for i, c := range ds.Columns {
		out.Columns[i] = domain.Column{Name: c.Name, Values: append([]any(nil), c.Values...)}
	}
	return out
}
