package store

import (
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/merge"
)

// MemoryStore keeps definitions in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{defs: make(map[string]*Definition)}
}

func (s *MemoryStore) Save(_ context.Context, def *Definition) error {
	if err := prepare(def); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.ID] = copyDefinition(def)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Definition, error) {
	if err := errors.ValidateMapID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[id]
	if !ok {
		return nil, notFound(id)
	}
	return copyDefinition(def), nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Definition, 0, len(s.defs))
	for _, def := range s.defs {
		out = append(out, copyDefinition(def))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.defs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func copyDefinition(def *Definition) *Definition {
	cp := *def
	cp.Config, _ = merge.Clone(def.Config).(merge.Map)
	return &cp
}

var _ Store = (*MemoryStore)(nil)
