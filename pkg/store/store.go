// Package store persists saved map definitions.
//
// A [Definition] is a named map configuration (the same document accepted by
// datamaps.Build) under a UUID. The HTTP API saves definitions and renders
// them later by id:
//
//	st := store.NewMemoryStore()
//	def := store.NewDefinition("election", cfg)
//	if err := st.Save(ctx, def); err != nil { ... }
//	def, err = st.Get(ctx, def.ID)
//
// Two backends implement [Store]: [MemoryStore] for tests and single-process
// servers, and [MongoStore] for deployments that share definitions.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/merge"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Definition is a saved map configuration.
type Definition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Config    merge.Map `json:"config"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDefinition creates a definition with a fresh id.
func NewDefinition(name string, config merge.Map) *Definition {
	return &Definition{
		ID:        uuid.NewString(),
		Name:      name,
		Config:    config,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for definition storage backends.
type Store interface {
	// Save inserts or replaces a definition. A definition without an id
	// is assigned one.
	Save(ctx context.Context, def *Definition) error

	// Get returns the definition with the given id, or an
	// ErrCodeMapNotFound error.
	Get(ctx context.Context, id string) (*Definition, error)

	// List returns up to limit definitions, newest first.
	List(ctx context.Context, limit int) ([]*Definition, error)

	// Delete removes a definition. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func prepare(def *Definition) error {
	if def == nil {
		return errors.New(errors.ErrCodeInvalidInput, "definition is nil")
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	if err := errors.ValidateMapID(def.ID); err != nil {
		return err
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}
	if def.Config == nil {
		def.Config = merge.Map{}
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeMapNotFound, "no saved map %q", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
