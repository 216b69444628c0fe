package repositories

import (
	"context"

	"vuttr/internal/query"
)

// Repository defines the capability interface for generic resource data
// access. Concrete entity types get their CRUD surface by instantiating
// the type parameter, not by runtime type dispatch.
type Repository[T any] interface {
	// FindAll executes a find parametrized by the query options.
	FindAll(ctx context.Context, opts query.Options) ([]T, error)
	// FindByID fetches one record, optionally preloading one related
	// field named by expand.
	FindByID(ctx context.Context, id, expand string) (*T, error)
	Create(ctx context.Context, entity *T) error
	// Save persists all fields of an already-fetched record.
	Save(ctx context.Context, entity *T) error
	DeleteByID(ctx context.Context, id string) error
}
