package services

import (
	"context"

	"vuttr/internal/query"
	"vuttr/internal/repositories"
)

// ResourceService handles business logic shared by all CRUD resources.
// It is generic over the entity type; concrete resources instantiate it
// with their model and repository.
type ResourceService[T any] struct {
	repo repositories.Repository[T]
}

// NewResourceService creates a new ResourceService.
func NewResourceService[T any](repo repositories.Repository[T]) *ResourceService[T] {
	return &ResourceService[T]{repo: repo}
}

// List retrieves records matching the parsed query options.
func (s *ResourceService[T]) List(ctx context.Context, opts query.Options) ([]T, error) {
	return s.repo.FindAll(ctx, opts)
}

// Get retrieves a single record, optionally expanding one relation.
func (s *ResourceService[T]) Get(ctx context.Context, id, expand string) (*T, error) {
	return s.repo.FindByID(ctx, id, expand)
}

// Create persists a new record.
func (s *ResourceService[T]) Create(ctx context.Context, entity *T) error {
	return s.repo.Create(ctx, entity)
}

// Save persists an already-fetched record after a partial update.
func (s *ResourceService[T]) Save(ctx context.Context, entity *T) error {
	return s.repo.Save(ctx, entity)
}

// Delete removes a record by its ID.
func (s *ResourceService[T]) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}
