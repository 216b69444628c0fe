package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vuttr/internal/query"
)

// GormRepository is the GORM implementation of Repository for any
// entity type with a string "id" primary key.
type GormRepository[T any] struct {
	db *gorm.DB
}

// NewGormRepository creates a new GormRepository for the entity type T.
func NewGormRepository[T any](db *gorm.DB) *GormRepository[T] {
	return &GormRepository[T]{db: db}
}

// FindAll retrieves records matching the parsed query options. An empty
// result is not an error.
func (r *GormRepository[T]) FindAll(ctx context.Context, opts query.Options) ([]T, error) {
	entities := make([]T, 0)
	tx := opts.Apply(r.db.WithContext(ctx).Model(new(T)))
	if err := tx.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to find records: %w", err)
	}
	return entities, nil
}

// FindByID retrieves a single record, optionally preloading the related
// field named by expand. Returns gorm.ErrRecordNotFound when absent.
func (r *GormRepository[T]) FindByID(ctx context.Context, id, expand string) (*T, error) {
	entity := new(T)
	tx := r.db.WithContext(ctx)
	if expand != "" {
		tx = tx.Preload(expand)
	}
	if err := tx.First(entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// Create persists a new record. ID assignment happens in the model's
// BeforeCreate hook.
func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// Save persists all fields of an already-fetched record.
func (r *GormRepository[T]) Save(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

// DeleteByID removes a record by its ID. Returns gorm.ErrRecordNotFound
// when no row was deleted.
func (r *GormRepository[T]) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
