package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vuttr/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Active = true
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves an active user by email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "email = ? AND active = ?", email, true).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves an active user by ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "id = ? AND active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByResetToken retrieves the active user holding the hashed reset
// token, provided the token has not expired yet.
func (r *GORMUserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "password_reset_token = ? AND password_reset_expires > ? AND active = ?",
			tokenHash, now, true).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Save persists all fields of an already-fetched user, including zero
// values such as cleared reset-token columns.
func (r *GORMUserRepository) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}

// Deactivate soft-deletes the account by clearing the active flag.
func (r *GORMUserRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
