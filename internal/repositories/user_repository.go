package repositories

import (
	"context"
	"time"

	"vuttr/internal/models"
)

// UserRepository defines the interface for user data access. Lookups
// only ever return active accounts; deactivation is the soft delete.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByResetToken finds the user holding the hashed reset token
	// whose expiry is still after now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
}
