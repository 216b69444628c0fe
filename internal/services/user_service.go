package services

import (
	"context"

	"vuttr/internal/apperrors"
	"vuttr/internal/models"
	"vuttr/internal/repositories"
)

// UserService handles business logic for profile self-management.
type UserService struct {
	users repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// UpdateMe updates the profile fields a user may change about
// themselves: name and email. Anything password-related goes through
// AuthService.UpdatePassword.
func (s *UserService) UpdateMe(ctx context.Context, userID, name, email string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateMe soft-deletes the account. The record stays in the store
// but no lookup returns it anymore.
func (s *UserService) DeactivateMe(ctx context.Context, userID string) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return apperrors.NotFound("No user found with that ID")
	}
	return nil
}
