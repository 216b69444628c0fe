package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vuttr/internal/apperrors"
	"vuttr/internal/models"
	"vuttr/internal/services"
)

func TestUserService_UpdateMe(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo)

	user := &models.User{ID: "u-1", Name: "Old", Email: "old@example.com"}
	mockRepo.On("GetByID", mock.Anything, "u-1").Return(user, nil).Once()
	mockRepo.On("Save", mock.Anything, user).Return(nil).Once()

	updated, err := userService.UpdateMe(context.Background(), "u-1", "New", "")

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	// An empty field means "leave unchanged".
	assert.Equal(t, "old@example.com", updated.Email)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeactivateMe(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo)

	mockRepo.On("Deactivate", mock.Anything, "u-1").Return(nil).Once()
	assert.NoError(t, userService.DeactivateMe(context.Background(), "u-1"))

	mockRepo.On("Deactivate", mock.Anything, "ghost").Return(gorm.ErrRecordNotFound).Once()
	err := userService.DeactivateMe(context.Background(), "ghost")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	mockRepo.AssertExpectations(t)
}
