package ports

import (
	"context"

	"github.com/dairyledger/milk-collection/internal/core/domain"
)

// UpdateUserInput is a partial account update: nil fields are left unchanged.
type UpdateUserInput struct {
	Username    *string
	Email       *string
	Password    *string
	PhoneNumber *string
}

// UserService defines account management use cases.
type UserService interface {
	ListAll(ctx context.Context) ([]*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	Delete(ctx context.Context, id string) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
}
