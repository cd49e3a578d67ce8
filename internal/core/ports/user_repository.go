package ports

import (
	"context"

	"github.com/dairyledger/milk-collection/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
// Lookups return domain.ErrUserNotFound when nothing matches; writes that
// collide with the unique username/email indexes return domain.ErrUsernameTaken
// or domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIDs returns the accounts that exist among ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update persists username, email, password hash, phone number and updated_at.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
}
