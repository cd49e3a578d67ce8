package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
)

// UserService implements ports.UserService.
type UserService struct {
	repo   ports.UserRepository
	milk   ports.MilkRepository
	logger zerolog.Logger
	cost   int
	now    func() time.Time
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(repo ports.UserRepository, milk ports.MilkRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		milk:   milk,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) ListAll(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Update applies the non-nil fields of input. A non-empty password is hashed
// before it is stored. Uniqueness of username and email is checked by the
// caller; the store rejects collisions that slip through.
func (s *UserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username must not be blank", domain.ErrValidation)
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be blank", domain.ErrValidation)
		}
		user.Email = email
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := hashPassword(*input.Password, s.cost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	user.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// ChangePassword verifies currentPassword before storing newPassword. The
// stored hash is untouched when verification fails.
func (s *UserService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !passwordMatches(user.PasswordHash, currentPassword) {
		s.logger.Warn().Str("username", username).Msg("password change rejected: current password mismatch")
		return domain.ErrInvalidCredentials
	}
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrValidation)
	}

	hash, err := hashPassword(newPassword, s.cost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()

	if _, err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// Delete removes an account. Accounts that still own milk records are kept
// and domain.ErrUserHasRecords is returned.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	owned, err := s.milk.CountByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: count records: %w", err)
	}
	if owned > 0 {
		return fmt.Errorf("%w (%d records)", domain.ErrUserHasRecords, owned)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.repo.ExistsByUsername(ctx, username)
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
