package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dairyledger/milk-collection/internal/api/middleware"
	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
)

var (
	adminActor = domain.Actor{ID: "u-admin", Username: "admin", Roles: []domain.Role{domain.RoleAdmin, domain.RoleUser}}
	aliceActor = domain.Actor{ID: "u-alice", Username: "alice", Roles: []domain.Role{domain.RoleUser}}
)

// newContext builds an echo context as the Auth middleware would leave it.
// A zero actor leaves the context unauthenticated.
func newContext(method, target, body string, actor domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if actor.ID != "" {
		roles := make([]string, len(actor.Roles))
		for i, role := range actor.Roles {
			roles[i] = string(role)
		}
		c.Set(middleware.ContextUserID, actor.ID)
		c.Set(middleware.ContextUsername, actor.Username)
		c.Set(middleware.ContextRoles, roles)
	}
	return c, rec
}

type stubAuthService struct {
	registerFn func(ctx context.Context, username, email, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubMilkService struct {
	createFn       func(ctx context.Context, in ports.CreateMilkInput, actor domain.Actor) (*ports.CreateMilkResult, error)
	listForActorFn func(ctx context.Context, actor domain.Actor) ([]*domain.MilkRecord, error)
	listByOwnerFn  func(ctx context.Context, ownerUserID string) ([]*domain.MilkRecord, error)
	getFn          func(ctx context.Context, id string, actor domain.Actor) (*domain.MilkRecord, error)
	listByTypeFn   func(ctx context.Context, milkType string, actor domain.Actor) ([]*domain.MilkRecord, error)
	updateFn       func(ctx context.Context, id string, in ports.UpdateMilkInput, actor domain.Actor) (*domain.MilkRecord, error)
	deleteFn       func(ctx context.Context, id string, actor domain.Actor) error
	owners         map[string]domain.OwnerSummary
}

func (s *stubMilkService) Create(ctx context.Context, in ports.CreateMilkInput, actor domain.Actor) (*ports.CreateMilkResult, error) {
	return s.createFn(ctx, in, actor)
}

func (s *stubMilkService) ListForActor(ctx context.Context, actor domain.Actor) ([]*domain.MilkRecord, error) {
	return s.listForActorFn(ctx, actor)
}

func (s *stubMilkService) ListByOwner(ctx context.Context, ownerUserID string) ([]*domain.MilkRecord, error) {
	return s.listByOwnerFn(ctx, ownerUserID)
}

func (s *stubMilkService) GetByID(ctx context.Context, id string, actor domain.Actor) (*domain.MilkRecord, error) {
	return s.getFn(ctx, id, actor)
}

func (s *stubMilkService) ListByType(ctx context.Context, milkType string, actor domain.Actor) ([]*domain.MilkRecord, error) {
	return s.listByTypeFn(ctx, milkType, actor)
}

func (s *stubMilkService) Update(ctx context.Context, id string, in ports.UpdateMilkInput, actor domain.Actor) (*domain.MilkRecord, error) {
	return s.updateFn(ctx, id, in, actor)
}

func (s *stubMilkService) DeleteByID(ctx context.Context, id string, actor domain.Actor) error {
	return s.deleteFn(ctx, id, actor)
}

func (s *stubMilkService) OwnerSummaries(ctx context.Context, records []*domain.MilkRecord) (map[string]domain.OwnerSummary, error) {
	return s.owners, nil
}

type stubUserService struct {
	users          map[string]*domain.User
	updateFn       func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error)
	changeFn       func(ctx context.Context, username, current, next string) error
	deleteFn       func(ctx context.Context, id string) error
	usernamesTaken map[string]bool
	emailsTaken    map[string]bool
}

func (s *stubUserService) ListAll(ctx context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) ChangePassword(ctx context.Context, username, current, next string) error {
	return s.changeFn(ctx, username, current, next)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.usernamesTaken[username], nil
}

func (s *stubUserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.emailsTaken[email], nil
}

func (s *stubUserService) Count(ctx context.Context) (int64, error) {
	return int64(len(s.users)), nil
}
