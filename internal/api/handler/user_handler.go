package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
)

// UserHandler handles HTTP requests for account management.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type updateUserRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=20"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=50"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,max=20"`
}

func (r *updateUserRequest) normalize() {
	trimPtr(r.Username)
	trimPtr(r.Email)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// List handles GET /api/users and GET /api/milk/users.
//
// @Summary      List all accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userProfile
// @Failure      403  {object}  map[string]string
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserProfiles(users))
}

// Me handles GET /api/users/me.
//
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userProfile
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetByID(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserProfile(user))
}

// Count handles GET /api/users/count.
//
// @Summary      Count accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  countResponse
// @Router       /api/users/count [get]
func (h *UserHandler) Count(c echo.Context) error {
	n, err := h.service.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Count: n})
}

// Get handles GET /api/users/:id. Administrators or the account itself.
//
// @Summary      Get an account profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userProfile
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := h.accessibleAccount(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserProfile(user))
}

// Update handles PUT /api/users/:id. Only provided fields change.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userProfile
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := h.accessibleAccount(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	current, err := h.service.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Username != nil {
		name := *req.Username
		if name != current.Username {
			taken, err := h.service.ExistsByUsername(ctx, name)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrUsernameTaken
			}
		}
	}
	if req.Email != nil {
		email := *req.Email
		if email != current.Email {
			taken, err := h.service.ExistsByEmail(ctx, email)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrEmailTaken
			}
		}
	}

	user, err := h.service.Update(ctx, id, ports.UpdateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserProfile(user))
}

// ChangePassword handles POST /api/users/change-password for the caller.
//
// @Summary      Change the caller's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Passwords"
// @Success      200   {object}  envelope
// @Failure      400   {object}  map[string]string
// @Router       /api/users/change-password [post]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "new password and confirmation do not match")
	}

	// The token's username claim goes stale after a rename; the id does not.
	ctx := c.Request().Context()
	account, err := h.service.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	err = h.service.ChangePassword(ctx, account.Username, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "current password is incorrect")
		}
		return err
	}
	return c.JSON(http.StatusOK, success("Password changed successfully", nil))
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Delete an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success("User deleted successfully", nil))
}

// accessibleAccount returns the :id path parameter when the caller may act on it.
func (h *UserHandler) accessibleAccount(c echo.Context) (string, error) {
	actor, err := actorFromContext(c)
	if err != nil {
		return "", err
	}
	id := c.Param("id")
	if !domain.CanAccessAccount(actor, id) {
		return "", domain.ErrForbidden
	}
	return id, nil
}
