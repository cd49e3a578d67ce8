package domain

import "errors"

var (
	ErrMilkRecordNotFound = errors.New("milk record not found")
	ErrUserNotFound       = errors.New("user not found")

	// ErrValidation is wrapped with the offending field, e.g.
	// fmt.Errorf("%w: quantity must be positive", ErrValidation).
	ErrValidation = errors.New("validation failed")

	ErrUserExists     = errors.New("user already exists")
	ErrUsernameTaken  = errors.New("username is already taken")
	ErrEmailTaken     = errors.New("email is already in use")
	ErrUserHasRecords = errors.New("user still owns milk records")

	// ErrRequestInProgress is returned while another create holds the same
	// Idempotency-Key.
	ErrRequestInProgress = errors.New("a request with this idempotency key is still in progress")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
)
