package domain

import "errors"

var (
	// ErrUnauthenticated means no valid session backs the request.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden means a valid session exists but its role is insufficient.
	ErrForbidden = errors.New("insufficient permissions")

	ErrValidation         = errors.New("invalid input")
	ErrUnknownRole        = errors.New("unknown role")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")

	// ErrStoreUnavailable covers collaborator failures and timeouts. The
	// original cause is wrapped; the HTTP layer renders a generic message.
	ErrStoreUnavailable = errors.New("store unavailable")
)
