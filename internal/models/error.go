package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication outcomes. ErrInvalidCredentials covers unknown
	// identifier, inactive account, and wrong password uniformly so the
	// API boundary cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountInactive    = errors.New("account is inactive")

	// ErrStorage marks a failed round-trip to the backing store. It must
	// surface as a 5xx-class failure, never as an authentication error.
	ErrStorage = errors.New("storage operation failed")
)
