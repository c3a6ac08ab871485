package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotEnabled indicates the source exists but sync is switched off
	ErrNotEnabled = errors.New("sync not enabled")

	// ErrNotConfigured indicates a provider is missing its endpoint or credential
	ErrNotConfigured = errors.New("provider not configured")

	// ErrHandlerMissing indicates no reconciliation handler is registered for a source
	ErrHandlerMissing = errors.New("no handler configured")

	// ErrSyncInProgress indicates a sync is already running
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates wrong name/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")
)
