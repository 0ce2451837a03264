// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels shared by the client core, services and repositories.
var (
	// ErrNotFound indicates the requested car or expense does not exist
	// (or is not visible to the authenticated user).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or incomplete input, rejected either
	// by client pre-flight validation or by the server.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates rejected credentials or an expired/invalid token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the remote service could not be reached at all.
	ErrUnavailable = errors.New("service unavailable")
)
