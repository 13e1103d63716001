package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for any login failure: unknown
	// email, deactivated account, or wrong password. The caller cannot
	// distinguish which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a request carries no valid
	// bearer token or the token's user no longer exists or is inactive.
	ErrUnauthenticated = errors.New("authentication required")
)
