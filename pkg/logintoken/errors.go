package logintoken

import "errors"

var (
	// ErrTokenNotFound is returned when no login token exists for a session
	ErrTokenNotFound = errors.New("login token not found")

	// ErrTokenExpired is returned when the session's login token has expired
	ErrTokenExpired = errors.New("login token has expired")
)
