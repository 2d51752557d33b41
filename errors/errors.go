package errors

import "errors"

// Sentinel errors surfaced by the registries and the authentication core.
// Repository implementations map their storage-level failures onto these so
// callers can branch with errors.Is regardless of the backend.
var (
	ErrClientNotFound      = errors.New("client not found")
	ErrClientAlreadyExists = errors.New("client already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrSessionNotFound     = errors.New("session not found")

	// ErrAuthenticationFailed covers any credential mismatch: wrong password
	// at login, or a wrong old password during a password change.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidRedirect is returned when a requested redirect URI does not
	// match any of the client's registered URI prefixes.
	ErrInvalidRedirect = errors.New("invalid redirect URI for client")
)
