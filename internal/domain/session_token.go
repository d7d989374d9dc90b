package domain

import "errors"

var (
	// ErrNoSessionToken is returned when a session token is required but not provided.
	ErrNoSessionToken = errors.New("no session token")
	// ErrInvalidSessionToken is returned when a token's signature is invalid or it has expired.
	ErrInvalidSessionToken = errors.New("invalid session token")
)

// SessionToken represents an authenticated session with its validity period.
type SessionToken struct {
	UserID    int64 `json:"userId"`    // Identifier of the authenticated user
	IssuedAt  int64 `json:"issuedAt"`  // Unix timestamp when the token was created
	ExpiresAt int64 `json:"expiresAt"` // Unix timestamp when the token expires
}
