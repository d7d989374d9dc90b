package domain

import "time"

// User represents a registered account in the system.
type User struct {
	ID           int64  // Unique identifier
	Username     string // Login username, unique
	Email        string // Contact address, unique
	PasswordHash string // Opaque one-way hash, never surfaced
	CreatedAt    int64  // Unix timestamp of account creation
}

// UserProfile is the caller-facing projection of a User. It deliberately
// omits the password hash.
type UserProfile struct {
	ID        int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// Profile converts the user to its caller-facing projection.
func (u User) Profile() UserProfile {
	var createdAt string
	if u.CreatedAt != 0 {
		createdAt = time.Unix(u.CreatedAt, 0).UTC().Format(time.RFC3339)
	}

	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: createdAt,
	}
}
