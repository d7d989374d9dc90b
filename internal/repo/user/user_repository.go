package user

import (
	"context"

	"github.com/mkrupp/catalog-manager/internal/domain"
)

// Repository defines the interface for user data persistence.
//
// Lookups return (nil, false, nil) when no user matches; whether an absent
// user is an error is the caller's decision, not this component's.
type Repository interface {
	// Create adds a new user and returns the store-generated id. Uniqueness
	// of username and email is enforced by the store, not pre-checked here;
	// a violation surfaces as ErrDatabaseConnection.
	Create(ctx context.Context, u domain.User) (int64, error)

	// FindByUsername retrieves a user by their username.
	FindByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// FindByEmail retrieves a user by their email address.
	FindByEmail(ctx context.Context, email string) (*domain.User, bool, error)

	// FindByID retrieves a user by their id.
	FindByID(ctx context.Context, id int64) (*domain.User, bool, error)
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
