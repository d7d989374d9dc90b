package user

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/db"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
)

const userColumns = "user_id, username, email, password_hash, created_at"

// SQLiteUserRepository implements Repository on top of the persistence gateway.
type SQLiteUserRepository struct {
	gw  *db.Gateway
	log logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory creates a factory function that returns a new
// SQLiteUserRepository backed by the gateway the factory produces.
func SQLiteUserRepositoryFactory(gatewayFactory db.GatewayFactory) RepositoryFactory {
	return func() (Repository, error) {
		gw, err := gatewayFactory()
		if err != nil {
			return nil, fmt.Errorf("new gateway: %w", err)
		}

		return NewSQLiteUserRepository(gw)
	}
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository and ensures the
// users schema exists.
func NewSQLiteUserRepository(gw *db.Gateway) (*SQLiteUserRepository, error) {
	log := logging.GetLogger("repo.user.sqlite_user_repository")

	if _, err := gw.Mutate(context.Background(), `
		CREATE TABLE IF NOT EXISTS users (
			user_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    UNIQUE NOT NULL,
			email         TEXT    UNIQUE NOT NULL,
			password_hash TEXT    NOT NULL,
			created_at    INTEGER NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteUserRepository{
		gw:  gw,
		log: log,
	}, nil
}

// Create implements Repository.Create.
func (r *SQLiteUserRepository) Create(ctx context.Context, u domain.User) (int64, error) {
	createdAt := u.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	id, err := r.gw.Insert(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

// FindByUsername implements Repository.FindByUsername.
func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByEmail implements Repository.FindByEmail.
func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByID implements Repository.FindByID.
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	return r.findOne(ctx, "user_id = ?", id)
}

func (r *SQLiteUserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, bool, error) {
	var u domain.User

	found, err := r.gw.FetchOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where,
		[]any{arg},
		func(row db.RowScanner) error {
			return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
		},
	)
	if err != nil {
		return nil, false, fmt.Errorf("query user: %w", err)
	}

	if !found {
		return nil, false, nil
	}

	return &u, true, nil
}
