package authsvc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
	"github.com/mkrupp/catalog-manager/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningKeyFile is the path to the RSA private key file
	SigningKeyFile string `env:"SIGNING_KEY_FILE" default:"var/storage/websvc.key"`

	// TokenDuration is the validity duration of session tokens in seconds
	TokenDuration int64 `env:"TOKEN_DURATION" default:"3600"` // 1h
}

// AuthService composes user repository lookups with password verification to
// produce an authenticated identity or a typed failure. It also issues and
// validates the signed session tokens used by the HTTP layer.
type AuthService struct {
	Config     AuthConfig
	UserRepo   user.Repository
	Log        logging.Logger
	SigningKey *rsa.PrivateKey
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
// Returns an error if the signing key cannot be loaded or the user repository cannot be created.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	signingKey, err := GetPrivateKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("get private key: %w", err)
	}

	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthService{
		Config:     cfg,
		UserRepo:   userRepo,
		Log:        log,
		SigningKey: signingKey,
	}, nil
}

// HashPassword produces a salted one-way hash of the password.
// Returns ErrValidation if the password is empty after trimming.
func (s *AuthService) HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", domain.Validationf("Password must be a non-empty string.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword compares a plaintext candidate against a stored hash.
// Returns ErrValidation on empty inputs and ErrAuthentication when the
// stored hash is not in a format the hashing collaborator recognizes.
func (s *AuthService) CheckPassword(password, passwordHash string) (bool, error) {
	if strings.TrimSpace(password) == "" {
		return false, domain.Validationf("Password must be a non-empty string.")
	}

	if strings.TrimSpace(passwordHash) == "" {
		return false, domain.Validationf("Hashed password must be a non-empty string.")
	}

	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		// Anything else means the stored value is not a bcrypt hash.
		return false, domain.Authenticationf("Invalid password hash format.")
	}
}

// RegisterUser creates a new user account. The password is hashed before
// storage; username and email uniqueness is enforced by the store.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	passwordHash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := domain.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}

	if newUser.Username == "" {
		return nil, domain.Validationf("Username must be a non-empty string.")
	}

	if newUser.Email == "" {
		return nil, domain.Validationf("Email must be a non-empty string.")
	}

	id, err := s.UserRepo.Create(ctx, newUser)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	newUser.ID = id

	return &newUser, nil
}

// Authenticate verifies an identifier/password pair and returns the matched
// user. The identifier is looked up first as a username, then as an email.
// Failure messages deliberately never reveal which credential was wrong.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (_ *domain.User, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "authentication failed", "error", err)
		} else {
			log.DebugContext(ctx, "authentication successful")
		}
	}()

	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(password) == "" {
		return nil, domain.Validationf("Username/Email and password are required.")
	}

	matched, found, err := s.UserRepo.FindByUsername(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("authenticate, find by username: %w", err)
	}

	if !found {
		matched, found, err = s.UserRepo.FindByEmail(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("authenticate, find by email: %w", err)
		}
	}

	if !found {
		return nil, domain.Authenticationf("Invalid username or email.")
	}

	ok, err := s.CheckPassword(password, matched.PasswordHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, domain.Authenticationf("Invalid password.")
	}

	return matched, nil
}

// Login authenticates the identifier/password pair and issues a signed
// session token for the matched user.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (_ string, _ *domain.User, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	matched, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return "", nil, err
	}

	tokenString, err := s.issueToken(ctx, matched.ID)
	if err != nil {
		return "", nil, err
	}

	return tokenString, matched, nil
}

func (s *AuthService) issueToken(ctx context.Context, userID int64) (string, error) {
	now := time.Now()
	expiry := now.Add(time.Duration(s.Config.TokenDuration * int64(time.Second)))
	token := domain.SessionToken{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiry.Unix(),
	}

	s.Log.DebugContext(ctx, "issuing token", logging.Group("token",
		"userId", token.UserID,
		"exp", expiry.UTC().Format(time.RFC3339),
		"iat", now.UTC().Format(time.RFC3339),
	))

	tokenBytes, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("marshal token: %w", err)
	}

	hashed := sha256.Sum256(tokenBytes)

	signature, err := rsa.SignPSS(rand.Reader, s.SigningKey, crypto.SHA256, hashed[:], nil)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(append(tokenBytes, signature...)), nil
}

// ValidateToken verifies a session token's signature and expiration.
// Returns the decoded token if valid, or ErrInvalidSessionToken if not.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (token domain.SessionToken, err error) {
	token, err = ValidateSessionToken(ctx, tokenString, &s.SigningKey.PublicKey)
	if err != nil {
		s.Log.WarnContext(ctx, "validate token failed", "error", err)

		return domain.SessionToken{}, fmt.Errorf("validate token: %w", err)
	}

	return token, nil
}
