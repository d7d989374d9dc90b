package authsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
	http_ "github.com/mkrupp/catalog-manager/internal/infra/transport/http"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// loginRequest is the JSON body accepted by the login endpoint.
type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// registerRequest is the JSON body accepted by the register endpoint.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for user registration, login, and logout.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
	cfg     HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires an AuthService for handling authentication operations.
func NewHTTPTransport(
	authSvc *AuthService,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the auth endpoints:
// - POST /api/register: Register a new user
// - POST /api/login: Login and receive a session cookie
// - POST /api/logout: Clear the session cookie.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", ht.HandleRegister)
	mux.HandleFunc("POST /api/login", ht.HandleLogin)
	mux.Handle("POST /api/logout", http_.AuthorizingMiddleware(
		http.HandlerFunc(ht.HandleLogout), ht.authSvc, ht.log,
	))
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleRegister processes user registration requests.
// Expects a JSON body with username, email and password.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.WriteError(r.Context(), w, log, domain.Validationf("Request body must be valid JSON"))

		return fmt.Errorf("decode request: %w", err)
	}

	log = log.With(logging.Group("user", "username", req.Username))

	user, err := ht.authSvc.RegisterUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return fmt.Errorf("register user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusCreated, http_.Response{
		Message: "User registered successfully.",
		Data:    user.Profile(),
	})
}

// HandleLogin processes user login requests.
// Expects a JSON body with username_or_email and password. On success the
// session token is set as an HttpOnly cookie and the user profile returned.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.WriteError(r.Context(), w, log, domain.Validationf("Request body must be valid JSON"))

		return fmt.Errorf("decode request: %w", err)
	}

	log = log.With(logging.Group("user", "identifier", req.UsernameOrEmail))

	tokenString, user, err := ht.authSvc.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return fmt.Errorf("login user: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     http_.SessionCookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(ht.authSvc.Config.TokenDuration),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return http_.WriteJSON(w, http.StatusOK, http_.Response{
		Message: "Login successful.",
		Data:    user.Profile(),
	})
}

// HandleLogout clears the session cookie. The token itself stays valid until
// expiry; logout only removes it from the client.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user logout failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged out")
		}
	}(r.Context())

	http.SetCookie(w, &http.Cookie{
		Name:     http_.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return http_.WriteJSON(w, http.StatusOK, http_.Response{
		Message: "Logout successful.",
	})
}
