package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
)

// Response is the JSON envelope returned by every API endpoint.
type Response struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`

	// Listing metadata, present only on paginated responses.
	TotalCatalogs *int64 `json:"total_catalogs,omitempty"`
	Page          *int   `json:"page,omitempty"`
	PerPage       *int   `json:"per_page,omitempty"`
}

// WriteJSON writes resp with the given status code.
func WriteJSON(w http.ResponseWriter, status int, resp Response) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return err
	}

	return nil
}

// WriteError maps a taxonomy error to its HTTP status and envelope:
// validation 400, not found 404, authentication 401, everything else 500.
// Database and unexpected failures get a fixed generic detail so driver
// internals never reach the client; the full error is already in the log.
func WriteError(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		_ = WriteJSON(w, http.StatusBadRequest, Response{
			Message: "Validation Error",
			Details: errorDetail(err, domain.ErrValidation),
		})
	case errors.Is(err, domain.ErrDataNotFound):
		_ = WriteJSON(w, http.StatusNotFound, Response{
			Message: "Not Found",
			Details: errorDetail(err, domain.ErrDataNotFound),
		})
	case errors.Is(err, domain.ErrAuthentication):
		_ = WriteJSON(w, http.StatusUnauthorized, Response{
			Message: "Authentication Failed",
			Details: errorDetail(err, domain.ErrAuthentication),
		})
	case errors.Is(err, domain.ErrDatabaseConnection):
		log.ErrorContext(ctx, "database error", "error", err)
		_ = WriteJSON(w, http.StatusInternalServerError, Response{
			Message: "Database Error",
			Details: "Could not connect to the database or a database operation failed.",
		})
	default:
		log.ErrorContext(ctx, "unexpected error", "error", err)
		_ = WriteJSON(w, http.StatusInternalServerError, Response{
			Message: "Internal Server Error",
			Details: "An unexpected error occurred. Please try again later.",
		})
	}
}

// errorDetail strips the sentinel prefix so clients see only the
// caller-facing message.
func errorDetail(err error, sentinel error) string {
	msg := err.Error()

	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return detail
	}

	return msg
}
