package catalogsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/catalog-manager/internal/domain"
	context_ "github.com/mkrupp/catalog-manager/internal/infra/context"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
	http_ "github.com/mkrupp/catalog-manager/internal/infra/transport/http"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// HTTPTransport handles HTTP requests for the catalog service. Reads are
// public; create, update and delete require a valid session token.
type HTTPTransport struct {
	catalogSvc *CatalogService
	validator  http_.TokenValidator
	log        logging.Logger
	cfg        HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport instance with the given
// configuration. The validator guards the mutating endpoints.
func NewHTTPTransport(
	catalogSvc *CatalogService,
	validator http_.TokenValidator,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		catalogSvc: catalogSvc,
		validator:  validator,
		log:        logging.GetLogger("svc.catalogsvc.http_transport"),
		cfg:        cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the catalog endpoints:
// - POST /api/catalogs: Create a catalog (authenticated)
// - GET /api/catalogs: List catalogs with search, filter and pagination
// - GET /api/catalogs/{id}: Retrieve a single catalog
// - PUT /api/catalogs/{id}: Update a catalog (authenticated)
// - DELETE /api/catalogs/{id}: Delete a catalog (authenticated).
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.Handle("POST /api/catalogs", ht.authorized(ht.HandleCreate))
	mux.HandleFunc("GET /api/catalogs", ht.HandleList)
	mux.HandleFunc("GET /api/catalogs/{id}", ht.HandleGet)
	mux.Handle("PUT /api/catalogs/{id}", ht.authorized(ht.HandleUpdate))
	mux.Handle("DELETE /api/catalogs/{id}", ht.authorized(ht.HandleDelete))
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

func (ht *HTTPTransport) authorized(handler http.HandlerFunc) http.Handler {
	return http_.AuthorizingMiddleware(handler, ht.validator, ht.log)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, domain.Validationf("Catalog ID must be an integer")
	}

	return id, nil
}

// HandleCreate processes catalog creation requests.
// Expects a JSON body with name, description, start_date, end_date and status.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "create catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog created")
		}
	}(r.Context())

	ownerID, ok := context_.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return domain.ErrNoSessionToken
	}

	var input CatalogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http_.WriteError(r.Context(), w, log, domain.Validationf("Request must contain JSON data."))

		return fmt.Errorf("decode request: %w", err)
	}

	id, err := ht.catalogSvc.CreateCatalog(r.Context(), input, ownerID)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return fmt.Errorf("create catalog: %w", err)
	}

	return http_.WriteJSON(w, http.StatusCreated, http_.Response{
		Message: "Catalog created successfully.",
		Data:    map[string]int64{"catalog_id": id},
	})
}

// HandleGet retrieves a single catalog by its path id.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "get catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog retrieved")
		}
	}(r.Context())

	id, err := pathID(r)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return err
	}

	found, err := ht.catalogSvc.GetCatalog(r.Context(), id)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return fmt.Errorf("get catalog: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, http_.Response{
		Message: "Catalog retrieved successfully.",
		Data:    found,
	})
}

// HandleList returns a page of catalogs. Query parameters: search, status,
// page (default 1) and per_page (default 10). An unrecognized status value
// is ignored instead of rejected.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list catalogs failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalogs listed")
		}
	}(r.Context())

	req := ListRequest{
		SearchTerm:   r.URL.Query().Get("search"),
		StatusFilter: r.URL.Query().Get("status"),
		Page:         queryInt(r, "page", DefaultPage),
		PerPage:      queryInt(r, "per_page", DefaultPerPage),
	}

	items, total, err := ht.catalogSvc.ListCatalogs(r.Context(), req)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return fmt.Errorf("list catalogs: %w", err)
	}

	if items == nil {
		items = []domain.Catalog{}
	}

	page, perPage := req.Page, req.PerPage

	return http_.WriteJSON(w, http.StatusOK, http_.Response{
		Message:       "Catalogs retrieved successfully.",
		Data:          items,
		TotalCatalogs: &total,
		Page:          &page,
		PerPage:       &perPage,
	})
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or not an integer.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return value
}

// HandleUpdate replaces all fields of the catalog at the path id.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdate(w, r)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "update catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog updated")
		}
	}(r.Context())

	id, err := pathID(r)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return err
	}

	var input CatalogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http_.WriteError(r.Context(), w, log, domain.Validationf("Request must contain JSON data."))

		return fmt.Errorf("decode request: %w", err)
	}

	if err := ht.catalogSvc.UpdateCatalog(r.Context(), id, input); err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return fmt.Errorf("update catalog: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, http_.Response{
		Message: fmt.Sprintf("Catalog ID %d updated successfully.", id),
	})
}

// HandleDelete removes the catalog at the path id.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "delete catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog deleted")
		}
	}(r.Context())

	id, err := pathID(r)
	if err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return err
	}

	if err := ht.catalogSvc.DeleteCatalog(r.Context(), id); err != nil {
		http_.WriteError(r.Context(), w, log, err)

		return fmt.Errorf("delete catalog: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, http_.Response{
		Message: fmt.Sprintf("Catalog ID %d deleted successfully.", id),
	})
}
