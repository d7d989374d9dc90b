// Package catalogsvc implements the catalog management service: request
// validation, pagination and the CRUD operations exposed over HTTP.
package catalogsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
	"github.com/mkrupp/catalog-manager/internal/repo/catalog"
	"github.com/mkrupp/catalog-manager/internal/util/validate"
)

const (
	// NameMaxLen and DescriptionMaxLen bound the catalog text fields.
	NameMaxLen        = 30
	DescriptionMaxLen = 50

	// DefaultPage and DefaultPerPage apply when the listing request does
	// not specify pagination.
	DefaultPage    = 1
	DefaultPerPage = 10
)

// CatalogInput carries the untrusted field values of a create or update
// request. Every field is validated before it reaches the repository.
type CatalogInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
}

// ListRequest carries the untrusted listing parameters.
type ListRequest struct {
	SearchTerm   string
	StatusFilter string
	Page         int
	PerPage      int
}

// CatalogService validates catalog input and delegates persistence to the
// catalog repository.
type CatalogService struct {
	Repo catalog.Repository
	Log  logging.Logger
}

// NewCatalogService creates a new CatalogService with the given repository factory.
func NewCatalogService(repoFactory catalog.RepositoryFactory) (*CatalogService, error) {
	repo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new catalog repo: %w", err)
	}

	return &CatalogService{
		Repo: repo,
		Log:  logging.GetLogger("svc.catalogsvc.catalog_service"),
	}, nil
}

// validateInput runs all field-level checks plus the cross-field date check
// and returns the normalized catalog. The first failing check wins.
func validateInput(input CatalogInput) (domain.Catalog, error) {
	name, err := validate.Text(input.Name, "Name", 1, NameMaxLen)
	if err != nil {
		return domain.Catalog{}, err
	}

	description, err := validate.Text(input.Description, "Description", 1, DescriptionMaxLen)
	if err != nil {
		return domain.Catalog{}, err
	}

	startDate, err := validate.FutureDate(input.StartDate, "Start Date")
	if err != nil {
		return domain.Catalog{}, err
	}

	endDate, err := validate.FutureDate(input.EndDate, "End Date")
	if err != nil {
		return domain.Catalog{}, err
	}

	status, err := validate.Status(input.Status)
	if err != nil {
		return domain.Catalog{}, err
	}

	// Both dates validated above, parsing cannot fail here.
	start, _ := time.Parse(validate.DateLayout, startDate)
	end, _ := time.Parse(validate.DateLayout, endDate)

	if end.Before(start) {
		return domain.Catalog{}, domain.Validationf("End Date cannot be before Start Date.")
	}

	return domain.Catalog{
		Name:        name,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      status,
	}, nil
}

// CreateCatalog validates the input and inserts a new catalog owned by ownerID.
func (s *CatalogService) CreateCatalog(ctx context.Context, input CatalogInput, ownerID int64) (_ int64, err error) {
	log := s.Log.With(logging.Group("catalog", "name", input.Name, "owner", ownerID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog created")
		}
	}()

	validated, err := validateInput(input)
	if err != nil {
		return 0, err
	}

	id, err := s.Repo.Create(ctx, validated, ownerID)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetCatalog retrieves a single catalog by id.
func (s *CatalogService) GetCatalog(ctx context.Context, id int64) (_ domain.Catalog, err error) {
	log := s.Log.With(logging.Group("catalog", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "get catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog retrieved")
		}
	}()

	return s.Repo.GetByID(ctx, id)
}

// ListCatalogs returns one page of catalogs matching the request plus the
// total match count before pagination. A status filter that is not a valid
// status is ignored rather than rejected; pagination values below 1 fall
// back to the defaults.
func (s *CatalogService) ListCatalogs(ctx context.Context, req ListRequest) (_ []domain.Catalog, _ int64, err error) {
	log := s.Log.With(logging.Group("listing",
		"search", req.SearchTerm,
		"status", req.StatusFilter,
		"page", req.Page,
		"perPage", req.PerPage,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "list catalogs failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalogs listed")
		}
	}()

	filter := catalog.ListFilter{
		SearchTerm: strings.TrimSpace(req.SearchTerm),
	}

	if normalized, err := validate.Status(req.StatusFilter); err == nil {
		filter.StatusFilter = normalized
	}

	page := catalog.Page{Number: req.Page, PerPage: req.PerPage}
	if page.Number < 1 {
		page.Number = DefaultPage
	}

	if page.PerPage < 1 {
		page.PerPage = DefaultPerPage
	}

	total, err := s.Repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	items, err := s.Repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UpdateCatalog validates the input and replaces all mutable fields of the
// catalog with the given id.
func (s *CatalogService) UpdateCatalog(ctx context.Context, id int64, input CatalogInput) (err error) {
	log := s.Log.With(logging.Group("catalog", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog updated")
		}
	}()

	validated, err := validateInput(input)
	if err != nil {
		return err
	}

	return s.Repo.Update(ctx, id, validated)
}

// DeleteCatalog removes the catalog with the given id.
func (s *CatalogService) DeleteCatalog(ctx context.Context, id int64) (err error) {
	log := s.Log.With(logging.Group("catalog", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete catalog failed", "error", err)
		} else {
			log.DebugContext(ctx, "catalog deleted")
		}
	}()

	return s.Repo.Delete(ctx, id)
}
