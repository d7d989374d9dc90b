package catalog

import (
	"context"

	"github.com/mkrupp/catalog-manager/internal/domain"
)

// ListFilter narrows List and Count results.
type ListFilter struct {
	// SearchTerm, when non-empty, matches the catalog id (if the term is
	// numeric) or a substring of the name or description.
	SearchTerm string

	// StatusFilter, when non-empty, restricts results to that status. The
	// caller is expected to pass only "active" or "inactive".
	StatusFilter string
}

// Page selects one page of an id-descending listing. Pages are 1-based.
// Values are handed to the store unvalidated; out-of-range values behave
// however the store behaves.
type Page struct {
	Number  int
	PerPage int
}

// Offset is the number of rows skipped before this page starts.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Repository defines the interface for catalog persistence.
type Repository interface {
	// Create inserts a new catalog owned by ownerID and returns the
	// store-generated id.
	Create(ctx context.Context, c domain.Catalog, ownerID int64) (int64, error)

	// GetByID retrieves a single catalog.
	// Returns ErrDataNotFound if no catalog has the given id.
	GetByID(ctx context.Context, id int64) (domain.Catalog, error)

	// List returns one page of catalogs matching the filter, newest first.
	List(ctx context.Context, filter ListFilter, page Page) ([]domain.Catalog, error)

	// Count returns the total number of catalogs matching the filter.
	Count(ctx context.Context, filter ListFilter) (int64, error)

	// Update replaces all mutable fields of the catalog with the given id.
	// Returns ErrDataNotFound if the catalog does not exist, including when
	// it disappears between the existence check and the update.
	Update(ctx context.Context, id int64, c domain.Catalog) error

	// Delete removes the catalog with the given id.
	// Returns ErrDataNotFound under the same conditions as Update.
	Delete(ctx context.Context, id int64) error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
