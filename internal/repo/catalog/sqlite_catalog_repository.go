package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/db"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
)

const catalogColumns = "catalog_id, catalog_name, catalog_description, start_date, end_date, status, user_id"

// Gateway is the subset of the persistence gateway this repository executes
// statements through.
type Gateway interface {
	Insert(ctx context.Context, query string, args ...any) (int64, error)
	Mutate(ctx context.Context, query string, args ...any) (int64, error)
	FetchOne(ctx context.Context, query string, args []any, scan db.ScanFunc) (bool, error)
	FetchAll(ctx context.Context, query string, args []any, scan db.ScanFunc) error
}

var _ Gateway = (*db.Gateway)(nil)

// SQLiteCatalogRepository implements Repository on top of the persistence
// gateway. All rows are scanned into domain.Catalog at this boundary; no
// driver-shaped data crosses into upper layers.
type SQLiteCatalogRepository struct {
	gw  Gateway
	log logging.Logger
}

var _ Repository = (*SQLiteCatalogRepository)(nil)

// SQLiteCatalogRepositoryFactory creates a factory function that returns a
// new SQLiteCatalogRepository backed by the gateway the factory produces.
func SQLiteCatalogRepositoryFactory(gatewayFactory db.GatewayFactory) RepositoryFactory {
	return func() (Repository, error) {
		gw, err := gatewayFactory()
		if err != nil {
			return nil, fmt.Errorf("new gateway: %w", err)
		}

		return NewSQLiteCatalogRepository(gw)
	}
}

// NewSQLiteCatalogRepository creates a new SQLiteCatalogRepository and
// ensures the catalog schema exists.
func NewSQLiteCatalogRepository(gw Gateway) (*SQLiteCatalogRepository, error) {
	log := logging.GetLogger("repo.catalog.sqlite_catalog_repository")

	if _, err := gw.Mutate(context.Background(), `
		CREATE TABLE IF NOT EXISTS catalog (
			catalog_id          INTEGER PRIMARY KEY AUTOINCREMENT,
			catalog_name        TEXT    NOT NULL,
			catalog_description TEXT    NOT NULL,
			start_date          TEXT    NOT NULL,
			end_date            TEXT    NOT NULL,
			status              TEXT    NOT NULL,
			user_id             INTEGER NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteCatalogRepository{
		gw:  gw,
		log: log,
	}, nil
}

// Create implements Repository.Create.
func (r *SQLiteCatalogRepository) Create(ctx context.Context, c domain.Catalog, ownerID int64) (int64, error) {
	id, err := r.gw.Insert(ctx, `
		INSERT INTO catalog (catalog_name, catalog_description, start_date, end_date, status, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Description, c.StartDate, c.EndDate, c.Status, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert catalog: %w", err)
	}

	return id, nil
}

// GetByID implements Repository.GetByID.
func (r *SQLiteCatalogRepository) GetByID(ctx context.Context, id int64) (domain.Catalog, error) {
	var c domain.Catalog

	found, err := r.gw.FetchOne(ctx,
		"SELECT "+catalogColumns+" FROM catalog WHERE catalog_id = ?",
		[]any{id},
		func(row db.RowScanner) error {
			return row.Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.Status, &c.UserID)
		},
	)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("query catalog: %w", err)
	}

	if !found {
		return domain.Catalog{}, domain.NotFoundf("catalog with ID %d not found", id)
	}

	return c, nil
}

// List implements Repository.List. Results are ordered by id descending so
// pagination walks from newest to oldest.
func (r *SQLiteCatalogRepository) List(ctx context.Context, filter ListFilter, page Page) ([]domain.Catalog, error) {
	query, args := filterClause("SELECT "+catalogColumns+" FROM catalog WHERE 1=1", filter)

	query += " ORDER BY catalog_id DESC LIMIT ? OFFSET ?"
	args = append(args, page.PerPage, page.Offset())

	var catalogs []domain.Catalog

	err := r.gw.FetchAll(ctx, query, args, func(row db.RowScanner) error {
		var c domain.Catalog
		if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.Status, &c.UserID); err != nil {
			return err
		}

		catalogs = append(catalogs, c)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query catalogs: %w", err)
	}

	return catalogs, nil
}

// Count implements Repository.Count using the same predicates as List.
func (r *SQLiteCatalogRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	query, args := filterClause("SELECT COUNT(*) FROM catalog WHERE 1=1", filter)

	var count int64

	if _, err := r.gw.FetchOne(ctx, query, args, func(row db.RowScanner) error {
		return row.Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("count catalogs: %w", err)
	}

	return count, nil
}

// Update implements Repository.Update with the existence-check-then-mutate
// pattern. The two statements are deliberately not wrapped in one
// transaction; a row deleted in between surfaces as ErrDataNotFound via the
// zero-rows check.
func (r *SQLiteCatalogRepository) Update(ctx context.Context, id int64, c domain.Catalog) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	affected, err := r.gw.Mutate(ctx, `
		UPDATE catalog
		SET catalog_name = ?, catalog_description = ?, start_date = ?, end_date = ?, status = ?
		WHERE catalog_id = ?`,
		c.Name, c.Description, c.StartDate, c.EndDate, c.Status, id,
	)
	if err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}

	if affected == 0 {
		return domain.NotFoundf("catalog with ID %d not found for update (no rows affected)", id)
	}

	return nil
}

// Delete implements Repository.Delete with the same pattern as Update.
func (r *SQLiteCatalogRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	affected, err := r.gw.Mutate(ctx, "DELETE FROM catalog WHERE catalog_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete catalog: %w", err)
	}

	if affected == 0 {
		return domain.NotFoundf("catalog with ID %d not found for deletion (no rows affected)", id)
	}

	return nil
}

// filterClause appends the shared List/Count predicates to base.
//
// The id clause only joins the search when the term parses as an integer.
// LIKE matching on name and description is case-insensitive for ASCII under
// sqlite's default collation; this is a store collation property, not a
// guarantee of the repository.
func filterClause(base string, filter ListFilter) (string, []any) {
	query := base
	args := []any{}

	if filter.SearchTerm != "" {
		like := "%" + filter.SearchTerm + "%"

		if id, err := strconv.ParseInt(filter.SearchTerm, 10, 64); err == nil {
			query += " AND (catalog_id = ? OR catalog_name LIKE ? OR catalog_description LIKE ?)"
			args = append(args, id, like, like)
		} else {
			query += " AND (catalog_name LIKE ? OR catalog_description LIKE ?)"
			args = append(args, like, like)
		}
	}

	if filter.StatusFilter != "" {
		query += " AND status = ?"
		args = append(args, filter.StatusFilter)
	}

	return query, args
}
