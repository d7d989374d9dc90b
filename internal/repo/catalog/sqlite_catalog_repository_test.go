package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/db"
	"github.com/mkrupp/catalog-manager/internal/repo/catalog"
)

func newTestRepository(t *testing.T) catalog.Repository {
	t.Helper()

	gatewayFactory := db.NewGatewayFactory(db.GatewayConfig{
		DatabasePath:      filepath.Join(t.TempDir(), "test.db"),
		BusyTimeoutMillis: 1000,
	})

	repo, err := catalog.SQLiteCatalogRepositoryFactory(gatewayFactory)()
	if err != nil {
		t.Fatalf("SQLiteCatalogRepositoryFactory() error = %v", err)
	}

	return repo
}

func testCatalog(name string) domain.Catalog {
	return domain.Catalog{
		Name:        name,
		Description: "A test catalog.",
		StartDate:   "2099-01-01",
		EndDate:     "2099-12-31",
		Status:      domain.CatalogStatusActive,
	}
}

func TestCreateAndGetByID(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	id, err := repo.Create(context.Background(), testCatalog("Summer Sale"), 7)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.ID != id || got.Name != "Summer Sale" || got.UserID != 7 {
		t.Errorf("GetByID() = %+v, want created catalog owned by 7", got)
	}

	if got.StartDate != "2099-01-01" || got.EndDate != "2099-12-31" {
		t.Errorf("GetByID() dates = %q..%q, want stored verbatim", got.StartDate, got.EndDate)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	// Missing rows must keep reporting not-found on repeated calls.
	for range 2 {
		if _, err := repo.GetByID(context.Background(), 12345); !errors.Is(err, domain.ErrDataNotFound) {
			t.Errorf("GetByID() error = %v, want ErrDataNotFound", err)
		}
	}
}

func TestListPagination(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	for i := 1; i <= 12; i++ {
		if _, err := repo.Create(context.Background(), testCatalog(fmt.Sprintf("Catalog %02d", i)), 1); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		page, err := repo.List(context.Background(), catalog.ListFilter{}, catalog.Page{Number: 1, PerPage: 5})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(page) != 5 {
			t.Fatalf("List() returned %d rows, want 5", len(page))
		}

		if page[0].ID != 12 || page[4].ID != 8 {
			t.Errorf("List() page 1 ids = %d..%d, want 12..8", page[0].ID, page[4].ID)
		}
	})

	t.Run("second page continues", func(t *testing.T) {
		t.Parallel()

		page, err := repo.List(context.Background(), catalog.ListFilter{}, catalog.Page{Number: 2, PerPage: 5})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(page) != 5 || page[0].ID != 7 || page[4].ID != 3 {
			t.Fatalf("List() page 2 = %d rows starting at %d, want 5 starting at 7", len(page), page[0].ID)
		}
	})

	t.Run("past the end", func(t *testing.T) {
		t.Parallel()

		page, err := repo.List(context.Background(), catalog.ListFilter{}, catalog.Page{Number: 4, PerPage: 5})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(page) != 0 {
			t.Errorf("List() past the end returned %d rows, want 0", len(page))
		}
	})
}

func TestListFilters(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	summer := testCatalog("Summer Sale")
	summer.Description = "Discounted beachwear."

	winter := testCatalog("Winter Stock")
	winter.Description = "Cold season essentials."
	winter.Status = domain.CatalogStatusInactive

	summerID, err := repo.Create(context.Background(), summer, 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := repo.Create(context.Background(), winter, 1); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("search matches name", func(t *testing.T) {
		t.Parallel()

		rows, err := repo.List(context.Background(),
			catalog.ListFilter{SearchTerm: "Summer"}, catalog.Page{Number: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(rows) != 1 || rows[0].Name != "Summer Sale" {
			t.Errorf("List() = %+v, want only the summer catalog", rows)
		}
	})

	t.Run("search matches description", func(t *testing.T) {
		t.Parallel()

		rows, err := repo.List(context.Background(),
			catalog.ListFilter{SearchTerm: "season"}, catalog.Page{Number: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(rows) != 1 || rows[0].Name != "Winter Stock" {
			t.Errorf("List() = %+v, want only the winter catalog", rows)
		}
	})

	t.Run("numeric search matches id", func(t *testing.T) {
		t.Parallel()

		rows, err := repo.List(context.Background(),
			catalog.ListFilter{SearchTerm: fmt.Sprintf("%d", summerID)}, catalog.Page{Number: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(rows) != 1 || rows[0].ID != summerID {
			t.Errorf("List() = %+v, want the catalog with id %d", rows, summerID)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		t.Parallel()

		rows, err := repo.List(context.Background(),
			catalog.ListFilter{StatusFilter: domain.CatalogStatusInactive}, catalog.Page{Number: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(rows) != 1 || rows[0].Status != domain.CatalogStatusInactive {
			t.Errorf("List() = %+v, want only inactive catalogs", rows)
		}
	})

	t.Run("count matches filter", func(t *testing.T) {
		t.Parallel()

		total, err := repo.Count(context.Background(), catalog.ListFilter{})
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}

		if total != 2 {
			t.Errorf("Count() = %d, want 2", total)
		}

		filtered, err := repo.Count(context.Background(), catalog.ListFilter{SearchTerm: "Summer"})
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}

		if filtered != 1 {
			t.Errorf("Count() filtered = %d, want 1", filtered)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()

		rows, err := repo.List(context.Background(),
			catalog.ListFilter{SearchTerm: "nonexistent"}, catalog.Page{Number: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(rows) != 0 {
			t.Errorf("List() = %+v, want no rows", rows)
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	id, err := repo.Create(context.Background(), testCatalog("Before"), 3)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated := testCatalog("After")
	updated.Status = domain.CatalogStatusInactive

	if err := repo.Update(context.Background(), id, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Name != "After" || got.Status != domain.CatalogStatusInactive {
		t.Errorf("GetByID() after update = %+v", got)
	}

	if got.UserID != 3 {
		t.Errorf("Update() changed owner to %d, want 3 untouched", got.UserID)
	}

	if err := repo.Update(context.Background(), 999, updated); !errors.Is(err, domain.ErrDataNotFound) {
		t.Errorf("Update() missing row error = %v, want ErrDataNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	id, err := repo.Create(context.Background(), testCatalog("Doomed"), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, domain.ErrDataNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrDataNotFound", err)
	}

	if err := repo.Delete(context.Background(), id); !errors.Is(err, domain.ErrDataNotFound) {
		t.Errorf("Delete() repeated error = %v, want ErrDataNotFound", err)
	}
}

// vanishingGateway delegates to a real gateway but removes the targeted row
// right before the first UPDATE or DELETE passes through, reproducing a
// concurrent delete landing between the existence check and the mutation.
type vanishingGateway struct {
	catalog.Gateway

	vanishID int64
	armed    bool
}

func (g *vanishingGateway) Mutate(ctx context.Context, query string, args ...any) (int64, error) {
	trimmed := strings.TrimSpace(query)

	if g.armed && (strings.HasPrefix(trimmed, "UPDATE") || strings.HasPrefix(trimmed, "DELETE")) {
		g.armed = false

		if _, err := g.Gateway.Mutate(ctx, "DELETE FROM catalog WHERE catalog_id = ?", g.vanishID); err != nil {
			return 0, err
		}
	}

	return g.Gateway.Mutate(ctx, query, args...)
}

func TestMutationAfterConcurrentDelete(t *testing.T) {
	t.Parallel()

	newRacingRepo := func(t *testing.T) (catalog.Repository, *vanishingGateway) {
		t.Helper()

		gw, err := db.NewGateway(db.GatewayConfig{
			DatabasePath:      filepath.Join(t.TempDir(), "test.db"),
			BusyTimeoutMillis: 1000,
		})
		if err != nil {
			t.Fatalf("NewGateway() error = %v", err)
		}

		racing := &vanishingGateway{Gateway: gw}

		repo, err := catalog.NewSQLiteCatalogRepository(racing)
		if err != nil {
			t.Fatalf("NewSQLiteCatalogRepository() error = %v", err)
		}

		return repo, racing
	}

	t.Run("update", func(t *testing.T) {
		t.Parallel()

		repo, racing := newRacingRepo(t)

		id, err := repo.Create(context.Background(), testCatalog("Doomed"), 1)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		racing.vanishID = id
		racing.armed = true

		// The existence check passes, then the row is gone by the time the
		// UPDATE runs; zero affected rows must surface as not-found.
		err = repo.Update(context.Background(), id, testCatalog("Too Late"))
		if !errors.Is(err, domain.ErrDataNotFound) {
			t.Errorf("Update() error = %v, want ErrDataNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		repo, racing := newRacingRepo(t)

		id, err := repo.Create(context.Background(), testCatalog("Doomed"), 1)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		racing.vanishID = id
		racing.armed = true

		err = repo.Delete(context.Background(), id)
		if !errors.Is(err, domain.ErrDataNotFound) {
			t.Errorf("Delete() error = %v, want ErrDataNotFound", err)
		}
	})
}
