package catalogsvc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkrupp/catalog-manager/internal/domain"
	http_ "github.com/mkrupp/catalog-manager/internal/infra/transport/http"
	"github.com/mkrupp/catalog-manager/internal/repo/catalog"
	"github.com/mkrupp/catalog-manager/internal/svc/catalogsvc"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(_ context.Context, tokenString string) (domain.SessionToken, error) {
	if tokenString != "good-token" {
		return domain.SessionToken{}, domain.ErrInvalidSessionToken
	}

	return domain.SessionToken{UserID: 1}, nil
}

func newTestTransport(t *testing.T) (*catalogsvc.HTTPTransport, *mockCatalogRepo) {
	t.Helper()

	repo := &mockCatalogRepo{}

	svc, err := catalogsvc.NewCatalogService(
		func() (catalog.Repository, error) { return repo, nil },
	)
	if err != nil {
		t.Fatalf("NewCatalogService() error = %v", err)
	}

	return catalogsvc.NewHTTPTransport(svc, stubValidator{}, catalogsvc.HTTPTransportConfig{}), repo
}

func doJSON(t *testing.T, ht http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ht.ServeHTTP(rec, req)

	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) http_.Response {
	t.Helper()

	var resp http_.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return resp
}

const validBody = `{
	"name": "Autumn Collection",
	"description": "Seasonal items for autumn.",
	"start_date": "2099-01-01",
	"end_date": "2099-12-31",
	"status": "active"
}`

func TestCreateEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("requires session token", func(t *testing.T) {
		t.Parallel()

		ht, repo := newTestTransport(t)

		rec := doJSON(t, ht, http.MethodPost, "/api/catalogs", "", validBody)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}

		if repo.calls != 0 {
			t.Errorf("repository called %d times without token, want 0", repo.calls)
		}
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		t.Parallel()

		ht, _ := newTestTransport(t)

		rec := doJSON(t, ht, http.MethodPost, "/api/catalogs", "stale-token", validBody)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("creates catalog", func(t *testing.T) {
		t.Parallel()

		ht, repo := newTestTransport(t)

		rec := doJSON(t, ht, http.MethodPost, "/api/catalogs", "good-token", validBody)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}

		resp := decodeResponse(t, rec)
		if resp.Message != "Catalog created successfully." {
			t.Errorf("message = %q", resp.Message)
		}

		stored := repo.catalogs[1]
		if stored.UserID != 1 {
			t.Errorf("stored owner = %d, want authenticated user 1", stored.UserID)
		}
	})

	t.Run("maps validation failure to 400", func(t *testing.T) {
		t.Parallel()

		ht, _ := newTestTransport(t)

		body := strings.Replace(validBody, "active", "pending", 1)

		rec := doJSON(t, ht, http.MethodPost, "/api/catalogs", "good-token", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		resp := decodeResponse(t, rec)
		if resp.Message != "Validation Error" {
			t.Errorf("message = %q, want %q", resp.Message, "Validation Error")
		}

		if !strings.Contains(resp.Details, "Invalid status") {
			t.Errorf("details = %q, want status complaint", resp.Details)
		}
	})

	t.Run("rejects non-JSON body", func(t *testing.T) {
		t.Parallel()

		ht, _ := newTestTransport(t)

		rec := doJSON(t, ht, http.MethodPost, "/api/catalogs", "good-token", "not json")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestGetEndpoint(t *testing.T) {
	t.Parallel()

	ht, _ := newTestTransport(t)

	created := doJSON(t, ht, http.MethodPost, "/api/catalogs", "good-token", validBody)
	if created.Code != http.StatusCreated {
		t.Fatalf("seed create status = %d", created.Code)
	}

	t.Run("public read", func(t *testing.T) {
		t.Parallel()

		rec := doJSON(t, ht, http.MethodGet, "/api/catalogs/1", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		resp := decodeResponse(t, rec)
		if resp.Message != "Catalog retrieved successfully." {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("missing catalog", func(t *testing.T) {
		t.Parallel()

		rec := doJSON(t, ht, http.MethodGet, "/api/catalogs/999", "", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}

		resp := decodeResponse(t, rec)
		if resp.Message != "Not Found" {
			t.Errorf("message = %q, want %q", resp.Message, "Not Found")
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		t.Parallel()

		rec := doJSON(t, ht, http.MethodGet, "/api/catalogs/abc", "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestListEndpoint(t *testing.T) {
	t.Parallel()

	ht, _ := newTestTransport(t)

	rec := doJSON(t, ht, http.MethodGet, "/api/catalogs?search=autumn&status=bogus", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeResponse(t, rec)

	if resp.TotalCatalogs == nil || resp.Page == nil || resp.PerPage == nil {
		t.Fatalf("listing metadata missing from response: %s", rec.Body.String())
	}

	if *resp.Page != catalogsvc.DefaultPage || *resp.PerPage != catalogsvc.DefaultPerPage {
		t.Errorf("page = %d, per_page = %d, want defaults", *resp.Page, *resp.PerPage)
	}

	if resp.Data == nil {
		t.Error("data missing, want empty array")
	}
}

func TestUpdateAndDeleteEndpoints(t *testing.T) {
	t.Parallel()

	ht, repo := newTestTransport(t)

	created := doJSON(t, ht, http.MethodPost, "/api/catalogs", "good-token", validBody)
	if created.Code != http.StatusCreated {
		t.Fatalf("seed create status = %d", created.Code)
	}

	t.Run("update requires token", func(t *testing.T) {
		rec := doJSON(t, ht, http.MethodPut, "/api/catalogs/1", "", validBody)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("update", func(t *testing.T) {
		body := strings.Replace(validBody, "Autumn Collection", "Winter Collection", 1)

		rec := doJSON(t, ht, http.MethodPut, "/api/catalogs/1", "good-token", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}

		resp := decodeResponse(t, rec)
		if resp.Message != "Catalog ID 1 updated successfully." {
			t.Errorf("message = %q", resp.Message)
		}

		if repo.catalogs[1].Name != "Winter Collection" {
			t.Errorf("stored name = %q, want updated", repo.catalogs[1].Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, ht, http.MethodDelete, "/api/catalogs/1", "good-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		resp := decodeResponse(t, rec)
		if resp.Message != "Catalog ID 1 deleted successfully." {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("delete again", func(t *testing.T) {
		rec := doJSON(t, ht, http.MethodDelete, "/api/catalogs/1", "good-token", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
