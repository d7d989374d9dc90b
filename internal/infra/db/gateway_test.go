package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/db"
)

func newTestGateway(t *testing.T) *db.Gateway {
	t.Helper()

	gw, err := db.NewGateway(db.GatewayConfig{
		DatabasePath:      filepath.Join(t.TempDir(), "test.db"),
		BusyTimeoutMillis: 1000,
	})
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}

	t.Cleanup(func() { _ = gw.Close() })

	if _, err := gw.Mutate(context.Background(),
		"CREATE TABLE things (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)",
	); err != nil {
		t.Fatalf("create table: %v", err)
	}

	return gw
}

func TestInsertReturnsGeneratedID(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)

	first, err := gw.Insert(context.Background(), "INSERT INTO things (name) VALUES (?)", "one")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	second, err := gw.Insert(context.Background(), "INSERT INTO things (name) VALUES (?)", "two")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if first != 1 || second != 2 {
		t.Errorf("Insert() ids = %d, %d, want 1, 2", first, second)
	}
}

func TestMutateReportsAffectedRows(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)

	for _, name := range []string{"one", "two", "three"} {
		if _, err := gw.Insert(context.Background(), "INSERT INTO things (name) VALUES (?)", name); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	affected, err := gw.Mutate(context.Background(), "UPDATE things SET name = ? WHERE id > ?", "renamed", 1)
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	if affected != 2 {
		t.Errorf("Mutate() affected = %d, want 2", affected)
	}

	affected, err = gw.Mutate(context.Background(), "DELETE FROM things WHERE id = ?", 99)
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	if affected != 0 {
		t.Errorf("Mutate() affected = %d, want 0 for missing row", affected)
	}
}

func TestFetchOne(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)

	if _, err := gw.Insert(context.Background(), "INSERT INTO things (name) VALUES (?)", "one"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	t.Run("row present", func(t *testing.T) {
		t.Parallel()

		var name string

		found, err := gw.FetchOne(context.Background(),
			"SELECT name FROM things WHERE id = ?", []any{1},
			func(row db.RowScanner) error { return row.Scan(&name) },
		)
		if err != nil {
			t.Fatalf("FetchOne() error = %v", err)
		}

		if !found || name != "one" {
			t.Errorf("FetchOne() = (%v, %q), want (true, %q)", found, name, "one")
		}
	})

	t.Run("row absent", func(t *testing.T) {
		t.Parallel()

		found, err := gw.FetchOne(context.Background(),
			"SELECT name FROM things WHERE id = ?", []any{42},
			func(db.RowScanner) error { return nil },
		)
		if err != nil {
			t.Fatalf("FetchOne() error = %v", err)
		}

		if found {
			t.Error("FetchOne() found = true for missing row")
		}
	})
}

func TestFetchAllPreservesStatementOrder(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)

	for _, name := range []string{"one", "two", "three"} {
		if _, err := gw.Insert(context.Background(), "INSERT INTO things (name) VALUES (?)", name); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	var names []string

	err := gw.FetchAll(context.Background(),
		"SELECT name FROM things ORDER BY id DESC", nil,
		func(row db.RowScanner) error {
			var name string
			if err := row.Scan(&name); err != nil {
				return err
			}

			names = append(names, name)

			return nil
		},
	)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	want := []string{"three", "two", "one"}
	for i, name := range want {
		if i >= len(names) || names[i] != name {
			t.Fatalf("FetchAll() order = %v, want %v", names, want)
		}
	}
}

func TestDriverErrorsSurfaceAsDatabaseConnection(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)

	if _, err := gw.Mutate(context.Background(), "UPDATE no_such_table SET x = 1"); !errors.Is(err, domain.ErrDatabaseConnection) {
		t.Errorf("Mutate() error = %v, want ErrDatabaseConnection", err)
	}

	if _, err := gw.FetchOne(context.Background(), "SELECT * FROM no_such_table", nil,
		func(db.RowScanner) error { return nil },
	); !errors.Is(err, domain.ErrDatabaseConnection) {
		t.Errorf("FetchOne() error = %v, want ErrDatabaseConnection", err)
	}

	if err := gw.FetchAll(context.Background(), "SELECT * FROM no_such_table", nil,
		func(db.RowScanner) error { return nil },
	); !errors.Is(err, domain.ErrDatabaseConnection) {
		t.Errorf("FetchAll() error = %v, want ErrDatabaseConnection", err)
	}
}

func TestSharedGatewayFactory(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	factory := db.SharedGatewayFactory(gw)

	for i := 0; i < 2; i++ {
		got, err := factory()
		if err != nil {
			t.Fatalf("factory() error = %v", err)
		}

		if got != gw {
			t.Errorf("factory() = %p, want the shared gateway %p", got, gw)
		}
	}
}
