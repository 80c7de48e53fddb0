package storage

import (
	"context"
	"strings"
	"testing"

	"autofeat/internal/ddl"
)

// TestEnsureTable_Dispatch verifies that EnsureTable forwards to the
// bootstrapper registered for the kind.
func TestEnsureTable_Dispatch(t *testing.T) {
	t.Parallel()

	var gotTable string
	var gotCols []ddl.Column
	RegisterDDL("ddl-fake", func(_ context.Context, _ Repository, table string, cols []ddl.Column) error {
		gotTable, gotCols = table, cols
		return nil
	})

	cols := []ddl.Column{{Name: "Score", Type: ddl.Real}}
	if err := EnsureTable(context.Background(), "ddl-fake", &fakeRepo{}, "features", cols); err != nil {
		t.Fatalf("EnsureTable error: %v", err)
	}
	if gotTable != "features" || len(gotCols) != 1 || gotCols[0].Name != "Score" {
		t.Fatalf("bootstrapper got table=%q cols=%v", gotTable, gotCols)
	}
}

// TestEnsureTable_Unregistered verifies the error for an unknown kind.
func TestEnsureTable_Unregistered(t *testing.T) {
	t.Parallel()

	err := EnsureTable(context.Background(), "no-such-kind", &fakeRepo{}, "t", nil)
	if err == nil || !strings.Contains(err.Error(), `storage.kind="no-such-kind"`) {
		t.Fatalf("EnsureTable error = %v", err)
	}
}
