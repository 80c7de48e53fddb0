package ddl

import (
	"context"

	gddl "autofeat/internal/ddl"
)

// Execer runs a single SQL statement.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates table with cols if it does not exist.
func EnsureTable(ctx context.Context, repo Execer, table string, cols []gddl.Column) error {
	sql, err := BuildCreateTableSQL(gddl.FromColumns(table, cols, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
