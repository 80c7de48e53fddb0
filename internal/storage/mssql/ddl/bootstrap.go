package ddl

import (
	"context"

	gddl "autofeat/internal/ddl"
)

// Execer runs a single SQL statement.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates the SQL Server table if it does not already exist. The
// script is guarded by IF OBJECT_ID, so repeated calls are no-ops.
func EnsureTable(ctx context.Context, repo Execer, table string, cols []gddl.Column) error {
	sql, err := BuildCreateTableSQL(gddl.FromColumns(table, cols, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
