package storage

import (
	"context"
	"fmt"
	"sync"

	"autofeat/internal/ddl"
)

// DDLBootstrapper creates table (if it does not exist) with the given
// logical columns, using repo.Exec. Backends register one per storage kind
// at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, cols []ddl.Column) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, cols []ddl.Column) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, table, cols)
}
