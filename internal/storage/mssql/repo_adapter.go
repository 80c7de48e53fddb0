package mssql

import (
	"context"
	"fmt"

	"autofeat/internal/ddl"
	"autofeat/internal/storage"
	msddl "autofeat/internal/storage/mssql/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:   cfg.DSN,
			Table: cfg.Table,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql",
		func(ctx context.Context, repo storage.Repository, table string, cols []ddl.Column) error {
			if err := msddl.EnsureTable(ctx, repo, table, cols); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}

// wrappedRepo adapts *mssql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
