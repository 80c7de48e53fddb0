// Package all wires all built-in storage backends into the storage factory.
//
// Importing it for side effects registers the repository factory and DDL
// bootstrapper of each backend:
//
//   - "postgres" (autofeat/internal/storage/postgres)
//   - "mssql"    (autofeat/internal/storage/mssql)
//   - "mysql"    (autofeat/internal/storage/mysql)
//   - "sqlite"   (autofeat/internal/storage/sqlite)
//
// Typical usage:
//
//	import _ "autofeat/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: job.Storage.Kind, DSN: job.Storage.DB.DSN, Table: job.Storage.DB.Table})
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//	sink := &storage.Sink{Repo: repo, Kind: job.Storage.Kind, Table: job.Storage.DB.Table, AutoCreate: job.Storage.DB.AutoCreateTable}
//
// Binaries that need only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "autofeat/internal/storage/mssql"
	_ "autofeat/internal/storage/mysql"
	_ "autofeat/internal/storage/postgres"
	_ "autofeat/internal/storage/sqlite"
)
