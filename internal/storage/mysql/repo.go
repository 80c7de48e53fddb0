// Package mysql implements a MySQL-backed storage.Repository.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	mysqlddl "autofeat/internal/storage/mysql/ddl"
)

// maxPlaceholders is the prepared statement parameter limit of the MySQL
// protocol.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration derived from storage.Config.
type Config struct {
	// DSN is a go-sql-driver DSN, e.g. "user:pass@tcp(127.0.0.1:3306)/features".
	DSN string
	// Table is the target table, optionally qualified as "db.table".
	Table string
}

// Repository is a MySQL-backed implementation of storage.Repository.
// CopyFrom sends multi-row INSERT statements inside one transaction.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository parses the DSN, opens a connection pool and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	conn, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(conn)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, func() { db.Close() }, nil
}

// CopyFrom inserts rows into the configured table and returns the number of
// rows inserted. len(row) must equal len(columns) for every row; widths are
// checked before anything is sent.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: CopyFrom: row %d length %d != columns length %d", i, len(row), len(columns))
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	var inserted int64
	for _, chunk := range chunkRows(rows, maxPlaceholders/len(columns)) {
		args := make([]any, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			args = append(args, row...)
		}
		res, err := tx.ExecContext(ctx, insertSQL(r.cfg.Table, columns, len(chunk)), args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert: %w", describe(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = int64(len(chunk))
		}
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a single SQL statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", describe(err))
	}
	return nil
}

// insertSQL renders INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?) for n
// rows.
func insertSQL(table string, columns []string, n int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = mysqlddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(mysqlddl.QuoteFQN(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return b.String()
}

// chunkRows splits rows into slices of at most size rows.
func chunkRows(rows [][]any, size int) [][][]any {
	if size < 1 {
		size = 1
	}
	out := make([][][]any, 0, (len(rows)+size-1)/size)
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}

// describe adds the server error number to driver errors.
func describe(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return fmt.Errorf("%w (error %d)", err, me.Number)
	}
	return err
}
