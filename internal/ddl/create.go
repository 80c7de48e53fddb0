// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE TABLE statements from it.
//
// Backend packages (internal/storage/<backend>/ddl) map logical column types
// to their SQL types and choose identifier quoting.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement, quoting
// every identifier with quote:
//
//	CREATE TABLE IF NOT EXISTS <fqn> (
//	  <col> <type>,
//	  ...
//	);
//
// Every column is nullable; empty cells are stored as NULL.
func BuildCreateTableSQL(t TableDef, quote func(string) string) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	clauses, err := ColumnClauses(t, quote)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(fqn, quote),
		strings.Join(clauses, ",\n  "),
	), nil
}

// ColumnClauses renders one "<col> <type>" clause per column of t.
func ColumnClauses(t TableDef, quote func(string) string) ([]string, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("ddl: column with empty name in table %s", t.FQN)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return nil, fmt.Errorf("ddl: column %s missing SQLType", name)
		}
		cols = append(cols, quote(name)+" "+typ)
	}
	return cols, nil
}

// DoubleQuote quotes an identifier the ANSI way: "name", with embedded
// quotes doubled.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each dot-separated segment of fqn. Empty segments are
// dropped.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
