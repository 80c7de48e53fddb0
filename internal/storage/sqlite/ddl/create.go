// Package ddl provides SQLite-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses simple double-quoted identifiers: "table", "col".
//   - Emits CREATE TABLE IF NOT EXISTS with nullable columns.
package ddl

import (
	"fmt"

	gddl "autofeat/internal/ddl"
)

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE,
//	  "col2" TYPE
//	);
//
// Dotted names such as "main.features" are quoted segment by segment.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	stmt, err := gddl.BuildCreateTableSQL(t, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("sqlite %w", err)
	}
	return stmt, nil
}

func quoteIdent(id string) string { return gddl.DoubleQuote(id) }

func quoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, quoteIdent) }
