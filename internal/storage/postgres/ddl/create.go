package ddl

import (
	"strings"

	gddl "autofeat/internal/ddl"
)

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// for def, with every identifier double-quoted.
func BuildCreateTableSQL(def gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(def, quoteIdent)
}

// quoteIdent quotes a single identifier segment for Postgres.
func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// quoteFQN quotes a possibly schema-qualified name like "public.features".
func quoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, quoteIdent) }
