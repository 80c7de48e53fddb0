package ddl

import (
	"fmt"
	"strings"

	gddl "autofeat/internal/ddl"
)

// BuildCreateTableSQL returns a MySQL CREATE TABLE statement:
//
//	CREATE TABLE IF NOT EXISTS `db`.`table` (
//	  `col1` TYPE,
//	  `col2` TYPE
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	stmt, err := gddl.BuildCreateTableSQL(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("mysql %w", err)
	}
	return stmt, nil
}

// QuoteIdent quotes a MySQL identifier with backticks, doubling embedded
// backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteFQN quotes each segment of a possibly qualified table name.
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
