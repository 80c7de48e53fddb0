// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     does not support CREATE TABLE IF NOT EXISTS.
package ddl

import (
	"fmt"
	"strings"

	gddl "autofeat/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE,
//	    [col2] TYPE
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("mssql ddl: table FQN must not be empty")
	}
	clauses, err := gddl.ColumnClauses(t, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}

	fqnQuoted := quoteFQN(fqn)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		fqnQuoted,
		fqnQuoted,
		strings.Join(clauses, ",\n    "),
	), nil
}

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN quotes a possibly schema-qualified table name:
//
//	"dbo.Features" -> [dbo].[Features]
//	"Features"     -> [Features]
func quoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, quoteIdent) }
