package ddl

// ColumnDef describes a single nullable column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, DOUBLE PRECISION)
type ColumnDef struct {
	Name    string
	SQLType string
}

// TableDef holds the table name in dotted form ("schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Logical column types produced by InferColumns.
const (
	Integer = "integer"
	Real    = "real"
	Text    = "text"
)

// Column is a destination column with a logical type, before a backend maps
// it to SQL.
type Column struct {
	Name string
	Type string
}

// FromColumns builds a table definition, mapping each logical type through
// mapType.
func FromColumns(fqn string, cols []Column, mapType func(string) string) TableDef {
	defs := make([]ColumnDef, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, ColumnDef{Name: c.Name, SQLType: mapType(c.Type)})
	}
	return TableDef{FQN: fqn, Columns: defs}
}
