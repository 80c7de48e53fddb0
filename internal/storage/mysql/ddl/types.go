// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import "strings"

// MapType maps a logical column type into a MySQL column type. Text maps to
// TEXT, which cannot be part of a key without a prefix length.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "TINYINT(1)"
	case "float", "double", "real":
		return "DOUBLE"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	default:
		return "TEXT"
	}
}
