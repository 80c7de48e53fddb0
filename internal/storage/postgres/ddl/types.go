// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import "strings"

// MapType maps a logical column type to a Postgres SQL type.
//
//	"integer"/"int"/"bigint" -> BIGINT
//	"real"/"float"/"double"  -> DOUBLE PRECISION
//	"bool"/"boolean"         -> BOOLEAN
//	everything else          -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "real", "float", "double":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
