package ddl

import "strings"

// MapType maps a logical column type into a SQL Server column type.
// Unknown or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "real", "float", "double":
		return "FLOAT"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	default:
		return "NVARCHAR(MAX)"
	}
}
