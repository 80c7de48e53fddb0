package ddl

import (
	"math"
	"strconv"
	"strings"
)

// InferColumns picks a logical type per header column from the cells of
// rows. A column is Integer when every non-empty cell is a base-10 int64,
// Real when every non-empty cell is a finite float, and Text otherwise. Columns
// with no non-empty cells are Text.
func InferColumns(header []string, rows [][]string) []Column {
	out := make([]Column, len(header))
	for j, name := range header {
		out[j] = Column{Name: name, Type: inferColumn(rows, j)}
	}
	return out
}

func inferColumn(rows [][]string, j int) string {
	seen, allInt, allFloat := false, true, true
	for _, row := range rows {
		if j >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[j])
		if v == "" {
			continue
		}
		seen = true
		if allInt && !isInt(v) {
			allInt = false
		}
		if !isFloat(v) {
			allFloat = false
			break
		}
	}
	switch {
	case !seen:
		return Text
	case allInt:
		return Integer
	case allFloat:
		return Real
	}
	return Text
}

// Value converts a cell to the Go value stored for a column of logical type
// typ. Empty cells become nil.
func Value(typ, cell string) any {
	v := strings.TrimSpace(cell)
	if v == "" {
		return nil
	}
	switch typ {
	case Integer:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case Real:
		if f, ok := parseFinite(v); ok {
			return f
		}
	}
	return cell
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat rejects NaN and the infinities, which ParseFloat accepts but
// SQL REAL columns cannot hold on every backend.
func isFloat(s string) bool {
	_, ok := parseFinite(s)
	return ok
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
