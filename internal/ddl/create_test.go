package ddl

import (
	"strconv"
	"strings"
	"testing"
)

// TestBuildCreateTableSQL verifies that BuildCreateTableSQL generates the
// expected CREATE TABLE statements and surfaces errors for invalid inputs.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		wantSQL     string
		wantErr     bool
		errContains string
	}{
		{
			name: "empty FQN returns error",
			def: TableDef{
				FQN:     "",
				Columns: []ColumnDef{{Name: "id", SQLType: "INT"}},
			},
			wantErr:     true,
			errContains: "table FQN must not be empty",
		},
		{
			name: "no columns returns error",
			def: TableDef{
				FQN:     "public.t",
				Columns: nil,
			},
			wantErr:     true,
			errContains: "at least one column is required",
		},
		{
			name: "column with empty name returns error",
			def: TableDef{
				FQN: "t",
				Columns: []ColumnDef{
					{Name: "", SQLType: "INT"},
				},
			},
			wantErr:     true,
			errContains: "column with empty name",
		},
		{
			name: "column with empty type returns error",
			def: TableDef{
				FQN: "t",
				Columns: []ColumnDef{
					{Name: "id", SQLType: ""},
				},
			},
			wantErr:     true,
			errContains: "missing SQLType",
		},
		{
			name: "single column",
			def: TableDef{
				FQN:     "t",
				Columns: []ColumnDef{{Name: "Score", SQLType: "REAL"}},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"t\" (\n  \"Score\" REAL\n);",
		},
		{
			name: "feature columns keep their order",
			def: TableDef{
				FQN: "ml.features",
				Columns: []ColumnDef{
					{Name: "Score", SQLType: "REAL"},
					{Name: "Score_B0", SQLType: "INTEGER"},
					{Name: "Score:Active", SQLType: "REAL"},
					{Name: "Label", SQLType: "TEXT"},
				},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"ml\".\"features\" (\n  \"Score\" REAL,\n  \"Score_B0\" INTEGER,\n  \"Score:Active\" REAL,\n  \"Label\" TEXT\n);",
		},
		{
			name: "whitespace around names and types is trimmed",
			def: TableDef{
				FQN: "  my_schema.my_table  ",
				Columns: []ColumnDef{
					{Name: "  col1  ", SQLType: "  INT  "},
				},
			},
			// Note: FQN is trimmed, and column name/type are trimmed.
			wantSQL: "CREATE TABLE IF NOT EXISTS \"my_schema\".\"my_table\" (\n  \"col1\" INT\n);",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotSQL, err := BuildCreateTableSQL(tt.def, DoubleQuote)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("BuildCreateTableSQL() error = nil, want non-nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("BuildCreateTableSQL() error = %q, want substring %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("BuildCreateTableSQL() unexpected error = %v", err)
			}
			if gotSQL != tt.wantSQL {
				t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", gotSQL, tt.wantSQL)
			}
		})
	}
}

// TestQuoteFQN verifies segment quoting, embedded quote escaping and empty
// segment handling.
func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"t":               `"t"`,
		"public.features": `"public"."features"`,
		`we"ird`:          `"we""ird"`,
		"a..b":            `"a"."b"`,
	}
	for in, want := range cases {
		if got := QuoteFQN(in, DoubleQuote); got != want {
			t.Errorf("QuoteFQN(%q) = %s, want %s", in, got, want)
		}
	}
}

// TestFromColumns verifies that logical columns become column definitions
// with mapped SQL types.
func TestFromColumns(t *testing.T) {
	t.Parallel()

	mapType := func(typ string) string { return strings.ToUpper(typ) }
	def := FromColumns("out", []Column{{Name: "a", Type: Integer}, {Name: "b", Type: Text}}, mapType)

	if def.FQN != "out" || len(def.Columns) != 2 {
		t.Fatalf("FromColumns() = %+v", def)
	}
	for i, want := range []string{"INTEGER", "TEXT"} {
		c := def.Columns[i]
		if c.SQLType != want {
			t.Errorf("column %d = %+v, want %s", i, c, want)
		}
	}
}

// benchmarkSink is a package-level variable used to prevent the compiler from
// optimizing away the results of BuildCreateTableSQL in benchmarks.
var benchmarkSink string

// BenchmarkBuildCreateTableSQL_SmallSchema measures the performance of
// BuildCreateTableSQL for a small table definition with just a few columns.
//
// This is representative of many OLTP-style tables or small dimension tables.
func BenchmarkBuildCreateTableSQL_SmallSchema(b *testing.B) {
	def := TableDef{
		FQN: "small_table",
		Columns: []ColumnDef{
			{Name: "Score", SQLType: "REAL"},
			{Name: "Score_B0", SQLType: "INTEGER"},
			{Name: "Label", SQLType: "TEXT"},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := BuildCreateTableSQL(def, DoubleQuote)
		if err != nil {
			b.Fatalf("BuildCreateTableSQL() error = %v", err)
		}
		benchmarkSink = sql
	}
}

// BenchmarkBuildCreateTableSQL_LargeSchema measures the performance of
// BuildCreateTableSQL for a wider table definition with many columns.
//
// This simulates wide fact tables or denormalized analytical tables.
func BenchmarkBuildCreateTableSQL_LargeSchema(b *testing.B) {
	cols := make([]ColumnDef, 0, 64)
	for i := 0; i < 64; i++ {
		cols = append(cols, ColumnDef{
			Name:    "col_" + strconv.Itoa(i),
			SQLType: "TEXT",
		})
	}
	def := TableDef{
		FQN:     "large_table",
		Columns: cols,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := BuildCreateTableSQL(def, DoubleQuote)
		if err != nil {
			b.Fatalf("BuildCreateTableSQL() error = %v", err)
		}
		benchmarkSink = sql
	}
}
