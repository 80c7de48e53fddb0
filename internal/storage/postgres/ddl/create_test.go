package ddl

import (
	"context"
	"strconv"
	"strings"
	"testing"

	gddl "autofeat/internal/ddl"
)

// TestQuoteIdent verifies Postgres identifier quoting and escaping for single
// identifier segments in quoteIdent.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "name", want: `"name"`},
		{name: "empty", in: "", want: `""`},
		{name: "with space", in: "user name", want: `"user name"`},
		{name: "with double quote", in: `weird"name`, want: `"weird""name"`},
		{name: "multiple quotes", in: `"a""b"`, want: `"""a""""b"""`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := quoteIdent(tt.in)
			if got != tt.want {
				t.Fatalf("quoteIdent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestQuoteFQN verifies quoting and splitting behavior for schema-qualified
// table names in quoteFQN.
func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple table", in: "users", want: `"users"`},
		{name: "schema and table", in: "public.users", want: `"public"."users"`},
		{name: "three segments", in: "a.b.c", want: `"a"."b"."c"`},
		{name: "with empty segments", in: ".public..users.", want: `"public"."users"`},
		{name: "with quotes", in: `sch."table"`, want: `"sch"."""table"""`},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := quoteFQN(tt.in)
			if got != tt.want {
				t.Fatalf("quoteFQN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestBuildCreateTableSQLErrors validates error handling and basic input
// validation in BuildCreateTableSQL.
func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  gddl.TableDef
	}{
		{
			name: "empty FQN",
			def: gddl.TableDef{
				FQN:     "   ",
				Columns: []gddl.ColumnDef{{Name: "id", SQLType: "BIGINT"}},
			},
		},
		{
			name: "no columns",
			def: gddl.TableDef{
				FQN:     "public.users",
				Columns: nil,
			},
		},
		{
			name: "column empty name",
			def: gddl.TableDef{
				FQN: "public.users",
				Columns: []gddl.ColumnDef{
					{Name: "id", SQLType: "BIGINT"},
					{Name: "   ", SQLType: "TEXT"},
				},
			},
		},
		{
			name: "column missing SQLType",
			def: gddl.TableDef{
				FQN: "public.users",
				Columns: []gddl.ColumnDef{
					{Name: "id", SQLType: ""},
				},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateTableSQL(tt.def)
			if err == nil {
				t.Fatalf("BuildCreateTableSQL(%+v) error = nil, want non-nil", tt.def)
			}
			if got != "" {
				t.Fatalf("BuildCreateTableSQL(%+v) SQL = %q, want empty string on error", tt.def, got)
			}
		})
	}
}

// TestBuildCreateTableSQLBasic verifies that BuildCreateTableSQL renders a
// schema-qualified table with one nullable column per definition.
func TestBuildCreateTableSQLBasic(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "public.features",
		Columns: []gddl.ColumnDef{
			{Name: "Score", SQLType: "DOUBLE PRECISION"},
			{Name: "Score_B0", SQLType: "BIGINT"},
			{Name: "Label", SQLType: "TEXT"},
		},
	}

	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}

	want := "" +
		`CREATE TABLE IF NOT EXISTS "public"."features" (` + "\n" +
		`  "Score" DOUBLE PRECISION,` + "\n" +
		`  "Score_B0" BIGINT,` + "\n" +
		`  "Label" TEXT` + "\n" +
		`);`

	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

// TestBuildCreateTableSQLInteractionName verifies that interaction names,
// which contain ':', are quoted as a single identifier.
func TestBuildCreateTableSQLInteractionName(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN:     "features",
		Columns: []gddl.ColumnDef{{Name: "Score:Active", SQLType: "DOUBLE PRECISION"}},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	if !strings.Contains(got, `"Score:Active" DOUBLE PRECISION`) {
		t.Fatalf("SQL column clause missing:\n%s", got)
	}
}

// BenchmarkBuildCreateTableSQLSmall measures the performance of
// BuildCreateTableSQL for a small table definition.
func BenchmarkBuildCreateTableSQLSmall(b *testing.B) {
	def := gddl.TableDef{
		FQN: "public.users",
		Columns: []gddl.ColumnDef{
			{Name: "Score", SQLType: "DOUBLE PRECISION"},
			{Name: "Score_B0", SQLType: "BIGINT"},
			{Name: "Label", SQLType: "TEXT"},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildCreateTableSQL(def); err != nil {
			b.Fatalf("BuildCreateTableSQL() error = %v", err)
		}
	}
}

// BenchmarkBuildCreateTableSQLWide measures the performance of
// BuildCreateTableSQL for a wide table with many columns.
func BenchmarkBuildCreateTableSQLWide(b *testing.B) {
	const numCols = 64

	cols := make([]gddl.ColumnDef, 0, numCols)
	for i := 0; i < numCols; i++ {
		cols = append(cols, gddl.ColumnDef{
			Name:    "col_" + strconv.Itoa(i),
			SQLType: "TEXT",
		})
	}

	def := gddl.TableDef{
		FQN:     "public.wide_table",
		Columns: cols,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildCreateTableSQL(def); err != nil {
			b.Fatalf("BuildCreateTableSQL() error = %v", err)
		}
	}
}

type execRecorder struct{ stmts []string }

func (e *execRecorder) Exec(_ context.Context, sql string) error {
	e.stmts = append(e.stmts, sql)
	return nil
}

// TestEnsureTable verifies that logical columns are mapped and rendered into
// a single CREATE statement.
func TestEnsureTable(t *testing.T) {
	t.Parallel()

	rec := &execRecorder{}
	cols := []gddl.Column{
		{Name: "Score", Type: gddl.Real},
		{Name: "Score_B0", Type: gddl.Integer},
		{Name: "City", Type: gddl.Text},
	}
	if err := EnsureTable(context.Background(), rec, "public.features", cols); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	want := "" +
		`CREATE TABLE IF NOT EXISTS "public"."features" (` + "\n" +
		`  "Score" DOUBLE PRECISION,` + "\n" +
		`  "Score_B0" BIGINT,` + "\n" +
		`  "City" TEXT` + "\n" +
		`);`
	if len(rec.stmts) != 1 || rec.stmts[0] != want {
		t.Fatalf("statements = %q, want %q", rec.stmts, want)
	}
}
