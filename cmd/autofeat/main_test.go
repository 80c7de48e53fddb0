package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofeat/internal/features"
	"autofeat/internal/table"
)

// run executes the root command in-process and returns what it printed.
// Flag state is package-global, so every call resets it first.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cfgPath, verbose = "autofeat.yaml", false
	vectorizeFlags.in, vectorizeFlags.out = "", ""
	bucketsFlags.in, bucketsFlags.column, bucketsFlags.k, bucketsFlags.comma = "", "", 4, ""

	var out, errb bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errb)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

const scoreJob = `job: scores
attributes:
  - name: Score
    type: numeric
buckets:
  default: 3
input:
  paths: [%DIR%/in.tsv]
output:
  path: %DIR%/out.tsv
schema:
  path: %DIR%/schema.json
reconcile:
  overwrite_all_features: true
`

func TestReconcileCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "job.yaml", strings.ReplaceAll(scoreJob, "%DIR%", dir))
	writeFile(t, dir, "in.tsv", "Score\tNote\n1\ta\n2\tb\n2.0\tc\n2\td\n5\te\n9\tf\n20\tg\n")

	stdout, _, err := run(t, "reconcile", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "7 rows, 5 columns (4 features)")

	lines := readLines(t, filepath.Join(dir, "out.tsv"))
	require.Len(t, lines, 8)
	assert.Equal(t, "Score\tScore_B0\tScore_B1\tScore_B2\tNote", lines[0])
	assert.Equal(t, "1\t1\t0\t0\ta", lines[1])
	assert.Equal(t, "20\t0\t0\t1\tg", lines[7])

	info, err := os.Stat(filepath.Join(dir, "schema.json"))
	require.NoError(t, err)
	assert.Equal(t, table.DefaultFileMode, info.Mode().Perm())
	info, err = os.Stat(filepath.Join(dir, "out.tsv"))
	require.NoError(t, err)
	assert.Equal(t, table.DefaultFileMode, info.Mode().Perm())

	// The persisted schema is picked up by later commands.
	stdout, _, err = run(t, "schema", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Score_B2")
	assert.Contains(t, stdout, "RANGE")

	// A second run over the same input reproduces the same table.
	_, _, err = run(t, "reconcile", "--config", cfg)
	require.NoError(t, err)
	again := readLines(t, filepath.Join(dir, "out.tsv"))
	assert.Equal(t, lines, again)
}

func TestReconcileCommandStoresToSQLite(t *testing.T) {
	dir := t.TempDir()
	job := strings.ReplaceAll(scoreJob, "%DIR%", dir) + `storage:
  kind: sqlite
  db:
    dsn: ` + filepath.Join(dir, "features.db") + `
    table: features
    auto_create_table: true
`
	cfg := writeFile(t, dir, "job.yaml", job)
	writeFile(t, dir, "in.tsv", "Score\tNote\n1\ta\n5\tb\n20\tc\n")

	_, _, err := run(t, "reconcile", "--config", cfg)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "features.db"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		cfg := writeFile(t, dir, "ok.yaml", strings.ReplaceAll(scoreJob, "%DIR%", dir))
		stdout, _, err := run(t, "validate", "--config", cfg)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Configuration is valid")
	})

	t.Run("invalid", func(t *testing.T) {
		cfg := writeFile(t, dir, "bad.yaml", `job: ""
attributes:
  - name: Score
    type: numeric
output:
  path: out.tsv
`)
		_, stderr, err := run(t, "validate", "--config", cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is invalid")
		assert.Contains(t, stderr, "error: job:")
		assert.Contains(t, stderr, "error: input:")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := run(t, "validate", "--config", filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})
}

func TestVectorizeCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "job.yaml", `job: vec
attributes:
  - name: Score
    type: numeric
  - name: Active
    type: boolean
  - name: Suit
    type: enum
    values: [H, D]
interactions: ["Score:Active"]
input:
  paths: [unused.tsv]
output:
  path: unused.out
`)
	in := writeFile(t, dir, "in.tsv", "Suit\tActive\tScore\nH\ttrue\t2\nD\tfalse\t3\nH\ttrue\tx\n")
	out := filepath.Join(dir, "vectors.tsv")

	stdout, _, err := run(t, "vectorize", "--config", cfg, "--in", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 vectors of 3 features")
	assert.Contains(t, stdout, "(1 rows skipped)")

	assert.Equal(t, []string{
		"Score\tActive\tScore:Active",
		"2\t1\t2",
		"3\t0\t0",
	}, readLines(t, out))
}

func TestBucketsCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "x,y\n3,a\n,b\n12,c\n")

	stdout, _, err := run(t, "buckets", "--in", in, "--column", "x", "-k", "2", "--comma", ",")
	require.NoError(t, err)
	assert.Equal(t, "x_B0\t[-Infinity, 12]\nx_B1\t[12, Infinity]\n", stdout)

	_, _, err = run(t, "buckets", "--in", in, "--column", "y", "--comma", ",")
	require.Error(t, err)

	_, _, err = run(t, "buckets", "--in", in, "--column", "x", "-k", "0", "--comma", ",")
	require.Error(t, err)
}

func TestSaveSchemaKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	s := features.NewSchema([]features.Attribute{{Name: "A", Type: features.Numeric()}})

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	require.NoError(t, os.Chmod(path, 0o664))
	require.NoError(t, saveSchema(path, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o664), info.Mode().Perm())
}

func TestAddInteraction(t *testing.T) {
	s := features.NewSchema([]features.Attribute{
		{Name: "A", Type: features.Numeric()},
		{Name: "B", Type: features.Numeric()},
		{Name: "C", Type: features.Boolean()},
	})

	require.NoError(t, addInteraction(s, "A:B"))
	require.NoError(t, addInteraction(s, "A:B:C"))
	assert.Equal(t, []string{"A", "B", "C", "A:B", "A:B:C"}, s.Names())

	assert.Error(t, addInteraction(s, "A"))
	assert.Error(t, addInteraction(s, "A:Z"))
}
