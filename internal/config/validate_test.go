package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validJob() Job {
	return Job{
		Job: "nightly",
		Attributes: []Attribute{
			{Name: "Score", Type: "numeric"},
			{Name: "Suit", Type: "enum", Values: []string{"H", "D"}},
			{Name: "Active", Type: "boolean"},
		},
		Input:  Input{Paths: []string{"in.tsv"}},
		Output: Output{Path: "out.tsv"},
		Schema: Schema{Path: "schema.json"},
	}
}

/*
TestValidateJob_Valid verifies that a well-formed job produces no issues.
*/
func TestValidateJob_Valid(t *testing.T) {
	if issues := ValidateJob(validJob()); len(issues) != 0 {
		t.Fatalf("ValidateJob() = %+v, want none", issues)
	}
}

/*
TestValidateJob_Findings checks one mutation per finding.
*/
func TestValidateJob_Findings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Job)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"missing job", func(j *Job) { j.Job = " " }, SeverityError, "job", "must not be empty"},
		{"no attributes", func(j *Job) { j.Attributes = nil }, SeverityError, "attributes", "at least one"},
		{"empty name", func(j *Job) { j.Attributes[0].Name = "" }, SeverityError, "attributes[0].name", "must not be empty"},
		{"padded name", func(j *Job) { j.Attributes[0].Name = " Score" }, SeverityError, "attributes[0].name", "whitespace"},
		{"separator in name", func(j *Job) { j.Attributes[0].Name = "A:B" }, SeverityError, "attributes[0].name", "must not contain"},
		{"duplicate name", func(j *Job) { j.Attributes[2].Name = "Score" }, SeverityError, "attributes[2].name", "duplicate attribute"},
		{"unknown type", func(j *Job) { j.Attributes[0].Type = "blob" }, SeverityError, "attributes[0].type", "unknown attribute kind"},
		{"enum without values", func(j *Job) { j.Attributes[1].Values = nil }, SeverityError, "attributes[1].values", "at least one value"},
		{"duplicate enum value", func(j *Job) { j.Attributes[1].Values = []string{"H", "H"} }, SeverityError, "attributes[1].values", "duplicate enum value"},
		{"enum value with separator", func(j *Job) { j.Attributes[1].Values = []string{"H", "a:b"} }, SeverityError, "attributes[1].values", "must not contain"},
		{"values on numeric", func(j *Job) { j.Attributes[0].Values = []string{"x"} }, SeverityWarning, "attributes[0].values", "ignored"},
		{"interaction arity", func(j *Job) { j.Interactions = []string{"Score"} }, SeverityError, "interactions[0]", "at least two"},
		{"interaction unknown", func(j *Job) { j.Interactions = []string{"Score:Nope"} }, SeverityError, "interactions[0]", "unknown attribute"},
		{"interaction enum", func(j *Job) { j.Interactions = []string{"Score:Suit"} }, SeverityError, "interactions[0]", "numeric or boolean"},
		{"negative default buckets", func(j *Job) { j.Buckets.Default = -1 }, SeverityError, "buckets.default", "negative"},
		{"buckets unknown", func(j *Job) { j.Buckets.PerAttribute = map[string]int{"Nope": 2} }, SeverityWarning, "buckets.per_attribute.Nope", "unknown attribute"},
		{"buckets on enum", func(j *Job) { j.Buckets.PerAttribute = map[string]int{"Suit": 2} }, SeverityWarning, "buckets.per_attribute.Suit", "only to numeric"},
		{"no input", func(j *Job) { j.Input = Input{} }, SeverityError, "input", "required"},
		{"blank input path", func(j *Job) { j.Input.Paths = []string{""} }, SeverityError, "input.paths[0]", "must not be empty"},
		{"bad comma", func(j *Job) { j.Input.Comma = ";;" }, SeverityError, "input.comma", "single character"},
		{"no output", func(j *Job) { j.Output.Path = "" }, SeverityError, "output.path", "must not be empty"},
		{"no schema path", func(j *Job) { j.Schema.Path = "" }, SeverityWarning, "schema.path", "will not be persisted"},
		{"negative max records", func(j *Job) { j.Reconcile.MaxRecords = -1 }, SeverityError, "reconcile.max_records", "negative"},
		{"unknown storage", func(j *Job) { j.Storage = Storage{Kind: "oracle", DB: DBConfig{DSN: "x", Table: "t"}} }, SeverityError, "storage.kind", "unknown storage kind"},
		{"storage without dsn", func(j *Job) { j.Storage = Storage{Kind: "postgres", DB: DBConfig{Table: "t"}} }, SeverityError, "storage.db.dsn", "must not be empty"},
		{"storage without table", func(j *Job) { j.Storage = Storage{Kind: "sqlite", DB: DBConfig{DSN: "x"}} }, SeverityError, "storage.db.table", "must not be empty"},
		{"negative batch", func(j *Job) { j.Storage = Storage{Kind: "sqlite", DB: DBConfig{DSN: "x", Table: "t", BatchSize: -1}} }, SeverityError, "storage.db.batch_size", "negative"},
		{"pushgateway without url", func(j *Job) { j.Metrics.Backend = "pushgateway" }, SeverityError, "metrics.pushgateway_url", "requires"},
		{"datadog without addr", func(j *Job) { j.Metrics.Backend = "datadog" }, SeverityError, "metrics.datadog.addr", "requires"},
		{"unknown metrics", func(j *Job) { j.Metrics.Backend = "statsd" }, SeverityError, "metrics.backend", "unknown metrics backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := validJob()
			tt.mutate(&j)
			issues := ValidateJob(j)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tt.sev, tt.path, tt.msg, issues)
			}
		})
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors([]Issue{{Severity: SeverityWarning}}) {
		t.Fatal("HasErrors(warnings) = true")
	}
	if !HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Fatal("HasErrors(error) = false")
	}
	iss := Issue{Severity: SeverityError, Path: "job", Message: "empty"}
	if got := iss.Error(); got != "error at job: empty" {
		t.Fatalf("Error() = %q", got)
	}
}
