// Package config defines the job file that drives a reconciliation run and
// the environment overrides applied on top of it.
//
// A job file is JSON or YAML, chosen by extension:
//
//	job: nightly
//	attributes:
//	  - { name: Score, type: numeric }
//	  - { name: Suit, type: enum, values: [H, D, C, S] }
//	  - { name: Active, type: boolean }
//	interactions: ["Score:Active"]
//	buckets: { default: 4, per_attribute: { Round: 1 } }
//	input: { paths: [data/2024.tsv, "https://example.com/2025.tsv"] }
//	output: { path: out/reconciled.tsv }
//	schema: { path: state/schema.json }
//	reconcile: { overwrite_all_features: true, max_records: 0, skip_log: out/skipped.csv }
//	storage: { kind: postgres, db: { dsn: "postgres://...", table: public.features, auto_create_table: true } }
//	metrics: { backend: pushgateway, pushgateway_url: "http://pushgateway:9091" }
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"autofeat/internal/datasource/file"
	"autofeat/internal/datasource/httpds"
	"autofeat/internal/features"
)

// Job is the top-level object of a job file.
type Job struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job" yaml:"job"`

	// Attributes is the underlying attribute list, in order. It is used when
	// no persisted schema exists and to check a persisted one.
	Attributes []Attribute `json:"attributes" yaml:"attributes"`

	// Interactions names interaction columns ("A:B") added to a newly built
	// schema. Components must be numeric or boolean attributes.
	Interactions []string `json:"interactions" yaml:"interactions"`

	Buckets   Buckets   `json:"buckets" yaml:"buckets"`
	Input     Input     `json:"input" yaml:"input"`
	Output    Output    `json:"output" yaml:"output"`
	Schema    Schema    `json:"schema" yaml:"schema"`
	Reconcile Reconcile `json:"reconcile" yaml:"reconcile"`
	Storage   Storage   `json:"storage" yaml:"storage"`
	Metrics   Metrics   `json:"metrics" yaml:"metrics"`
	HTTP      HTTP      `json:"http" yaml:"http"`
}

// Attribute declares one underlying attribute.
type Attribute struct {
	Name string `json:"name" yaml:"name"`
	// Type is numeric, boolean, enum or text.
	Type string `json:"type" yaml:"type"`
	// Values lists the enum constants.
	Values []string `json:"values" yaml:"values"`
}

// Buckets sets bucket counts for numeric attributes.
type Buckets struct {
	Default      int            `json:"default" yaml:"default"`
	PerAttribute map[string]int `json:"per_attribute" yaml:"per_attribute"`
}

// Input lists the tables to reconcile.
type Input struct {
	// Paths are local files or http(s) URLs.
	Paths []string `json:"paths" yaml:"paths"`
	// ListFile names a file of further paths, one per line.
	ListFile string `json:"list_file" yaml:"list_file"`
	// Comma is the field delimiter; default tab.
	Comma string `json:"comma" yaml:"comma"`
}

// Output is where the reconciled table is written.
type Output struct {
	Path  string `json:"path" yaml:"path"`
	Comma string `json:"comma" yaml:"comma"`
}

// Schema locates the persisted schema.
type Schema struct {
	// Path is read if it exists and written after a successful run.
	Path string `json:"path" yaml:"path"`
}

// Reconcile holds reconciler options.
type Reconcile struct {
	OverwriteAllFeatures bool   `json:"overwrite_all_features" yaml:"overwrite_all_features"`
	MaxRecords           int    `json:"max_records" yaml:"max_records"`
	SkipLog              string `json:"skip_log" yaml:"skip_log"`
}

// Storage selects an optional database sink for the reconciled table.
type Storage struct {
	// Kind is postgres, mssql, mysql or sqlite; empty disables the sink.
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the destination table, optionally schema-qualified.
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable creates the table when it does not exist, with one
	// nullable column per output column typed from its cells.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	// BatchSize is the number of rows per copy batch.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is none, pushgateway or datadog.
	Backend        string  `json:"backend" yaml:"backend"`
	PushgatewayURL string  `json:"pushgateway_url" yaml:"pushgateway_url"`
	Datadog        Datadog `json:"datadog" yaml:"datadog"`
}

type Datadog struct {
	Addr      string   `json:"addr" yaml:"addr"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// HTTP tunes the client used for remote inputs.
type HTTP struct {
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int               `json:"max_retries" yaml:"max_retries"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
}

// Load reads a job file. Files ending in .yaml or .yml are YAML, anything
// else is JSON. Unknown fields are rejected in both formats.
func Load(path string) (*Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var j Job
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&j); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&j); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return &j, nil
}

// Env holds environment overrides. Unset variables leave the job file
// untouched.
type Env struct {
	MaxRecords     *int   `env:"AUTOFEAT_MAX_RECORDS"`
	OverwriteAll   *bool  `env:"AUTOFEAT_OVERWRITE_ALL"`
	MetricsBackend string `env:"AUTOFEAT_METRICS_BACKEND"`
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
	DatadogAddr    string `env:"DD_AGENT_ADDR"`
	DBDSN          string `env:"AUTOFEAT_DB_DSN"`
}

// LoadEnv parses the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// Apply overlays the set fields of e onto j.
func (e Env) Apply(j *Job) {
	if e.MaxRecords != nil {
		j.Reconcile.MaxRecords = *e.MaxRecords
	}
	if e.OverwriteAll != nil {
		j.Reconcile.OverwriteAllFeatures = *e.OverwriteAll
	}
	if e.MetricsBackend != "" {
		j.Metrics.Backend = e.MetricsBackend
	}
	if e.PushgatewayURL != "" {
		j.Metrics.PushgatewayURL = e.PushgatewayURL
	}
	if e.DatadogAddr != "" {
		j.Metrics.Datadog.Addr = e.DatadogAddr
	}
	if e.DBDSN != "" {
		j.Storage.DB.DSN = e.DBDSN
	}
}

// FeatureAttributes converts the declared attributes.
func (j *Job) FeatureAttributes() ([]features.Attribute, error) {
	out := make([]features.Attribute, 0, len(j.Attributes))
	for i, a := range j.Attributes {
		k, err := features.ParseKind(a.Type)
		if err != nil {
			return nil, fmt.Errorf("attributes[%d]: %w", i, err)
		}
		t := features.Type{Kind: k}
		if k == features.KindEnum {
			t = features.Enum(a.Values...)
		}
		out = append(out, features.Attribute{Name: a.Name, Type: t, Index: i})
	}
	return out, nil
}

// BucketSpec returns the bucket counts in the form the reconciler takes.
func (j *Job) BucketSpec() features.BucketSpec {
	return features.BucketSpec{Default: j.Buckets.Default, PerAttribute: j.Buckets.PerAttribute}
}

// Inputs returns Input.Paths followed by the entries of Input.ListFile.
func (j *Job) Inputs() ([]string, error) {
	out := append([]string(nil), j.Input.Paths...)
	if j.Input.ListFile != "" {
		more, err := file.ReadList(j.Input.ListFile)
		if err != nil {
			return nil, err
		}
		out = append(out, more...)
	}
	return out, nil
}

// HTTPConfig returns the client configuration for remote inputs.
func (j *Job) HTTPConfig() httpds.Config {
	var h http.Header
	if len(j.HTTP.Headers) > 0 {
		h = make(http.Header, len(j.HTTP.Headers))
		for k, v := range j.HTTP.Headers {
			h.Set(k, v)
		}
	}
	return httpds.Config{
		Timeout:    time.Duration(j.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries: j.HTTP.MaxRetries,
		Headers:    h,
	}
}

// Comma returns the first rune of s, or def when s is empty. "\t" and "tab"
// both mean a tab.
func Comma(s string, def rune) rune {
	switch s {
	case "":
		return def
	case `\t`, "tab":
		return '\t'
	}
	return []rune(s)[0]
}
