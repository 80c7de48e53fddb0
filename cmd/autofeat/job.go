package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"autofeat/internal/config"
	"autofeat/internal/features"
	"autofeat/internal/metrics"
	"autofeat/internal/metrics/datadog"
	"autofeat/internal/metrics/prompush"
	"autofeat/internal/table"
)

// providerClass names the attribute provider built from a job file in
// persisted schemas.
const providerClass = "autofeat.config.Attributes"

// loadJob reads the job file, applies environment overrides and validates
// the result. Issues are printed to w; any error-severity issue fails.
func loadJob(w io.Writer) (*config.Job, error) {
	job, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	e, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	e.Apply(job)

	issues := config.ValidateJob(*job)
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return nil, fmt.Errorf("configuration is invalid: %s", cfgPath)
	}
	return job, nil
}

// underlyingFor wraps the job attributes in a provider.
func underlyingFor(job *config.Job) (*features.Underlying, error) {
	attrs, err := job.FeatureAttributes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(attrs))
	types := make([]features.Type, len(attrs))
	for i, a := range attrs {
		names[i], types[i] = a.Name, a.Type
	}
	return features.NewUnderlying(features.NewStaticProvider(providerClass, names, types), nil)
}

// loadSchema reads the persisted schema at job.Schema.Path when it exists,
// otherwise builds a fresh one. Interactions named by the job that the
// schema lacks are added in both cases.
func loadSchema(job *config.Job) (*features.Schema, error) {
	u, err := underlyingFor(job)
	if err != nil {
		return nil, err
	}

	var s *features.Schema
	if job.Schema.Path != "" {
		f, err := os.Open(job.Schema.Path)
		switch {
		case err == nil:
			s, err = features.LoadFor(f, u)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("load schema %s: %w", job.Schema.Path, err)
			}
			logger.Debug("schema loaded", zap.String("path", job.Schema.Path), zap.Int("columns", s.Len()))
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("no persisted schema, building from attributes", zap.String("path", job.Schema.Path))
		default:
			return nil, err
		}
	}
	if s == nil {
		s = features.FromUnderlying(u)
	}
	if job.Buckets.Default > 0 {
		s.DefaultBuckets = job.Buckets.Default
	}

	for _, name := range job.Interactions {
		if s.Index(name) >= 0 {
			continue
		}
		if err := addInteraction(s, name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// addInteraction adds "A:B[:C...]" by folding AddInteraction left to right.
func addInteraction(s *features.Schema, name string) error {
	parts := strings.Split(name, features.InteractionSep)
	if len(parts) < 2 {
		return fmt.Errorf("interaction %q needs at least two components", name)
	}
	acc := s.Index(parts[0])
	if acc < 0 {
		return fmt.Errorf("interaction %q: unknown column %q", name, parts[0])
	}
	for _, p := range parts[1:] {
		next := s.Index(p)
		if next < 0 {
			return fmt.Errorf("interaction %q: unknown column %q", name, p)
		}
		// Intermediate products are looked up first so that "A:B:C" reuses
		// an existing "A:B".
		partial := s.Column(acc).Name + features.InteractionSep + p
		if i := s.Index(partial); i >= 0 {
			acc = i
			continue
		}
		i, err := s.AddInteraction(acc, next)
		if err != nil {
			return fmt.Errorf("interaction %q: %w", name, err)
		}
		acc = i
	}
	return nil
}

// saveSchema writes s to path through a temporary file in the same
// directory.
func saveSchema(path string, s *features.Schema) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".schema-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := s.Save(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save schema: %w", err)
	}
	if err := table.MatchMode(tmp, path); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it.
func setupMetrics(job *config.Job) (flush func(), err error) {
	noop := func() {}
	switch job.Metrics.Backend {
	case "", "none":
		logger.Debug("metrics disabled")
		return noop, nil
	case "pushgateway":
		url := job.Metrics.PushgatewayURL
		if url == "" {
			url = "http://localhost:9091"
		}
		name := job.Job
		if name == "" {
			name = prompush.DefaultJob
		}
		b, err := prompush.NewBackend(name, url)
		if err != nil {
			return noop, fmt.Errorf("metrics: pushgateway backend: %w", err)
		}
		metrics.SetBackend(b)
		logger.Debug("metrics enabled", zap.String("backend", "pushgateway"), zap.String("url", url), zap.String("job", name))
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       job.Metrics.Datadog.Addr,
			Namespace:  job.Metrics.Datadog.Namespace,
			GlobalTags: job.Metrics.Datadog.Tags,
		})
		if err != nil {
			return noop, fmt.Errorf("metrics: datadog backend: %w", err)
		}
		metrics.SetBackend(b)
		logger.Debug("metrics enabled", zap.String("backend", "datadog"), zap.String("addr", job.Metrics.Datadog.Addr))
	default:
		return noop, fmt.Errorf("metrics: unknown backend %q", job.Metrics.Backend)
	}
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics flush failed", zap.Error(err))
		}
		metrics.SetBackend(metrics.Nop())
	}, nil
}
