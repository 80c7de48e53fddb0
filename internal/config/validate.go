package config

import (
	"fmt"
	"strings"

	"autofeat/internal/features"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "attributes[2].values").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob performs static checks over a job. It does not touch the
// filesystem or the network.
func ValidateJob(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	kinds, attrIssues := validateAttributes(j.Attributes)
	issues = append(issues, attrIssues...)
	issues = append(issues, validateInteractions(j.Interactions, kinds)...)
	issues = append(issues, validateBuckets(j.Buckets, kinds)...)
	issues = append(issues, validateInput(j.Input)...)
	issues = append(issues, validateOutput(j.Output, j.Schema)...)
	issues = append(issues, validateReconcile(j.Reconcile)...)
	issues = append(issues, validateStorage(j.Storage)...)
	issues = append(issues, validateMetrics(j.Metrics)...)

	return issues
}

// validateAttributes returns the kind of every well-formed attribute by name.
func validateAttributes(attrs []Attribute) (map[string]features.Kind, []Issue) {
	var issues []Issue
	kinds := make(map[string]features.Kind, len(attrs))

	if len(attrs) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "attributes",
			Message:  "at least one attribute is required",
		})
		return kinds, issues
	}

	seen := make(map[string]struct{}, len(attrs))
	for i, a := range attrs {
		path := fmt.Sprintf("attributes[%d]", i)
		name := strings.TrimSpace(a.Name)
		switch {
		case name == "":
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: "attribute name must not be empty"})
			continue
		case name != a.Name:
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: fmt.Sprintf("attribute name %q has surrounding whitespace", a.Name)})
		case strings.Contains(name, features.InteractionSep):
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: fmt.Sprintf("attribute name %q must not contain %q", name, features.InteractionSep)})
		}
		if _, dup := seen[name]; dup {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: fmt.Sprintf("duplicate attribute %q", name)})
			continue
		}
		seen[name] = struct{}{}

		k, err := features.ParseKind(a.Type)
		if err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".type", Message: err.Error()})
			continue
		}
		switch {
		case k == features.KindEnum && len(a.Values) == 0:
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".values", Message: "enum attribute needs at least one value"})
		case k == features.KindEnum:
			vals := make(map[string]struct{}, len(a.Values))
			for _, v := range a.Values {
				if _, dup := vals[v]; dup {
					issues = append(issues, Issue{Severity: SeverityError, Path: path + ".values", Message: fmt.Sprintf("duplicate enum value %q", v)})
				}
				if strings.Contains(v, features.InteractionSep) {
					issues = append(issues, Issue{Severity: SeverityError, Path: path + ".values", Message: fmt.Sprintf("enum value %q must not contain %q", v, features.InteractionSep)})
				}
				vals[v] = struct{}{}
			}
		case len(a.Values) > 0:
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path + ".values", Message: fmt.Sprintf("values are ignored for %s attributes", k)})
		}
		kinds[name] = k
	}
	return kinds, issues
}

func validateInteractions(names []string, kinds map[string]features.Kind) []Issue {
	var issues []Issue
	for i, n := range names {
		path := fmt.Sprintf("interactions[%d]", i)
		parts := strings.Split(n, features.InteractionSep)
		if len(parts) < 2 {
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf("interaction %q must name at least two attributes joined by %q", n, features.InteractionSep)})
			continue
		}
		for _, p := range parts {
			k, ok := kinds[p]
			if !ok {
				issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf("unknown attribute %q", p)})
				continue
			}
			if k != features.KindNumeric && k != features.KindBoolean {
				issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf("attribute %q is %s; interactions need numeric or boolean attributes", p, k)})
			}
		}
	}
	return issues
}

func validateBuckets(b Buckets, kinds map[string]features.Kind) []Issue {
	var issues []Issue
	if b.Default < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "buckets.default", Message: "bucket count must not be negative"})
	}
	for name, n := range b.PerAttribute {
		path := "buckets.per_attribute." + name
		if n < 0 {
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: "bucket count must not be negative"})
		}
		k, ok := kinds[name]
		switch {
		case !ok:
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf("unknown attribute %q", name)})
		case k != features.KindNumeric:
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf("attribute %q is %s; buckets apply only to numeric attributes", name, k)})
		}
	}
	return issues
}

func validateInput(in Input) []Issue {
	var issues []Issue
	if len(in.Paths) == 0 && strings.TrimSpace(in.ListFile) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "input", Message: "input.paths or input.list_file is required"})
	}
	for i, p := range in.Paths {
		if strings.TrimSpace(p) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: fmt.Sprintf("input.paths[%d]", i), Message: "path must not be empty"})
		}
	}
	issues = append(issues, validateComma("input.comma", in.Comma)...)
	return issues
}

func validateOutput(out Output, s Schema) []Issue {
	var issues []Issue
	if strings.TrimSpace(out.Path) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "output.path", Message: "output.path must not be empty"})
	}
	issues = append(issues, validateComma("output.comma", out.Comma)...)
	if strings.TrimSpace(s.Path) == "" {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "schema.path", Message: "no schema path; the reconciled schema will not be persisted"})
	}
	return issues
}

func validateComma(path, s string) []Issue {
	if s == "" || s == `\t` || s == "tab" || len([]rune(s)) == 1 {
		return nil
	}
	return []Issue{{Severity: SeverityError, Path: path, Message: fmt.Sprintf("delimiter %q must be a single character", s)}}
}

func validateReconcile(r Reconcile) []Issue {
	if r.MaxRecords < 0 {
		return []Issue{{Severity: SeverityError, Path: "reconcile.max_records", Message: "max_records must not be negative"}}
	}
	return nil
}

// validateStorage checks the optional DB sink.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}

	known := map[string]struct{}{
		"postgres": {},
		"mssql":    {},
		"mysql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; want postgres, mssql, mysql or sqlite", s.Kind),
		})
	}

	db := s.DB
	if strings.TrimSpace(db.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(db.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	if db.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{Severity: SeverityError, Path: "metrics.pushgateway_url", Message: "pushgateway backend requires pushgateway_url (or PUSHGATEWAY_URL)"}}
		}
	case "datadog":
		if strings.TrimSpace(m.Datadog.Addr) == "" {
			return []Issue{{Severity: SeverityError, Path: "metrics.datadog.addr", Message: "datadog backend requires an agent address (or DD_AGENT_ADDR)"}}
		}
	default:
		return []Issue{{Severity: SeverityError, Path: "metrics.backend", Message: fmt.Sprintf("unknown metrics backend %q; want none, pushgateway or datadog", m.Backend)}}
	}
	return nil
}
