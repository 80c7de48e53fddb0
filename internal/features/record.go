package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"autofeat/internal/bucket"
)

// RecordClass tags persisted schema records.
const RecordClass = "autofeat.features.Schema"

type record struct {
	Class            string          `json:"class"`
	DefaultBuckets   int             `json:"defaultBuckets"`
	UnderlyingState  *classRef       `json:"underlyingState,omitempty"`
	UnderlyingAction *classRef       `json:"underlyingAction,omitempty"`
	Features         []featureRecord `json:"features"`
}

type classRef struct {
	Class string `json:"class"`
}

type featureRecord struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Index     int    `json:"index"`
	EnumValue string `json:"enumValue,omitempty"`
	Range     string `json:"range,omitempty"`
	// Interaction lists component positions in the full schema, "[i, j]".
	// Only read; interactions are not written.
	Interaction string `json:"interaction,omitempty"`
}

// MarshalJSON encodes the indicator columns of s. Raw columns are rebuilt
// from the attributes on load and interactions are not persisted.
func (s *Schema) MarshalJSON() ([]byte, error) {
	rec := record{
		Class:          RecordClass,
		DefaultBuckets: s.DefaultBuckets,
		Features:       []featureRecord{},
	}
	if s.stateClass != "" {
		rec.UnderlyingState = &classRef{Class: s.stateClass}
	}
	if s.actionClass != "" {
		rec.UnderlyingAction = &classRef{Class: s.actionClass}
	}
	for _, c := range s.cols {
		fr := featureRecord{Name: c.Name, Type: c.Kind.String(), Index: c.Source}
		switch c.Kind {
		case ColumnEnum, ColumnString:
			fr.EnumValue = c.Value
		case ColumnRange:
			fr.Range = FormatRange(c.Range)
		default:
			continue
		}
		rec.Features = append(rec.Features, fr)
	}
	return json.Marshal(rec)
}

// Save writes the persisted form of s to w, indented.
func (s *Schema) Save(w io.Writer) error {
	b, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return fmt.Errorf("features: indent record: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// Load decodes a persisted schema, constructing its providers through the
// provider registry.
func Load(r io.Reader) (*Schema, error) {
	rec, err := decode(r)
	if err != nil {
		return nil, err
	}
	if rec.UnderlyingState == nil {
		return nil, fmt.Errorf("%w: record has no underlyingState", ErrUnknownProvider)
	}
	state, err := LookupProvider(rec.UnderlyingState.Class)
	if err != nil {
		return nil, err
	}
	var action Provider
	if rec.UnderlyingAction != nil {
		if action, err = LookupProvider(rec.UnderlyingAction.Class); err != nil {
			return nil, err
		}
	}
	u, err := NewUnderlying(state, action)
	if err != nil {
		return nil, err
	}
	return rec.build(u)
}

// LoadFor decodes a persisted schema over an already constructed underlying
// vector. Provider classes named in the record must match u.
func LoadFor(r io.Reader, u *Underlying) (*Schema, error) {
	rec, err := decode(r)
	if err != nil {
		return nil, err
	}
	state, action := u.classes()
	if rec.UnderlyingState != nil && rec.UnderlyingState.Class != state {
		return nil, fmt.Errorf("%w: state provider %q, have %q", ErrSchemaMismatch, rec.UnderlyingState.Class, state)
	}
	if rec.UnderlyingAction != nil && rec.UnderlyingAction.Class != action {
		return nil, fmt.Errorf("%w: action provider %q, have %q", ErrSchemaMismatch, rec.UnderlyingAction.Class, action)
	}
	return rec.build(u)
}

func decode(r io.Reader) (*record, error) {
	var rec record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("features: decode record: %w", err)
	}
	if rec.Class != RecordClass {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrSchemaMismatch, rec.Class, RecordClass)
	}
	return &rec, nil
}

func (rec *record) build(u *Underlying) (*Schema, error) {
	s := FromUnderlying(u)
	if rec.DefaultBuckets > 0 {
		s.DefaultBuckets = rec.DefaultBuckets
	}
	for i, fr := range rec.Features {
		var c Column
		switch strings.ToUpper(fr.Type) {
		case "ENUM":
			c = EnumIndicator(fr.Name, fr.Index, fr.EnumValue)
		case "STRING":
			c = StringIndicator(fr.Name, fr.Index, fr.EnumValue)
		case "RANGE":
			r, err := ParseRange(fr.Range)
			if err != nil {
				return nil, fmt.Errorf("feature %d %q: %w", i, fr.Name, err)
			}
			c = RangeIndicator(fr.Name, fr.Index, r)
		case "INTERACTION":
			comps, err := parseIndexList(fr.Interaction)
			if err != nil {
				return nil, fmt.Errorf("feature %d %q: %w", i, fr.Name, err)
			}
			c = Interaction(fr.Name, comps...)
		default:
			return nil, fmt.Errorf("%w: feature %d %q has type %q", ErrUnsupportedColumn, i, fr.Name, fr.Type)
		}
		if _, err := s.Add(c); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	return s, nil
}

// FormatRange renders r as "[lower, upper]" with infinities spelled
// "-Infinity" and "Infinity".
func FormatRange(r bucket.Range) string {
	return "[" + formatBound(r.Lower) + ", " + formatBound(r.Upper) + "]"
}

func formatBound(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseRange is the inverse of FormatRange.
func ParseRange(s string) (bucket.Range, error) {
	parts, err := splitList(s)
	if err != nil {
		return bucket.Range{}, err
	}
	if len(parts) != 2 {
		return bucket.Range{}, fmt.Errorf("features: range %q needs two bounds", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return bucket.Range{}, fmt.Errorf("features: range %q lower bound: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return bucket.Range{}, fmt.Errorf("features: range %q upper bound: %w", s, err)
	}
	return bucket.Range{Lower: lo, Upper: hi}, nil
}

func parseIndexList(s string) ([]int, error) {
	parts, err := splitList(s)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("features: index list %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func splitList(s string) ([]string, error) {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "[") || !strings.HasSuffix(t, "]") {
		return nil, fmt.Errorf("features: %q is not a bracketed list", s)
	}
	t = strings.TrimSpace(t[1 : len(t)-1])
	if t == "" {
		return nil, nil
	}
	parts := strings.Split(t, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
