package features

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Build evaluates s against one underlying observation. The result has
// s.Len() entries in schema order.
//
// Non-interaction columns are computed first in a single sweep; interactions
// are then filled from the already computed entries. A value whose runtime
// type disagrees with its attribute kind fails the whole call with
// ErrTypeMismatch.
func Build(s *Schema, raw []any) ([]float64, error) {
	out := make([]float64, len(s.cols))

	for i, c := range s.cols {
		if c.Kind == ColumnInteraction {
			continue
		}
		if c.Source < 0 || c.Source >= len(raw) {
			return nil, fmt.Errorf("%w: column %d %q reads [%d] of %d values", ErrOutOfRange, i, c.Name, c.Source, len(raw))
		}
		v, err := evaluate(c, s.attrs[c.Source].Type.Kind, raw[c.Source])
		if err != nil {
			return nil, fmt.Errorf("column %d %q: %w", i, c.Name, err)
		}
		out[i] = v
	}

	factors := make([]float64, 0, 4)
	for i, c := range s.cols {
		if c.Kind != ColumnInteraction {
			continue
		}
		factors = factors[:0]
		for _, ci := range c.Components {
			factors = append(factors, out[ci])
		}
		out[i] = floats.Prod(factors)
	}
	return out, nil
}

func evaluate(c Column, kind Kind, v any) (float64, error) {
	switch c.Kind {
	case ColumnRaw:
		if b, ok := v.(bool); ok && kind == KindBoolean {
			return indicator(b), nil
		}
		f, ok := toFloat(v)
		if !ok {
			return 0, mismatch(kind, v)
		}
		return f, nil

	case ColumnEnum, ColumnString:
		if v == nil {
			return 0, nil
		}
		str, ok := toString(v)
		if !ok {
			return 0, mismatch(kind, v)
		}
		return indicator(str == c.Value), nil

	case ColumnRange:
		f, ok := toFloat(v)
		if !ok {
			return 0, mismatch(kind, v)
		}
		return indicator(c.Range.Contains(f)), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedColumn, c.Kind)
}

func mismatch(kind Kind, v any) error {
	return fmt.Errorf("%w: %s attribute got %T", ErrTypeMismatch, kind, v)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}
