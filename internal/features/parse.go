package features

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBool accepts "true"/"false" in any case and numeric 0 or 1.
func ParseBool(s string) (bool, bool) {
	t := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(t, "true"):
		return true, true
	case strings.EqualFold(t, "false"):
		return false, true
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return false, false
	}
	switch f {
	case 0:
		return false, true
	case 1:
		return true, true
	}
	return false, false
}

// ParseValue converts a table cell into the runtime value Build expects for
// an attribute of type t. Empty enum and text cells become nil.
func ParseValue(t Type, s string) (any, error) {
	switch t.Kind {
	case KindNumeric:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: numeric value %q", ErrTypeMismatch, s)
		}
		return f, nil
	case KindBoolean:
		b, ok := ParseBool(s)
		if !ok {
			return nil, fmt.Errorf("%w: boolean value %q", ErrTypeMismatch, s)
		}
		return b, nil
	case KindEnum, KindText:
		if s == "" {
			return nil, nil
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedColumn, t.Kind)
}
