// Package features defines the underlying attribute model, the feature
// schema derived from it, and the vector builder that evaluates a schema
// against one observation.
package features

import (
	"fmt"
	"strings"
)

// Kind classifies an underlying attribute.
type Kind int

const (
	KindNumeric Kind = iota
	KindBoolean
	KindEnum
	KindText
)

var kindNames = map[Kind]string{
	KindNumeric: "numeric",
	KindBoolean: "boolean",
	KindEnum:    "enum",
	KindText:    "text",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a config spelling ("numeric", "boolean", "enum", "text") to
// a Kind. Matching is case-insensitive; "string" is accepted for text.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number", "double", "int":
		return KindNumeric, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "enum":
		return KindEnum, nil
	case "text", "string":
		return KindText, nil
	}
	return 0, fmt.Errorf("features: unknown attribute kind %q", s)
}

// Type is the declared type of an underlying attribute. Values lists the
// enum constants and is empty for every other kind.
type Type struct {
	Kind   Kind
	Values []string
}

func Numeric() Type { return Type{Kind: KindNumeric} }
func Boolean() Type { return Type{Kind: KindBoolean} }
func Text() Type    { return Type{Kind: KindText} }

// Enum declares an enum attribute with the given constants.
func Enum(values ...string) Type {
	return Type{Kind: KindEnum, Values: append([]string(nil), values...)}
}

// HasValue reports whether v is one of the enum constants.
func (t Type) HasValue(v string) bool {
	for _, c := range t.Values {
		if c == v {
			return true
		}
	}
	return false
}

// Attribute is one entry of the underlying vector.
type Attribute struct {
	Name  string
	Type  Type
	Index int
}

// HasRaw reports whether the attribute owns a raw column in every schema.
func (a Attribute) HasRaw() bool {
	return a.Type.Kind == KindNumeric || a.Type.Kind == KindBoolean
}

// BucketSpec holds the desired bucket count per numeric attribute.
type BucketSpec struct {
	// Default applies to attributes missing from PerAttribute. Values <= 1
	// mean no bucketing.
	Default int
	// PerAttribute overrides Default by attribute name.
	PerAttribute map[string]int
}

// For returns the bucket count for the named attribute, at least 1.
func (b BucketSpec) For(name string) int {
	n := b.Default
	if v, ok := b.PerAttribute[name]; ok {
		n = v
	}
	if n < 1 {
		return 1
	}
	return n
}
