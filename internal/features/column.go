package features

import (
	"fmt"
	"strings"

	"autofeat/internal/bucket"
)

// ColumnKind tags the variant held by a Column.
type ColumnKind int

const (
	ColumnRaw ColumnKind = iota
	ColumnEnum
	ColumnString
	ColumnRange
	ColumnInteraction
	ColumnTarget
)

var columnKindNames = [...]string{
	ColumnRaw:         "RAW",
	ColumnEnum:        "ENUM",
	ColumnString:      "STRING",
	ColumnRange:       "RANGE",
	ColumnInteraction: "INTERACTION",
	ColumnTarget:      "TARGET",
}

func (k ColumnKind) String() string {
	if int(k) >= 0 && int(k) < len(columnKindNames) {
		return columnKindNames[k]
	}
	return fmt.Sprintf("COLUMN(%d)", int(k))
}

// InteractionSep joins component names into an interaction name.
const InteractionSep = ":"

// Column is one entry of a feature schema. Which fields are meaningful
// depends on Kind:
//
//	Raw          Name, Source
//	Enum/String  Name, Source, Value
//	Range        Name, Source, Range
//	Interaction  Name, Components
//	Target       Name
type Column struct {
	Kind       ColumnKind
	Name       string
	Source     int
	Value      string
	Range      bucket.Range
	Components []int
}

func RawColumn(name string, source int) Column {
	return Column{Kind: ColumnRaw, Name: name, Source: source}
}

func EnumIndicator(name string, source int, value string) Column {
	return Column{Kind: ColumnEnum, Name: name, Source: source, Value: value}
}

func StringIndicator(name string, source int, value string) Column {
	return Column{Kind: ColumnString, Name: name, Source: source, Value: value}
}

func RangeIndicator(name string, source int, r bucket.Range) Column {
	return Column{Kind: ColumnRange, Name: name, Source: source, Range: r}
}

// Interaction returns an interaction column over the given component indices.
func Interaction(name string, components ...int) Column {
	return Column{Kind: ColumnInteraction, Name: name, Source: -1, Components: append([]int(nil), components...)}
}

func TargetColumn(name string) Column {
	return Column{Kind: ColumnTarget, Name: name, Source: -1}
}

// ComponentNames splits an interaction name into its component names.
func (c Column) ComponentNames() []string {
	return strings.Split(c.Name, InteractionSep)
}

// IsFeature reports whether the column contributes to a feature vector.
func (c Column) IsFeature() bool {
	return c.Kind != ColumnTarget
}

func (c Column) clone() Column {
	c.Components = append([]int(nil), c.Components...)
	return c
}

// String renders the column payload for listings.
func (c Column) String() string {
	switch c.Kind {
	case ColumnRaw:
		return fmt.Sprintf("%s %s <- [%d]", c.Kind, c.Name, c.Source)
	case ColumnEnum, ColumnString:
		return fmt.Sprintf("%s %s <- [%d] == %q", c.Kind, c.Name, c.Source, c.Value)
	case ColumnRange:
		return fmt.Sprintf("%s %s <- [%d] in %s", c.Kind, c.Name, c.Source, c.Range)
	case ColumnInteraction:
		return fmt.Sprintf("%s %s <- %v", c.Kind, c.Name, c.Components)
	default:
		return fmt.Sprintf("%s %s", c.Kind, c.Name)
	}
}
