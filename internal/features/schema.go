package features

import (
	"fmt"
	"math"
)

// Schema is the ordered list of feature columns derived from an underlying
// attribute list. The first PrefixLen columns are the raw columns of every
// numeric or boolean attribute and never change after construction.
//
// A Schema is not safe for concurrent mutation; callers finish design and
// reconciliation before sharing it with vector builders.
type Schema struct {
	// DefaultBuckets is persisted with the schema and used as the default
	// bucket count when reconciling.
	DefaultBuckets int

	attrs       []Attribute
	cols        []Column
	prefix      int
	stateClass  string
	actionClass string
}

// NewSchema builds a schema holding one raw column per numeric or boolean
// attribute, in attribute order. Attribute indices are reassigned to their
// position in attrs.
func NewSchema(attrs []Attribute) *Schema {
	s := &Schema{DefaultBuckets: 1, attrs: make([]Attribute, len(attrs))}
	for i, a := range attrs {
		a.Index = i
		a.Type.Values = append([]string(nil), a.Type.Values...)
		s.attrs[i] = a
		if a.HasRaw() {
			s.cols = append(s.cols, RawColumn(a.Name, i))
		}
	}
	s.prefix = len(s.cols)
	return s
}

// FromUnderlying builds a schema over the attributes of u and remembers the
// provider classes for persistence.
func FromUnderlying(u *Underlying) *Schema {
	s := NewSchema(u.Attributes())
	s.stateClass, s.actionClass = u.classes()
	return s
}

// Len returns the number of columns, which is also the vector length.
func (s *Schema) Len() int { return len(s.cols) }

// PrefixLen returns the number of raw columns.
func (s *Schema) PrefixLen() int { return s.prefix }

// Column returns a copy of the column at i.
func (s *Schema) Column(i int) Column { return s.cols[i].clone() }

// Columns returns a copy of the columns in output order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.clone()
	}
	return out
}

// Names returns the column names in output order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column or -1.
func (s *Schema) Index(name string) int {
	for i, c := range s.cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Attributes returns a copy of the underlying attribute list.
func (s *Schema) Attributes() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Attribute returns the underlying attribute at index i.
func (s *Schema) Attribute(i int) Attribute { return s.attrs[i] }

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	c := *s
	c.attrs = s.Attributes()
	c.cols = s.Columns()
	return &c
}

// Add appends a derived column and returns its position.
func (s *Schema) Add(c Column) (int, error) {
	if s.Index(c.Name) >= 0 {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
	}
	if err := s.check(c, len(s.cols)); err != nil {
		return -1, err
	}
	s.cols = append(s.cols, c.clone())
	return len(s.cols) - 1, nil
}

// AddInteraction appends the product of the columns at first and second.
// Operands that are interactions contribute their own components, so the
// stored component list only references non-interaction columns.
func (s *Schema) AddInteraction(first, second int) (int, error) {
	if first < 0 || first >= len(s.cols) || second < 0 || second >= len(s.cols) {
		return -1, fmt.Errorf("%w: interaction of %d and %d with %d columns", ErrOutOfRange, first, second, len(s.cols))
	}
	var comps []int
	for _, idx := range []int{first, second} {
		if c := s.cols[idx]; c.Kind == ColumnInteraction {
			comps = append(comps, c.Components...)
		} else {
			comps = append(comps, idx)
		}
	}
	name := s.cols[first].Name + InteractionSep + s.cols[second].Name
	return s.Add(Interaction(name, comps...))
}

// Remove deletes the derived column at i. Raw columns and columns referenced
// by an interaction are rejected and leave the schema unchanged.
func (s *Schema) Remove(i int) error {
	if i < 0 || i >= len(s.cols) {
		return fmt.Errorf("%w: remove %d with %d columns", ErrOutOfRange, i, len(s.cols))
	}
	if i < s.prefix {
		return fmt.Errorf("%w: %q", ErrRawColumn, s.cols[i].Name)
	}
	for _, c := range s.cols {
		if c.Kind != ColumnInteraction {
			continue
		}
		for _, ci := range c.Components {
			if ci == i {
				return fmt.Errorf("%w: %q is used by %q", ErrReferencedColumn, s.cols[i].Name, c.Name)
			}
		}
	}

	cols := make([]Column, 0, len(s.cols)-1)
	for j, c := range s.cols {
		if j == i {
			continue
		}
		c = c.clone()
		for k, ci := range c.Components {
			if ci > i {
				c.Components[k] = ci - 1
			}
		}
		cols = append(cols, c)
	}
	s.cols = cols
	return nil
}

// ReplaceDerived swaps every non-raw column for cols, in order. Interaction
// components are resolved again from the interaction name, so the indices
// carried in cols are ignored. Interactions whose components cannot be
// resolved to earlier columns are left out and their names returned.
//
// On error the schema is unchanged.
func (s *Schema) ReplaceDerived(cols []Column) ([]string, error) {
	next := make([]Column, s.prefix, s.prefix+len(cols))
	copy(next, s.cols[:s.prefix])

	pos := make(map[string]int, cap(next))
	for i, c := range next {
		pos[c.Name] = i
	}

	var dropped []string
	for _, c := range cols {
		if _, dup := pos[c.Name]; dup {
			if c.Kind == ColumnRaw {
				continue
			}
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		c = c.clone()
		if c.Kind == ColumnInteraction {
			comps, ok := resolve(c.ComponentNames(), pos)
			if !ok {
				dropped = append(dropped, c.Name)
				continue
			}
			c.Components = comps
		}
		if err := checkAgainst(s.attrs, c, len(next)); err != nil {
			return nil, err
		}
		pos[c.Name] = len(next)
		next = append(next, c)
	}

	s.cols = next
	return dropped, nil
}

func resolve(names []string, pos map[string]int) ([]int, bool) {
	out := make([]int, 0, len(names))
	for _, n := range names {
		i, ok := pos[n]
		if !ok {
			return nil, false
		}
		out = append(out, i)
	}
	return out, true
}

func (s *Schema) check(c Column, position int) error {
	return checkAgainst(s.attrs, c, position)
}

// checkAgainst validates a derived column placed at position.
func checkAgainst(attrs []Attribute, c Column, position int) error {
	source := func(want Kind) error {
		if c.Source < 0 || c.Source >= len(attrs) {
			return fmt.Errorf("%w: column %q source %d with %d attributes", ErrOutOfRange, c.Name, c.Source, len(attrs))
		}
		if got := attrs[c.Source].Type.Kind; got != want {
			return fmt.Errorf("%w: column %q (%s) over %s attribute %q", ErrTypeMismatch, c.Name, c.Kind, got, attrs[c.Source].Name)
		}
		return nil
	}

	switch c.Kind {
	case ColumnEnum:
		return source(KindEnum)
	case ColumnString:
		return source(KindText)
	case ColumnRange:
		if err := source(KindNumeric); err != nil {
			return err
		}
		if math.IsNaN(c.Range.Lower) || math.IsNaN(c.Range.Upper) || c.Range.Lower >= c.Range.Upper {
			return fmt.Errorf("%w: column %q has empty range %s", ErrOutOfRange, c.Name, c.Range)
		}
		return nil
	case ColumnInteraction:
		if len(c.Components) == 0 {
			return fmt.Errorf("%w: %q has no components", ErrInvalidInteraction, c.Name)
		}
		for _, ci := range c.Components {
			if ci < 0 || ci >= position {
				return fmt.Errorf("%w: %q component %d at position %d", ErrInvalidInteraction, c.Name, ci, position)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s column %q", ErrUnsupportedColumn, c.Kind, c.Name)
	}
}
