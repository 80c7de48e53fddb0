package features

import (
	"fmt"
	"sync"
)

// Provider supplies part of the underlying vector: attribute names, their
// declared types and, per observation, their values. The three slices are
// aligned by position.
type Provider interface {
	Names() []string
	Types() []Type
	Values(obs any) []any
}

// Classer is implemented by providers that carry a persistent class name.
// Providers without it are identified by their Go type.
type Classer interface {
	Class() string
}

// ProviderClass returns the class name recorded for p in persisted schemas.
func ProviderClass(p Provider) string {
	if p == nil {
		return ""
	}
	if c, ok := p.(Classer); ok {
		return c.Class()
	}
	return fmt.Sprintf("%T", p)
}

// Underlying concatenates a state provider and an optional action provider
// into a single attribute list.
type Underlying struct {
	state  Provider
	action Provider
	attrs  []Attribute
}

// NewUnderlying validates both providers and assigns attribute indices: state
// attributes first, then action attributes. action may be nil.
func NewUnderlying(state, action Provider) (*Underlying, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: state provider is required", ErrInvalidProvider)
	}
	u := &Underlying{state: state, action: action}
	seen := make(map[string]struct{})
	for _, p := range []Provider{state, action} {
		if p == nil {
			continue
		}
		names, types := p.Names(), p.Types()
		if len(names) != len(types) {
			return nil, fmt.Errorf("%w: %s has %d names and %d types", ErrInvalidProvider, ProviderClass(p), len(names), len(types))
		}
		for i, n := range names {
			if _, dup := seen[n]; dup {
				return nil, fmt.Errorf("%w: attribute %q declared twice", ErrInvalidProvider, n)
			}
			seen[n] = struct{}{}
			u.attrs = append(u.attrs, Attribute{Name: n, Type: types[i], Index: len(u.attrs)})
		}
	}
	return u, nil
}

// Attributes returns the combined attribute list.
func (u *Underlying) Attributes() []Attribute {
	out := make([]Attribute, len(u.attrs))
	copy(out, u.attrs)
	return out
}

// Values collects one observation from both providers. actionObs is ignored
// when there is no action provider.
func (u *Underlying) Values(stateObs, actionObs any) ([]any, error) {
	out := make([]any, 0, len(u.attrs))
	for _, part := range []struct {
		p   Provider
		obs any
	}{{u.state, stateObs}, {u.action, actionObs}} {
		if part.p == nil {
			continue
		}
		vals := part.p.Values(part.obs)
		if len(vals) != len(part.p.Names()) {
			return nil, fmt.Errorf("%w: %s returned %d values for %d names",
				ErrInvalidProvider, ProviderClass(part.p), len(vals), len(part.p.Names()))
		}
		out = append(out, vals...)
	}
	return out, nil
}

// Vector collects one observation and evaluates s against it.
func (u *Underlying) Vector(s *Schema, stateObs, actionObs any) ([]float64, error) {
	raw, err := u.Values(stateObs, actionObs)
	if err != nil {
		return nil, err
	}
	return Build(s, raw)
}

func (u *Underlying) classes() (string, string) {
	return ProviderClass(u.state), ProviderClass(u.action)
}

// ProviderFactory constructs a provider for a registered class.
type ProviderFactory func() (Provider, error)

var (
	providerMu sync.RWMutex
	providers  = map[string]ProviderFactory{}
)

// RegisterProvider registers (or replaces) the factory for class. Persisted
// schemas name their providers by class and are resolved through this
// registry on load.
func RegisterProvider(class string, f ProviderFactory) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providers[class] = f
}

// LookupProvider constructs the provider registered for class.
func LookupProvider(class string) (Provider, error) {
	providerMu.RLock()
	f, ok := providers[class]
	providerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, class)
	}
	return f()
}

// StaticProvider is a provider with a fixed attribute list, used when the
// attributes come from configuration rather than code. Values accepts either
// a []any already in attribute order or a map[string]any keyed by name.
type StaticProvider struct {
	class string
	names []string
	types []Type
}

// NewStaticProvider returns a provider over the given names and types.
func NewStaticProvider(class string, names []string, types []Type) *StaticProvider {
	return &StaticProvider{
		class: class,
		names: append([]string(nil), names...),
		types: append([]Type(nil), types...),
	}
}

func (p *StaticProvider) Class() string   { return p.class }
func (p *StaticProvider) Names() []string { return append([]string(nil), p.names...) }
func (p *StaticProvider) Types() []Type   { return append([]Type(nil), p.types...) }

func (p *StaticProvider) Values(obs any) []any {
	switch o := obs.(type) {
	case []any:
		return append([]any(nil), o...)
	case map[string]any:
		out := make([]any, len(p.names))
		for i, n := range p.names {
			out[i] = o[n]
		}
		return out
	}
	return nil
}
