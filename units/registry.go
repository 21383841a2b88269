// Package units is the catalog of named units, prefixes and constants, and the
// parser that turns text such as "kg m2 s-1" or "4.52(2) m" into values.
//
// A Registry is an explicit name → value mapping. Default returns a fresh registry
// loaded with the standard catalog; registries are never shared implicitly.
package units

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

var (
	ErrAlreadyDefined = errors.New("units: name already defined")
	ErrUnknown        = errors.New("units: unknown name")
)

// Constant is a named physical constant. It can stand in for a unit with AsUnit.
type Constant struct {
	Symbol string
	Name   string
	Value  quant.Quantity
}

func (c Constant) AsUnit() (quant.Unit, error) { return c.Value.AsUnit(c.Symbol, c.Name) }

func (c Constant) String() string { return c.Symbol + " = " + c.Value.String() }

type unitEntry struct {
	unit       quant.Unit
	prefixable bool
}

// Registry maps names and symbols to units, logarithmic units, prefixes and
// constants. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	units     map[string]unitEntry
	logs      map[string]quant.LogUnit
	prefixes  map[string]quant.Prefix
	byName    map[string]quant.Prefix
	constants map[string]Constant
	prefixLen []int // prefix symbol lengths in bytes, longest first
}

func NewRegistry() *Registry {
	return &Registry{
		units:     map[string]unitEntry{},
		logs:      map[string]quant.LogUnit{},
		prefixes:  map[string]quant.Prefix{},
		byName:    map[string]quant.Prefix{},
		constants: map[string]Constant{},
	}
}

// Default returns a new registry holding the standard catalog.
func Default() *Registry {
	r := NewRegistry()
	if err := r.loadStandard(); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) taken(name string) bool {
	_, u := r.units[name]
	_, l := r.logs[name]
	_, c := r.constants[name]
	return u || l || c
}

// AddUnit registers u under its symbol, its name and any aliases. A prefixable
// unit also answers to every registered prefix in front of its symbol or name.
func (r *Registry) AddUnit(u quant.Unit, prefixable bool, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := append([]string{u.Symbol(), u.Name()}, aliases...)
	for _, n := range names {
		if n != "" && r.taken(n) {
			return fmt.Errorf("%w: %q", ErrAlreadyDefined, n)
		}
	}
	for _, n := range names {
		if n != "" {
			r.units[n] = unitEntry{unit: u, prefixable: prefixable}
		}
	}
	return nil
}

// AddLogUnit registers u under its symbol and aliases. An unreferenced unit is also
// registered under its name; referenced units such as dBm share their name.
func (r *Registry) AddLogUnit(u quant.LogUnit, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := append([]string{u.String()}, aliases...)
	if !u.HasReference() {
		names = append(names, u.Name())
	}
	for _, n := range names {
		if _, ok := r.logs[n]; ok && n != "" {
			return fmt.Errorf("%w: %q", ErrAlreadyDefined, n)
		}
	}
	for _, n := range names {
		if n != "" {
			r.logs[n] = u
		}
	}
	return nil
}

func (r *Registry) AddPrefix(p quant.Prefix, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prefixes[p.Symbol]; ok {
		return fmt.Errorf("%w: prefix %q", ErrAlreadyDefined, p.Symbol)
	}
	for _, s := range append([]string{p.Symbol}, aliases...) {
		r.prefixes[s] = p
		if !slices.Contains(r.prefixLen, len(s)) {
			r.prefixLen = append(r.prefixLen, len(s))
		}
	}
	r.byName[p.Name] = p
	sort.Sort(sort.Reverse(sort.IntSlice(r.prefixLen)))
	return nil
}

func (r *Registry) AddConstant(c Constant, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := append([]string{c.Symbol, c.Name}, aliases...)
	for _, n := range names {
		if _, ok := r.constants[n]; ok && n != "" {
			return fmt.Errorf("%w: constant %q", ErrAlreadyDefined, n)
		}
	}
	for _, n := range names {
		if n != "" {
			r.constants[n] = c
		}
	}
	return nil
}

// Unit looks up a unit by symbol, name or alias, composing prefixes on demand:
// "mg" is milli applied to gram and "kilometre" kilo applied to metre.
func (r *Registry) Unit(name string) (quant.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.units[name]; ok {
		return e.unit, nil
	}
	for _, n := range r.prefixLen {
		if n >= len(name) {
			continue
		}
		p, ok := r.prefixes[name[:n]]
		if !ok {
			continue
		}
		if e, ok := r.units[name[n:]]; ok && e.prefixable {
			return p.Apply(e.unit)
		}
	}
	for pn, p := range r.byName {
		if rest, ok := strings.CutPrefix(name, pn); ok && rest != "" {
			if e, ok := r.units[rest]; ok && e.prefixable {
				return p.Apply(e.unit)
			}
		}
	}
	return quant.Unit{}, fmt.Errorf("%w: unit %q", ErrUnknown, name)
}

// MustUnit is Unit for names known to exist.
func (r *Registry) MustUnit(name string) quant.Unit {
	u, err := r.Unit(name)
	if err != nil {
		panic(err)
	}
	return u
}

func (r *Registry) LogUnit(name string) (quant.LogUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.logs[name]; ok {
		return u, nil
	}
	return quant.LogUnit{}, fmt.Errorf("%w: logarithmic unit %q", ErrUnknown, name)
}

func (r *Registry) Prefix(name string) (quant.Prefix, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.prefixes[name]; ok {
		return p, nil
	}
	if p, ok := r.byName[name]; ok {
		return p, nil
	}
	return quant.Prefix{}, fmt.Errorf("%w: prefix %q", ErrUnknown, name)
}

func (r *Registry) Constant(name string) (Constant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.constants[name]; ok {
		return c, nil
	}
	return Constant{}, fmt.Errorf("%w: constant %q", ErrUnknown, name)
}

// Names lists every registered unit, logarithmic unit and constant name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.units)+len(r.logs)+len(r.constants))
	for n := range r.units {
		out = append(out, n)
	}
	for n := range r.logs {
		out = append(out, n)
	}
	for n := range r.constants {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Search returns the names containing partial, ignoring case.
func (r *Registry) Search(partial string) []string {
	p := strings.ToLower(partial)
	var out []string
	for _, n := range r.Names() {
		if strings.Contains(strings.ToLower(n), p) {
			out = append(out, n)
		}
	}
	return out
}

// Lookup resolves name to a quant.Unit, a quant.LogUnit or a Constant. Registered
// names win over prefixed units, so "dB" is the decibel rather than a decibyte.
func (r *Registry) Lookup(name string) (any, error) {
	r.mu.RLock()
	e, isUnit := r.units[name]
	l, isLog := r.logs[name]
	c, isConst := r.constants[name]
	r.mu.RUnlock()
	switch {
	case isUnit:
		return e.unit, nil
	case isLog:
		return l, nil
	case isConst:
		return c, nil
	}
	if u, err := r.Unit(name); err == nil {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// MustLookup is Lookup for names known to exist.
func (r *Registry) MustLookup(name string) any {
	v, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return v
}
