// Package model holds the immutable in-memory representation of a pairwise
// test model: named parameters with ordered value domains, plus the parsed
// constraints restricting which value combinations are valid. A Model is
// constructed once, validated exhaustively, and never mutated afterwards.
package model

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/pairgen/pairgen/pkg/constraint"
)

// NegativeMarker prefixes values that model invalid or boundary input.
// The marker stays part of the value's identity; the engine never strips
// it, and callers decide what to do with negative values.
const NegativeMarker = "~"

// Value is one element of a parameter's domain. The text is opaque to the
// engine; domain order is preserved for deterministic output but carries no
// semantic weight.
type Value string

// Negative reports whether the value carries the "~" error-case marker.
func (v Value) Negative() bool {
	return strings.HasPrefix(string(v), NegativeMarker)
}

func (v Value) String() string {
	return string(v)
}

// ParameterSpec describes one parameter before validation.
type ParameterSpec struct {
	Name   string
	Values []string
}

// Parameter is a named input dimension with a finite ordered domain of at
// least one value.
type Parameter struct {
	name    string
	values  []Value
	byValue map[string]int
}

// Name returns the parameter's unique name.
func (p *Parameter) Name() string {
	return p.name
}

// Values returns a copy of the domain in declaration order.
func (p *Parameter) Values() []Value {
	return append([]Value(nil), p.values...)
}

// Size returns the number of values in the domain.
func (p *Parameter) Size() int {
	return len(p.values)
}

// Value returns the domain value at index i.
func (p *Parameter) Value(i int) Value {
	return p.values[i]
}

// ValueIndex resolves a value text to its domain index.
func (p *Parameter) ValueIndex(text string) (int, bool) {
	i, ok := p.byValue[text]
	return i, ok
}

// Model is an ordered set of parameters plus the constraints over them.
type Model struct {
	params      []Parameter
	byName      map[string]int
	constraints []*constraint.Expr
	texts       []string
}

// New validates parameters and constraint texts and builds a Model. All
// defects are reported together: duplicate parameter names, empty domains,
// duplicate values within a domain, malformed constraints, and constraints
// referencing unknown parameters or out-of-domain values.
func New(params []ParameterSpec, constraintTexts []string) (*Model, error) {
	m := &Model{
		params: make([]Parameter, 0, len(params)),
		byName: make(map[string]int, len(params)),
	}

	var result *multierror.Error
	for _, spec := range params {
		if spec.Name == "" {
			result = multierror.Append(result, errors.New("parameter with empty name"))
			continue
		}
		if _, exists := m.byName[spec.Name]; exists {
			result = multierror.Append(result, errors.Errorf("duplicate parameter %q", spec.Name))
			continue
		}
		if len(spec.Values) == 0 {
			result = multierror.Append(result, errors.Errorf("parameter %q has an empty domain", spec.Name))
			continue
		}
		p := Parameter{
			name:    spec.Name,
			values:  make([]Value, 0, len(spec.Values)),
			byValue: make(map[string]int, len(spec.Values)),
		}
		for _, text := range spec.Values {
			if _, dup := p.byValue[text]; dup {
				result = multierror.Append(result, errors.Errorf("parameter %q repeats value %q", spec.Name, text))
				continue
			}
			p.byValue[text] = len(p.values)
			p.values = append(p.values, Value(text))
		}
		m.byName[spec.Name] = len(m.params)
		m.params = append(m.params, p)
	}

	for i, text := range constraintTexts {
		expr, err := constraint.Parse(text)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "constraint %d", i+1))
			continue
		}
		for _, ref := range expr.Refs() {
			pi, ok := m.byName[ref.Param]
			if !ok {
				result = multierror.Append(result, errors.Errorf("constraint %d references unknown parameter %q", i+1, ref.Param))
				continue
			}
			for _, v := range ref.Values {
				if _, ok := m.params[pi].byValue[v]; !ok {
					result = multierror.Append(result, errors.Errorf("constraint %d references value %q outside the domain of %q", i+1, v, ref.Param))
				}
			}
		}
		m.constraints = append(m.constraints, expr)
		m.texts = append(m.texts, text)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	return m, nil
}

// Len returns the number of parameters.
func (m *Model) Len() int {
	return len(m.params)
}

// Parameters returns the parameter names in declaration order.
func (m *Model) Parameters() []string {
	names := make([]string, len(m.params))
	for i := range m.params {
		names[i] = m.params[i].name
	}
	return names
}

// Parameter returns the parameter at index i.
func (m *Model) Parameter(i int) *Parameter {
	return &m.params[i]
}

// ParamIndex resolves a parameter name to its index.
func (m *Model) ParamIndex(name string) (int, bool) {
	i, ok := m.byName[name]
	return i, ok
}

// ValuesOf returns a copy of the named parameter's domain, or nil when the
// parameter does not exist.
func (m *Model) ValuesOf(name string) []Value {
	i, ok := m.byName[name]
	if !ok {
		return nil
	}
	return m.params[i].Values()
}

// Constraints returns the parsed constraint expressions in declaration
// order. The returned slice is a copy; the expressions themselves are
// shared and must be treated as read-only.
func (m *Model) Constraints() []*constraint.Expr {
	return append([]*constraint.Expr(nil), m.constraints...)
}

// ConstraintTexts returns the original constraint sources in declaration
// order.
func (m *Model) ConstraintTexts() []string {
	return append([]string(nil), m.texts...)
}

// Violates reports whether any constraint definitely fails on the
// assignment. Unknown results do not count as violations.
func (m *Model) Violates(a *Assignment) bool {
	for _, expr := range m.constraints {
		if constraint.Eval(expr, a) == constraint.False {
			return true
		}
	}
	return false
}
