package model

// Assignment is a partial or total mapping from parameters to values,
// tracked by index. The zero state of every slot is unassigned. A total
// Assignment is one row of a covering suite.
type Assignment struct {
	m    *Model
	vals []int
}

// NewAssignment returns an Assignment over the model's parameters with
// every slot unassigned.
func (m *Model) NewAssignment() *Assignment {
	vals := make([]int, len(m.params))
	for i := range vals {
		vals[i] = -1
	}
	return &Assignment{m: m, vals: vals}
}

// Set binds parameter param to the value at domain index value.
func (a *Assignment) Set(param, value int) {
	a.vals[param] = value
}

// Unset clears the binding of parameter param.
func (a *Assignment) Unset(param int) {
	a.vals[param] = -1
}

// Get returns the bound value index of parameter param.
func (a *Assignment) Get(param int) (int, bool) {
	v := a.vals[param]
	if v < 0 {
		return 0, false
	}
	return v, true
}

// Value resolves a parameter name to its assigned value text. It
// implements constraint.Assignment.
func (a *Assignment) Value(param string) (string, bool) {
	i, ok := a.m.byName[param]
	if !ok {
		return "", false
	}
	v := a.vals[i]
	if v < 0 {
		return "", false
	}
	return string(a.m.params[i].values[v]), true
}

// Total reports whether every parameter is bound.
func (a *Assignment) Total() bool {
	for _, v := range a.vals {
		if v < 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the assignment.
func (a *Assignment) Clone() *Assignment {
	vals := make([]int, len(a.vals))
	copy(vals, a.vals)
	return &Assignment{m: a.m, vals: vals}
}

// Row materializes a total assignment as value texts in parameter order.
// It panics when called on a partial assignment.
func (a *Assignment) Row() []Value {
	row := make([]Value, len(a.vals))
	for i, v := range a.vals {
		if v < 0 {
			panic("model: Row called on a partial assignment")
		}
		row[i] = a.m.params[i].values[v]
	}
	return row
}
