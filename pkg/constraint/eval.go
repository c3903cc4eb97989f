package constraint

// Assignment resolves a parameter name to its currently assigned value.
// The second return is false while the parameter is unassigned.
type Assignment interface {
	Value(param string) (string, bool)
}

// Bindings is a map-backed Assignment, convenient for tests and one-off
// evaluations.
type Bindings map[string]string

// Value implements Assignment.
func (b Bindings) Value(param string) (string, bool) {
	v, ok := b[param]
	return v, ok
}

// Eval decides an expression against an assignment using Kleene
// three-valued logic. A comparison on an unassigned parameter is Unknown;
// Unknown propagates through AND/OR/NOT except where a definite sibling
// short-circuits it. Evaluation is total: it never fails, and a total
// assignment never produces Unknown.
func Eval(e *Expr, a Assignment) Tri {
	switch e.Op {
	case OpEq:
		v, ok := a.Value(e.Param)
		if !ok {
			return Unknown
		}
		if v == e.Value {
			return True
		}
		return False
	case OpNe:
		v, ok := a.Value(e.Param)
		if !ok {
			return Unknown
		}
		if v == e.Value {
			return False
		}
		return True
	case OpIn:
		v, ok := a.Value(e.Param)
		if !ok {
			return Unknown
		}
		return memberOf(v, e.Set)
	case OpNotIn:
		v, ok := a.Value(e.Param)
		if !ok {
			return Unknown
		}
		return memberOf(v, e.Set).Not()
	case OpNot:
		return Eval(e.Left, a).Not()
	case OpAnd:
		return Eval(e.Left, a).And(Eval(e.Right, a))
	case OpOr:
		return Eval(e.Left, a).Or(Eval(e.Right, a))
	case OpImplies:
		cond := Eval(e.Left, a)
		result := cond.Not().Or(Eval(e.Right, a))
		if e.Else != nil {
			result = result.And(cond.Or(Eval(e.Else, a)))
		}
		return result
	}
	return Unknown
}

func memberOf(v string, set []string) Tri {
	for _, member := range set {
		if v == member {
			return True
		}
	}
	return False
}
