package constraint

// Tri is the three-valued result of evaluating a constraint against a
// partial assignment. Unknown means the expression references at least one
// parameter that has no value yet; a total assignment never yields Unknown.
type Tri uint8

const (
	// False means the assignment definitely violates the expression.
	False Tri = iota
	// True means the assignment definitely satisfies the expression.
	True
	// Unknown means the expression cannot be decided yet.
	Unknown
)

// String returns the lowercase name of the truth value.
func (t Tri) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return "unknown"
	}
}

// Not negates a truth value. Unknown stays Unknown.
func (t Tri) Not() Tri {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// And combines two truth values with Kleene logic: a definite False wins
// over Unknown.
func (t Tri) And(other Tri) Tri {
	if t == False || other == False {
		return False
	}
	if t == True && other == True {
		return True
	}
	return Unknown
}

// Or combines two truth values with Kleene logic: a definite True wins
// over Unknown.
func (t Tri) Or(other Tri) Tri {
	if t == True || other == True {
		return True
	}
	if t == False && other == False {
		return False
	}
	return Unknown
}
