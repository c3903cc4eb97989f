// Package constraint implements the boolean expression language used to
// restrict value combinations in a pairwise test model. It provides a lexer
// and recursive-descent parser producing a small tagged AST, plus a
// three-valued evaluator that decides expressions against partial
// assignments of parameter values.
//
// The grammar, with precedence from lowest to highest:
//
//	constraint := IF expr THEN expr [ELSE expr] | expr
//	expr       := and { OR and }
//	and        := unary { AND unary }
//	unary      := NOT unary | primary
//	primary    := '(' expr ')' | comparison
//	comparison := '[' name ']' ( '=' | '<>' ) '"' value '"'
//	            | '[' name ']' [NOT] IN '{' '"' value '"' { ',' '"' value '"' } '}'
//
// Keywords are case-insensitive; parameter names and value literals are
// matched exactly as written.
package constraint

import (
	"fmt"
	"strings"
)

// Op tags the kind of an expression node. Every node is an Expr; Op decides
// which fields are meaningful, so evaluation and analysis are exhaustive
// switches rather than virtual dispatch.
type Op uint8

const (
	// OpEq is [Param] = "Value".
	OpEq Op = iota + 1
	// OpNe is [Param] <> "Value".
	OpNe
	// OpIn is [Param] IN {Set...}.
	OpIn
	// OpNotIn is [Param] NOT IN {Set...}.
	OpNotIn
	// OpNot negates Left.
	OpNot
	// OpAnd joins Left and Right.
	OpAnd
	// OpOr joins Left and Right.
	OpOr
	// OpImplies is IF Left THEN Right [ELSE Else], desugared at evaluation
	// time to NOT(Left) OR Right (AND Left OR Else when Else is present).
	OpImplies
)

// Expr is one node of a parsed constraint. Fields are read-only once Parse
// returns.
type Expr struct {
	Op    Op
	Param string   // OpEq, OpNe, OpIn, OpNotIn
	Value string   // OpEq, OpNe
	Set   []string // OpIn, OpNotIn
	Left  *Expr    // OpNot, OpAnd, OpOr, OpImplies
	Right *Expr    // OpAnd, OpOr, OpImplies
	Else  *Expr    // OpImplies, optional
}

// Ref is a single parameter/value reference found in an expression, used by
// model validation to reject constraints naming unknown parameters or
// out-of-domain values.
type Ref struct {
	Param  string
	Values []string
}

// Refs returns every comparison reference in the expression, in source
// order.
func (e *Expr) Refs() []Ref {
	var refs []Ref
	e.walk(func(n *Expr) {
		switch n.Op {
		case OpEq, OpNe:
			refs = append(refs, Ref{Param: n.Param, Values: []string{n.Value}})
		case OpIn, OpNotIn:
			refs = append(refs, Ref{Param: n.Param, Values: append([]string(nil), n.Set...)})
		}
	})
	return refs
}

func (e *Expr) walk(fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	e.Left.walk(fn)
	e.Right.walk(fn)
	e.Else.walk(fn)
}

// String re-renders the expression in canonical constraint syntax. Binary
// operators are fully parenthesized, so the output always re-parses to the
// same tree.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	switch e.Op {
	case OpEq:
		return fmt.Sprintf("[%s] = %q", e.Param, e.Value)
	case OpNe:
		return fmt.Sprintf("[%s] <> %q", e.Param, e.Value)
	case OpIn:
		return fmt.Sprintf("[%s] IN {%s}", e.Param, quoteSet(e.Set))
	case OpNotIn:
		return fmt.Sprintf("[%s] NOT IN {%s}", e.Param, quoteSet(e.Set))
	case OpNot:
		return fmt.Sprintf("NOT %s", e.Left.String())
	case OpAnd:
		return fmt.Sprintf("(%s AND %s)", e.Left.String(), e.Right.String())
	case OpOr:
		return fmt.Sprintf("(%s OR %s)", e.Left.String(), e.Right.String())
	case OpImplies:
		if e.Else != nil {
			return fmt.Sprintf("IF %s THEN %s ELSE %s", e.Left.String(), e.Right.String(), e.Else.String())
		}
		return fmt.Sprintf("IF %s THEN %s", e.Left.String(), e.Right.String())
	}
	return ""
}

func quoteSet(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
