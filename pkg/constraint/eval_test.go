package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *Expr {
	t.Helper()
	expr, err := Parse(text)
	require.NoError(t, err)
	return expr
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		bindings Bindings
		want     Tri
	}{
		{"equality holds", `[A] = "1"`, Bindings{"A": "1"}, True},
		{"equality fails", `[A] = "1"`, Bindings{"A": "2"}, False},
		{"equality unknown", `[A] = "1"`, Bindings{}, Unknown},
		{"inequality holds", `[A] <> "1"`, Bindings{"A": "2"}, True},
		{"inequality fails", `[A] <> "1"`, Bindings{"A": "1"}, False},
		{"inequality unknown", `[A] <> "1"`, Bindings{"B": "1"}, Unknown},
		{"membership holds", `[A] IN {"1", "2"}`, Bindings{"A": "2"}, True},
		{"membership fails", `[A] IN {"1", "2"}`, Bindings{"A": "3"}, False},
		{"membership unknown", `[A] IN {"1"}`, Bindings{}, Unknown},
		{"negated membership holds", `[A] NOT IN {"1"}`, Bindings{"A": "2"}, True},
		{"negated membership fails", `[A] NOT IN {"1"}`, Bindings{"A": "1"}, False},
		{"negative marker is part of identity", `[A] = "~-1"`, Bindings{"A": "~-1"}, True},
		{"unmarked literal does not match marked value", `[A] = "-1"`, Bindings{"A": "~-1"}, False},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eval(mustParse(t, tt.text), tt.bindings))
		})
	}
}

func TestEvalThreeValuedLogic(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		bindings Bindings
		want     Tri
	}{
		{"AND of true and unknown", `[A] = "1" AND [B] = "2"`, Bindings{"A": "1"}, Unknown},
		{"AND short-circuits on false", `[A] = "1" AND [B] = "2"`, Bindings{"A": "0"}, False},
		{"OR short-circuits on true", `[A] = "1" OR [B] = "2"`, Bindings{"A": "1"}, True},
		{"OR of false and unknown", `[A] = "1" OR [B] = "2"`, Bindings{"A": "0"}, Unknown},
		{"OR of both false", `[A] = "1" OR [B] = "2"`, Bindings{"A": "0", "B": "0"}, False},
		{"NOT of unknown", `NOT [A] = "1"`, Bindings{}, Unknown},
		{"NOT of false", `NOT [A] = "1"`, Bindings{"A": "2"}, True},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eval(mustParse(t, tt.text), tt.bindings))
		})
	}
}

func TestEvalImplication(t *testing.T) {
	expr := mustParse(t, `IF [A] = "1" THEN [B] = "x"`)

	t.Run("vacuously true when condition fails", func(t *testing.T) {
		assert.Equal(t, True, Eval(expr, Bindings{"A": "2"}))
		assert.Equal(t, True, Eval(expr, Bindings{"A": "2", "B": "y"}))
	})

	t.Run("true when both hold", func(t *testing.T) {
		assert.Equal(t, True, Eval(expr, Bindings{"A": "1", "B": "x"}))
	})

	t.Run("false when condition holds and consequent fails", func(t *testing.T) {
		assert.Equal(t, False, Eval(expr, Bindings{"A": "1", "B": "y"}))
	})

	t.Run("unknown while consequent parameter is unassigned", func(t *testing.T) {
		assert.Equal(t, Unknown, Eval(expr, Bindings{"A": "1"}))
	})

	t.Run("else branch applies when condition fails", func(t *testing.T) {
		withElse := mustParse(t, `IF [A] = "1" THEN [B] = "x" ELSE [B] = "y"`)
		assert.Equal(t, True, Eval(withElse, Bindings{"A": "2", "B": "y"}))
		assert.Equal(t, False, Eval(withElse, Bindings{"A": "2", "B": "x"}))
		assert.Equal(t, True, Eval(withElse, Bindings{"A": "1", "B": "x"}))
	})
}

func TestEvalTotalAssignmentIsNeverUnknown(t *testing.T) {
	exprs := []string{
		`[A] = "1"`,
		`NOT ([A] = "1" OR [B] = "2")`,
		`IF [A] IN {"1", "2"} THEN [B] <> "2"`,
	}
	totals := []Bindings{
		{"A": "1", "B": "1"},
		{"A": "1", "B": "2"},
		{"A": "2", "B": "1"},
		{"A": "2", "B": "2"},
	}
	for _, text := range exprs {
		expr := mustParse(t, text)
		for _, total := range totals {
			result := Eval(expr, total)
			assert.NotEqual(t, Unknown, result, "%s on %v", text, total)
		}
	}
}

func TestTriTables(t *testing.T) {
	values := []Tri{False, True, Unknown}

	t.Run("not", func(t *testing.T) {
		assert.Equal(t, False, True.Not())
		assert.Equal(t, True, False.Not())
		assert.Equal(t, Unknown, Unknown.Not())
	})

	t.Run("and is commutative", func(t *testing.T) {
		for _, a := range values {
			for _, b := range values {
				assert.Equal(t, a.And(b), b.And(a))
			}
		}
	})

	t.Run("or is commutative", func(t *testing.T) {
		for _, a := range values {
			for _, b := range values {
				assert.Equal(t, a.Or(b), b.Or(a))
			}
		}
	})

	t.Run("de morgan holds", func(t *testing.T) {
		for _, a := range values {
			for _, b := range values {
				assert.Equal(t, a.And(b).Not(), a.Not().Or(b.Not()))
			}
		}
	})
}
