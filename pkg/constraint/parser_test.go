package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparisons(t *testing.T) {
	t.Run("equality", func(t *testing.T) {
		expr, err := Parse(`[Platform] = "x86"`)
		require.NoError(t, err)
		assert.Equal(t, OpEq, expr.Op)
		assert.Equal(t, "Platform", expr.Param)
		assert.Equal(t, "x86", expr.Value)
	})

	t.Run("inequality", func(t *testing.T) {
		expr, err := Parse(`[Platform] <> "arm"`)
		require.NoError(t, err)
		assert.Equal(t, OpNe, expr.Op)
		assert.Equal(t, "arm", expr.Value)
	})

	t.Run("set membership", func(t *testing.T) {
		expr, err := Parse(`[File system] IN {"FAT", "FAT32"}`)
		require.NoError(t, err)
		assert.Equal(t, OpIn, expr.Op)
		assert.Equal(t, "File system", expr.Param)
		assert.Equal(t, []string{"FAT", "FAT32"}, expr.Set)
	})

	t.Run("negated set membership", func(t *testing.T) {
		expr, err := Parse(`[Size] NOT IN {"10", "100"}`)
		require.NoError(t, err)
		assert.Equal(t, OpNotIn, expr.Op)
		assert.Equal(t, []string{"10", "100"}, expr.Set)
	})

	t.Run("negative value literal keeps its marker", func(t *testing.T) {
		expr, err := Parse(`[Size] = "~-1"`)
		require.NoError(t, err)
		assert.Equal(t, "~-1", expr.Value)
	})
}

func TestParsePrecedence(t *testing.T) {
	t.Run("AND binds tighter than OR", func(t *testing.T) {
		expr, err := Parse(`[A] = "1" OR [B] = "2" AND [C] = "3"`)
		require.NoError(t, err)
		require.Equal(t, OpOr, expr.Op)
		assert.Equal(t, OpEq, expr.Left.Op)
		require.Equal(t, OpAnd, expr.Right.Op)
		assert.Equal(t, "B", expr.Right.Left.Param)
		assert.Equal(t, "C", expr.Right.Right.Param)
	})

	t.Run("NOT binds tighter than AND", func(t *testing.T) {
		expr, err := Parse(`NOT [A] = "1" AND [B] = "2"`)
		require.NoError(t, err)
		require.Equal(t, OpAnd, expr.Op)
		assert.Equal(t, OpNot, expr.Left.Op)
		assert.Equal(t, OpEq, expr.Right.Op)
	})

	t.Run("parentheses override precedence", func(t *testing.T) {
		expr, err := Parse(`[A] = "1" AND ([B] = "2" OR [C] = "3")`)
		require.NoError(t, err)
		require.Equal(t, OpAnd, expr.Op)
		assert.Equal(t, OpOr, expr.Right.Op)
	})

	t.Run("AND is left associative", func(t *testing.T) {
		expr, err := Parse(`[A] = "1" AND [B] = "2" AND [C] = "3"`)
		require.NoError(t, err)
		require.Equal(t, OpAnd, expr.Op)
		assert.Equal(t, OpAnd, expr.Left.Op)
		assert.Equal(t, "C", expr.Right.Param)
	})
}

func TestParseImplication(t *testing.T) {
	t.Run("if then", func(t *testing.T) {
		expr, err := Parse(`IF [A] = "1" THEN [B] <> "x"`)
		require.NoError(t, err)
		require.Equal(t, OpImplies, expr.Op)
		assert.Equal(t, OpEq, expr.Left.Op)
		assert.Equal(t, OpNe, expr.Right.Op)
		assert.Nil(t, expr.Else)
	})

	t.Run("if then else", func(t *testing.T) {
		expr, err := Parse(`IF [A] = "1" THEN [B] = "x" ELSE [B] = "y"`)
		require.NoError(t, err)
		require.Equal(t, OpImplies, expr.Op)
		require.NotNil(t, expr.Else)
		assert.Equal(t, "y", expr.Else.Value)
	})

	t.Run("compound condition", func(t *testing.T) {
		expr, err := Parse(`IF [A] = "1" AND [B] = "2" THEN [C] IN {"x", "y"}`)
		require.NoError(t, err)
		require.Equal(t, OpImplies, expr.Op)
		assert.Equal(t, OpAnd, expr.Left.Op)
		assert.Equal(t, OpIn, expr.Right.Op)
	})

	t.Run("keywords are case insensitive", func(t *testing.T) {
		expr, err := Parse(`if [A] = "1" then [B] = "x"`)
		require.NoError(t, err)
		assert.Equal(t, OpImplies, expr.Op)
	})

	t.Run("nested IF is rejected", func(t *testing.T) {
		_, err := Parse(`[A] = "1" AND IF [B] = "2" THEN [C] = "3"`)
		require.Error(t, err)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Msg, "IF")
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		token string
	}{
		{"unterminated bracket", `[Platform = "x86"`, "["},
		{"unterminated string", `[Platform] = "x86`, `"`},
		{"missing operator", `[Platform] "x86"`, `x86`},
		{"missing THEN", `IF [A] = "1" [B] = "2"`, "B"},
		{"trailing input", `[A] = "1" [B] = "2"`, "B"},
		{"empty set", `[A] IN {}`, "}"},
		{"bare word", `[A] = banana`, "banana"},
		{"empty parameter name", `[] = "1"`, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.token, parseErr.Token)
			assert.Positive(t, parseErr.Pos)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse(`[A] = "1" AND banana`)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 15, parseErr.Pos)
	assert.Equal(t, "banana", parseErr.Token)
}

func TestExprString(t *testing.T) {
	t.Run("round trips through the parser", func(t *testing.T) {
		inputs := []string{
			`[A] = "1"`,
			`[A] <> "1"`,
			`[A] IN {"1", "2"}`,
			`[A] NOT IN {"1"}`,
			`NOT [A] = "1"`,
			`[A] = "1" AND [B] = "2" OR [C] = "3"`,
			`IF [A] = "1" THEN [B] = "x" ELSE [B] = "y"`,
		}
		for _, input := range inputs {
			expr, err := Parse(input)
			require.NoError(t, err, input)
			again, err := Parse(expr.String())
			require.NoError(t, err, expr.String())
			assert.Equal(t, expr.String(), again.String(), input)
		}
	})
}

func TestRefs(t *testing.T) {
	expr, err := Parse(`IF [A] = "1" AND [B] IN {"x", "y"} THEN [C] <> "z"`)
	require.NoError(t, err)

	refs := expr.Refs()
	require.Len(t, refs, 3)
	assert.Equal(t, Ref{Param: "A", Values: []string{"1"}}, refs[0])
	assert.Equal(t, Ref{Param: "B", Values: []string{"x", "y"}}, refs[1])
	assert.Equal(t, Ref{Param: "C", Values: []string{"z"}}, refs[2])
}
