package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairgen/pairgen/pkg/constraint"
)

func TestNew(t *testing.T) {
	m, err := New([]ParameterSpec{
		{Name: "Platform", Values: []string{"x86", "x64", "arm"}},
		{Name: "File system", Values: []string{"FAT", "NTFS"}},
	}, []string{
		`IF [Platform] = "arm" THEN [File system] = "NTFS"`,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"Platform", "File system"}, m.Parameters())
	assert.Equal(t, []Value{"x86", "x64", "arm"}, m.ValuesOf("Platform"))
	assert.Nil(t, m.ValuesOf("Missing"))
	require.Len(t, m.Constraints(), 1)
	assert.Equal(t, constraint.OpImplies, m.Constraints()[0].Op)

	i, ok := m.ParamIndex("File system")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	vi, ok := m.Parameter(i).ValueIndex("NTFS")
	require.True(t, ok)
	assert.Equal(t, 1, vi)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name        string
		params      []ParameterSpec
		constraints []string
		wantErr     string
	}{
		{
			name: "duplicate parameter",
			params: []ParameterSpec{
				{Name: "A", Values: []string{"1"}},
				{Name: "A", Values: []string{"2"}},
			},
			wantErr: `duplicate parameter "A"`,
		},
		{
			name: "empty domain",
			params: []ParameterSpec{
				{Name: "A", Values: nil},
			},
			wantErr: `parameter "A" has an empty domain`,
		},
		{
			name: "duplicate value",
			params: []ParameterSpec{
				{Name: "A", Values: []string{"1", "1"}},
			},
			wantErr: `parameter "A" repeats value "1"`,
		},
		{
			name: "unknown parameter in constraint",
			params: []ParameterSpec{
				{Name: "A", Values: []string{"1"}},
			},
			constraints: []string{`[B] = "1"`},
			wantErr:     `unknown parameter "B"`,
		},
		{
			name: "out of domain value in constraint",
			params: []ParameterSpec{
				{Name: "A", Values: []string{"1", "2"}},
			},
			constraints: []string{`[A] = "3"`},
			wantErr:     `value "3" outside the domain of "A"`,
		},
		{
			name: "malformed constraint",
			params: []ParameterSpec{
				{Name: "A", Values: []string{"1"}},
			},
			constraints: []string{`[A] = `},
			wantErr:     "parse error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params, tt.constraints)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAggregatesAllErrors(t *testing.T) {
	_, err := New([]ParameterSpec{
		{Name: "A", Values: []string{"1"}},
		{Name: "A", Values: []string{"2"}},
		{Name: "B", Values: nil},
	}, []string{
		`[C] = "1"`,
		`[A] = `,
	})
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate parameter "A"`)
	assert.Contains(t, msg, `parameter "B" has an empty domain`)
	assert.Contains(t, msg, `unknown parameter "C"`)
	assert.Contains(t, msg, "parse error")
}

func TestNewAcceptsNegativeValueLiterals(t *testing.T) {
	m, err := New([]ParameterSpec{
		{Name: "Size", Values: []string{"1", "10", "~-1"}},
	}, []string{
		`[Size] <> "~-1"`,
	})
	require.NoError(t, err)

	values := m.ValuesOf("Size")
	require.Len(t, values, 3)
	assert.False(t, values[0].Negative())
	assert.True(t, values[2].Negative())
}

func TestAssignment(t *testing.T) {
	m, err := New([]ParameterSpec{
		{Name: "A", Values: []string{"1", "2"}},
		{Name: "B", Values: []string{"x", "y"}},
	}, nil)
	require.NoError(t, err)

	a := m.NewAssignment()
	assert.False(t, a.Total())

	_, bound := a.Get(0)
	assert.False(t, bound)
	_, found := a.Value("A")
	assert.False(t, found)

	a.Set(0, 1)
	v, found := a.Value("A")
	require.True(t, found)
	assert.Equal(t, "2", v)

	a.Set(1, 0)
	assert.True(t, a.Total())
	assert.Equal(t, []Value{"2", "x"}, a.Row())

	clone := a.Clone()
	clone.Set(0, 0)
	got, _ := a.Value("A")
	assert.Equal(t, "2", got, "clone must not alias the original")

	a.Unset(1)
	assert.False(t, a.Total())
}

func TestViolates(t *testing.T) {
	m, err := New([]ParameterSpec{
		{Name: "A", Values: []string{"1", "2"}},
		{Name: "B", Values: []string{"x", "y"}},
	}, []string{
		`IF [A] = "1" THEN [B] = "x"`,
	})
	require.NoError(t, err)

	a := m.NewAssignment()
	assert.False(t, m.Violates(a), "empty assignment cannot violate")

	a.Set(0, 0) // A=1
	assert.False(t, m.Violates(a), "unknown consequent is not a violation")

	a.Set(1, 1) // B=y
	assert.True(t, m.Violates(a))

	a.Set(1, 0) // B=x
	assert.False(t, m.Violates(a))
}
