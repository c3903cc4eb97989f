package pairs

import (
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairgen/pairgen/pkg/model"
)

func newModel(t *testing.T, params []model.ParameterSpec, constraints []string) *model.Model {
	t.Helper()
	m, err := model.New(params, constraints)
	require.NoError(t, err)
	return m
}

func TestBuildUnconstrained(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2", "3"}},
		{Name: "B", Values: []string{"x", "y"}},
	}, nil)

	u, err := Build(m, Options{})
	require.NoError(t, err)

	assert.Equal(t, 6, u.Combinations())
	assert.Equal(t, 6, u.Count())
	assert.Equal(t, 0, u.Excluded())

	pairs := u.Pairs()
	require.Len(t, pairs, 6)
	assert.Equal(t, Pair{Param1: "A", Value1: "1", Param2: "B", Value2: "x"}, pairs[0])
	assert.Equal(t, Pair{Param1: "A", Value1: "3", Param2: "B", Value2: "y"}, pairs[5])

	for id := 0; id < u.Combinations(); id++ {
		assert.True(t, u.Has(id), "pair %d should be included", id)
	}
}

func TestBuildExcludesDefiniteViolations(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2", "3"}},
		{Name: "B", Values: []string{"x", "y"}},
	}, []string{`IF [A] = "1" THEN [B] = "x"`})

	u, err := Build(m, Options{})
	require.NoError(t, err)

	assert.Equal(t, 6, u.Combinations())
	assert.Equal(t, 5, u.Count())
	assert.Equal(t, 1, u.Excluded())

	assert.False(t, u.Has(u.ID(0, 0, 1, 1)), "A=1 with B=y must be excluded")
	assert.True(t, u.Has(u.ID(0, 0, 1, 0)))
	assert.True(t, u.Has(u.ID(0, 1, 1, 1)), "A=2 leaves B unconstrained")
}

func TestBuildPropagatesForcedImplications(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2"}},
		{Name: "B", Values: []string{"x", "y"}},
		{Name: "C", Values: []string{"p", "q"}},
	}, []string{
		`IF [A] = "1" THEN [B] = "x"`,
		`IF [C] = "p" THEN [B] = "y"`,
	})

	u, err := Build(m, Options{})
	require.NoError(t, err)

	// A=1 forces B=x, which contradicts the binding C=p forces.
	assert.False(t, u.Has(u.ID(0, 0, 2, 0)), "A=1 with C=p is infeasible via forcing")
	assert.False(t, u.Has(u.ID(0, 0, 1, 1)), "A=1 with B=y violates directly")
	assert.False(t, u.Has(u.ID(1, 0, 2, 0)), "B=x with C=p violates directly")

	assert.True(t, u.Has(u.ID(0, 0, 1, 0)))
	assert.True(t, u.Has(u.ID(0, 1, 2, 0)))
	assert.Equal(t, 12, u.Combinations())
	assert.Equal(t, 9, u.Count())
}

func TestBuildPropagatesElseBranch(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2"}},
		{Name: "B", Values: []string{"x", "y"}},
		{Name: "C", Values: []string{"p", "q"}},
	}, []string{
		`IF [A] = "1" THEN [B] = "x" ELSE [B] = "y"`,
		`IF [B] = "y" THEN [C] = "p"`,
	})

	u, err := Build(m, Options{})
	require.NoError(t, err)

	// A=2 forces B=y via the ELSE branch, which in turn demands C=p.
	assert.False(t, u.Has(u.ID(0, 1, 2, 1)), "A=2 with C=q is infeasible via forcing")
	assert.False(t, u.Has(u.ID(0, 1, 1, 0)), "A=2 with B=x violates the ELSE branch")
	assert.False(t, u.Has(u.ID(0, 0, 1, 1)))
	assert.False(t, u.Has(u.ID(1, 1, 2, 1)), "B=y with C=q violates directly")

	assert.True(t, u.Has(u.ID(0, 1, 2, 0)))
	assert.Equal(t, 12, u.Combinations())
	assert.Equal(t, 8, u.Count())
}

func TestBuildCapacityCeiling(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2", "3"}},
		{Name: "B", Values: []string{"x", "y"}},
	}, nil)

	_, err := Build(m, Options{Ceiling: 5})
	require.Error(t, err)

	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 6, capErr.Combinations)
	assert.Equal(t, 5, capErr.Ceiling)
	assert.Contains(t, capErr.Error(), "partition")
}

func TestBuildNeedsTwoParameters(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2"}},
	}, nil)

	_, err := Build(m, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two parameters")
}

func TestIDNormalizesParameterOrder(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2", "3"}},
		{Name: "B", Values: []string{"x", "y"}},
	}, nil)

	u, err := Build(m, Options{})
	require.NoError(t, err)

	assert.Equal(t, u.ID(0, 2, 1, 1), u.ID(1, 1, 0, 2))

	p := u.Decode(u.ID(1, 0, 0, 1))
	assert.Equal(t, Pair{Param1: "A", Value1: "2", Param2: "B", Value2: "x"}, p)
}

func TestSnapshotIsIndependent(t *testing.T) {
	m := newModel(t, []model.ParameterSpec{
		{Name: "A", Values: []string{"1", "2"}},
		{Name: "B", Values: []string{"x", "y"}},
	}, nil)

	u, err := Build(m, Options{})
	require.NoError(t, err)

	snap := u.Snapshot()
	snap.Remove(0)
	assert.Equal(t, 3, snap.Count())
	assert.True(t, u.Has(0))
	assert.Equal(t, 4, u.Count())
}

func TestSetOperations(t *testing.T) {
	s := NewSet(130)
	assert.True(t, s.Empty())
	assert.Equal(t, 130, s.Cap())

	for _, id := range []int{0, 63, 64, 129} {
		s.Add(id)
	}
	assert.Equal(t, 4, s.Count())
	assert.False(t, s.Empty())
	assert.True(t, s.Has(63))
	assert.False(t, s.Has(62))

	s.Add(63) // idempotent
	assert.Equal(t, 4, s.Count())

	s.Remove(63)
	assert.False(t, s.Has(63))
	assert.Equal(t, 3, s.Count())
	s.Remove(63) // absent is a no-op
	assert.Equal(t, 3, s.Count())

	var seen []int
	s.ForEach(func(id int) {
		seen = append(seen, id)
	})
	assert.Equal(t, []int{0, 64, 129}, seen)
	assert.True(t, sort.IntsAreSorted(seen))

	clone := s.Clone()
	clone.Remove(0)
	assert.True(t, s.Has(0))
	assert.Equal(t, 2, clone.Count())
}
