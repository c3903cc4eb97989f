// Package pairs enumerates the pair universe of a model: every unordered
// combination of two values from two distinct parameters, minus the
// combinations the constraints rule out. Pairs are interned as dense integer
// IDs laid out in per-parameter-pair blocks, so the generator tracks coverage
// with bitset words instead of hashing tuples.
package pairs

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/pairgen/pairgen/pkg/constraint"
	"github.com/pairgen/pairgen/pkg/model"
)

// DefaultCeiling bounds the candidate pair combinations a single model may
// produce before Build refuses to allocate.
const DefaultCeiling = 5_000_000

// Options configures universe construction.
type Options struct {
	// Ceiling caps total candidate pair combinations. Zero means
	// DefaultCeiling.
	Ceiling int
}

// CapacityError reports a model whose pair universe would exceed the
// configured ceiling. Nothing is allocated when it is returned.
type CapacityError struct {
	Combinations int
	Ceiling      int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("model produces %d pair combinations, over the ceiling of %d; partition it into smaller independent models", e.Combinations, e.Ceiling)
}

// Pair is one universe element in display form, with parameters in model
// declaration order.
type Pair struct {
	Param1 string `json:"param1"`
	Value1 string `json:"value1"`
	Param2 string `json:"param2"`
	Value2 string `json:"value2"`
}

func (p Pair) String() string {
	return fmt.Sprintf("[%s] = %q, [%s] = %q", p.Param1, p.Value1, p.Param2, p.Value2)
}

// block is the contiguous ID range of one parameter pair, pi < pj.
type block struct {
	pi, pj int
	base   int
	sizeJ  int
}

// Universe holds the interned pair arena of one model. IDs are dense ints in
// [0, Combinations()); the ID of (p, vp) × (q, vq) with p < q is the block
// base of (p, q) plus vp*|dom(q)|+vq. A Universe is immutable once built.
type Universe struct {
	m        *model.Model
	blocks   []block
	blockAt  [][]int // blockAt[i][j-i-1] indexes blocks, i < j
	total    int
	count    int
	included *Set
}

// Build enumerates and filters the pair universe of m. A pair is excluded
// only when the two-binding partial assignment, extended by forced
// implications, definitely violates a constraint; pairs whose feasibility
// depends on other parameters stay in and are diagnosed during generation.
func Build(m *model.Model, opts Options) (*Universe, error) {
	ceiling := opts.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	n := m.Len()
	if n < 2 {
		return nil, errors.Errorf("pairwise coverage needs at least two parameters, got %d", n)
	}

	total := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += m.Parameter(i).Size() * m.Parameter(j).Size()
		}
	}
	if total > ceiling {
		return nil, &CapacityError{Combinations: total, Ceiling: ceiling}
	}

	u := &Universe{
		m:        m,
		blocks:   make([]block, 0, n*(n-1)/2),
		blockAt:  make([][]int, n),
		total:    total,
		included: NewSet(total),
	}
	base := 0
	for i := 0; i < n; i++ {
		u.blockAt[i] = make([]int, n-i-1)
		for j := i + 1; j < n; j++ {
			sizeJ := m.Parameter(j).Size()
			u.blockAt[i][j-i-1] = len(u.blocks)
			u.blocks = append(u.blocks, block{pi: i, pj: j, base: base, sizeJ: sizeJ})
			base += m.Parameter(i).Size() * sizeJ
		}
	}

	cons := m.Constraints()
	a := m.NewAssignment()
	forced := make(map[string]string, n)
	for _, b := range u.blocks {
		di := m.Parameter(b.pi).Size()
		for vi := 0; vi < di; vi++ {
			a.Set(b.pi, vi)
			for vj := 0; vj < b.sizeJ; vj++ {
				a.Set(b.pj, vj)
				if permitted(cons, a, forced) {
					u.included.Add(b.base + vi*b.sizeJ + vj)
				}
			}
		}
		a.Unset(b.pi)
		a.Unset(b.pj)
	}
	u.count = u.included.Count()
	return u, nil
}

// permitted reports whether the partial assignment survives every constraint
// after forced implications are propagated to a fixpoint. Forcing is
// deliberately shallow: only top-level implications whose consequent is a
// single equality bind a parameter, and only when the condition is decided.
// The forced map is caller-owned scratch space.
func permitted(cons []*constraint.Expr, a constraint.Assignment, forced map[string]string) bool {
	for k := range forced {
		delete(forced, k)
	}
	view := &overlay{base: a, forced: forced}
	for {
		progressed := false
		for _, c := range cons {
			if constraint.Eval(c, view) == constraint.False {
				return false
			}
			if c.Op != constraint.OpImplies {
				continue
			}
			switch constraint.Eval(c.Left, view) {
			case constraint.True:
				progressed = force(c.Right, view) || progressed
			case constraint.False:
				if c.Else != nil {
					progressed = force(c.Else, view) || progressed
				}
			}
		}
		if !progressed {
			return true
		}
	}
}

// force binds the equality's parameter in the overlay when it is still
// unassigned. Contradictions with existing bindings are left for Eval.
func force(e *constraint.Expr, view *overlay) bool {
	if e.Op != constraint.OpEq {
		return false
	}
	if _, assigned := view.Value(e.Param); assigned {
		return false
	}
	view.forced[e.Param] = e.Value
	return true
}

// overlay layers forced bindings over a base assignment without copying it.
type overlay struct {
	base   constraint.Assignment
	forced map[string]string
}

func (o *overlay) Value(param string) (string, bool) {
	if v, ok := o.forced[param]; ok {
		return v, true
	}
	return o.base.Value(param)
}

// Model returns the model the universe was built from.
func (u *Universe) Model() *model.Model {
	return u.m
}

// Count returns the number of pairs in the universe.
func (u *Universe) Count() int {
	return u.count
}

// Combinations returns the candidate combinations before exclusion.
func (u *Universe) Combinations() int {
	return u.total
}

// Excluded returns how many combinations the constraints ruled out.
func (u *Universe) Excluded() int {
	return u.total - u.count
}

// ID returns the dense ID of the pair binding parameter p to its value index
// vp and parameter q to vq. Parameter order is normalized; p and q must be
// distinct.
func (u *Universe) ID(p, vp, q, vq int) int {
	if p > q {
		p, q, vp, vq = q, p, vq, vp
	}
	b := u.blocks[u.blockAt[p][q-p-1]]
	return b.base + vp*b.sizeJ + vq
}

// Has reports whether the identified pair survived exclusion.
func (u *Universe) Has(id int) bool {
	return u.included.Has(id)
}

// Snapshot returns an independent copy of the universe bitset, the starting
// uncovered set of a generation run.
func (u *Universe) Snapshot() *Set {
	return u.included.Clone()
}

// Decode resolves a dense pair ID back to its parameter and value texts.
func (u *Universe) Decode(id int) Pair {
	bi := sort.Search(len(u.blocks), func(i int) bool { return u.blocks[i].base > id }) - 1
	b := u.blocks[bi]
	off := id - b.base
	return Pair{
		Param1: u.m.Parameter(b.pi).Name(),
		Value1: string(u.m.Parameter(b.pi).Value(off / b.sizeJ)),
		Param2: u.m.Parameter(b.pj).Name(),
		Value2: string(u.m.Parameter(b.pj).Value(off % b.sizeJ)),
	}
}

// Pairs lists every pair in the universe in ID order.
func (u *Universe) Pairs() []Pair {
	out := make([]Pair, 0, u.count)
	u.included.ForEach(func(id int) {
		out = append(out, u.Decode(id))
	})
	return out
}
