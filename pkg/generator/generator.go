// Package generator builds pairwise covering suites with the greedy
// row-at-a-time search used by the PICT/AETG family of tools. Each round
// constructs a pool of candidate rows, scores them against the uncovered
// pair set, keeps the best row, and repeats until every coverable pair is
// realized or the search goes stale.
package generator

import (
	"context"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pairgen/pairgen/pkg/model"
	"github.com/pairgen/pairgen/pkg/pairs"
)

const (
	// DefaultCandidates is the candidate pool size per row.
	DefaultCandidates = 50
	// DefaultMaxStaleRounds is how many consecutive zero-gain rounds the
	// search tolerates before declaring the remaining pairs uncoverable.
	DefaultMaxStaleRounds = 3
)

// Options tunes a generation run. The zero value is valid: seed 0, default
// pool size, sequential candidate construction.
type Options struct {
	// Seed feeds the master random source. Identical model, universe, and
	// options produce byte-identical suites.
	Seed int64 `mapstructure:"seed" json:"seed" yaml:"seed"`
	// Candidates is the pool size per row. Zero means DefaultCandidates.
	Candidates int `mapstructure:"candidates" json:"candidates" yaml:"candidates"`
	// MaxStaleRounds bounds consecutive zero-gain rounds before the run
	// stops and reports the remaining pairs. Zero means
	// DefaultMaxStaleRounds.
	MaxStaleRounds int `mapstructure:"max_stale_rounds" json:"max_stale_rounds" yaml:"max_stale_rounds"`
	// Workers caps the goroutines building candidates. Zero or one means
	// sequential; the result does not depend on it either way.
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers"`
}

func (o Options) withDefaults() Options {
	if o.Candidates <= 0 {
		o.Candidates = DefaultCandidates
	}
	if o.MaxStaleRounds <= 0 {
		o.MaxStaleRounds = DefaultMaxStaleRounds
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Suite is the result of one generation run: rows hold one value per
// parameter in model declaration order. A Suite is immutable once returned.
// Uncoverable lists the universe pairs no constraint-valid row could
// realize; when it is non-empty the suite is partial by necessity, not by
// error.
type Suite struct {
	Parameters   []string        `json:"parameters"`
	Rows         [][]model.Value `json:"rows"`
	Uncoverable  []pairs.Pair    `json:"uncoverable,omitempty"`
	PairsTotal   int             `json:"pairs_total"`
	PairsCovered int             `json:"pairs_covered"`
	Seed         int64           `json:"seed"`
}

// Generate builds a covering suite for m against the pair universe u, which
// must have been built from m. Over-constrained models terminate via the
// stale-round counter and report the unreachable pairs in
// Suite.Uncoverable with a nil error; the caller decides whether a partial
// suite is acceptable. The context is checked between rows, and
// cancellation returns the rows built so far together with the context
// error.
func Generate(ctx context.Context, m *model.Model, u *pairs.Universe, opts Options) (*Suite, error) {
	opts = opts.withDefaults()
	suite := &Suite{
		Parameters: m.Parameters(),
		PairsTotal: u.Count(),
		Seed:       opts.Seed,
	}

	uncovered := u.Snapshot()
	master := rand.New(rand.NewSource(opts.Seed))
	stale := 0

	for !uncovered.Empty() {
		if err := ctx.Err(); err != nil {
			suite.PairsCovered = suite.PairsTotal - uncovered.Count()
			return suite, errors.Wrap(err, "generation interrupted")
		}

		// Seeds are drawn up front so candidate streams are fixed before
		// any worker runs.
		seeds := make([]int64, opts.Candidates)
		for i := range seeds {
			seeds[i] = master.Int63()
		}

		cands := make([][]int, opts.Candidates)
		if opts.Workers > 1 {
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(opts.Workers)
			for i := range cands {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					cands[i] = buildCandidate(m, u, uncovered, seeds[i])
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				suite.PairsCovered = suite.PairsTotal - uncovered.Count()
				return suite, errors.Wrap(err, "generation interrupted")
			}
		} else {
			for i := range cands {
				cands[i] = buildCandidate(m, u, uncovered, seeds[i])
			}
		}

		// Selection scans the full pool in candidate order so worker
		// completion order cannot leak into the result.
		var best []int
		bestGain := -1
		for _, row := range cands {
			if row == nil {
				continue
			}
			gain := rowGain(u, uncovered, row)
			if gain > bestGain || (gain == bestGain && lexLess(row, best)) {
				best, bestGain = row, gain
			}
		}

		if bestGain <= 0 {
			stale++
			if stale >= opts.MaxStaleRounds {
				break
			}
			continue
		}
		stale = 0

		suite.Rows = append(suite.Rows, materialize(m, best))
		for i := 0; i < len(best); i++ {
			for j := i + 1; j < len(best); j++ {
				uncovered.Remove(u.ID(i, best[i], j, best[j]))
			}
		}
	}

	suite.PairsCovered = suite.PairsTotal - uncovered.Count()
	if !uncovered.Empty() {
		suite.Uncoverable = make([]pairs.Pair, 0, uncovered.Count())
		uncovered.ForEach(func(id int) {
			suite.Uncoverable = append(suite.Uncoverable, u.Decode(id))
		})
	}
	return suite, nil
}

// buildCandidate constructs one complete constraint-valid row, or nil when
// no feasible completion exists on this stream. Parameters are visited in an
// order drawn from the candidate's own seeded source. Each parameter takes
// the value covering the most uncovered pairs against the values fixed
// earlier in the row, lowest domain index on ties; values that put the
// partial assignment in definite violation are skipped, and a parameter with
// no surviving value is deferred to the end, where it takes the first value
// that keeps every constraint satisfiable.
func buildCandidate(m *model.Model, u *pairs.Universe, uncovered *pairs.Set, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(m.Len())

	a := m.NewAssignment()
	fixed := make([]int, 0, m.Len())
	var deferred []int
	for _, p := range order {
		if bindBest(m, u, uncovered, a, fixed, p) {
			fixed = append(fixed, p)
			continue
		}
		deferred = append(deferred, p)
	}
	for _, p := range deferred {
		if !bindFirstFeasible(m, a, p) {
			return nil
		}
	}

	row := make([]int, m.Len())
	for i := range row {
		row[i], _ = a.Get(i)
	}
	return row
}

// bindBest binds p to the value realizing the most uncovered pairs with the
// already-fixed parameters. Gain ties fall to the value participating in the
// most uncovered pairs against the still-unfixed parameters (the AETG
// steering term; without it the first parameter of every candidate has zero
// gain signal and coverable pairs strand), then to the lowest domain index.
// Returns false when every value of p definitely violates a constraint,
// leaving p unassigned.
func bindBest(m *model.Model, u *pairs.Universe, uncovered *pairs.Set, a *model.Assignment, fixed []int, p int) bool {
	size := m.Parameter(p).Size()
	gains := make([]int, size)
	potential := make([]int, size)
	for v := 0; v < size; v++ {
		for _, q := range fixed {
			w, _ := a.Get(q)
			if uncovered.Has(u.ID(p, v, q, w)) {
				gains[v]++
			}
		}
		for q := 0; q < m.Len(); q++ {
			if q == p {
				continue
			}
			if _, bound := a.Get(q); bound {
				continue
			}
			for w := 0; w < m.Parameter(q).Size(); w++ {
				if uncovered.Has(u.ID(p, v, q, w)) {
					potential[v]++
				}
			}
		}
	}

	order := make([]int, size)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		vi, vj := order[i], order[j]
		if gains[vi] != gains[vj] {
			return gains[vi] > gains[vj]
		}
		return potential[vi] > potential[vj]
	})

	for _, v := range order {
		a.Set(p, v)
		if !m.Violates(a) {
			return true
		}
	}
	a.Unset(p)
	return false
}

// bindFirstFeasible binds p to the first domain value that keeps every
// constraint satisfiable.
func bindFirstFeasible(m *model.Model, a *model.Assignment, p int) bool {
	for v := 0; v < m.Parameter(p).Size(); v++ {
		a.Set(p, v)
		if !m.Violates(a) {
			return true
		}
	}
	a.Unset(p)
	return false
}

// rowGain counts the uncovered pairs a complete row realizes.
func rowGain(u *pairs.Universe, uncovered *pairs.Set, row []int) int {
	gain := 0
	for i := 0; i < len(row); i++ {
		for j := i + 1; j < len(row); j++ {
			if uncovered.Has(u.ID(i, row[i], j, row[j])) {
				gain++
			}
		}
	}
	return gain
}

// lexLess orders rows by value index, parameter by parameter.
func lexLess(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func materialize(m *model.Model, row []int) []model.Value {
	out := make([]model.Value, len(row))
	for i, v := range row {
		out[i] = m.Parameter(i).Value(v)
	}
	return out
}
