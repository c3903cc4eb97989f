package pairs

import "math/bits"

// Set is a fixed-capacity bitset over dense pair IDs. It is the coverage
// bookkeeping structure of the generator: membership tests and removals in
// the scoring loop touch single words and never allocate.
//
// A Set is not safe for concurrent mutation; concurrent readers of an
// immutable snapshot are fine.
type Set struct {
	words []uint64
	n     int
}

// NewSet returns an empty set with capacity for IDs in [0, n).
func NewSet(n int) *Set {
	return &Set{words: make([]uint64, (n+63)/64), n: n}
}

// Cap returns the ID capacity the set was created with.
func (s *Set) Cap() int {
	return s.n
}

// Add inserts id into the set.
func (s *Set) Add(id int) {
	s.words[id>>6] |= 1 << uint(id&63)
}

// Remove deletes id from the set.
func (s *Set) Remove(id int) {
	s.words[id>>6] &^= 1 << uint(id&63)
}

// Has reports whether id is in the set.
func (s *Set) Has(id int) bool {
	return s.words[id>>6]&(1<<uint(id&63)) != 0
}

// Count returns the number of IDs in the set.
func (s *Set) Count() int {
	total := 0
	for _, w := range s.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Empty reports whether the set holds no IDs.
func (s *Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return &Set{words: words, n: s.n}
}

// ForEach calls fn for every ID in the set in ascending order.
func (s *Set) ForEach(fn func(id int)) {
	for wi, w := range s.words {
		for w != 0 {
			fn(wi<<6 + bits.TrailingZeros64(w))
			w &= w - 1
		}
	}
}
