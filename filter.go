// Copyright (c) 2014 Utkan Güngördü <utkan@freeconsole.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cuckoo

// growableFilter is the filter's counterpart to growableMap: a stack of
// filterTable generations, newest-active, older generations kept live and
// searched on Contains.
type growableFilter[K comparable] struct {
	gens   []*filterTable
	cfg    config
	hasher KeyHasher[K]
	malloc func(int) []byte
}

func newGrowableFilter[K comparable](cfg config, malloc func(int) []byte) *growableFilter[K] {
	n := cfg.normalizedCapacity()
	return &growableFilter[K]{
		gens:   []*filterTable{newFilterTable(n, cfg, malloc)},
		cfg:    cfg,
		hasher: keyHasher[K](cfg),
		malloc: malloc,
	}
}

func (gf *growableFilter[K]) active() *filterTable {
	return gf.gens[len(gf.gens)-1]
}

func (gf *growableFilter[K]) grow() {
	idx := uint64(len(gf.gens))
	genCfg := gf.cfg
	genCfg.seed1 ^= idx * altConst
	genCfg.seed2 ^= idx * defaultSeed1
	gf.gens = append(gf.gens, newFilterTable(gf.active().size()*2, genCfg, gf.malloc))
}

// insert adds k's fingerprint to the active generation, growing and
// retrying the same key (still available here, unlike inside filterTable)
// as many times as it takes to land.
func (gf *growableFilter[K]) insert(k K) {
	for {
		active := gf.active()
		p1, fp := positions(gf.hasher, k, active.seed1, active.seed2, active.algo, active.mask)
		if active.insert(p1, fp) == inserted {
			return
		}
		gf.grow()
	}
}

func (gf *growableFilter[K]) contains(k K) bool {
	for _, g := range gf.gens {
		p1, fp := positions(gf.hasher, k, g.seed1, g.seed2, g.algo, g.mask)
		if g.contains(p1, fp) {
			return true
		}
	}
	return false
}

func (gf *growableFilter[K]) remove(k K) bool {
	for _, g := range gf.gens {
		p1, fp := positions(gf.hasher, k, g.seed1, g.seed2, g.algo, g.mask)
		if g.remove(p1, fp) {
			return true
		}
	}
	return false
}

func (gf *growableFilter[K]) size() int {
	n := 0
	for _, g := range gf.gens {
		n += g.count
	}
	return n
}

// loadFactor sums tags and capacity across every live generation.
func (gf *growableFilter[K]) loadFactor() float64 {
	var entries, capacity int
	for _, g := range gf.gens {
		entries += g.count
		capacity += g.size()
	}
	return float64(entries) / float64(capacity)
}

func (gf *growableFilter[K]) generations() int { return len(gf.gens) }

// Filter is an approximate-membership set: false positives are possible
// (two keys sharing a fingerprint at one of their positions), false
// negatives are not, as long as Remove is only ever called on keys that were
// actually inserted (spec §4.5's aliasing caveat).
type Filter[K comparable] struct {
	gf *growableFilter[K]
}

// NewFilter constructs an empty Filter. Panics on invalid configuration.
func NewFilter[K comparable](opts ...Option) *Filter[K] {
	return newFilterWithAllocator[K](nil, opts...)
}

// NewFilterWithAllocator is like NewFilter but lets the caller supply the
// byte-buffer allocator backing every generation's tag slice (an arena or
// mmap-backed allocator, for instance). A nil malloc behaves like NewFilter.
func NewFilterWithAllocator[K comparable](malloc func(size int) []byte, opts ...Option) *Filter[K] {
	return newFilterWithAllocator[K](malloc, opts...)
}

func newFilterWithAllocator[K comparable](malloc func(int) []byte, opts ...Option) *Filter[K] {
	cfg := buildConfig(opts)
	cfg.validate(false)
	return &Filter[K]{gf: newGrowableFilter[K](cfg, malloc)}
}

// Insert records k's fingerprint. It always succeeds (a filter has no
// uniqueness concept - re-inserting an already-present key just adds a
// harmless second tag for it).
func (f *Filter[K]) Insert(k K) bool {
	f.gf.insert(k)
	return true
}

// Contains reports whether k was (probably) inserted. False positives are
// possible; false negatives are not.
func (f *Filter[K]) Contains(k K) bool {
	return f.gf.contains(k)
}

// Remove clears k's fingerprint. Only safe to call on keys that were
// actually inserted - otherwise it may clear a slot that merely aliases
// another key's fingerprint, per spec §4.5.
func (f *Filter[K]) Remove(k K) bool {
	return f.gf.remove(k)
}

// Size returns the number of fingerprints currently recorded.
func (f *Filter[K]) Size() int {
	return f.gf.size()
}

// LoadFactor returns fingerprints / total slot capacity, summed across every
// generation currently backing the filter.
func (f *Filter[K]) LoadFactor() float64 {
	return f.gf.loadFactor()
}

// Generations returns the number of internal tag tables currently backing
// the filter.
func (f *Filter[K]) Generations() int {
	return f.gf.generations()
}
