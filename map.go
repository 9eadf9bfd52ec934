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

// growableMap owns a stack of tables of geometrically increasing size - the
// "generations" of spec §3/§4.3. The newest generation (the last element) is
// the only one inserts ever target; older generations are kept live and
// searched on lookup rather than eagerly migrated. (The teacher's tryGrow
// instead rehashes everything into a single bigger table; this design keeps
// every prior table instead of paying that rehash cost on every grow, at the
// expense of O(generations) lookup.)
type growableMap[K comparable, V any] struct {
	gens []*table[K, V]
	cfg  config
}

func newGrowableMap[K comparable, V any](cfg config) *growableMap[K, V] {
	n := cfg.normalizedCapacity()
	return &growableMap[K, V]{
		gens: []*table[K, V]{newTable[K, V](n, cfg)},
		cfg:  cfg,
	}
}

func (gm *growableMap[K, V]) active() *table[K, V] {
	return gm.gens[len(gm.gens)-1]
}

// grow allocates a new generation double the size of the current active one.
// Each generation is seeded independently of its predecessor (offset from
// the configured seeds by its index) so that a key's positions in one
// generation don't correlate with its positions in the next - mirroring the
// teacher's reseed()-on-grow.
func (gm *growableMap[K, V]) grow() {
	idx := uint64(len(gm.gens))
	genCfg := gm.cfg
	genCfg.seed1 ^= idx * altConst
	genCfg.seed2 ^= idx * defaultSeed1
	gm.gens = append(gm.gens, newTable[K, V](gm.active().size()*2, genCfg))
}

// insertInto places (k, v) into the active generation, growing and retrying
// the displaced victim as many times as needed. It never checks uniqueness -
// that's the Map/MultiMap layer's job, and skipping it here is exactly what
// lets the multimap share this code unmodified.
func (gm *growableMap[K, V]) insertInto(k K, v V) {
	for {
		vk, vv, result := gm.active().insert(k, v)
		if result == inserted {
			return
		}
		gm.grow()
		k, v = vk, vv
	}
}

// lookupOne returns the first match for k across generations, newest first.
func (gm *growableMap[K, V]) lookupOne(k K) (V, bool) {
	for i := len(gm.gens) - 1; i >= 0; i-- {
		if v, ok := gm.gens[i].lookup(k); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (gm *growableMap[K, V]) containsOne(k K) bool {
	for i := len(gm.gens) - 1; i >= 0; i-- {
		if gm.gens[i].contains(k) {
			return true
		}
	}
	return false
}

// lookupAll returns every match for k across every generation and both
// positions per generation, for the multimap.
func (gm *growableMap[K, V]) lookupAll(k K) []V {
	var out []V
	for _, g := range gm.gens {
		out = g.lookupMatches(k, out)
	}
	return out
}

// removeOne removes a single matching entry for k from whichever generation
// holds it, searching oldest first. The search order decides which single
// match gets removed; the multimap does not promise which one.
func (gm *growableMap[K, V]) removeOne(k K) bool {
	for _, g := range gm.gens {
		if g.remove(k) {
			return true
		}
	}
	return false
}

// removeAll drains every matching entry for k across every generation and
// reports how many were removed.
func (gm *growableMap[K, V]) removeAll(k K) int {
	n := 0
	for _, g := range gm.gens {
		for g.remove(k) {
			n++
		}
	}
	return n
}

func (gm *growableMap[K, V]) size() int {
	n := 0
	for _, g := range gm.gens {
		n += g.count
	}
	return n
}

// loadFactor sums entries and capacity across every live generation, the
// generational counterpart to the reference's single-table LoadFactor.
func (gm *growableMap[K, V]) loadFactor() float64 {
	var entries, capacity int
	for _, g := range gm.gens {
		entries += g.count
		capacity += g.size()
	}
	return float64(entries) / float64(capacity)
}

func (gm *growableMap[K, V]) generations() int { return len(gm.gens) }

// Map is a key -> value container with unique keys: inserting an already
// present key fails rather than overwriting, matching spec §6/§8's
// uniqueness property.
type Map[K comparable, V any] struct {
	gm *growableMap[K, V]
}

// NewMap constructs an empty Map. Panics on invalid configuration (the
// spec's one designated fatal error), e.g. a non-positive initial capacity.
func NewMap[K comparable, V any](opts ...Option) *Map[K, V] {
	cfg := buildConfig(opts)
	cfg.validate(false)
	return &Map[K, V]{gm: newGrowableMap[K, V](cfg)}
}

// Insert adds k -> v if k is not already present. Returns false, with no
// mutation, if k is already in the map.
func (m *Map[K, V]) Insert(k K, v V) bool {
	if m.gm.containsOne(k) {
		return false
	}
	m.gm.insertInto(k, v)
	return true
}

// Lookup returns the value stored for k, if any.
func (m *Map[K, V]) Lookup(k K) (V, bool) {
	return m.gm.lookupOne(k)
}

// Contains reports whether k is present, without retrieving its value.
func (m *Map[K, V]) Contains(k K) bool {
	return m.gm.containsOne(k)
}

// Remove deletes k, if present, and reports whether it was found.
func (m *Map[K, V]) Remove(k K) bool {
	return m.gm.removeOne(k)
}

// Size returns the number of entries currently stored.
func (m *Map[K, V]) Size() int {
	return m.gm.size()
}

// LoadFactor returns entries / total slot capacity, summed across every
// generation currently backing the map.
func (m *Map[K, V]) LoadFactor() float64 {
	return m.gm.loadFactor()
}

// Generations returns the number of internal tables currently backing the
// map - 1 until the first grow, increasing by 1 on every subsequent grow.
func (m *Map[K, V]) Generations() int {
	return m.gm.generations()
}
