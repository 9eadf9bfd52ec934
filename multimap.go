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

// MultiMap is a key -> value container that allows repeated keys. It shares
// growableMap with Map; the only difference is that Insert skips the
// uniqueness pre-check. Everything else - the "at most two same-key entries
// per generation, extra duplicates cascade to a new generation" behavior
// described in spec §4.4 - falls out of the shared table's displacement
// mechanics for free: a third same-key insert into a generation where both
// of that key's positions are already occupied (by itself) bounces between
// those two positions until maxWalk is exhausted, which is exactly a Full
// outcome, which is exactly what triggers growth.
type MultiMap[K comparable, V any] struct {
	gm *growableMap[K, V]
}

// NewMultiMap constructs an empty MultiMap. Panics on invalid configuration.
func NewMultiMap[K comparable, V any](opts ...Option) *MultiMap[K, V] {
	cfg := buildConfig(opts)
	cfg.validate(false)
	return &MultiMap[K, V]{gm: newGrowableMap[K, V](cfg)}
}

// Insert always succeeds: repeated keys are the point of a multimap.
func (m *MultiMap[K, V]) Insert(k K, v V) {
	m.gm.insertInto(k, v)
}

// Lookup returns every value currently stored for k, as a multiset equal to
// the inserted multiset for k (spec §8, property 5).
func (m *MultiMap[K, V]) Lookup(k K) []V {
	return m.gm.lookupAll(k)
}

// Contains reports whether at least one entry for k is present.
func (m *MultiMap[K, V]) Contains(k K) bool {
	return m.gm.containsOne(k)
}

// Remove deletes one (implementation-chosen) entry for k and reports
// whether it found one.
func (m *MultiMap[K, V]) Remove(k K) bool {
	return m.gm.removeOne(k)
}

// RemoveAll deletes every entry for k and returns how many were removed.
func (m *MultiMap[K, V]) RemoveAll(k K) int {
	return m.gm.removeAll(k)
}

// Size returns the total number of entries currently stored, counting
// repeated keys once per occurrence.
func (m *MultiMap[K, V]) Size() int {
	return m.gm.size()
}

// LoadFactor returns entries / total slot capacity, summed across every
// generation currently backing the multimap.
func (m *MultiMap[K, V]) LoadFactor() float64 {
	return m.gm.loadFactor()
}

// Generations returns the number of internal tables currently backing the
// multimap.
func (m *MultiMap[K, V]) Generations() int {
	return m.gm.generations()
}
