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

import "sync"

// routingSeed is the fixed constant used for shard selection, independent of
// whatever seed1/seed2 each shard's own GrowableMap ends up using for
// intra-table indexing. Keeping it separate from a shard's table seeds is
// what guarantees shard choice never correlates with in-table slot choice,
// per spec §4.6/§9.
const routingSeed uint64 = 0xff51afd7ed558ccd

// shardOf returns the index of the shard a key routes to, using the *high*
// bits of mix64 over its identity hash seeded with routingSeed - not the
// *low* bits each shard's own tables use for intra-table indexing
// (table.positions masks the low bits of a seed1-seeded mix).
// shardBits is log2(shard count).
func shardOf[K comparable](hasher KeyHasher[K], k K, shardBits uint) uint64 {
	if shardBits == 0 {
		return 0
	}
	ident := hasher(k)
	mixed := mix64(AlgoXX, ident, uint32(routingSeed&0xffffffff))
	return mixed >> (64 - shardBits)
}

// ShardedMap fans out a Map across S = 2^s independent shards, each guarded
// by its own exclusive mutex (never RWMutex - spec §5 calls for
// exclusive-only locking, since expected per-operation cost is small
// relative to lock overhead at realistic shard counts). Shards grow on
// independent schedules and have no ordering relationship with each other.
type ShardedMap[K comparable, V any] struct {
	shards    []*mapShard[K, V]
	hasher    KeyHasher[K]
	shardBits uint
}

type mapShard[K comparable, V any] struct {
	mu sync.Mutex
	gm *growableMap[K, V]
}

// NewShardedMap constructs an empty ShardedMap with WithShardCount(n)
// shards (default 1). Panics if the shard count is not a power of two.
func NewShardedMap[K comparable, V any](opts ...Option) *ShardedMap[K, V] {
	cfg := buildConfig(opts)
	cfg.validate(true)
	shards := make([]*mapShard[K, V], cfg.shardCount)
	for i := range shards {
		shards[i] = &mapShard[K, V]{gm: newGrowableMap[K, V](cfg)}
	}
	return &ShardedMap[K, V]{
		shards:    shards,
		hasher:    keyHasher[K](cfg),
		shardBits: uint(log2(cfg.shardCount)),
	}
}

func (s *ShardedMap[K, V]) shard(k K) *mapShard[K, V] {
	return s.shards[shardOf(s.hasher, k, s.shardBits)]
}

// Insert adds k -> v if k is not already present in its shard.
func (s *ShardedMap[K, V]) Insert(k K, v V) bool {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.gm.containsOne(k) {
		return false
	}
	sh.gm.insertInto(k, v)
	return true
}

// Lookup returns the value stored for k, if any.
func (s *ShardedMap[K, V]) Lookup(k K) (V, bool) {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.gm.lookupOne(k)
}

// Contains reports whether k is present.
func (s *ShardedMap[K, V]) Contains(k K) bool {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.gm.containsOne(k)
}

// Remove deletes k, if present.
func (s *ShardedMap[K, V]) Remove(k K) bool {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.gm.removeOne(k)
}

// Size sums the per-shard counts, each read under that shard's lock. There
// is no global counter (spec §4.6) so this is a point-in-time sum, not a
// value any single operation observed atomically across shards.
func (s *ShardedMap[K, V]) Size() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += sh.gm.size()
		sh.mu.Unlock()
	}
	return n
}

// LoadFactor returns entries / total slot capacity, summed across every
// shard's every generation, each read under that shard's lock.
func (s *ShardedMap[K, V]) LoadFactor() float64 {
	var entries, capacity float64
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, g := range sh.gm.gens {
			entries += float64(g.count)
			capacity += float64(g.size())
		}
		sh.mu.Unlock()
	}
	return entries / capacity
}

// ShardCount returns the number of shards.
func (s *ShardedMap[K, V]) ShardCount() int { return len(s.shards) }

// ShardedMultiMap fans out a MultiMap across S = 2^s independent shards,
// mirroring ShardedMap.
type ShardedMultiMap[K comparable, V any] struct {
	shards    []*multiMapShard[K, V]
	hasher    KeyHasher[K]
	shardBits uint
}

type multiMapShard[K comparable, V any] struct {
	mu sync.Mutex
	gm *growableMap[K, V]
}

// NewShardedMultiMap constructs an empty ShardedMultiMap with
// WithShardCount(n) shards (default 1). Panics if the shard count is not a
// power of two.
func NewShardedMultiMap[K comparable, V any](opts ...Option) *ShardedMultiMap[K, V] {
	cfg := buildConfig(opts)
	cfg.validate(true)
	shards := make([]*multiMapShard[K, V], cfg.shardCount)
	for i := range shards {
		shards[i] = &multiMapShard[K, V]{gm: newGrowableMap[K, V](cfg)}
	}
	return &ShardedMultiMap[K, V]{
		shards:    shards,
		hasher:    keyHasher[K](cfg),
		shardBits: uint(log2(cfg.shardCount)),
	}
}

func (s *ShardedMultiMap[K, V]) shard(k K) *multiMapShard[K, V] {
	return s.shards[shardOf(s.hasher, k, s.shardBits)]
}

// Insert always succeeds.
func (s *ShardedMultiMap[K, V]) Insert(k K, v V) {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.gm.insertInto(k, v)
}

// Lookup returns every value currently stored for k.
func (s *ShardedMultiMap[K, V]) Lookup(k K) []V {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.gm.lookupAll(k)
}

// Contains reports whether at least one entry for k is present.
func (s *ShardedMultiMap[K, V]) Contains(k K) bool {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.gm.containsOne(k)
}

// Remove deletes one entry for k.
func (s *ShardedMultiMap[K, V]) Remove(k K) bool {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.gm.removeOne(k)
}

// RemoveAll deletes every entry for k and returns how many were removed.
func (s *ShardedMultiMap[K, V]) RemoveAll(k K) int {
	sh := s.shard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.gm.removeAll(k)
}

// Size sums the per-shard counts, each read under that shard's lock.
func (s *ShardedMultiMap[K, V]) Size() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += sh.gm.size()
		sh.mu.Unlock()
	}
	return n
}

// LoadFactor returns entries / total slot capacity, summed across every
// shard's every generation, each read under that shard's lock.
func (s *ShardedMultiMap[K, V]) LoadFactor() float64 {
	var entries, capacity float64
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, g := range sh.gm.gens {
			entries += float64(g.count)
			capacity += float64(g.size())
		}
		sh.mu.Unlock()
	}
	return entries / capacity
}

// ShardCount returns the number of shards.
func (s *ShardedMultiMap[K, V]) ShardCount() int { return len(s.shards) }
