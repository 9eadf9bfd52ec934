// Copyright (c) 2014-2015 Utkan Güngördü <utkan@freeconsole.org>
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

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// KeyHasher reduces a key of any comparable type to a single 64-bit identity
// hash. Position and fingerprint derivation (below) work from this one value
// plus a table's two integer seeds, so KeyHasher only ever needs to be
// computed once per key per operation.
type KeyHasher[K comparable] func(k K) uint64

// processSeed backs the generic default KeyHasher. It is created once per
// process: maphash offers no way to pin a Seed to a caller-chosen constant,
// so reproducibility across runs is instead the job of the per-table seed1/
// seed2 (see config.go, WithSeeds) used by positions/fingerprint below.
var processSeed = maphash.MakeSeed()

// defaultKeyHasher returns the generic identity hash used for every K unless
// WithKeyHasher overrides it. It works for any comparable type - ints,
// strings, structs of comparable fields - with no per-type code.
func defaultKeyHasher[K comparable]() KeyHasher[K] {
	return func(k K) uint64 { return maphash.Comparable(processSeed, k) }
}

// StringHasher is a faster KeyHasher for K = string, backed by xxhash rather
// than maphash.Comparable's reflection-ish path.
func StringHasher() KeyHasher[string] {
	return func(k string) uint64 { return xxhash.Sum64String(k) }
}

// BytesKeyHasher is the xxhash-backed KeyHasher for any string-kind key: it
// converts k to string and hashes it with xxhash.Sum64String, for callers
// whose K is a defined string type rather than string itself.
func BytesKeyHasher[K ~string]() KeyHasher[K] {
	return func(k K) uint64 { return xxhash.Sum64String(string(k)) }
}

// MixAlgo selects which of the three finalizers in hash.go backs the 64-bit
// position/fingerprint mix. All three are the teacher's own 32-bit hash
// functions; exposing the choice keeps all three genuinely reachable instead
// of leaving murmur3_32/mem_32 dead in the tree.
type MixAlgo int

const (
	// AlgoXX uses xx_32 (the default - cheap, good avalanche).
	AlgoXX MixAlgo = iota
	// AlgoMurmur3 uses murmur3_32.
	AlgoMurmur3
	// AlgoMem uses mem_32.
	AlgoMem
)

func (a MixAlgo) finalizer() hashFunc {
	switch a {
	case AlgoMurmur3:
		return murmur3_32
	case AlgoMem:
		return mem_32
	default:
		return xx_32
	}
}

// mix64 combines the two 32-bit halves of a 64-bit identity hash through the
// configured finalizer, seeded with seed. This is where the "two independent
// seeded hash functions" requirement (spec §4.1) is actually satisfied: p1
// and the fingerprint hash call mix64 with different seeds over the same
// ident(k), decorrelating them without hashing the key twice.
func mix64(algo MixAlgo, ident uint64, seed uint32) uint64 {
	f := algo.finalizer()
	lo := f(uint32(ident), seed)
	hi := f(uint32(ident>>32), seed^0x9e3779b9)
	return uint64(hi)<<32 | uint64(lo)
}

// fingerprint reduces a 64-bit mix to a non-zero 16-bit tag. Zero fingerprints
// are forced to 1 so that tag == 0 can be used, unambiguously, as the empty
// marker (spec §3/§9).
func fingerprint(mixed uint64) uint16 {
	fp := uint16(mixed ^ (mixed >> 16))
	if fp == 0 {
		fp = 1
	}
	return fp
}

// altConst is the fixed odd multiplier used in the partial-key XOR trick
// (spec §4.1: p2 = p1 XOR (fp(k) * C) mod N).
const altConst uint64 = 0x2545f4914f6cdd1d

// altPosition recovers the other of a key's two slot positions from one
// position and its fingerprint alone, with no access to the key or a second
// hash call. It is self-inverse: altPosition(altPosition(p, fp, mask), fp,
// mask) == p, which is exactly what the displacement walk needs when it
// evicts an entry without re-hashing it.
func altPosition(p uint64, fp uint16, mask uint64) uint64 {
	return p ^ ((uint64(fp) * altConst) & mask)
}

// positions derives a key's primary position and fingerprint from its
// identity hash, the table's two seeds and algorithm, and the table's slot
// mask (N-1, N a power of two).
func positions[K comparable](hasher KeyHasher[K], k K, seed1, seed2 uint64, algo MixAlgo, mask uint64) (p1 uint64, fp uint16) {
	ident := hasher(k)
	p1 = mix64(algo, ident, uint32(seed1)) & mask
	fp = fingerprint(mix64(algo, ident, uint32(seed2)))
	return p1, fp
}
