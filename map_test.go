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

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapEmpty(t *testing.T) {
	m := NewMap[string, int]()
	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0", m.Size())
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("Lookup on empty map found something")
	}
	if m.Contains("missing") {
		t.Error("Contains on empty map returned true")
	}
	if m.Remove("missing") {
		t.Error("Remove on empty map returned true")
	}
}

func TestMapBasic(t *testing.T) {
	m := NewMap[string, int]()

	require.True(t, m.Insert("a", 1))
	require.True(t, m.Insert("b", 2))
	require.True(t, m.Insert("c", 3))

	assert.Equal(t, 3, m.Size())

	v, ok := m.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.True(t, m.Contains("a"))
	assert.False(t, m.Contains("z"))

	assert.True(t, m.Remove("a"))
	assert.False(t, m.Contains("a"))
	assert.Equal(t, 2, m.Size())
}

func TestMapDuplicateInsertFails(t *testing.T) {
	m := NewMap[int, int]()
	if !m.Insert(1, 100) {
		t.Fatal("first insert of key 1 should succeed")
	}
	if m.Insert(1, 200) {
		t.Fatal("second insert of key 1 should fail, key already present")
	}
	v, _ := m.Lookup(1)
	if v != 100 {
		t.Errorf("Lookup(1) = %d, want 100 (unchanged by failed duplicate insert)", v)
	}
}

// TestMapGrows fills a small map past its initial capacity and checks that
// it grows (more than one generation) while every inserted key stays found.
func TestMapGrows(t *testing.T) {
	const n = 100
	m := NewMap[int, int](WithInitialCapacity(16))

	for i := 0; i < n; i++ {
		if !m.Insert(i, i*i) {
			t.Fatalf("Insert(%d) failed unexpectedly", i)
		}
	}

	if m.Generations() < 2 {
		t.Errorf("Generations() = %d, want at least 2 after inserting %d keys into a 16-slot map", m.Generations(), n)
	}

	for i := 0; i < n; i++ {
		v, ok := m.Lookup(i)
		if !ok {
			t.Errorf("Lookup(%d) not found after grow", i)
			continue
		}
		if v != i*i {
			t.Errorf("Lookup(%d) = %d, want %d", i, v, i*i)
		}
	}
	if m.Size() != n {
		t.Errorf("Size() = %d, want %d", m.Size(), n)
	}
}

// TestMapInsertRemoveToEmpty inserts a batch of keys then removes them all in
// reverse order, checking Size() tracks down to zero.
func TestMapInsertRemoveToEmpty(t *testing.T) {
	const n = 200
	m := NewMap[int, int](WithInitialCapacity(16))
	keys := rand.Perm(n)

	for _, k := range keys {
		if !m.Insert(k, k) {
			t.Fatalf("Insert(%d) failed unexpectedly", k)
		}
	}
	assert.Equal(t, n, m.Size())

	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		if !m.Remove(k) {
			t.Fatalf("Remove(%d) failed, key should still be present", k)
		}
	}
	assert.Equal(t, 0, m.Size())
	for _, k := range keys {
		assert.False(t, m.Contains(k))
	}
}

func TestMapLoadFactor(t *testing.T) {
	m := NewMap[int, int](WithInitialCapacity(16))
	for i := 0; i < 8; i++ {
		m.Insert(i, i)
	}
	lf := m.LoadFactor()
	if lf <= 0 || lf > 1 {
		t.Errorf("LoadFactor() = %f, want a value in (0, 1]", lf)
	}
}

func TestMapWithStringHasher(t *testing.T) {
	m := NewMap[string, int](WithKeyHasher[string](StringHasher()))
	for i, w := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		if !m.Insert(w, i) {
			t.Fatalf("Insert(%q) failed unexpectedly", w)
		}
	}
	v, ok := m.Lookup("charlie")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

// label is a defined string type, standing in for a caller's own named
// string type rather than the bare string StringHasher already covers.
type label string

func TestMapWithBytesKeyHasher(t *testing.T) {
	m := NewMap[label, int](WithKeyHasher[label](BytesKeyHasher[label]()))
	for i, w := range []label{"north", "south", "east", "west"} {
		if !m.Insert(w, i) {
			t.Fatalf("Insert(%q) failed unexpectedly", w)
		}
	}
	v, ok := m.Lookup(label("east"))
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.False(t, m.Contains(label("northwest")))
}

// TestMapWithMixAlgo drives a full insert/lookup/grow cycle through each
// MixAlgo, the default AlgoXX included, so AlgoMurmur3 and AlgoMem are exercised through the
// public surface rather than only via the raw finalizer functions in
// hash_test.go.
func TestMapWithMixAlgo(t *testing.T) {
	const n = 100
	for _, algo := range []MixAlgo{AlgoXX, AlgoMurmur3, AlgoMem} {
		m := NewMap[int, int](WithInitialCapacity(16), WithMixAlgo(algo))

		for i := 0; i < n; i++ {
			if !m.Insert(i, i*i) {
				t.Fatalf("algo %v: Insert(%d) failed unexpectedly", algo, i)
			}
		}
		if m.Generations() < 2 {
			t.Errorf("algo %v: Generations() = %d, want at least 2 after %d inserts", algo, m.Generations(), n)
		}
		for i := 0; i < n; i++ {
			v, ok := m.Lookup(i)
			if !ok || v != i*i {
				t.Errorf("algo %v: Lookup(%d) = (%d, %v), want (%d, true)", algo, i, v, ok, i*i)
			}
		}
	}
}

func BenchmarkMapInsertCuckoo(b *testing.B) {
	m := NewMap[int, int](WithInitialCapacity(nextPow2Int(b.N * 2)))
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.Insert(i, i)
	}
}

func BenchmarkMapInsertBuiltin(b *testing.B) {
	m := make(map[int]int, b.N)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m[i] = i
	}
}

func BenchmarkMapLookupCuckoo(b *testing.B) {
	n := 1 << 16
	m := NewMap[int, int](WithInitialCapacity(n * 2))
	for i := 0; i < n; i++ {
		m.Insert(i, i)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.Lookup(i % n)
	}
}

func BenchmarkMapLookupBuiltin(b *testing.B) {
	n := 1 << 16
	m := make(map[int]int, n)
	for i := 0; i < n; i++ {
		m[i] = i
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = m[i%n]
	}
}
