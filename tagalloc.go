// Copyright (c) 2014 Utkan Güngördü <utkan@freeconsole.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package cuckoo

import (
	"reflect"
	"unsafe"
)

const tagSize = int(unsafe.Sizeof(uint16(0)))

// byteToTagSlice reinterprets a byte buffer as a []uint16 tag slice with no
// copy, the same pointer-reslicing trick the teacher's slice.go used for
// []bucket. It only makes sense for the filter's tag-only slots: a filter
// generation holds no keys or values, so its backing array has no pointers
// for the GC to scan, which is precisely the property that makes swapping in
// a non-heap (arena, mmap) allocator safe.
func byteToTagSlice(bytes []byte) (tags []uint16) {
	bytesh := (*reflect.SliceHeader)(unsafe.Pointer(&bytes))
	tagsh := (*reflect.SliceHeader)(unsafe.Pointer(&tags))

	tagsh.Data = bytesh.Data
	tagsh.Len = bytesh.Len / tagSize
	tagsh.Cap = bytesh.Cap / tagSize

	return
}

// allocTags allocates n tag slots (tagSize*n bytes) via malloc, defaulting to
// a plain make([]byte, size) when the caller has no arena/mmap backend to
// plug in.
func allocTags(malloc func(size int) []byte, n int) []uint16 {
	if malloc == nil {
		malloc = func(size int) []byte { return make([]byte, size) }
	}
	bytes := malloc(tagSize * n)
	return byteToTagSlice(bytes)
}
