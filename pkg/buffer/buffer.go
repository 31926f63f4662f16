/*
Copyright 2026 The Razor Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package buffer implements the growable byte region that backs every
// section of a razor set: a contiguous run of bytes that grows by
// doubling, starting at a small initial capacity, and that is either
// owned (built in memory by an importer or merger) or a read-only view
// into an mmap'd file.
//
// A Buffer is the sole allocation unit for a section: no section ever
// allocates per-record; every record is pushed into the same backing
// array.
package buffer

import "fmt"

const minCapacity = 16

// Buffer is a contiguous, growable byte region.
//
// The zero value is not usable; use New.
type Buffer struct {
	data     []byte
	readOnly bool
}

// New returns an empty, owned, growable Buffer.
func New() *Buffer {
	return &Buffer{}
}

// View wraps an existing byte slice (typically an mmap'd region) as a
// read-only Buffer. Push panics on a read-only Buffer: an opened set
// never mutates its sections.
func View(b []byte) *Buffer {
	return &Buffer{data: b, readOnly: true}
}

// Len returns the number of bytes currently in use.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the buffer's current capacity.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// ReadOnly reports whether the buffer is a read-only mmap view.
func (b *Buffer) ReadOnly() bool {
	return b.readOnly
}

// Bytes returns the buffer's contents. The returned slice aliases the
// buffer's backing array and is invalidated by the next Push.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Push grows the buffer by n bytes and returns a slice of those n
// uninitialized (zeroed) bytes. The returned slice is stable only until
// the next call to Push: callers must re-derive pointers into the
// buffer by index after any subsequent Push, per the "stable pointers
// into growable buffers" discipline a razor set requires throughout its
// importer and finalizer.
func (b *Buffer) Push(n int) []byte {
	if b.readOnly {
		panic("buffer: Push on a read-only (mmap) buffer")
	}
	if n < 0 {
		panic(fmt.Sprintf("buffer: Push(%d): negative length", n))
	}
	old := len(b.data)
	needed := old + n
	if needed > cap(b.data) {
		newCap := cap(b.data)
		if newCap == 0 {
			newCap = minCapacity
		}
		for newCap < needed {
			newCap *= 2
		}
		grown := make([]byte, old, newCap)
		copy(grown, b.data)
		b.data = grown
	}
	b.data = b.data[:needed]
	region := b.data[old:needed]
	for i := range region {
		region[i] = 0
	}
	return region
}

// Reserve ensures the buffer has room for at least n more bytes without
// reallocating, without changing Len. Used by callers (the importer,
// the finalizer) that know their total push count ahead of time and
// want a single allocation instead of O(log n) reallocations.
func (b *Buffer) Reserve(n int) {
	if b.readOnly {
		panic("buffer: Reserve on a read-only (mmap) buffer")
	}
	needed := len(b.data) + n
	if needed <= cap(b.data) {
		return
	}
	grown := make([]byte, len(b.data), needed)
	copy(grown, b.data)
	b.data = grown
}

// Release discards the buffer's backing storage. It is a no-op on a
// read-only (mmap'd) buffer, whose storage is released by unmapping the
// file, not by this call.
func (b *Buffer) Release() {
	if !b.readOnly {
		b.data = nil
	}
}

// Truncate resets the buffer's length to n, keeping its capacity. Used
// by the finalizer's permutation passes, which rebuild a section's
// contents entry by entry.
func (b *Buffer) Truncate(n int) {
	if b.readOnly {
		panic("buffer: Truncate on a read-only (mmap) buffer")
	}
	b.data = b.data[:n]
}
