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

// Package strpool implements the append-only, NUL-terminated string
// pool and the open-addressed hash table that indexes it by offset.
//
// The table stores pool *offsets*, not pointers, so both can be
// persisted as part of a razor set's sections; only the pool itself is
// ever written to disk. An opened (immutable) set has no hash table at
// all — Lookup falls back to a linear scan over the pool bytes instead.
package strpool

import "razor.dev/pkg/buffer"

// emptyOffset is the offset at which the eagerly-inserted empty string
// lives, so that offset 0 stays the "absent string" sentinel.
const emptyOffset = 1

// Pool is an append-only string pool plus the transient hash table that
// indexes it for fast Tokenize/Lookup. Only an Importer or a Merger
// builds the table; a Pool returned by Open has none (the table is
// never persisted) and answers Lookup via a slower linear scan instead.
type Pool struct {
	bytes   *buffer.Buffer
	buckets *buffer.Buffer // one uint32 pool-offset per bucket, 0 = empty
	count   int            // number of occupied buckets
}

// New returns a Pool backed by a fresh, privately-owned buffer, with
// offset 0 reserved as the sentinel "absent string" and the empty
// string eagerly inserted at a distinct, fixed offset.
func New() *Pool {
	return NewOnBuffer(buffer.New())
}

// NewOnBuffer returns a Pool whose string bytes live in buf, which must
// be empty and owned by the caller. This is how an Importer or Merger
// ties a Pool's persisted bytes directly to a Set's STRING_POOL
// section buffer, so that everything Tokenize appends ends up where
// Set.Write will serialize it — the hash table itself stays private to
// the Pool and is never part of buf.
func NewOnBuffer(buf *buffer.Buffer) *Pool {
	p := &Pool{
		bytes:   buf,
		buckets: buffer.New(),
	}
	p.bytes.Push(1) // offset 0: reserved, never dereferenced as a string
	p.growBuckets(8)
	p.insert("")
	return p
}

// Open wraps an existing, already-populated pool byte region (typically
// an mmap'd section) for read-only lookups. There is no hash table
// backing an opened pool (the table is never persisted, only the pool
// bytes are), so Lookup falls back to a linear scan over the pool's
// NUL-terminated strings instead of a bucket probe.
func Open(data []byte) *Pool {
	return &Pool{bytes: buffer.View(data)}
}

// Bytes returns the pool's raw byte region, suitable for writing out as
// the STRING_POOL section.
func (p *Pool) Bytes() []byte {
	return p.bytes.Bytes()
}

// String decodes the NUL-terminated string starting at offset. Offset 0
// decodes to the empty string by convention (callers should generally
// check for 0 meaning "absent" before calling String).
func (p *Pool) String(offset uint32) string {
	if offset == 0 {
		return ""
	}
	data := p.bytes.Bytes()
	if int(offset) >= len(data) {
		return ""
	}
	end := offset
	for end < uint32(len(data)) && data[end] != 0 {
		end++
	}
	return string(data[offset:end])
}

// hash implements the spec-mandated string hash: h = 0; for each byte c,
// h = (h*617) ^ c. It decides only bucket placement in the transient
// table; the offsets Tokenize returns are append positions in the pool,
// so they follow insertion order and do not depend on the hash.
func hash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = (h * 617) ^ uint32(s[i])
	}
	return h
}

func (p *Pool) bucketCount() int {
	if p.buckets == nil {
		return 0
	}
	return p.buckets.Len() / 4
}

func (p *Pool) bucketAt(i int) uint32 {
	b := p.buckets.Bytes()
	return le32(b[i*4:])
}

func (p *Pool) setBucketAt(i int, offset uint32) {
	b := p.buckets.Bytes()
	putLe32(b[i*4:], offset)
}

// growBuckets grows the bucket array to at least n buckets (rounded up
// to a power of two) and rehashes every existing entry into it.
func (p *Pool) growBuckets(n int) {
	newCount := 8
	for newCount < n {
		newCount *= 2
	}
	old := p.buckets
	p.buckets = buffer.New()
	p.buckets.Push(newCount * 4)
	if old != nil && old.Len() > 0 {
		oldBuckets := old.Len() / 4
		for i := 0; i < oldBuckets; i++ {
			off := le32(old.Bytes()[i*4:])
			if off != 0 {
				p.insertOffset(off)
			}
		}
	}
}

// insertOffset places an already-stored pool offset into the bucket
// array via open addressing with linear probing.
func (p *Pool) insertOffset(offset uint32) {
	n := p.bucketCount()
	s := p.String(offset)
	h := hash(s)
	for i := 0; i < n; i++ {
		idx := int((h + uint32(i)) % uint32(n))
		if p.bucketAt(idx) == 0 {
			p.setBucketAt(idx, offset)
			return
		}
	}
	// Load factor policy below should never let this happen.
	panic("strpool: bucket array full during insertOffset")
}

// maybeGrow grows the table when the load factor would exceed 0.7 after
// one more insertion.
func (p *Pool) maybeGrow() {
	if (p.count+1)*10 > p.bucketCount()*7 {
		p.growBuckets(p.bucketCount() * 2)
	}
}

func (p *Pool) insert(s string) uint32 {
	off := p.append(s)
	p.maybeGrow()
	p.insertOffset(off)
	p.count++
	return off
}

// append copies s, NUL-terminated, onto the end of the pool and returns
// its starting offset.
func (p *Pool) append(s string) uint32 {
	off := uint32(p.bytes.Len())
	dst := p.bytes.Push(len(s) + 1)
	copy(dst, s)
	dst[len(s)] = 0
	return off
}

// Lookup returns the offset of s and true if present, else (0, false).
//
// A Pool built via New/NewOnBuffer resolves this in O(1) via its hash
// table. A Pool returned by Open carries no table and resolves it via
// scanLookup instead, a linear walk over the pool bytes.
func (p *Pool) Lookup(s string) (uint32, bool) {
	if s == "" {
		return emptyOffset, true
	}
	if p.buckets == nil {
		return p.scanLookup(s)
	}
	n := p.bucketCount()
	if n == 0 {
		return 0, false
	}
	h := hash(s)
	for i := 0; i < n; i++ {
		idx := int((h + uint32(i)) % uint32(n))
		off := p.bucketAt(idx)
		if off == 0 {
			return 0, false
		}
		// The pool must be re-read on every probe: comparisons read
		// through p.bytes, which may have moved since the last probe
		// if this Lookup races a Tokenize on the same Pool (callers
		// must not do that; a Pool is owned by exactly one importer
		// or merger at a time).
		if p.String(off) == s {
			return off, true
		}
	}
	return 0, false
}

// scanLookup walks the pool's NUL-terminated strings from the first
// real entry (offset 0 is the reserved sentinel byte, never a string
// start) looking for s, returning its offset on a match.
func (p *Pool) scanLookup(s string) (uint32, bool) {
	data := p.bytes.Bytes()
	off := uint32(emptyOffset)
	for int(off) < len(data) {
		end := off
		for end < uint32(len(data)) && data[end] != 0 {
			end++
		}
		if end < uint32(len(data)) && string(data[off:end]) == s {
			return off, true
		}
		off = end + 1
	}
	return 0, false
}

// Tokenize returns the offset of s, inserting it if absent. Identical
// strings always yield the same offset.
func (p *Pool) Tokenize(s string) uint32 {
	if off, ok := p.Lookup(s); ok {
		return off
	}
	return p.insert(s)
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLe32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
