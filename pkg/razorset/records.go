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

package razorset

import (
	"razor.dev/pkg/buffer"
	"razor.dev/pkg/refword"
)

// This file implements the fixed-width record codecs for the packages
// and properties sections (four words per record), the file-tree
// section (three words per entry), and the three reference pools (one
// word per entry). Records
// are read and written directly against a section's backing buffer;
// nothing here allocates per record.

func le32At(b []byte, i int) uint32 {
	return uint32(b[i]) | uint32(b[i+1])<<8 | uint32(b[i+2])<<16 | uint32(b[i+3])<<24
}

func putLe32At(b []byte, i int, v uint32) {
	b[i] = byte(v)
	b[i+1] = byte(v >> 8)
	b[i+2] = byte(v >> 16)
	b[i+3] = byte(v >> 24)
}

// --- packages (4 words each) ---

func (s *Set) getPackageAt(i int) Package {
	b := s.section(sectionPackages).Bytes()
	off := i * 16
	return Package{
		Name:       le32At(b, off),
		Version:    le32At(b, off+4),
		Properties: refword.Word(le32At(b, off+8)),
		Files:      refword.Word(le32At(b, off+12)),
	}
}

func (s *Set) setPackageAt(i int, p Package) {
	b := s.section(sectionPackages).Bytes()
	off := i * 16
	putLe32At(b, off, p.Name)
	putLe32At(b, off+4, p.Version)
	putLe32At(b, off+8, uint32(p.Properties))
	putLe32At(b, off+12, uint32(p.Files))
}

func (s *Set) appendPackage(p Package) int {
	idx := s.packageCount()
	dst := s.section(sectionPackages).Push(16)
	putLe32At(dst, 0, p.Name)
	putLe32At(dst, 4, p.Version)
	putLe32At(dst, 8, uint32(p.Properties))
	putLe32At(dst, 12, uint32(p.Files))
	return idx
}

// --- properties (4 words each: name, version, packages, relation-as-word) ---

func (s *Set) getPropertyAt(i int) Property {
	b := s.section(sectionProperties).Bytes()
	off := i * 16
	return Property{
		Name:     refword.Word(le32At(b, off)),
		Version:  le32At(b, off+4),
		Packages: refword.Word(le32At(b, off+8)),
		Relation: Relation(le32At(b, off+12)),
	}
}

func (s *Set) setPropertyAt(i int, p Property) {
	b := s.section(sectionProperties).Bytes()
	off := i * 16
	putLe32At(b, off, uint32(p.Name))
	putLe32At(b, off+4, p.Version)
	putLe32At(b, off+8, uint32(p.Packages))
	putLe32At(b, off+12, uint32(p.Relation))
}

func (s *Set) appendProperty(p Property) int {
	idx := s.propertyCount()
	dst := s.section(sectionProperties).Push(16)
	putLe32At(dst, 0, uint32(p.Name))
	putLe32At(dst, 4, p.Version)
	putLe32At(dst, 8, uint32(p.Packages))
	putLe32At(dst, 12, uint32(p.Relation))
	return idx
}

// --- file tree entries (3 words each) ---

func (s *Set) getFileEntryAt(i int) FileEntry {
	b := s.section(sectionFiles).Bytes()
	off := i * 12
	return FileEntry{
		Name:     refword.Word(le32At(b, off)),
		Start:    le32At(b, off+4),
		Packages: refword.Word(le32At(b, off+8)),
	}
}

func (s *Set) setFileEntryAt(i int, e FileEntry) {
	b := s.section(sectionFiles).Bytes()
	off := i * 12
	putLe32At(b, off, uint32(e.Name))
	putLe32At(b, off+4, e.Start)
	putLe32At(b, off+8, uint32(e.Packages))
}

func (s *Set) appendFileEntry(e FileEntry) int {
	idx := s.fileCount()
	dst := s.section(sectionFiles).Push(12)
	putLe32At(dst, 0, uint32(e.Name))
	putLe32At(dst, 4, e.Start)
	putLe32At(dst, 8, uint32(e.Packages))
	return idx
}

// --- reference pools (package_pool, property_pool, file_pool): one
// word per entry, runs terminated by a word with IsImmediate() set. ---

func poolWordAt(buf []byte, i int) refword.Word {
	return refword.Word(le32At(buf, i*4))
}

func (s *Set) poolCount(t sectionType) int {
	return s.section(t).Len() / 4
}

func (s *Set) appendPoolWord(t sectionType, w refword.Word) int {
	idx := s.poolCount(t)
	dst := s.section(t).Push(4)
	putLe32At(dst, 0, uint32(w))
	return idx
}

func (s *Set) setPoolWordAt(t sectionType, i int, w refword.Word) {
	b := s.section(t).Bytes()
	putLe32At(b, i*4, uint32(w))
}

// walkRefList calls fn with each payload in the reference list starting
// at word index start, in pool t. If ref itself has IsImmediate set
// (a single-element inline list), fn is called once with ref's
// payload and start/list walking is skipped entirely.
func (s *Set) walkRefList(t sectionType, ref refword.Word, fn func(payload uint32)) {
	if ref == noRef {
		return
	}
	if ref.IsImmediate() {
		fn(ref.Payload())
		return
	}
	buf := s.section(t).Bytes()
	i := int(ref.Payload())
	for {
		w := poolWordAt(buf, i)
		fn(w.Payload())
		if w.IsImmediate() {
			return
		}
		i++
	}
}

// refListValues is a convenience wrapper over walkRefList collecting
// payloads into a slice.
func (s *Set) refListValues(t sectionType, ref refword.Word) []uint32 {
	var out []uint32
	s.walkRefList(t, ref, func(payload uint32) {
		out = append(out, payload)
	})
	return out
}

// appendPropertyInto appends a Property record directly onto an
// arbitrary buffer, the way appendProperty does onto a Set's own
// properties section. The finalizer uses this to build a replacement
// properties section before swapping it into the Set.
func appendPropertyInto(buf *buffer.Buffer, p Property) {
	dst := buf.Push(16)
	putLe32At(dst, 0, uint32(p.Name))
	putLe32At(dst, 4, p.Version)
	putLe32At(dst, 8, uint32(p.Packages))
	putLe32At(dst, 12, uint32(p.Relation))
}

// appendFileEntryInto appends a FileEntry record directly onto an
// arbitrary buffer; see appendPropertyInto.
func appendFileEntryInto(buf *buffer.Buffer, e FileEntry) {
	dst := buf.Push(12)
	putLe32At(dst, 0, uint32(e.Name))
	putLe32At(dst, 4, e.Start)
	putLe32At(dst, 8, uint32(e.Packages))
}

// emitRefListInto is emitRefList's counterpart for a buffer that is not
// (yet) one of a Set's own sections — the finalizer builds a replacement
// package-pool before swapping it in, so values need
// somewhere to land before there's a Set section to append to.
func emitRefListInto(pool *buffer.Buffer, values []uint32) (refword.Word, error) {
	if len(values) == 0 {
		return noRef, nil
	}
	if len(values) == 1 {
		w, err := refword.New(values[0])
		if err != nil {
			return 0, err
		}
		return w.WithImmediate(), nil
	}
	start := pool.Len() / 4
	for i, v := range values {
		w, err := refword.New(v)
		if err != nil {
			return 0, err
		}
		if i == len(values)-1 {
			w = w.WithImmediate()
		}
		dst := pool.Push(4)
		putLe32At(dst, 0, uint32(w))
	}
	return refword.New(uint32(start))
}

// emitRefList appends values to pool t as an IMMEDIATE-terminated list
// (or a single inline IMMEDIATE word if len(values) == 1) and returns
// the resulting reference word to store in the owning record. An empty
// values slice returns noRef.
func (s *Set) emitRefList(t sectionType, values []uint32) (refword.Word, error) {
	if len(values) == 0 {
		return noRef, nil
	}
	if len(values) == 1 {
		w, err := refword.New(values[0])
		if err != nil {
			return 0, err
		}
		return w.WithImmediate(), nil
	}
	start := s.poolCount(t)
	for i, v := range values {
		w, err := refword.New(v)
		if err != nil {
			return 0, err
		}
		if i == len(values)-1 {
			w = w.WithImmediate()
		}
		s.appendPoolWord(t, w)
	}
	return refword.New(uint32(start))
}
