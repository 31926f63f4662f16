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

// Package razorset implements the on-disk, memory-mappable
// package-metadata database: a set of packages together with their
// versioned properties (requires/provides/conflicts/obsoletes) and
// installed-file trees.
//
// A Set is built in one of two ways: from scratch via an Importer
// (ingestion from an external feed, see pkg/feed) or via Add (merging
// an existing Set with a selection of another upstream Set's
// packages). Either way, the result of Finish/Add is immutable: once
// built or opened from a file, a Set supports only reads.
package razorset

import (
	"errors"

	"razor.dev/pkg/buffer"
	"razor.dev/pkg/refword"
	"razor.dev/pkg/strpool"
)

// ErrNotFound is the sentinel for an absent record. GetPackage,
// GetProperty, and FindEntry do not return it: they report absence with
// a false second result, and callers that turn that absence into an
// error (razorctl's query command) wrap ErrNotFound.
var ErrNotFound = errors.New("razorset: not found")

// Relation is the comparison a REQUIRES or CONFLICTS property demands
// against a matching PROVIDES/OBSOLETES version. It is carried as its
// own field on Property rather than packed into the name word's kind
// bits, per SPEC_FULL.md §4.I's resolution of spec.md §9(b).
type Relation uint8

const (
	// Any means no version comparison is required: the property is
	// satisfied by any version of a matching name.
	Any Relation = iota
	LT
	LE
	EQ
	GE
	GT
)

func (r Relation) String() string {
	switch r {
	case Any:
		return ""
	case LT:
		return "<"
	case LE:
		return "<="
	case EQ:
		return "="
	case GE:
		return ">="
	case GT:
		return ">"
	default:
		return "?"
	}
}

// satisfiedBy reports whether cmp (the result of versioncmp(have, want))
// satisfies r.
func (r Relation) satisfiedBy(cmp int) bool {
	switch r {
	case Any:
		return true
	case LT:
		return cmp < 0
	case LE:
		return cmp <= 0
	case EQ:
		return cmp == 0
	case GE:
		return cmp >= 0
	case GT:
		return cmp > 0
	default:
		return false
	}
}

// sectionType enumerates the seven on-disk sections, in the fixed
// order spec.md §6 assigns them.
type sectionType uint32

const (
	sectionStringPool sectionType = iota
	sectionPackages
	sectionProperties
	sectionFiles
	sectionPackagePool
	sectionPropertyPool
	sectionFilePool
	numSections
)

// Package is a package record: name and version are string-pool
// offsets; properties and files are references into the property-pool
// and file-pool respectively (or ~0 for "none", or an IMMEDIATE inline
// single index).
type Package struct {
	Name       uint32
	Version    uint32
	Properties refword.Word
	Files      refword.Word
}

const noRef = 0xFFFFFFFF // "~0": empty reference-list field

// Property is a property record: name carries both a pool offset (low
// 24 bits) and, via refword.Word's Kind accessor, the 2-bit property
// kind in its top bits. Packages references the package-pool.
type Property struct {
	Name     refword.Word // payload = pool offset of the property name; Kind() = REQUIRES/PROVIDES/CONFLICTS/OBSOLETES
	Version  uint32       // pool offset
	Packages refword.Word
	Relation Relation // SPEC_FULL.md §4.I: parallel relation-flag field
}

// FileEntry is one node of the installed-file tree. Name's payload is
// a pool offset; Name.IsLast() marks the final sibling in its parent
// directory. Start is the section index of the first child (0 for a
// leaf). Packages references the package-pool list of every package
// that owns this path (noRef if none).
type FileEntry struct {
	Name     refword.Word
	Start    uint32
	Packages refword.Word
}

// section is one of the seven named byte regions making up a Set.
type section struct {
	buf *buffer.Buffer
}

// Set is the on-disk package-metadata database: a string pool, package
// and property arrays, a file tree, and three cross-reference pools.
//
// A Set is either Built (sections are owned growable buffers,
// constructed by an Importer or by Add) or Opened (sections are
// zero-copy slices into an mmap'd file). The two states are disjoint:
// a Built Set is mutable until Finish/Add return it; once returned, or
// once Opened, a Set is read-only.
type Set struct {
	sections [numSections]section
	strings  *strpool.Pool

	mmap    mmapHandle // non-nil only for an Opened Set
	builtRO bool        // a Built set that has been finalized: no more mutation
}

// mmapHandle abstracts the underlying mmap region so razorset doesn't
// need to import the mmap package in types used by tests that only
// exercise the Built path.
type mmapHandle interface {
	Unmap() error
}

func newEmpty() *Set {
	s := &Set{}
	for i := range s.sections {
		s.sections[i] = section{buf: buffer.New()}
	}
	s.strings = strpool.NewOnBuffer(s.sections[sectionStringPool].buf)
	return s
}

func (s *Set) section(t sectionType) *buffer.Buffer {
	return s.sections[t].buf
}

// packageCount, propertyCount, fileCount return the number of
// fixed-width records currently stored in the corresponding section.
func (s *Set) packageCount() int {
	return s.section(sectionPackages).Len() / (4 * 4)
}

func (s *Set) propertyCount() int {
	return s.section(sectionProperties).Len() / (4 * 4)
}

func (s *Set) fileCount() int {
	return s.section(sectionFiles).Len() / (4 * 3)
}

// Close releases the Set's resources: the mmap region for an Opened
// Set, or simply drops references for a Built one (reclaimed by the
// normal Go garbage collector).
func (s *Set) Close() error {
	if s.mmap != nil {
		err := s.mmap.Unmap()
		s.mmap = nil
		return err
	}
	for i := range s.sections {
		s.sections[i].buf.Release()
	}
	return nil
}
