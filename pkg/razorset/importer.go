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

import "razor.dev/pkg/refword"

// Importer accumulates packages, properties, and file paths into an
// unfinished Set. Packages are not sorted, properties are not
// deduplicated, and the file list stays flat until Finish runs the
// finalizer (finalize.go) and hands back a canonical, immutable Set.
//
// An Importer owns the only hash table backing its Set's string pool.
// Finish does not release that table: the returned Set's string pool
// keeps it and answers Lookup through it. Finish releases the
// per-package scratch property list; the flat file list is dropped by
// Destroy, which also closes the Set.
type Importer struct {
	set *Set

	curPkg   int
	curProps []int // scratch: property indices for the in-progress package
	haveCur  bool

	// flatFiles accumulates (package index, path) pairs in insertion
	// order; the finalizer sorts and splits them in buildFileTree.
	flatFiles []flatFile
}

type flatFile struct {
	pkgIndex int
	path     string
}

// NewImporter returns an empty Importer ready to accept packages.
func NewImporter() *Importer {
	return &Importer{set: newEmpty()}
}

// BeginPackage appends a new package record with the given name and
// version, and returns its (pre-sort) index. arch is accepted for API
// parity with spec.md's begin_package(name, version, arch) (every feed
// adapter carries an architecture), but the on-disk Package record has
// no field for it (spec.md §3: four reference words — name, version,
// properties, files); callers that need arch distinctions fold it into
// name or version themselves, the way multi-arch RPM repositories key
// on "name.arch" for package names that must stay distinguishable.
func (imp *Importer) BeginPackage(name, version, arch string) int {
	imp.flushCurrent()
	nameOff := imp.set.strings.Tokenize(name)
	versOff := imp.set.strings.Tokenize(version)
	idx := imp.set.appendPackage(Package{
		Name:       nameOff,
		Version:    versOff,
		Properties: noRef,
		Files:      noRef,
	})
	imp.curPkg = idx
	imp.curProps = nil
	imp.haveCur = true
	return idx
}

// AddProperty appends a Property record for the current package (the
// most recent BeginPackage) and records it on that package's scratch
// property list, to be flushed by FinishPackage.
func (imp *Importer) AddProperty(name string, kind refword.Kind, version string, rel Relation) {
	nameOff := imp.set.strings.Tokenize(name)
	versOff := imp.set.strings.Tokenize(version)
	nameWord := refword.Word(nameOff).WithKind(kind)

	// Packages starts as the single owning package, stamped eagerly so
	// an Importer-built Set stays self-consistent even before Finish
	// runs; the finalizer's dedup pass (finalize.go) recomputes this
	// into the union across any duplicate (name, version) properties.
	packages := refword.Word(noRef)
	if w, err := refword.New(uint32(imp.curPkg)); err == nil {
		packages = w.WithImmediate()
	}

	propIdx := imp.set.appendProperty(Property{
		Name:     nameWord,
		Version:  versOff,
		Packages: packages,
		Relation: rel,
	})
	imp.curProps = append(imp.curProps, propIdx)
}

// AddFile records that the current package owns path. Paths retain
// their leading '/'; a path with no '/' at all produces no file-tree
// entry (spec.md §8 boundary case) but is still recorded here — the
// finalizer is responsible for dropping it when it splits on '/'.
func (imp *Importer) AddFile(path string) {
	imp.flatFiles = append(imp.flatFiles, flatFile{pkgIndex: imp.curPkg, path: path})
}

// FinishPackage flushes the current package's scratch property list
// into its Properties reference field. It is implicit at the next
// BeginPackage or at Finish, but callers may call it explicitly to
// release a package's scratch slice earlier.
func (imp *Importer) FinishPackage() {
	imp.flushCurrent()
}

func (imp *Importer) flushCurrent() {
	if !imp.haveCur {
		return
	}
	ref, err := imp.set.emitRefList(sectionPropertyPool, uint32Slice(imp.curProps))
	if err == nil {
		pkg := imp.set.getPackageAt(imp.curPkg)
		pkg.Properties = ref
		imp.set.setPackageAt(imp.curPkg, pkg)
	}
	imp.curProps = nil
	imp.haveCur = false
}

func uint32Slice(ints []int) []uint32 {
	out := make([]uint32, len(ints))
	for i, v := range ints {
		out[i] = uint32(v)
	}
	return out
}

// Finish runs the finalizer over the imported state and returns the
// canonical, immutable Set. The Importer must not be used afterward
// except to Destroy it.
func (imp *Importer) Finish() (*Set, error) {
	imp.flushCurrent()
	if err := finalize(imp.set, imp.flatFiles); err != nil {
		return nil, err
	}
	imp.set.builtRO = true
	return imp.set, nil
}

// Destroy releases every scratch allocation the Importer holds: the
// per-package property-index slice, the flat file list, and (via the
// Set's string pool) the transient hash table bucket array. This
// resolves spec.md §9 Open Question (a): the original importer's
// destructor was a stub.
func (imp *Importer) Destroy() {
	imp.curProps = nil
	imp.flatFiles = nil
	if imp.set != nil {
		imp.set.Close()
		imp.set = nil
	}
}
