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
	"sort"
	"strings"

	"razor.dev/internal/versioncmp"
	"razor.dev/pkg/buffer"
	"razor.dev/pkg/refword"
)

// finalize turns an Importer's partial state into a canonical,
// immutable Set via the six passes of spec.md §4.F. flatFiles is the
// importer's insertion-order (package index, path) list; every other
// input lives in s's sections already.
func finalize(s *Set, flatFiles []flatFile) error {
	if err := dedupeProperties(s); err != nil {
		return err
	}

	rmapPkg := sortPackages(s)
	remapPackagePool(s, rmapPkg)
	remapInlinePropertyPackages(s, rmapPkg)

	remappedFiles := make([]flatFile, len(flatFiles))
	for i, f := range flatFiles {
		remappedFiles[i] = flatFile{pkgIndex: rmapPkg[f.pkgIndex], path: f.path}
	}
	if err := buildFileTree(s, remappedFiles); err != nil {
		return err
	}

	return invertFileIndex(s)
}

// --- pass 1: dedupeProperties ---

// dedupeProperties sorts the property array by (name payload, kind,
// version), collapses consecutive (name, version) runs (ignoring kind)
// to a single entry whose kind is the smallest seen, unions the
// packages referenced by every variant of a collapsed run, and remaps
// every property cross-reference in the Set through the resulting
// old->new-deduped index map.
func dedupeProperties(s *Set) error {
	n := s.propertyCount()
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	props := make([]Property, n)
	for i := range props {
		props[i] = s.getPropertyAt(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := props[order[a]], props[order[b]]
		if pa.Name.Payload() != pb.Name.Payload() {
			return pa.Name.Payload() < pb.Name.Payload()
		}
		if pa.Name.Kind() != pb.Name.Kind() {
			return pa.Name.Kind() < pb.Name.Kind()
		}
		return pa.Version < pb.Version
	})

	type dedupedEntry struct {
		prop     Property
		packages []uint32 // union, collected before re-emitting as a ref list
	}
	var deduped []dedupedEntry
	rmap := make([]int, n) // old index -> final deduped index

	i := 0
	for i < n {
		j := i
		first := props[order[i]]
		for j < n {
			p := props[order[j]]
			if p.Name.Payload() != first.Name.Payload() || p.Version != first.Version {
				break
			}
			j++
		}
		// [i, j) is a run sharing (name, version); collapse it.
		minKind := props[order[i]].Name.Kind()
		var union []uint32
		for k := i; k < j; k++ {
			old := order[k]
			p := props[old]
			if p.Name.Kind() < minKind {
				minKind = p.Name.Kind()
			}
			s.walkRefList(sectionPackagePool, p.Packages, func(payload uint32) {
				union = append(union, payload)
			})
			rmap[old] = len(deduped)
		}
		union = dedupeUint32(union)
		collapsedName := refword.Word(first.Name.Payload()).WithKind(minKind)
		deduped = append(deduped, dedupedEntry{
			prop: Property{Name: collapsedName, Version: first.Version, Relation: first.Relation},
			packages: union,
		})
		i = j
	}

	// Rebuild the properties section from scratch with the deduped,
	// sorted entries, and a fresh package-pool holding only the package
	// reference lists the deduped entries need (package-pool is still
	// empty at this point: during import every property's packages
	// field was a single IMMEDIATE word, never a pool list).
	newProps := buffer.New()
	newPackagePool := buffer.New()
	for _, e := range deduped {
		ref, err := emitRefListInto(newPackagePool, e.packages)
		if err != nil {
			return err
		}
		appendPropertyInto(newProps, Property{
			Name:     e.prop.Name,
			Version:  e.prop.Version,
			Packages: ref,
			Relation: e.prop.Relation,
		})
	}
	s.sections[sectionProperties].buf.Release()
	s.sections[sectionPackagePool].buf.Release()
	s.sections[sectionProperties] = section{buf: newProps}
	s.sections[sectionPackagePool] = section{buf: newPackagePool}

	// Package.Properties lists (in property-pool) still name old
	// property indices; remap them to the deduped indices now that
	// rmap is complete. Each remapped list is appended to the
	// property-pool as a new list and the package record's reference
	// word is pointed at it; the old list words are left in place.
	remapPackagePropertyLists(s, rmap)
	return nil
}

func dedupeUint32(vs []uint32) []uint32 {
	if len(vs) < 2 {
		return vs
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	out := vs[:1]
	for _, v := range vs[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// remapPackagePropertyLists rewrites every package's Properties
// reference list (payloads are old property indices) through rmap.
func remapPackagePropertyLists(s *Set, rmap []int) {
	for i := 0; i < s.packageCount(); i++ {
		pkg := s.getPackageAt(i)
		old := s.refListValues(sectionPropertyPool, pkg.Properties)
		if old == nil {
			continue
		}
		remapped := make([]uint32, 0, len(old))
		seen := make(map[uint32]bool, len(old))
		for _, payload := range old {
			np := uint32(rmap[int(payload)])
			if !seen[np] {
				seen[np] = true
				remapped = append(remapped, np)
			}
		}
		ref, err := s.emitRefList(sectionPropertyPool, remapped)
		if err != nil {
			continue
		}
		pkg.Properties = ref
		s.setPackageAt(i, pkg)
	}
}

// --- pass 2: sortPackages ---

// sortPackages sorts packages by (name string, versioncmp(version))
// and returns rmapPkg[old] = new. The package and package-pool-using
// sections are rewritten in place to the new order; callers are
// responsible for propagating rmapPkg through every *reference* to a
// package index elsewhere in the Set (the package-pool itself, inline
// property Packages words, and later the file tree).
func sortPackages(s *Set) []int {
	n := s.packageCount()
	if n == 0 {
		return nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	pkgs := make([]Package, n)
	names := make([]string, n)
	versions := make([]string, n)
	for i := range pkgs {
		pkgs[i] = s.getPackageAt(i)
		names[i] = s.strings.String(pkgs[i].Name)
		versions[i] = s.strings.String(pkgs[i].Version)
	}
	sort.SliceStable(order, func(a, b int) bool {
		oa, ob := order[a], order[b]
		if names[oa] != names[ob] {
			return names[oa] < names[ob]
		}
		return versioncmp.Compare(versions[oa], versions[ob]) < 0
	})

	rmapPkg := make([]int, n)
	for newPos, old := range order {
		rmapPkg[old] = newPos
	}

	for newPos, old := range order {
		s.setPackageAt(newPos, pkgs[old])
	}
	return rmapPkg
}

// remapPackagePool rewrites every payload in the package-pool through
// rmapPkg, preserving each word's IMMEDIATE terminator flag.
func remapPackagePool(s *Set, rmapPkg []int) {
	if rmapPkg == nil {
		return
	}
	n := s.poolCount(sectionPackagePool)
	for i := 0; i < n; i++ {
		w := poolWordAt(s.section(sectionPackagePool).Bytes(), i)
		np := uint32(rmapPkg[int(w.Payload())])
		nw, err := refword.New(np)
		if err != nil {
			continue
		}
		if w.IsImmediate() {
			nw = nw.WithImmediate()
		}
		s.setPoolWordAt(sectionPackagePool, i, nw)
	}
}

// remapInlinePropertyPackages rewrites every property whose Packages
// field is an IMMEDIATE inline package index through rmapPkg. List-form
// (pool) references are left alone here: they are remapped wholesale by
// remapPackagePool above since they live in the same pool.
func remapInlinePropertyPackages(s *Set, rmapPkg []int) {
	if rmapPkg == nil {
		return
	}
	for i := 0; i < s.propertyCount(); i++ {
		p := s.getPropertyAt(i)
		if p.Packages == noRef || !p.Packages.IsImmediate() {
			continue
		}
		np := uint32(rmapPkg[int(p.Packages.Payload())])
		nw, err := refword.New(np)
		if err != nil {
			continue
		}
		p.Packages = nw.WithImmediate()
		s.setPropertyAt(i, p)
	}
}

// --- pass 4: buildFileTree ---

type fileNode struct {
	name     string
	packages []uint32 // owning package indices, leaves only
	children []*fileNode
}

// buildFileTree sorts files lexicographically by path, splits each path
// on '/', builds an in-memory tree, then serializes it into the files
// section in BFS-by-subtree order per spec.md §4.F step 4.
func buildFileTree(s *Set, files []flatFile) error {
	sort.SliceStable(files, func(i, j int) bool { return files[i].path < files[j].path })

	root := &fileNode{name: ""}
	for _, f := range files {
		parts := splitPath(f.path)
		if len(parts) == 0 {
			continue // no '/' at all: no file-tree entry (spec.md §8 boundary case)
		}
		cur := root
		for depth, part := range parts {
			cur = findOrInsertChild(cur, part)
			if depth == len(parts)-1 {
				cur.packages = append(cur.packages, uint32(f.pkgIndex))
			}
		}
	}

	newFiles := buffer.New()

	// Root is the very first entry. Start is fixed up below once the
	// tree is laid out; it stays 0 (no children) if root never gains an
	// entry in childStart, i.e. the file set is empty.
	appendFileEntryInto(newFiles, FileEntry{Name: refword.Word(0), Start: 0, Packages: noRef})

	queue := []*fileNode{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		if len(dir.children) == 0 {
			continue
		}
		for idx, child := range dir.children {
			nameOff := s.strings.Tokenize(child.name)
			nameWord := refword.Word(nameOff)
			if idx == len(dir.children)-1 {
				nameWord = nameWord.WithLast()
			}
			// Leaves carry the owning-packages list (package-pool);
			// directories carry noRef here (they gain no packages list
			// of their own — only leaf paths are owned by a package).
			packagesRef := refword.Word(noRef)
			if len(child.children) == 0 {
				ref, err := s.emitRefList(sectionPackagePool, dedupeUint32(child.packages))
				if err != nil {
					return err
				}
				packagesRef = ref
			}
			appendFileEntryInto(newFiles, FileEntry{Name: nameWord, Start: 0, Packages: packagesRef})
			queue = append(queue, child)
		}
	}

	// Second pass: now that every directory's children have been laid
	// out contiguously, fix up each directory entry's Start to point at
	// its own first child (0 stays for leaves).
	childStart := make(map[*fileNode]uint32)
	idx := uint32(1)
	queue = []*fileNode{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		if len(dir.children) == 0 {
			continue
		}
		childStart[dir] = idx
		for _, child := range dir.children {
			idx++
			queue = append(queue, child)
		}
	}
	if start, ok := childStart[root]; ok {
		setFileEntryStart(newFiles, 0, start)
	}
	idx = 1
	queue = []*fileNode{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		for _, child := range dir.children {
			if start, ok := childStart[child]; ok {
				setFileEntryStart(newFiles, int(idx), start)
			}
			idx++
			queue = append(queue, child)
		}
	}

	s.sections[sectionFiles].buf.Release()
	s.sections[sectionFiles] = section{buf: newFiles}
	return nil
}

// splitPath splits path on '/' into its components, dropping a leading
// empty component from a leading '/'. A path with no '/' at all is not
// a rooted path and produces no file-tree entry (spec.md §8).
func splitPath(path string) []string {
	if !strings.Contains(path, "/") {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func findOrInsertChild(parent *fileNode, name string) *fileNode {
	for _, c := range parent.children {
		if c.name == name {
			return c
		}
	}
	child := &fileNode{name: name}
	parent.children = append(parent.children, child)
	return child
}

func setFileEntryStart(buf *buffer.Buffer, i int, start uint32) {
	b := buf.Bytes()
	putLe32At(b, i*12+4, start)
}

// --- pass 5: invertFileIndex ---

// invertFileIndex scans the files section left to right; for every
// entry with a non-empty packages list, pushes that entry's own index
// onto each listed package's scratch file list, then emits each
// package's file-index list and stores it in that package's Files
// field.
func invertFileIndex(s *Set) error {
	n := s.fileCount()
	scratch := make(map[int][]uint32)
	for i := 0; i < n; i++ {
		e := s.getFileEntryAt(i)
		if e.Packages == noRef {
			continue
		}
		s.walkRefList(sectionPackagePool, e.Packages, func(pkgIdx uint32) {
			scratch[int(pkgIdx)] = append(scratch[int(pkgIdx)], uint32(i))
		})
	}
	for pkgIdx, fileIdxs := range scratch {
		ref, err := s.emitRefList(sectionFilePool, fileIdxs)
		if err != nil {
			return err
		}
		pkg := s.getPackageAt(pkgIdx)
		pkg.Files = ref
		s.setPackageAt(pkgIdx, pkg)
	}
	return nil
}
