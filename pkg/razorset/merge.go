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

	"razor.dev/internal/versioncmp"
	"razor.dev/pkg/refword"
)

// Add produces a new Set containing every package of a plus every
// package named by selection (a sorted slice of package indices into
// upstream), per spec.md §4.H. On a name collision, upstream's package
// wins.
//
// The returned Set's files/file-pool sections are empty (spec.md
// §4.H / §9(c)): the file tree is not rebuilt by Add. Call
// RebuildFileTree on the result if file queries are needed.
func Add(a, upstream *Set, selection []int) (*Set, error) {
	out := newEmpty()

	bPkgs := make([]Package, len(selection))
	for i, idx := range selection {
		bPkgs[i] = upstream.getPackageAt(idx)
	}

	// isUpstream[k] records which source output package k was copied
	// from, so pass 3 knows which property_map to remap through. The
	// source's own scratch bit for this (spec.md's UPSTREAM_SOURCE tag
	// on the package's name word) has no room in this implementation's
	// Package.Name, a plain pool offset rather than a reference word;
	// this in-memory slice is the Go-idiomatic equivalent, discarded
	// once Add returns.
	var isUpstream []bool
	var origIndex []int // index into a or upstream (per isUpstream) this output package was copied from

	usedA := make([]bool, a.propertyCount())
	usedB := make([]bool, upstream.propertyCount())

	markUsed := func(src *Set, pkg Package, used []bool) {
		for _, idx := range src.refListValues(sectionPropertyPool, pkg.Properties) {
			used[idx] = true
		}
	}

	ai, bi := 0, 0
	an, bn := a.packageCount(), len(bPkgs)
	for ai < an || bi < bn {
		switch {
		case bi >= bn || (ai < an && a.strings.String(a.getPackageAt(ai).Name) < upstream.strings.String(bPkgs[bi].Name)):
			pkg := a.getPackageAt(ai)
			markUsed(a, pkg, usedA)
			out.appendPackage(Package{
				Name:       out.strings.Tokenize(a.strings.String(pkg.Name)),
				Version:    out.strings.Tokenize(a.strings.String(pkg.Version)),
				Properties: noRef,
				Files:      noRef,
			})
			isUpstream = append(isUpstream, false)
			origIndex = append(origIndex, ai)
			ai++
		case ai >= an || upstream.strings.String(bPkgs[bi].Name) < a.strings.String(a.getPackageAt(ai).Name):
			pkg := bPkgs[bi]
			markUsed(upstream, pkg, usedB)
			out.appendPackage(Package{
				Name:       out.strings.Tokenize(upstream.strings.String(pkg.Name)),
				Version:    out.strings.Tokenize(upstream.strings.String(pkg.Version)),
				Properties: noRef,
				Files:      noRef,
			})
			isUpstream = append(isUpstream, true)
			origIndex = append(origIndex, selection[bi])
			bi++
		default:
			// Equal names: upstream wins.
			pkg := bPkgs[bi]
			markUsed(upstream, pkg, usedB)
			out.appendPackage(Package{
				Name:       out.strings.Tokenize(upstream.strings.String(pkg.Name)),
				Version:    out.strings.Tokenize(upstream.strings.String(pkg.Version)),
				Properties: noRef,
				Files:      noRef,
			})
			isUpstream = append(isUpstream, true)
			origIndex = append(origIndex, selection[bi])
			ai++
			bi++
		}
	}

	propMapA, propMapB := mergeProperties(out, a, upstream, usedA, usedB)

	// Pass 3: emit each output package's property list, remapped
	// through the owning source's property_map.
	for i := 0; i < out.packageCount(); i++ {
		var src *Set
		var propMap []int
		if isUpstream[i] {
			src, propMap = upstream, propMapB
		} else {
			src, propMap = a, propMapA
		}
		srcPkg := src.getPackageAt(origIndex[i])
		old := src.refListValues(sectionPropertyPool, srcPkg.Properties)
		if len(old) == 0 {
			continue
		}
		remapped := make([]uint32, 0, len(old))
		seen := make(map[uint32]bool, len(old))
		for _, p := range old {
			np := uint32(propMap[int(p)])
			if !seen[np] {
				seen[np] = true
				remapped = append(remapped, np)
			}
		}
		ref, err := out.emitRefList(sectionPropertyPool, remapped)
		if err != nil {
			return nil, err
		}
		pkg := out.getPackageAt(i)
		pkg.Properties = ref
		out.setPackageAt(i, pkg)
	}

	// Pass 4: rebuild each output property's packages list by
	// rescanning output packages.
	scratch := make(map[int][]uint32)
	for i := 0; i < out.packageCount(); i++ {
		pkg := out.getPackageAt(i)
		for _, propIdx := range out.refListValues(sectionPropertyPool, pkg.Properties) {
			scratch[int(propIdx)] = append(scratch[int(propIdx)], uint32(i))
		}
	}
	for propIdx, pkgIdxs := range scratch {
		ref, err := out.emitRefList(sectionPackagePool, pkgIdxs)
		if err != nil {
			return nil, err
		}
		prop := out.getPropertyAt(propIdx)
		prop.Packages = ref
		out.setPropertyAt(propIdx, prop)
	}

	out.builtRO = true
	return out, nil
}

type mergeCandidate struct {
	name    string
	nameOff uint32 // offset of name in the output Set's string pool
	kind    refword.Kind
	version string
	fromB   bool
	idx     int
}

// mergeProperties implements spec.md §4.H pass 2: walks every property
// marked used in a (usedA) or upstream (usedB), decodes each to (name,
// kind, version) — a source's payloads belong to its own string pool
// and don't correspond across the two sources — and merges them keyed
// by (name, kind, versioncmp(version)), kind being required for
// correctness although spec.md's two-pointer description doesn't name
// it. Names are ordered by their offset in out's string pool, so the
// output properties are sorted by name payload as GetProperty and
// findProvider's binary searches expect. It emits one output Property
// per distinct key, and returns propMapA/propMapB mapping each
// source's original property index to its output index.
func mergeProperties(out, a, upstream *Set, usedA, usedB []bool) (propMapA, propMapB []int) {
	var candidates []mergeCandidate
	for idx, used := range usedA {
		if !used {
			continue
		}
		p := a.getPropertyAt(idx)
		candidates = append(candidates, mergeCandidate{
			name:    a.strings.String(p.Name.Payload()),
			kind:    p.Name.Kind(),
			version: a.strings.String(p.Version),
			fromB:   false,
			idx:     idx,
		})
	}
	for idx, used := range usedB {
		if !used {
			continue
		}
		p := upstream.getPropertyAt(idx)
		candidates = append(candidates, mergeCandidate{
			name:    upstream.strings.String(p.Name.Payload()),
			kind:    p.Name.Kind(),
			version: upstream.strings.String(p.Version),
			fromB:   true,
			idx:     idx,
		})
	}

	for k := range candidates {
		candidates[k].nameOff = out.strings.Tokenize(candidates[k].name)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.nameOff != cj.nameOff {
			return ci.nameOff < cj.nameOff
		}
		if ci.kind != cj.kind {
			return ci.kind < cj.kind
		}
		return versioncmp.Compare(ci.version, cj.version) < 0
	})

	propMapA = make([]int, a.propertyCount())
	propMapB = make([]int, upstream.propertyCount())
	for i := range propMapA {
		propMapA[i] = -1
	}
	for i := range propMapB {
		propMapB[i] = -1
	}

	i := 0
	for i < len(candidates) {
		j := i
		first := candidates[i]
		for j < len(candidates) &&
			candidates[j].name == first.name &&
			candidates[j].kind == first.kind &&
			versioncmp.Compare(candidates[j].version, first.version) == 0 {
			j++
		}
		nameOff := out.strings.Tokenize(first.name)
		versOff := out.strings.Tokenize(first.version)
		var relation Relation
		if first.fromB {
			relation = upstream.getPropertyAt(first.idx).Relation
		} else {
			relation = a.getPropertyAt(first.idx).Relation
		}
		outIdx := out.appendProperty(Property{
			Name:     refword.Word(nameOff).WithKind(first.kind),
			Version:  versOff,
			Packages: noRef,
			Relation: relation,
		})
		for k := i; k < j; k++ {
			if candidates[k].fromB {
				propMapB[candidates[k].idx] = outIdx
			} else {
				propMapA[candidates[k].idx] = outIdx
			}
		}
		i = j
	}
	return propMapA, propMapB
}

// findPackageExact returns the package named (name, version) exactly,
// scanning forward from GetPackage's binary-search hit since multiple
// versions of the same name may be adjacent.
func findPackageExact(s *Set, name, version string) (Package, bool) {
	n := s.packageCount()
	idx := sort.Search(n, func(i int) bool {
		return s.strings.String(s.getPackageAt(i).Name) >= name
	})
	for i := idx; i < n; i++ {
		p := s.getPackageAt(i)
		if s.strings.String(p.Name) != name {
			break
		}
		if s.strings.String(p.Version) == version {
			return p, true
		}
	}
	return Package{}, false
}

// RebuildFileTree re-derives merged's file tree by re-running
// finalizer passes 4–5 (spec.md §4.F) over the union of every output
// package's files, looked up by exact (name, version) match against
// whichever of origA or origUpstream it was copied from. This is the
// "faithful reimplementation" option (a) spec.md §9(c) leaves as an
// explicit choice, offered here as a real function rather than caller
// homework.
func RebuildFileTree(merged, origA, origUpstream *Set) (*Set, error) {
	var flat []flatFile
	n := merged.packageCount()
	for i := 0; i < n; i++ {
		pkg := merged.getPackageAt(i)
		name := merged.strings.String(pkg.Name)
		version := merged.strings.String(pkg.Version)

		srcSet := origA
		srcPkg, ok := findPackageExact(origA, name, version)
		if !ok {
			srcPkg, ok = findPackageExact(origUpstream, name, version)
			srcSet = origUpstream
		}
		if !ok {
			continue
		}
		for _, path := range srcSet.ListPackageFiles(srcPkg) {
			flat = append(flat, flatFile{pkgIndex: i, path: path})
		}
	}

	if err := buildFileTree(merged, flat); err != nil {
		return nil, err
	}
	if err := invertFileIndex(merged); err != nil {
		return nil, err
	}
	return merged, nil
}
