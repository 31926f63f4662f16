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
	"iter"
	"sort"

	"razor.dev/pkg/refword"
)

// PropertyAt returns the property at index i, as returned by Validate
// and Satisfy.
func (s *Set) PropertyAt(i int) Property { return s.getPropertyAt(i) }

// PackageName returns pkg's name, decoded from the string pool.
func (s *Set) PackageName(pkg Package) string { return s.strings.String(pkg.Name) }

// PackageVersion returns pkg's version, decoded from the string pool.
func (s *Set) PackageVersion(pkg Package) string { return s.strings.String(pkg.Version) }

// PropertyName returns p's name, decoded from the string pool.
func (s *Set) PropertyName(p Property) string { return s.strings.String(p.Name.Payload()) }

// PropertyVersion returns p's version, decoded from the string pool.
func (s *Set) PropertyVersion(p Property) string { return s.strings.String(p.Version) }

// GetPackage returns the package named name via binary search over the
// sorted packages section. If more than one version of name exists,
// the first one found by the search is returned (finalization does
// not deduplicate packages the way it does properties).
func (s *Set) GetPackage(name string) (Package, bool) {
	n := s.packageCount()
	idx := sort.Search(n, func(i int) bool {
		return s.strings.String(s.getPackageAt(i).Name) >= name
	})
	if idx >= n {
		return Package{}, false
	}
	p := s.getPackageAt(idx)
	if s.strings.String(p.Name) != name {
		return Package{}, false
	}
	return p, true
}

// GetProperty returns the first property named name, walking backward
// from a binary-search hit over the name-payload to the earliest entry
// sharing that name, since equal-name entries are contiguous.
func (s *Set) GetProperty(name string) (Property, bool) {
	off, ok := s.strings.Lookup(name)
	if !ok {
		return Property{}, false
	}
	n := s.propertyCount()
	idx := sort.Search(n, func(i int) bool {
		return s.getPropertyAt(i).Name.Payload() >= off
	})
	if idx >= n || s.getPropertyAt(idx).Name.Payload() != off {
		return Property{}, false
	}
	for idx > 0 && s.getPropertyAt(idx-1).Name.Payload() == off {
		idx--
	}
	return s.getPropertyAt(idx), true
}

// Packages returns a range-over-func iterator walking every package in
// sorted order.
func (s *Set) Packages() iter.Seq[Package] {
	return func(yield func(Package) bool) {
		for i := 0; i < s.packageCount(); i++ {
			if !yield(s.getPackageAt(i)) {
				return
			}
		}
	}
}

// PackageCursor is a classic Next()-style iterator over a Set's
// packages, for callers that prefer it to range-over-func (the
// teacher's sorted.Iterator follows this same shape).
type PackageCursor struct {
	set *Set
	i   int
	n   int
	cur Package
}

// NewPackageCursor returns a cursor positioned before the first package.
func (s *Set) NewPackageCursor() *PackageCursor {
	return &PackageCursor{set: s, i: 0, n: s.packageCount()}
}

// Next advances the cursor and reports whether a package is available.
func (c *PackageCursor) Next() bool {
	if c.i >= c.n {
		return false
	}
	c.cur = c.set.getPackageAt(c.i)
	c.i++
	return true
}

// Package returns the package the cursor is currently positioned at.
func (c *PackageCursor) Package() Package {
	return c.cur
}

// PropertiesOf returns a range-over-func iterator over pkg's property
// list (empty if pkg.Properties is noRef).
func (s *Set) PropertiesOf(pkg Package) iter.Seq[Property] {
	return func(yield func(Property) bool) {
		for _, idx := range s.refListValues(sectionPropertyPool, pkg.Properties) {
			if !yield(s.getPropertyAt(int(idx))) {
				return
			}
		}
	}
}

// AllPackageIndices returns every package index in s, in sorted
// (name, version) order, suitable for passing to Add as the selection
// of an upstream Set whose entire contents should be merged in.
func (s *Set) AllPackageIndices() []int {
	n := s.packageCount()
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// PackageRef names one package by its canonical name-version pair, as
// returned by ListPropertyPackages.
type PackageRef struct {
	Name    string
	Version string
}

// ListPropertyPackages locates the property named name (binary search)
// and, for every contiguous same-name entry matching kind and (if
// version != "") version exactly, walks its packages list and emits a
// PackageRef per listed package.
func (s *Set) ListPropertyPackages(name string, version string, kind refword.Kind) []PackageRef {
	off, ok := s.strings.Lookup(name)
	if !ok {
		return nil
	}
	n := s.propertyCount()
	idx := sort.Search(n, func(i int) bool {
		return s.getPropertyAt(i).Name.Payload() >= off
	})

	var out []PackageRef
	for i := idx; i < n; i++ {
		p := s.getPropertyAt(i)
		if p.Name.Payload() != off {
			break
		}
		if p.Name.Kind() != kind {
			continue
		}
		if version != "" && s.strings.String(p.Version) != version {
			continue
		}
		for _, pkgIdx := range s.refListValues(sectionPackagePool, p.Packages) {
			pkg := s.getPackageAt(int(pkgIdx))
			out = append(out, PackageRef{
				Name:    s.strings.String(pkg.Name),
				Version: s.strings.String(pkg.Version),
			})
		}
	}
	return out
}
