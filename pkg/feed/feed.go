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

// Package feed defines the contract an external package-metadata feed
// adapter implements to drive a razorset.Importer. RPM header decoding
// and Yum XML parsing are out of scope (spec.md §1); this package
// supplies only the interface those adapters would sit behind, plus one
// concrete, real adapter (LineSource) for fixtures and the CLI's import
// mode.
package feed

import (
	"fmt"
	"iter"

	"razor.dev/pkg/razorset"
	"razor.dev/pkg/refword"
)

// Dependency names a property relative to a package: the name, the
// comparison, and the version it's compared against. Relation is Any
// for an unversioned dependency.
type Dependency struct {
	Name, Version string
	Relation      razorset.Relation
}

// Package is one feed record: everything an adapter knows about a
// single package, ready to hand to Import.
type Package struct {
	Name, Version, Arch string

	Provides  []Dependency
	Requires  []Dependency
	Conflicts []Dependency
	Obsoletes []Dependency

	Files []string
}

// Source produces a sequence of packages, one feed read at a time.
// Implementations report a read or parse failure alongside the package
// it occurred on; Import stops at the first error.
type Source interface {
	Packages() iter.Seq2[Package, error]
}

// Import drives imp through every package src produces: BeginPackage,
// then each dependency kind's AddProperty calls, then every file's
// AddFile, then FinishPackage. It does not call imp.Finish — callers
// may Import from more than one Source into the same Importer before
// finishing.
//
// Every package also implicitly provides itself at its own version,
// the way the original test harness's start_package did before handing
// control to the XML-driven property list
// (_examples/original_source/src/test-driver.c) — recovered here as a
// supplemented feature so "does package X provide itself" queries work
// without every adapter remembering to say so.
func Import(imp *razorset.Importer, src Source) error {
	for pkg, err := range src.Packages() {
		if err != nil {
			return fmt.Errorf("feed: reading package: %w", err)
		}
		imp.BeginPackage(pkg.Name, pkg.Version, pkg.Arch)
		imp.AddProperty(pkg.Name, refword.Provides, pkg.Version, razorset.EQ)

		for _, d := range pkg.Requires {
			imp.AddProperty(d.Name, refword.Requires, d.Version, d.Relation)
		}
		for _, d := range pkg.Provides {
			imp.AddProperty(d.Name, refword.Provides, d.Version, d.Relation)
		}
		for _, d := range pkg.Conflicts {
			imp.AddProperty(d.Name, refword.Conflicts, d.Version, d.Relation)
		}
		for _, d := range pkg.Obsoletes {
			imp.AddProperty(d.Name, refword.Obsoletes, d.Version, d.Relation)
		}
		for _, path := range pkg.Files {
			imp.AddFile(path)
		}
		imp.FinishPackage()
	}
	return nil
}
