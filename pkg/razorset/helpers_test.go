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
	"testing"

	"razor.dev/pkg/refword"
)

// testDep is one requires/provides/conflicts/obsoletes line for testPkg.
type testDep struct {
	name    string
	rel     Relation
	version string
}

// testPkg is a declarative package fixture fed through an Importer by
// buildSet, mirroring the shape feed.Package hands to Import.
type testPkg struct {
	name, version, arch string
	requires            []testDep
	provides            []testDep
	conflicts           []testDep
	obsoletes           []testDep
	files               []string
}

// buildSet drives an Importer through pkgs and returns the finalized
// Set, registering its Close with t.Cleanup.
func buildSet(t *testing.T, pkgs []testPkg) *Set {
	t.Helper()
	imp := NewImporter()
	for _, p := range pkgs {
		imp.BeginPackage(p.name, p.version, p.arch)
		addDeps := func(deps []testDep, kind refword.Kind) {
			for _, d := range deps {
				imp.AddProperty(d.name, kind, d.version, d.rel)
			}
		}
		addDeps(p.requires, refword.Requires)
		addDeps(p.provides, refword.Provides)
		addDeps(p.conflicts, refword.Conflicts)
		addDeps(p.obsoletes, refword.Obsoletes)
		for _, f := range p.files {
			imp.AddFile(f)
		}
	}
	set, err := imp.Finish()
	if err != nil {
		imp.Destroy()
		t.Fatalf("Finish: %v", err)
	}
	t.Cleanup(func() { set.Close() })
	return set
}
