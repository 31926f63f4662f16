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
	"path/filepath"
	"testing"

	"razor.dev/pkg/refword"
)

func testFixtureSet(t *testing.T) *Set {
	return buildSet(t, []testPkg{
		{
			name: "zeta", version: "1.0",
			provides: []testDep{{name: "zeta", rel: EQ, version: "1.0"}},
		},
		{
			name: "alpha", version: "1.0",
			requires: []testDep{{name: "libc", rel: GE, version: "2.0"}},
			provides: []testDep{{name: "alpha", rel: EQ, version: "1.0"}},
		},
		{
			name: "alpha", version: "2.0",
			provides: []testDep{{name: "alpha", rel: EQ, version: "2.0"}},
		},
		{
			name: "libc", version: "2.17",
			provides: []testDep{{name: "libc", rel: EQ, version: "2.17"}},
		},
	})
}

func TestPackagesSortedByNameThenVersion(t *testing.T) {
	set := testFixtureSet(t)

	var got []string
	for pkg := range set.Packages() {
		got = append(got, set.PackageName(pkg)+" "+set.PackageVersion(pkg))
	}
	want := []string{"alpha 1.0", "alpha 2.0", "libc 2.17", "zeta 1.0"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("packages[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPackageCursor(t *testing.T) {
	set := testFixtureSet(t)

	c := set.NewPackageCursor()
	var n int
	for c.Next() {
		n++
		_ = c.Package()
	}
	if n != 4 {
		t.Errorf("cursor visited %d packages, want 4", n)
	}
}

func TestGetPropertyFirstOfRun(t *testing.T) {
	set := testFixtureSet(t)

	p, ok := set.GetProperty("alpha")
	if !ok {
		t.Fatal("GetProperty(alpha) not found")
	}
	if set.PropertyName(p) != "alpha" {
		t.Errorf("PropertyName = %q", set.PropertyName(p))
	}
}

func TestPropertiesOf(t *testing.T) {
	set := testFixtureSet(t)

	alpha1, ok := findPackageExact(set, "alpha", "1.0")
	if !ok {
		t.Fatal("alpha 1.0 not found")
	}

	var sawRequires, sawProvides bool
	for p := range set.PropertiesOf(alpha1) {
		switch p.Name.Kind() {
		case refword.Requires:
			sawRequires = true
			if set.PropertyName(p) != "libc" {
				t.Errorf("requires name = %q", set.PropertyName(p))
			}
		case refword.Provides:
			sawProvides = true
		}
	}
	if !sawRequires || !sawProvides {
		t.Errorf("sawRequires=%v sawProvides=%v", sawRequires, sawProvides)
	}
}

func TestListPropertyPackages(t *testing.T) {
	set := testFixtureSet(t)

	refs := set.ListPropertyPackages("alpha", "", refword.Provides)
	if len(refs) != 2 {
		t.Fatalf("ListPropertyPackages(alpha, provides) = %v, want 2 entries", refs)
	}

	refs = set.ListPropertyPackages("alpha", "2.0", refword.Provides)
	if len(refs) != 1 || refs[0].Version != "2.0" {
		t.Fatalf("ListPropertyPackages(alpha, 2.0) = %v", refs)
	}
}

// TestOpenedSetNameResolution exercises GetProperty, ListPropertyPackages
// and Validate against a set loaded via Open (mmap'd, no hash table) to
// cover the Lookup path an in-memory Pool never takes.
func TestOpenedSetNameResolution(t *testing.T) {
	built := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "libc", rel: GE, version: "2.0"}},
		},
		{
			name: "libc", version: "2.17",
			provides: []testDep{{name: "libc", rel: EQ, version: "2.17"}},
		},
	})

	path := filepath.Join(t.TempDir(), "opened.razorset")
	if err := built.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	set, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	p, ok := set.GetProperty("libc")
	if !ok {
		t.Fatal("GetProperty(libc) not found on opened set")
	}
	if set.PropertyName(p) != "libc" {
		t.Errorf("PropertyName = %q, want libc", set.PropertyName(p))
	}

	refs := set.ListPropertyPackages("libc", "", refword.Provides)
	if len(refs) != 1 || refs[0].Name != "libc" {
		t.Fatalf("ListPropertyPackages(libc) = %v, want one ref to libc", refs)
	}

	if unsatisfied := Validate(set); len(unsatisfied) != 0 {
		t.Errorf("Validate(opened set) = %v, want none unsatisfied (libc is provided)", unsatisfied)
	}
}
