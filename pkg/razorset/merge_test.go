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

import "testing"

func TestAddMergesDisjointPackages(t *testing.T) {
	a := buildSet(t, []testPkg{
		{name: "foo", version: "1.0", provides: []testDep{{name: "foo", rel: EQ, version: "1.0"}}},
	})
	upstream := buildSet(t, []testPkg{
		{name: "bar", version: "2.0", provides: []testDep{{name: "bar", rel: EQ, version: "2.0"}}},
		{name: "baz", version: "3.0", provides: []testDep{{name: "baz", rel: EQ, version: "3.0"}}},
	})

	merged, err := Add(a, upstream, []int{0, 1})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	defer merged.Close()

	for _, name := range []string{"foo", "bar", "baz"} {
		if _, ok := merged.GetPackage(name); !ok {
			t.Errorf("merged set missing package %q", name)
		}
	}
	var count int
	for range merged.Packages() {
		count++
	}
	if count != 3 {
		t.Errorf("merged package count = %d, want 3", count)
	}
}

func TestAddUpstreamWinsOnNameCollision(t *testing.T) {
	a := buildSet(t, []testPkg{
		{name: "foo", version: "1.0", provides: []testDep{{name: "foo", rel: EQ, version: "1.0"}}},
	})
	upstream := buildSet(t, []testPkg{
		{name: "foo", version: "2.0", provides: []testDep{{name: "foo", rel: EQ, version: "2.0"}}},
	})

	merged, err := Add(a, upstream, []int{0})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	defer merged.Close()

	foo, ok := merged.GetPackage("foo")
	if !ok {
		t.Fatal("GetPackage(foo) not found in merged set")
	}
	if merged.PackageVersion(foo) != "2.0" {
		t.Errorf("merged foo version = %q, want 2.0 (upstream should win)", merged.PackageVersion(foo))
	}
	var count int
	for range merged.Packages() {
		count++
	}
	if count != 1 {
		t.Errorf("merged package count = %d, want 1 (collision should not duplicate)", count)
	}
}

func TestAddPreservesProperties(t *testing.T) {
	a := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "libc", rel: GE, version: "2.0"}},
		},
	})
	upstream := buildSet(t, []testPkg{
		{
			name: "libc", version: "2.17",
			provides: []testDep{{name: "libc", rel: EQ, version: "2.17"}},
		},
	})

	merged, err := Add(a, upstream, []int{0})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	defer merged.Close()

	app, ok := merged.GetPackage("app")
	if !ok {
		t.Fatal("GetPackage(app) not found in merged set")
	}
	var sawRequires bool
	for p := range merged.PropertiesOf(app) {
		if merged.PropertyName(p) == "libc" {
			sawRequires = true
		}
	}
	if !sawRequires {
		t.Error("app's requires-libc property lost across merge")
	}

	unsatisfied := Validate(merged)
	if len(unsatisfied) != 0 {
		t.Errorf("Validate(merged) = %v, want none unsatisfied (libc now provided)", unsatisfied)
	}
}

func TestRebuildFileTreeAfterAdd(t *testing.T) {
	a := buildSet(t, []testPkg{
		{name: "foo", version: "1.0", files: []string{"/usr/bin/foo"}},
	})
	upstream := buildSet(t, []testPkg{
		{name: "bar", version: "2.0", files: []string{"/usr/bin/bar"}},
	})

	merged, err := Add(a, upstream, []int{0})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	defer merged.Close()

	rebuilt, err := RebuildFileTree(merged, a, upstream)
	if err != nil {
		t.Fatalf("RebuildFileTree: %v", err)
	}

	foo, _ := rebuilt.GetPackage("foo")
	bar, _ := rebuilt.GetPackage("bar")
	if files := rebuilt.ListPackageFiles(foo); len(files) != 1 || files[0] != "/usr/bin/foo" {
		t.Errorf("rebuilt foo files = %v", files)
	}
	if files := rebuilt.ListPackageFiles(bar); len(files) != 1 || files[0] != "/usr/bin/bar" {
		t.Errorf("rebuilt bar files = %v", files)
	}
}
