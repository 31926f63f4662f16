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

func TestValidateFindsUnsatisfiedRequirement(t *testing.T) {
	set := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "libc", rel: GE, version: "2.17"}},
		},
	})

	unsatisfied := Validate(set)
	if len(unsatisfied) != 1 {
		t.Fatalf("Validate = %v, want exactly 1 unsatisfied requirement", unsatisfied)
	}
	req := set.PropertyAt(unsatisfied[0])
	if set.PropertyName(req) != "libc" {
		t.Errorf("unsatisfied property = %q, want libc", set.PropertyName(req))
	}
}

func TestValidateSatisfiedByProvides(t *testing.T) {
	set := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "libc", rel: GE, version: "2.0"}},
		},
		{
			name: "libc", version: "2.17",
			provides: []testDep{{name: "libc", rel: EQ, version: "2.17"}},
		},
	})

	if unsatisfied := Validate(set); len(unsatisfied) != 0 {
		t.Errorf("Validate = %v, want none unsatisfied", unsatisfied)
	}
}

func TestValidateSkipsFileRequirements(t *testing.T) {
	set := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "/bin/sh", rel: Any}},
		},
	})

	if unsatisfied := Validate(set); len(unsatisfied) != 0 {
		t.Errorf("Validate = %v, want file requirement skipped", unsatisfied)
	}
}

func TestValidateRelationBoundary(t *testing.T) {
	set := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "libc", rel: GE, version: "2.20"}},
		},
		{
			name: "libc", version: "2.17",
			provides: []testDep{{name: "libc", rel: EQ, version: "2.17"}},
		},
	})

	unsatisfied := Validate(set)
	if len(unsatisfied) != 1 {
		t.Fatalf("Validate = %v, want the >= 2.20 requirement unsatisfied against 2.17", unsatisfied)
	}
}

func TestSatisfyFindsUpstreamProvider(t *testing.T) {
	set := buildSet(t, []testPkg{
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

	unsatisfied := Validate(set)
	if len(unsatisfied) != 1 {
		t.Fatalf("Validate = %v, want 1 unsatisfied", unsatisfied)
	}

	pkgIdxs := Satisfy(set, unsatisfied, upstream)
	if len(pkgIdxs) != 1 {
		t.Fatalf("Satisfy = %v, want exactly one providing package", pkgIdxs)
	}
	providerPkg := upstream.getPackageAt(pkgIdxs[0])
	if upstream.PackageName(providerPkg) != "libc" {
		t.Errorf("Satisfy resolved to %q, want libc", upstream.PackageName(providerPkg))
	}
}

// TestUpdateFixedPointLoop names "libc" explicitly: initialSelection's
// empty-names path only pulls in upstream packages already present in
// a by name, so a brand-new dependency like libc (not yet installed)
// has to be requested to seed the loop; Satisfy then chains in
// kernel-headers on its own.
func TestUpdateFixedPointLoop(t *testing.T) {
	a := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "libc", rel: GE, version: "2.0"}},
		},
	})
	upstream := buildSet(t, []testPkg{
		{
			name: "libc", version: "2.17",
			requires: []testDep{{name: "kernel-headers", rel: Any}},
			provides: []testDep{{name: "libc", rel: EQ, version: "2.17"}},
		},
		{
			name: "kernel-headers", version: "5.0",
			provides: []testDep{{name: "kernel-headers", rel: EQ, version: "5.0"}},
		},
	})

	updated, err := Update(a, upstream, []string{"libc"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	defer updated.Close()

	for _, name := range []string{"app", "libc", "kernel-headers"} {
		if _, ok := updated.GetPackage(name); !ok {
			t.Errorf("updated set missing package %q", name)
		}
	}
	if unsatisfied := Validate(updated); len(unsatisfied) != 0 {
		t.Errorf("Validate(updated) = %v, want fully satisfied", unsatisfied)
	}
}

func TestUpdateNoUnmetRequirementsIsNoOp(t *testing.T) {
	a := buildSet(t, []testPkg{
		{name: "standalone", version: "1.0"},
	})
	upstream := buildSet(t, []testPkg{
		{name: "unrelated", version: "1.0"},
	})

	updated, err := Update(a, upstream, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	defer updated.Close()

	var count int
	for range updated.Packages() {
		count++
	}
	if count != 1 {
		t.Errorf("updated package count = %d, want 1 (nothing should have merged in)", count)
	}
}

func TestUpdateAllChainsMultipleUpstreams(t *testing.T) {
	a := buildSet(t, []testPkg{
		{
			name: "app", version: "1.0",
			requires: []testDep{{name: "libfoo", rel: Any}},
		},
	})
	base := buildSet(t, []testPkg{
		{
			name: "libfoo", version: "1.0",
			requires: []testDep{{name: "libbar", rel: Any}},
			provides: []testDep{{name: "libfoo", rel: EQ, version: "1.0"}},
		},
	})
	updates := buildSet(t, []testPkg{
		{
			name: "libbar", version: "1.0",
			provides: []testDep{{name: "libbar", rel: EQ, version: "1.0"}},
		},
	})

	// Named explicitly for the same reason as TestUpdateFixedPointLoop:
	// neither libfoo nor libbar is already installed in a, so the
	// empty-names auto-detection never selects them.
	merged, err := UpdateAll(a, []*Set{base, updates}, []string{"libfoo", "libbar"})
	if err != nil {
		t.Fatalf("UpdateAll: %v", err)
	}
	defer merged.Close()

	for _, name := range []string{"app", "libfoo", "libbar"} {
		if _, ok := merged.GetPackage(name); !ok {
			t.Errorf("merged set missing package %q", name)
		}
	}
	if unsatisfied := Validate(merged); len(unsatisfied) != 0 {
		t.Errorf("Validate(merged) = %v, want fully satisfied", unsatisfied)
	}
}

func TestUpdateAllEmptyUpstreams(t *testing.T) {
	a := buildSet(t, []testPkg{{name: "solo", version: "1.0"}})

	merged, err := UpdateAll(a, nil, nil)
	if err != nil {
		t.Fatalf("UpdateAll: %v", err)
	}
	if merged != a {
		t.Error("UpdateAll with no upstreams should return a unchanged")
	}
}
