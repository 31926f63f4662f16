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
	"os"
	"path/filepath"
	"testing"
)

func TestImporterBasicRoundTrip(t *testing.T) {
	set := buildSet(t, []testPkg{
		{
			name: "foo", version: "1.0", arch: "x86_64",
			requires: []testDep{{name: "bar", rel: GE, version: "2.0"}},
			provides: []testDep{{name: "foo", rel: EQ, version: "1.0"}},
			files:    []string{"/usr/bin/foo"},
		},
		{
			name: "bar", version: "2.0",
			provides: []testDep{{name: "bar", rel: EQ, version: "2.0"}},
		},
	})

	foo, ok := set.GetPackage("foo")
	if !ok {
		t.Fatal("GetPackage(foo) not found")
	}
	if set.PackageName(foo) != "foo" || set.PackageVersion(foo) != "1.0" {
		t.Errorf("foo = %q %q", set.PackageName(foo), set.PackageVersion(foo))
	}

	if _, ok := set.GetPackage("nonexistent"); ok {
		t.Error("GetPackage(nonexistent) unexpectedly found")
	}
}

func TestImporterDestroyReleasesResources(t *testing.T) {
	imp := NewImporter()
	imp.BeginPackage("foo", "1.0", "")
	imp.AddProperty("foo", 0, "1.0", EQ)
	imp.Destroy()
	// Destroy must be idempotent-safe to call a second time without
	// panicking (Finish was never called, so nothing to undo further).
	imp.Destroy()
}

func TestWriteOpenRoundTrip(t *testing.T) {
	set := buildSet(t, []testPkg{
		{
			name: "foo", version: "1.0",
			requires: []testDep{{name: "bar", rel: GE, version: "2.0"}},
			files:    []string{"/usr/bin/foo", "/usr/share/doc/foo/README"},
		},
		{name: "bar", version: "2.0"},
	})

	path := filepath.Join(t.TempDir(), "test.razorset")
	if err := set.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	opened, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()

	foo, ok := opened.GetPackage("foo")
	if !ok {
		t.Fatal("GetPackage(foo) not found after round trip")
	}
	if opened.PackageVersion(foo) != "1.0" {
		t.Errorf("version = %q, want 1.0", opened.PackageVersion(foo))
	}

	files := opened.ListPackageFiles(foo)
	if len(files) != 2 {
		t.Fatalf("ListPackageFiles = %v, want 2 entries", files)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.razorset")
	set := buildSet(t, []testPkg{{name: "foo", version: "1.0"}})
	if err := set.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Corrupt the magic number in place.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	data[0] ^= 0xFF
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("rewriting corrupted file: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Open of corrupted magic unexpectedly succeeded")
	}
}
