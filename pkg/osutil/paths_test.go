/*
Copyright 2011 Google Inc.

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

package osutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func createTestInclude(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "test")
	return f.Close()
}

func checkFound(t *testing.T, path string) {
	t.Helper()
	found, err := FindInclude(path)
	if err != nil {
		t.Errorf("FindInclude(%q): %v", path, err)
		return
	}
	data, err := os.ReadFile(found)
	if err != nil {
		t.Errorf("reading %v: %v", found, err)
		return
	}
	if string(data) != "test" {
		t.Errorf("content = %q, want %q", data, "test")
	}
}

func TestFindIncludeMissing(t *testing.T) {
	defer os.Setenv("RAZOR_CONFIG_DIR", os.Getenv("RAZOR_CONFIG_DIR"))
	os.Setenv("RAZOR_CONFIG_DIR", filepath.Join(os.TempDir(), "x", "y", "z", "not-exist"))

	if _, err := FindInclude("this_config_doesnt_exist.config"); err == nil {
		t.Error("FindInclude unexpectedly succeeded for a nonexistent file")
	}
}

func TestFindIncludeCWD(t *testing.T) {
	const path = "TestFindIncludeCWD.config"
	if err := createTestInclude(path); err != nil {
		t.Fatalf("creating test file: %v", err)
	}
	defer os.Remove(path)
	checkFound(t, path)
}

func TestFindIncludeConfigDir(t *testing.T) {
	dir := t.TempDir()
	const name = "TestFindIncludeConfigDir.config"
	if err := createTestInclude(filepath.Join(dir, name)); err != nil {
		t.Fatalf("creating test file: %v", err)
	}

	defer os.Setenv("RAZOR_CONFIG_DIR", os.Getenv("RAZOR_CONFIG_DIR"))
	os.Setenv("RAZOR_CONFIG_DIR", dir)

	checkFound(t, name)
}

func TestFindIncludePath(t *testing.T) {
	dir := t.TempDir()
	const name = "TestFindIncludePath.config"
	if err := createTestInclude(filepath.Join(dir, name)); err != nil {
		t.Fatalf("creating test file: %v", err)
	}

	defer os.Setenv("RAZOR_CONFIG_DIR", os.Getenv("RAZOR_CONFIG_DIR"))
	os.Setenv("RAZOR_CONFIG_DIR", filepath.Join(os.TempDir(), "x", "y", "z", "not-exist"))

	defer os.Setenv("RAZOR_INCLUDE_PATH", "")
	os.Setenv("RAZOR_INCLUDE_PATH", dir)
	checkFound(t, name)

	os.Setenv("RAZOR_INCLUDE_PATH", "/not/a/razor/config/dir"+string(filepath.ListSeparator)+dir)
	checkFound(t, name)
}
