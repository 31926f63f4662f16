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

package jsonconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFileBasics(t *testing.T) {
	path := writeTestConfig(t, `{
		"name": "glibc",
		"count": 3,
		"strict": true,
		"tags": ["a", "b"],
		"nested": {"inner": "value"}
	}`)
	jc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := jc.RequiredString("name"); got != "glibc" {
		t.Errorf("RequiredString(name) = %q", got)
	}
	if got := jc.RequiredInt("count"); got != 3 {
		t.Errorf("RequiredInt(count) = %d", got)
	}
	if got := jc.RequiredBool("strict"); !got {
		t.Errorf("RequiredBool(strict) = %v", got)
	}
	if got := jc.RequiredList("tags"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("RequiredList(tags) = %v", got)
	}
	if got := jc.RequiredObject("nested").RequiredString("inner"); got != "value" {
		t.Errorf("nested.inner = %q", got)
	}
	if err := jc.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestOptionalDefaults(t *testing.T) {
	jc := Obj{}
	if got := jc.OptionalString("missing", "fallback"); got != "fallback" {
		t.Errorf("OptionalString = %q", got)
	}
	if got := jc.OptionalBool("missing", true); !got {
		t.Errorf("OptionalBool = %v", got)
	}
	if got := jc.OptionalInt("missing", 7); got != 7 {
		t.Errorf("OptionalInt = %d", got)
	}
}

func TestRequiredMissingRecordsError(t *testing.T) {
	jc := Obj{}
	jc.RequiredString("name")
	if err := jc.Validate(); err == nil {
		t.Error("Validate succeeded despite missing required key")
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	jc := Obj{"name": "glibc", "typo": "oops"}
	jc.RequiredString("name")
	if err := jc.Validate(); err == nil {
		t.Error("Validate succeeded despite an unknown key")
	}
}

func TestEnvExpansion(t *testing.T) {
	os.Setenv("RAZORCTL_TEST_VAR", "expanded")
	defer os.Unsetenv("RAZORCTL_TEST_VAR")

	path := writeTestConfig(t, `{"value": ["_env", "${RAZORCTL_TEST_VAR}"]}`)
	jc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := jc.RequiredString("value"); got != "expanded" {
		t.Errorf("RequiredString(value) = %q, want %q", got, "expanded")
	}
}

func TestFileInclude(t *testing.T) {
	dir := t.TempDir()
	incPath := filepath.Join(dir, "included.json")
	if err := os.WriteFile(incPath, []byte(`{"inner": "ok"}`), 0600); err != nil {
		t.Fatal(err)
	}
	mainPath := filepath.Join(dir, "main.json")
	if err := os.WriteFile(mainPath, []byte(`{"included": ["_fileobj", "included.json"]}`), 0600); err != nil {
		t.Fatal(err)
	}

	defer os.Setenv("RAZOR_INCLUDE_PATH", os.Getenv("RAZOR_INCLUDE_PATH"))
	os.Setenv("RAZOR_INCLUDE_PATH", dir)

	jc, err := ReadFile(mainPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := jc.RequiredObject("included").RequiredString("inner"); got != "ok" {
		t.Errorf("included.inner = %q", got)
	}
}
