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

package versioncmp

import "testing"

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestNumericSegments(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2", "1.9", -1},
		{"1.9", "1.10", -1},
		{"1.2", "1.10", -1},
		{"1.10", "1.2", 1},
		{"1.0", "1.0", 0},
		{"2.0", "1.0", 1},
	}
	for _, tt := range tests {
		if g := sign(Compare(tt.a, tt.b)); g != tt.want {
			t.Errorf("Compare(%q, %q) sign = %d; want %d", tt.a, tt.b, g, tt.want)
		}
	}
}

func TestEpoch(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1:1.0", "2.0", 1},     // epoch 1 beats epoch 0 regardless of rest
		{"1.0", "1:0.1", -1},
		{"1:1.0", "1:1.0", 0},
		{"0:1.0", "1.0", 0}, // explicit epoch 0 == implicit epoch 0
	}
	for _, tt := range tests {
		if g := sign(Compare(tt.a, tt.b)); g != tt.want {
			t.Errorf("Compare(%q, %q) sign = %d; want %d", tt.a, tt.b, g, tt.want)
		}
	}
}

func TestSortOrderFromScenario3(t *testing.T) {
	versions := []string{"1.10", "1.2", "1.9"}
	want := []string{"1.2", "1.9", "1.10"}
	// bubble sort using Compare, exercising it the way the finalizer would
	for i := 0; i < len(versions); i++ {
		for j := 0; j < len(versions)-1-i; j++ {
			if Compare(versions[j], versions[j+1]) > 0 {
				versions[j], versions[j+1] = versions[j+1], versions[j]
			}
		}
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("sorted[%d] = %q; want %q (full: %v)", i, versions[i], want[i], versions)
		}
	}
}

func TestTrailingAlphaSuffix(t *testing.T) {
	if Compare("1.0a", "1.0") == 0 {
		t.Errorf("Compare(\"1.0a\", \"1.0\") = 0; want nonzero (one side has a trailing suffix)")
	}
}
