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

package strpool

import "testing"

func TestEmptyStringSentinel(t *testing.T) {
	p := New()
	off, ok := p.Lookup("")
	if !ok {
		t.Fatalf("Lookup(\"\") not found")
	}
	if off == 0 {
		t.Errorf("Lookup(\"\") = 0; want a non-zero sentinel offset distinct from absent")
	}
	if p.String(0) != "" {
		t.Errorf("String(0) = %q; want empty (absent sentinel decodes empty)", p.String(0))
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	p := New()
	a := p.Tokenize("foo")
	b := p.Tokenize("foo")
	if a != b {
		t.Errorf("Tokenize(\"foo\") = %d, then %d; want identical offsets", a, b)
	}
}

func TestTokenizeDistinctStrings(t *testing.T) {
	p := New()
	a := p.Tokenize("foo")
	b := p.Tokenize("bar")
	if a == b {
		t.Errorf("Tokenize(\"foo\") == Tokenize(\"bar\") == %d; want distinct offsets", a)
	}
}

func TestLookupAbsent(t *testing.T) {
	p := New()
	if _, ok := p.Lookup("nope"); ok {
		t.Errorf("Lookup(\"nope\") found before insertion")
	}
}

func TestTokenizeRoundTripThroughString(t *testing.T) {
	p := New()
	words := []string{"glibc", "foo", "bar", "baz", "a-pretty-long-package-name-1.2.3"}
	offs := make([]uint32, len(words))
	for i, w := range words {
		offs[i] = p.Tokenize(w)
	}
	for i, w := range words {
		if g := p.String(offs[i]); g != w {
			t.Errorf("String(Tokenize(%q)) = %q", w, g)
		}
	}
}

func TestGrowthRehashesExistingEntries(t *testing.T) {
	p := New()
	var offs []uint32
	var words []string
	for i := 0; i < 500; i++ {
		w := randishString(i)
		words = append(words, w)
		offs = append(offs, p.Tokenize(w))
	}
	for i, w := range words {
		if got, ok := p.Lookup(w); !ok || got != offs[i] {
			t.Errorf("after growth, Lookup(%q) = (%d, %v); want (%d, true)", w, got, ok, offs[i])
		}
	}
}

func randishString(seed int) string {
	// Deterministic pseudo-random distinct strings without math/rand,
	// so the test doesn't depend on a random seed.
	buf := make([]byte, 1+(seed%7))
	x := uint32(seed*2654435761 + 1)
	for i := range buf {
		x = x*1664525 + 1013904223
		buf[i] = 'a' + byte(x%26)
	}
	return string(buf) + string(rune('0'+seed%10))
}
