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

// Package versioncmp implements the version string comparator used to
// sort packages and properties in a razor set (spec.md §4.F.3).
package versioncmp

// Compare compares two version strings the way rpm-style version
// comparison does: each side may begin with a decimal integer epoch
// followed by ':' ("N:rest"); if exactly one side has an epoch, the
// other is treated as epoch 0. Epochs are compared numerically. The
// remainder of each string is then walked byte by byte; on a mismatch
// the byte difference is returned, and whenever a digit is found on
// both sides at the same position, the function recurses from that
// position so the next run of digits on each side is compared
// numerically rather than byte by byte (so "9" < "10").
func Compare(a, b string) int {
	aEpoch, aRest, aHas := splitEpoch(a)
	bEpoch, bRest, bHas := splitEpoch(b)
	if aHas || bHas {
		if aEpoch != bEpoch {
			if aEpoch < bEpoch {
				return -1
			}
			return 1
		}
	}
	return compareRest(aRest, bRest)
}

// splitEpoch parses a leading "N:" epoch prefix, returning the
// numeric epoch (0 if absent), the remainder of the string, and whether
// an epoch prefix was present.
func splitEpoch(s string) (epoch int64, rest string, has bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != ':' {
		return 0, s, false
	}
	var n int64
	for j := 0; j < i; j++ {
		n = n*10 + int64(s[j]-'0')
	}
	return n, s[i+1:], true
}

// compareRest walks a and b byte by byte, recursing into numeric
// comparison whenever it finds a digit on both sides; this is a
// direct reading of spec.md §4.F.3's terminal condition ("return the
// difference of the current characters (one may be the string
// terminator)").
func compareRest(a, b string) int {
	i, j := 0, 0
	for {
		ac := byteAt(a, i)
		bc := byteAt(b, j)
		if isDigit(ac) && isDigit(bc) {
			return compareNumeric(a, b, i, j)
		}
		if ac != bc {
			return int(ac) - int(bc)
		}
		if ac == 0 {
			return 0
		}
		i++
		j++
	}
}

// compareNumeric compares the runs of decimal digits starting at i in a
// and at j in b as integers (ignoring leading zeros), then continues
// the walk past those runs.
func compareNumeric(a, b string, i, j int) int {
	ai, bj := i, j
	for ai < len(a) && isDigit(a[ai]) {
		ai++
	}
	for bj < len(b) && isDigit(b[bj]) {
		bj++
	}
	as := stripLeadingZeros(a[i:ai])
	bs := stripLeadingZeros(b[j:bj])
	if len(as) != len(bs) {
		if len(as) < len(bs) {
			return -1
		}
		return 1
	}
	if as != bs {
		if as < bs {
			return -1
		}
		return 1
	}
	return compareRest(a[ai:], b[bj:])
}

func stripLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

func byteAt(s string, i int) byte {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
