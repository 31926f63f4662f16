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

// Package refword implements the 32-bit tagged reference word used
// throughout a razor set to index into a pool or section without
// confusing payload, terminator, and kind bits at the call site.
package refword

import "fmt"

// Word is a 32-bit tagged value. The low 24 bits carry a payload (an
// index or a pool offset); the high bits carry tag and, on
// property-name words, a 2-bit kind.
type Word uint32

const (
	payloadMask = 0x00FFFFFF
	immediateBit = 0x80000000
	lastBit      = 0x80000000
	kindShift    = 30
	kindMask     = 0x3
)

// MaxPayload is the largest payload a Word can carry.
const MaxPayload = payloadMask

// ErrPayloadOverflow is returned when a payload does not fit in 24 bits.
// spec.md treats this as a fatal invariant violation; this
// implementation reports it as an error instead of aborting, so callers
// (the importer, the finalizer, the merger) can wrap it with context
// and let cmd/razorctl turn it into a process exit status.
type ErrPayloadOverflow uint32

func (e ErrPayloadOverflow) Error() string {
	return fmt.Sprintf("refword: payload %d exceeds 24-bit limit (%d)", uint32(e), MaxPayload)
}

// New builds a Word from a payload. It fails if payload doesn't fit in
// 24 bits.
func New(payload uint32) (Word, error) {
	if payload > payloadMask {
		return 0, ErrPayloadOverflow(payload)
	}
	return Word(payload), nil
}

// Payload returns the low 24 bits of w.
func (w Word) Payload() uint32 {
	return uint32(w) & payloadMask
}

// IsImmediate reports whether the terminator bit is set. On a
// reference-list word this marks the end of the list (or a
// single-element inline list); on a property-name word the same bit
// position instead carries the high bit of Kind, so IsImmediate is
// only meaningful on pool/list words, never on property-name words.
func (w Word) IsImmediate() bool {
	return uint32(w)&immediateBit != 0
}

// WithImmediate returns w with the terminator bit set.
func (w Word) WithImmediate() Word {
	return Word(uint32(w) | immediateBit)
}

// IsLast reports whether the LAST bit is set on a file-tree name word,
// marking the final sibling in a directory listing.
func (w Word) IsLast() bool {
	return uint32(w)&lastBit != 0
}

// WithLast returns w with the LAST bit set.
func (w Word) WithLast() Word {
	return Word(uint32(w) | lastBit)
}

// Kind is the 2-bit property kind tag carried in the high bits of a
// property-name word.
type Kind uint8

const (
	Requires Kind = iota
	Provides
	Conflicts
	Obsoletes
)

func (k Kind) String() string {
	switch k {
	case Requires:
		return "requires"
	case Provides:
		return "provides"
	case Conflicts:
		return "conflicts"
	case Obsoletes:
		return "obsoletes"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Kind extracts the 2-bit kind tag from a property-name word.
func (w Word) Kind() Kind {
	return Kind((uint32(w) >> kindShift) & kindMask)
}

// WithKind returns w with its kind bits set to k, leaving the payload
// untouched. Only meaningful on property-name words.
func (w Word) WithKind(k Kind) Word {
	cleared := uint32(w) &^ (kindMask << kindShift)
	return Word(cleared | (uint32(k&kindMask) << kindShift))
}
