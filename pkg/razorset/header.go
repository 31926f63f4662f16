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
	"fmt"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
	"go4.org/legal"

	"razor.dev/pkg/buffer"
	"razor.dev/pkg/strpool"
)

func init() {
	legal.RegisterLicense(`
Copyright (c) 2011, Evan Shaw <evan@ohess.org>
All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

    * Redistributions of source code must retain the above copyright
      notice, this list of conditions and the following disclaimer.
    * Redistributions in binary form must reproduce the above copyright
      notice, this list of conditions and the following disclaimer in the
      documentation and/or other materials provided with the distribution.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND
ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED
WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
`)
}

const (
	magic       = 0x7a7a7a7a
	fileVersion = 1
	pageSize    = 4096
	headerEntrySize = 12 // {type uint32, offset uint32, size uint32}
)

// alignUp rounds n up to the next multiple of pageSize.
func alignUp(n int64) int64 {
	if n%pageSize == 0 {
		return n
	}
	return n + (pageSize - n%pageSize)
}

type sectionTableEntry struct {
	typ    uint32
	offset uint32
	size   uint32
}

// Write serializes the Set to path: a 4096-byte header page followed by
// each section's bytes padded to a 4096-byte multiple, in ascending
// section-type order. Writing goes to a temporary file in the same
// directory, then renames into place, so a failure never leaves a
// partial file at path (spec.md §7).
func (s *Set) Write(path string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".razorset-*.tmp")
	if err != nil {
		return fmt.Errorf("razorset: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	entries := make([]sectionTableEntry, 0, numSections)
	offset := int64(pageSize)
	for t := sectionType(0); t < numSections; t++ {
		size := int64(s.section(t).Len())
		entries = append(entries, sectionTableEntry{typ: uint32(t), offset: uint32(offset), size: uint32(size)})
		offset = alignUp(offset + size)
	}

	header := make([]byte, pageSize)
	putLe32At(header, 0, magic)
	putLe32At(header, 4, fileVersion)
	pos := 8
	for _, e := range entries {
		putLe32At(header, pos, e.typ)
		putLe32At(header, pos+4, e.offset)
		putLe32At(header, pos+8, e.size)
		pos += headerEntrySize
	}
	putLe32At(header, pos, 0xFFFFFFFF) // terminator type
	putLe32At(header, pos+4, 0)
	putLe32At(header, pos+8, 0)

	if _, err = tmp.Write(header); err != nil {
		return fmt.Errorf("razorset: writing header: %w", err)
	}

	var written int64 = pageSize
	for _, e := range entries {
		data := s.section(sectionType(e.typ)).Bytes()
		if _, err = tmp.Write(data); err != nil {
			return fmt.Errorf("razorset: writing section %d: %w", e.typ, err)
		}
		written += int64(len(data))
		padded := alignUp(written)
		if padded > written {
			if _, err = tmp.Write(make([]byte, padded-written)); err != nil {
				return fmt.Errorf("razorset: padding section %d: %w", e.typ, err)
			}
			written = padded
		}
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("razorset: closing temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("razorset: renaming into place: %w", err)
	}
	return nil
}

// mmapRegion adapts mmap.MMap (a []byte) to the mmapHandle interface.
type mmapRegion mmap.MMap

func (r mmapRegion) Unmap() error {
	return mmap.MMap(r).Unmap()
}

// Open mmaps the file at path read-only and returns a Set whose
// sections are zero-copy views into the mapped region.
//
// Reading is lenient (spec.md §7): an unrecognized magic or version is
// an error, but an individual section whose table entry is malformed
// or whose type doesn't match its declared slot is simply skipped —
// Open still returns a Set, with that section as an empty buffer.
func Open(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("razorset: opening %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("razorset: stat %s: %w", path, err)
	}
	if fi.Size() < pageSize {
		return nil, fmt.Errorf("razorset: %s too small to contain a header", path)
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("razorset: mmap %s: %w", path, err)
	}

	s, err := openFromBytes([]byte(region))
	if err != nil {
		region.Unmap()
		return nil, err
	}
	s.mmap = mmapRegion(region)
	return s, nil
}

func openFromBytes(data []byte) (*Set, error) {
	if len(data) < pageSize {
		return nil, fmt.Errorf("razorset: data shorter than header page")
	}
	if got := le32At(data, 0); got != magic {
		return nil, fmt.Errorf("razorset: bad magic %#x, want %#x", got, uint32(magic))
	}
	if got := le32At(data, 4); got != fileVersion {
		return nil, fmt.Errorf("razorset: unsupported version %d, want %d", got, fileVersion)
	}

	s := &Set{}
	for i := range s.sections {
		s.sections[i] = section{buf: buffer.View(nil)}
	}

	pos := 8
	for i := 0; i < int(numSections); i++ {
		if pos+headerEntrySize > pageSize {
			break
		}
		typ := le32At(data, pos)
		off := le32At(data, pos+4)
		size := le32At(data, pos+8)
		pos += headerEntrySize
		if typ == 0xFFFFFFFF {
			break
		}
		if typ >= uint32(numSections) {
			continue // format mismatch: unrecognized type, skip leniently
		}
		if typ != uint32(i) {
			continue // declared slot doesn't match position: skip leniently
		}
		end := uint64(off) + uint64(size)
		if end > uint64(len(data)) {
			continue // truncated/corrupt entry: skip leniently
		}
		s.sections[typ] = section{buf: buffer.View(data[off:end])}
	}

	// An opened set never holds a transient hash table (spec.md §3:
	// "after finalization the hash table is discarded"); wrap the
	// mapped STRING_POOL section for read-only offset->string decode
	// only.
	s.strings = strpool.Open(s.section(sectionStringPool).Bytes())
	return s, nil
}
