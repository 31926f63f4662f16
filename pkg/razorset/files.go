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

import "strings"

// Root returns the file tree's root entry, always at index 0.
func (s *Set) Root() FileEntry {
	return s.getFileEntryAt(0)
}

// children returns the immediate children of dir, reading forward from
// dir.Start until an entry with Name.IsLast() set.
func (s *Set) children(dir FileEntry) []FileEntry {
	if dir.Start == 0 {
		return nil
	}
	var out []FileEntry
	for i := int(dir.Start); ; i++ {
		e := s.getFileEntryAt(i)
		out = append(out, e)
		if e.Name.IsLast() {
			break
		}
	}
	return out
}

// FindEntry performs the recursive-descent lookup of spec.md §4.G: for
// each child of dir, an exact name match against pattern returns that
// child; a pattern that begins with "child-name/" recurses into the
// child with the matched prefix stripped.
func (s *Set) FindEntry(dir FileEntry, pattern string) (FileEntry, bool) {
	for _, child := range s.children(dir) {
		name := s.strings.String(child.Name.Payload())
		if name == pattern {
			return child, true
		}
		if rest, ok := strings.CutPrefix(pattern, name+"/"); ok {
			return s.FindEntry(child, rest)
		}
	}
	return FileEntry{}, false
}

// fileParents walks the whole file tree once, breadth-first (the same
// order buildFileTree laid entries out in), and returns parent[i] = the
// index of i's directory entry (root's parent is -1).
func (s *Set) fileParents() []int {
	n := s.fileCount()
	parent := make([]int, n)
	if n > 0 {
		parent[0] = -1
	}
	queue := []int{0}
	for len(queue) > 0 {
		dirIdx := queue[0]
		queue = queue[1:]
		dir := s.getFileEntryAt(dirIdx)
		if dir.Start == 0 {
			continue
		}
		for i := int(dir.Start); ; i++ {
			parent[i] = dirIdx
			e := s.getFileEntryAt(i)
			if e.Start != 0 {
				queue = append(queue, i)
			}
			if e.Name.IsLast() {
				break
			}
		}
	}
	return parent
}

// pathOf reconstructs the full slash-separated path of entry idx by
// walking parent pointers up to (but not including) the root.
func (s *Set) pathOf(idx int, parent []int) string {
	var parts []string
	for idx > 0 {
		e := s.getFileEntryAt(idx)
		parts = append(parts, s.strings.String(e.Name.Payload()))
		idx = parent[idx]
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// ListPackageFiles returns every file path owned by pkg, in file-tree
// (ascending index) order.
func (s *Set) ListPackageFiles(pkg Package) []string {
	indices := s.refListValues(sectionFilePool, pkg.Files)
	if len(indices) == 0 {
		return nil
	}
	parent := s.fileParents()
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		out = append(out, s.pathOf(int(idx), parent))
	}
	return out
}
