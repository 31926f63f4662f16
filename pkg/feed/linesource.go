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

package feed

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"razor.dev/pkg/razorset"
	"razor.dev/pkg/strutil"
)

// LineSource reads a human-writable, line-oriented package feed: no
// indentation is significant beyond "does this line start with
// whitespace", and no XML toolchain is required. A record looks like:
//
//	name version arch
//	  requires libc.so.6 >= 2.17
//	  requires glibc
//	  provides name = version
//	  conflicts other-package
//	  file /usr/bin/name
//	  file /usr/share/doc/name/README
//
// A blank line ends the current package. Fields after the dependency
// name are optional; a bare "requires foo" line means an unversioned
// dependency (Relation Any). This format stands in for the original's
// XML test harness
// (_examples/original_source/src/test-driver.c): a fixture format
// readable and writable by hand, without pulling in libxml2 or an XML
// schema, since spec.md §1 names the XML-driven test harness itself as
// out of scope.
type LineSource struct {
	r io.Reader
}

// NewLineSource returns a LineSource reading from r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r}
}

// Packages implements Source.
func (ls *LineSource) Packages() iter.Seq2[Package, error] {
	return func(yield func(Package, error) bool) {
		scanner := bufio.NewScanner(ls.r)
		var cur *Package
		lineNo := 0

		flush := func() bool {
			if cur == nil {
				return true
			}
			ok := yield(*cur, nil)
			cur = nil
			return ok
		}

		for scanner.Scan() {
			lineNo++
			raw := scanner.Text()
			if strings.TrimSpace(raw) == "" {
				if !flush() {
					return
				}
				continue
			}
			if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
				if !flush() {
					return
				}
				fields := strings.Fields(raw)
				if len(fields) == 0 {
					continue
				}
				p := Package{Name: fields[0]}
				if len(fields) > 1 {
					p.Version = fields[1]
				}
				if len(fields) > 2 {
					p.Arch = fields[2]
				}
				cur = &p
				continue
			}

			if cur == nil {
				yield(Package{}, fmt.Errorf("feed: line %d: indented line with no current package", lineNo))
				return
			}
			if err := parseDetailLine(cur, raw); err != nil {
				yield(Package{}, fmt.Errorf("feed: line %d: %w", lineNo, err))
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Package{}, fmt.Errorf("feed: reading source: %w", err))
			return
		}
		flush()
	}
}

// foldEquals reports whether s equals want under Unicode case folding,
// so feed authors can write "Requires"/"REQUIRES" interchangeably with
// "requires".
func foldEquals(s, want string) bool {
	return len(s) == len(want) && strutil.HasPrefixFold(s, want)
}

func parseDetailLine(pkg *Package, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	kind := strutil.StringFromBytes([]byte(fields[0]))

	if foldEquals(kind, "file") {
		if len(fields) != 2 {
			return fmt.Errorf("file line wants exactly one path, got %q", line)
		}
		pkg.Files = append(pkg.Files, fields[1])
		return nil
	}

	if len(fields) < 2 {
		return fmt.Errorf("%s line needs at least a name, got %q", kind, line)
	}
	dep := Dependency{Name: fields[1]}
	switch len(fields) {
	case 2:
		dep.Relation = razorset.Any
	case 4:
		rel, err := parseRelationToken(fields[2])
		if err != nil {
			return err
		}
		dep.Relation = rel
		dep.Version = fields[3]
	default:
		return fmt.Errorf("%s line wants \"name\" or \"name relation version\", got %q", kind, line)
	}

	switch {
	case foldEquals(kind, "requires"):
		pkg.Requires = append(pkg.Requires, dep)
	case foldEquals(kind, "provides"):
		pkg.Provides = append(pkg.Provides, dep)
	case foldEquals(kind, "conflicts"):
		pkg.Conflicts = append(pkg.Conflicts, dep)
	case foldEquals(kind, "obsoletes"):
		pkg.Obsoletes = append(pkg.Obsoletes, dep)
	default:
		return fmt.Errorf("unrecognized property kind %q", kind)
	}
	return nil
}

func parseRelationToken(tok string) (razorset.Relation, error) {
	switch tok {
	case "<":
		return razorset.LT, nil
	case "<=":
		return razorset.LE, nil
	case "=":
		return razorset.EQ, nil
	case ">=":
		return razorset.GE, nil
	case ">":
		return razorset.GT, nil
	default:
		return razorset.Any, fmt.Errorf("unrecognized relation %q", tok)
	}
}
