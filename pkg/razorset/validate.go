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
	"sort"
	"strings"

	"razor.dev/internal/chanworker"
	"razor.dev/internal/versioncmp"
	"razor.dev/pkg/lru"
	"razor.dev/pkg/refword"
)

// providerCacheSize bounds the per-Validate-call memoization cache of
// findProvider results. Large feeds routinely have many packages
// requiring the same (name, relation, version) triple (a shared libc
// or interpreter dependency, say), so repeat lookups within a single
// scan are common; the cache is keyed on the triple, not on the
// property index, so it pays off across the whole requirement scan.
const providerCacheSize = 4096

type providerResult struct {
	prop  Property
	found bool
}

// Validate scans every REQUIRES property in s and returns the indices
// of those with no satisfying PROVIDES entry, per spec.md §4.I. File
// requirements (name begins with "/") are skipped, matching the
// source's acknowledged simplification.
//
// Rather than spec.md's literal single sliding pointer, each
// requirement is resolved with a binary search (findProvider) — the
// same trade a caller of GetProperty already makes. It relies on the
// properties being sorted by name payload (by the finalizer, or by Add
// for a merged set) and costs O(log n) per requirement instead of the
// sliding pointer's single linear pass.
func Validate(s *Set) []int {
	cache := lru.New(providerCacheSize)
	var unsatisfied []int
	n := s.propertyCount()
	for r := 0; r < n; r++ {
		req := s.getPropertyAt(r)
		if req.Name.Kind() != refword.Requires {
			continue
		}
		name := s.strings.String(req.Name.Payload())
		if strings.HasPrefix(name, "/") {
			continue
		}
		if _, ok := findProviderCached(s, cache, name, req.Relation, s.strings.String(req.Version)); !ok {
			unsatisfied = append(unsatisfied, r)
		}
	}
	return unsatisfied
}

// findProviderCached wraps findProvider with a memoization cache keyed
// on (name, relation, want); see providerCacheSize.
func findProviderCached(s *Set, cache *lru.Cache, name string, relation Relation, want string) (Property, bool) {
	key := name + "\x00" + relation.String() + "\x00" + want
	if v, ok := cache.Get(key); ok {
		r := v.(providerResult)
		return r.prop, r.found
	}
	prop, found := findProvider(s, name, relation, want)
	cache.Add(key, providerResult{prop, found})
	return prop, found
}

// findProvider locates the highest-versioned PROVIDES property named
// name in s whose version satisfies relation against want, by binary
// search to the start of name's run followed by a linear scan of the
// whole run that keeps the satisfying entry with the greatest version
// by versioncmp.
func findProvider(s *Set, name string, relation Relation, want string) (Property, bool) {
	off, ok := s.strings.Lookup(name)
	if !ok {
		return Property{}, false
	}
	n := s.propertyCount()
	idx := sort.Search(n, func(i int) bool {
		return s.getPropertyAt(i).Name.Payload() >= off
	})
	var best Property
	found := false
	for k := idx; k < n; k++ {
		p := s.getPropertyAt(k)
		if p.Name.Payload() != off {
			break
		}
		if p.Name.Kind() != refword.Provides {
			continue
		}
		version := s.strings.String(p.Version)
		if !relation.satisfiedBy(versioncmp.Compare(version, want)) {
			continue
		}
		if !found || versioncmp.Compare(version, s.strings.String(best.Version)) > 0 {
			best = p
			found = true
		}
	}
	return best, found
}

// firstRefValue returns the first payload in the reference list ref
// (pool t), without walking the rest of the list.
func firstRefValue(s *Set, t sectionType, ref refword.Word) (uint32, bool) {
	if ref == noRef {
		return 0, false
	}
	if ref.IsImmediate() {
		return ref.Payload(), true
	}
	buf := s.section(t).Bytes()
	return poolWordAt(buf, int(ref.Payload())).Payload(), true
}

// Satisfy re-runs the requirement scan against upstream for every
// index named in unsatisfied (indices into s's own property array) and
// returns the upstream package index providing each matched
// requirement — the first entry of the matching property's packages
// list, per spec.md §4.I.
func Satisfy(s *Set, unsatisfied []int, upstream *Set) []int {
	cache := lru.New(providerCacheSize)
	seen := make(map[int]bool)
	var pkgIdxs []int
	for _, reqIdx := range unsatisfied {
		req := s.getPropertyAt(reqIdx)
		name := s.strings.String(req.Name.Payload())
		version := s.strings.String(req.Version)
		prov, ok := findProviderCached(upstream, cache, name, req.Relation, version)
		if !ok {
			continue
		}
		pkgIdx, ok := firstRefValue(upstream, sectionPackagePool, prov.Packages)
		if !ok {
			continue
		}
		if !seen[int(pkgIdx)] {
			seen[int(pkgIdx)] = true
			pkgIdxs = append(pkgIdxs, int(pkgIdx))
		}
	}
	return pkgIdxs
}

// initialSelection picks upstream's starting candidates for Update: the
// packages named explicitly, or — when names is empty — every upstream
// package whose name already exists in a.
func initialSelection(a, upstream *Set, names []string) []int {
	var out []int
	if len(names) > 0 {
		for _, name := range names {
			if pkg, ok := findPackageByName(upstream, name); ok {
				out = append(out, pkg)
			}
		}
		return out
	}
	n := upstream.packageCount()
	for i := 0; i < n; i++ {
		name := upstream.strings.String(upstream.getPackageAt(i).Name)
		if _, ok := a.GetPackage(name); ok {
			out = append(out, i)
		}
	}
	return out
}

// findPackageByName returns the index (not the record) of the first
// package named name, for callers that need an index into a selection
// slice rather than the record GetPackage returns.
func findPackageByName(s *Set, name string) (int, bool) {
	n := s.packageCount()
	idx := sort.Search(n, func(i int) bool {
		return s.strings.String(s.getPackageAt(i).Name) >= name
	})
	if idx >= n || s.strings.String(s.getPackageAt(idx).Name) != name {
		return 0, false
	}
	return idx, true
}

// Update implements spec.md §4.I's fixed-point loop: select candidates
// from upstream (initialSelection), merge them in with Add, validate
// the result, and call Satisfy for anything still unmet — feeding
// Satisfy's output back in as the next round's selection — until a
// round pulls in nothing new.
func Update(a, upstream *Set, names []string) (*Set, error) {
	cur := a
	selection := initialSelection(cur, upstream, names)
	for len(selection) > 0 {
		sort.Ints(selection)
		merged, err := Add(cur, upstream, selection)
		if err != nil {
			return nil, err
		}
		cur = merged
		unsatisfied := Validate(cur)
		if len(unsatisfied) == 0 {
			break
		}
		selection = selection[:0]
		for _, idx := range Satisfy(cur, unsatisfied, upstream) {
			p := upstream.getPackageAt(idx)
			if _, ok := findPackageExact(cur, upstream.strings.String(p.Name), upstream.strings.String(p.Version)); !ok {
				selection = append(selection, idx)
			}
		}
	}
	return cur, nil
}

// UpdateAll runs Update against several candidate upstream sets in
// turn — e.g. a distro's base and updates repositories. The expensive
// part of each round's initial selection (scanning every package in a
// possibly large upstream for a name already present in a) is computed
// for every candidate concurrently over internal/chanworker's bounded
// pool (SPEC_FULL.md §4.I / §5); the selections are then applied
// sequentially, each Update call chained off the previous one's result,
// since a later upstream's relevant names can change once an earlier
// upstream's packages have been merged in.
func UpdateAll(a *Set, upstreams []*Set, names []string) (*Set, error) {
	type job struct {
		i        int
		upstream *Set
	}
	type result struct {
		i      int
		names  []string
		direct bool
	}

	resc := make(chan result, len(upstreams))
	nWorkers := len(upstreams)
	if nWorkers == 0 {
		return a, nil
	}
	workc := chanworker.NewWorker(nWorkers, func(el interface{}, ok bool) {
		if !ok {
			return
		}
		j := el.(job)
		if len(names) > 0 {
			resc <- result{i: j.i, names: names, direct: true}
			return
		}
		sel := initialSelection(a, j.upstream, nil)
		selNames := make([]string, 0, len(sel))
		for _, idx := range sel {
			selNames = append(selNames, j.upstream.strings.String(j.upstream.getPackageAt(idx).Name))
		}
		resc <- result{i: j.i, names: selNames}
	})
	for i, u := range upstreams {
		workc <- job{i: i, upstream: u}
	}
	close(workc)

	perUpstreamNames := make([][]string, len(upstreams))
	for range upstreams {
		r := <-resc
		perUpstreamNames[r.i] = r.names
	}

	cur := a
	for i, u := range upstreams {
		merged, err := Update(cur, u, perUpstreamNames[i])
		if err != nil {
			return nil, err
		}
		cur = merged
	}
	return cur, nil
}
