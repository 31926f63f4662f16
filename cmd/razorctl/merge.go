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

package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"razor.dev/pkg/cmdmain"
	"razor.dev/pkg/razorset"
)

type mergeCmd struct {
	out         string
	names       string
	rebuildTree bool
}

func init() {
	cmdmain.RegisterCommand("merge", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(mergeCmd)
		flags.StringVar(&cmd.out, "out", "", "Path to write the merged set file to (required).")
		flags.StringVar(&cmd.names, "names", "", "Comma-separated upstream package names to pull in. Default: every upstream package.")
		flags.BoolVar(&cmd.rebuildTree, "files", false, "Also rebuild the file tree for the merged set (an extra pass over both inputs).")
		registerConfigFlag(flags)
		return cmd
	})
}

func (c *mergeCmd) Describe() string {
	return "Merge an upstream set's packages into a base set."
}

func (c *mergeCmd) Usage() {
	fmt.Fprintf(os.Stderr, "Usage: razorctl merge -out OUT.razor BASE.razor UPSTREAM.razor\n")
}

func (c *mergeCmd) Examples() []string {
	return []string{"-out merged.razor system.razor repo.razor"}
}

func (c *mergeCmd) RunCommand(args []string) error {
	if c.out == "" {
		return cmdmain.UsageError("-out is required")
	}
	basePath, upstreamPath, err := resolveTwoSetArgs(args, "merge")
	if err != nil {
		return err
	}

	base, err := razorset.Open(basePath)
	if err != nil {
		return fmt.Errorf("opening base %s: %w", basePath, err)
	}
	defer base.Close()

	upstream, err := razorset.Open(upstreamPath)
	if err != nil {
		return fmt.Errorf("opening upstream %s: %w", upstreamPath, err)
	}
	defer upstream.Close()

	selection := selectUpstream(upstream, c.names)

	merged, err := razorset.Add(base, upstream, selection)
	if err != nil {
		return fmt.Errorf("merging: %w", err)
	}
	defer merged.Close()

	if c.rebuildTree {
		merged, err = razorset.RebuildFileTree(merged, base, upstream)
		if err != nil {
			return fmt.Errorf("rebuilding file tree: %w", err)
		}
	}

	if err := merged.Write(c.out); err != nil {
		return fmt.Errorf("writing %s: %w", c.out, err)
	}
	return nil
}

// selectUpstream returns, in ascending order as razorset.Add expects,
// every upstream package index named in a comma-separated list, or
// every upstream package index if names is empty.
func selectUpstream(upstream *razorset.Set, names string) []int {
	if names == "" {
		var all []int
		i := 0
		for range upstream.Packages() {
			all = append(all, i)
			i++
		}
		return all
	}
	var out []int
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if idx, ok := findIndexByName(upstream, name); ok {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

func findIndexByName(s *razorset.Set, name string) (int, bool) {
	i := 0
	for pkg := range s.Packages() {
		if s.PackageName(pkg) == name {
			return i, true
		}
		i++
	}
	return 0, false
}
