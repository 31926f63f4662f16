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

	"golang.org/x/sync/errgroup"

	"razor.dev/pkg/cmdmain"
	"razor.dev/pkg/feed"
	"razor.dev/pkg/razorset"
)

type importCmd struct {
	out string
}

func init() {
	cmdmain.RegisterCommand("import", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(importCmd)
		flags.StringVar(&cmd.out, "out", "", "Path to write the resulting set file to (default: default_set from -config, if set).")
		registerConfigFlag(flags)
		return cmd
	})
}

func (c *importCmd) Describe() string {
	return "Import a line-oriented feed file into a set file."
}

func (c *importCmd) Usage() {
	fmt.Fprintf(os.Stderr, "Usage: razorctl import -out SET.razor FEED.txt [FEED2.txt ...]\n")
}

func (c *importCmd) Examples() []string {
	return []string{"-out system.razor feed.txt", "-out system.razor base.txt updates.txt"}
}

// importFeed parses one feed file into its own finalized Set, so
// several feed files can be built concurrently before being merged.
func importFeed(path string) (*razorset.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed %s: %w", path, err)
	}
	defer f.Close()

	imp := razorset.NewImporter()
	if err := feed.Import(imp, feed.NewLineSource(f)); err != nil {
		imp.Destroy()
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	set, err := imp.Finish()
	if err != nil {
		imp.Destroy()
		return nil, fmt.Errorf("finishing import of %s: %w", path, err)
	}
	return set, nil
}

func (c *importCmd) RunCommand(args []string) error {
	if len(args) == 0 {
		return cmdmain.UsageError("import takes one or more feed file arguments")
	}
	if c.out == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		c.out = configDefault(cfg, "default_set")
	}
	if c.out == "" {
		return cmdmain.UsageError("-out is required (or set default_set in -config)")
	}

	// Each feed file parses into its own Set independently, so a
	// multi-file import (a distro's base feed plus its updates feed,
	// say) parses its files concurrently rather than one after
	// another.
	sets := make([]*razorset.Set, len(args))
	var g errgroup.Group
	for i, path := range args {
		g.Go(func() error {
			set, err := importFeed(path)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, s := range sets {
			if s != nil {
				s.Close()
			}
		}
		return err
	}

	merged := sets[0]
	for _, upstream := range sets[1:] {
		next, err := razorset.Add(merged, upstream, upstream.AllPackageIndices())
		if err != nil {
			return fmt.Errorf("merging imported feeds: %w", err)
		}
		rebuilt, err := razorset.RebuildFileTree(next, merged, upstream)
		if err != nil {
			return fmt.Errorf("rebuilding file tree after merge: %w", err)
		}
		merged.Close()
		upstream.Close()
		merged = rebuilt
	}
	defer merged.Close()

	if err := merged.Write(c.out); err != nil {
		return fmt.Errorf("writing %s: %w", c.out, err)
	}
	return nil
}
