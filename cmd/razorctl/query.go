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

	"razor.dev/pkg/cmdmain"
	"razor.dev/pkg/razorset"
)

type queryCmd struct {
	pkg   string
	files bool
}

func init() {
	cmdmain.RegisterCommand("query", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(queryCmd)
		flags.StringVar(&cmd.pkg, "pkg", "", "Show this package's properties (and, with -files, its files). Omit to list every package.")
		flags.BoolVar(&cmd.files, "files", false, "With -pkg, also print its file list.")
		registerConfigFlag(flags)
		return cmd
	})
}

func (c *queryCmd) Describe() string {
	return "Query a set file: list packages, or show one package's properties."
}

func (c *queryCmd) Usage() {
	fmt.Fprintf(os.Stderr, "Usage: razorctl query [-pkg NAME [-files]] SET.razor\n")
}

func (c *queryCmd) Examples() []string {
	return []string{"system.razor", "-pkg glibc system.razor"}
}

func (c *queryCmd) RunCommand(args []string) error {
	setPath, err := resolveOneSetArg(args, "query")
	if err != nil {
		return err
	}
	set, err := razorset.Open(setPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", setPath, err)
	}
	defer set.Close()

	if c.pkg == "" {
		for pkg := range set.Packages() {
			fmt.Fprintf(cmdmain.Stdout, "%s %s\n", set.PackageName(pkg), set.PackageVersion(pkg))
		}
		return nil
	}

	pkg, ok := set.GetPackage(c.pkg)
	if !ok {
		return fmt.Errorf("%w: package %q", razorset.ErrNotFound, c.pkg)
	}
	for prop := range set.PropertiesOf(pkg) {
		fmt.Fprintf(cmdmain.Stdout, "  %s %s %s %s\n", prop.Name.Kind(), set.PropertyName(prop), prop.Relation, set.PropertyVersion(prop))
	}
	if c.files {
		for _, path := range set.ListPackageFiles(pkg) {
			fmt.Fprintf(cmdmain.Stdout, "  file %s\n", path)
		}
	}
	return nil
}
