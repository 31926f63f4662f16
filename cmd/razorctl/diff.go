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

type diffCmd struct{}

func init() {
	cmdmain.RegisterCommand("diff", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		registerConfigFlag(flags)
		return new(diffCmd)
	})
}

func (c *diffCmd) Describe() string {
	return "Print the packages one set has that the other doesn't."
}

func (c *diffCmd) Usage() {
	fmt.Fprintf(os.Stderr, "Usage: razorctl diff A.razor B.razor\n")
}

func (c *diffCmd) Examples() []string {
	return []string{"before.razor after.razor"}
}

func (c *diffCmd) RunCommand(args []string) error {
	aPath, bPath, err := resolveTwoSetArgs(args, "diff")
	if err != nil {
		return err
	}
	a, err := razorset.Open(aPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", aPath, err)
	}
	defer a.Close()

	b, err := razorset.Open(bPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", bPath, err)
	}
	defer b.Close()

	inA := packageSet(a)
	inB := packageSet(b)

	for key := range inA {
		if !inB[key] {
			fmt.Fprintf(cmdmain.Stdout, "- %s\n", key)
		}
	}
	for key := range inB {
		if !inA[key] {
			fmt.Fprintf(cmdmain.Stdout, "+ %s\n", key)
		}
	}
	return nil
}

func packageSet(s *razorset.Set) map[string]bool {
	out := make(map[string]bool)
	for pkg := range s.Packages() {
		out[s.PackageName(pkg)+" "+s.PackageVersion(pkg)] = true
	}
	return out
}
