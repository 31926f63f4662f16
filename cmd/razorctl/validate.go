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

type validateCmd struct {
	upstream string
	out      string
}

func init() {
	cmdmain.RegisterCommand("validate", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(validateCmd)
		flags.StringVar(&cmd.upstream, "upstream", "", "If set, also pull in upstream packages needed to satisfy every unmet requirement (razorset.Update), and write the result to -out.")
		flags.StringVar(&cmd.out, "out", "", "With -upstream, path to write the resolved set file to.")
		registerConfigFlag(flags)
		return cmd
	})
}

func (c *validateCmd) Describe() string {
	return "List unsatisfied requirements in a set, optionally resolving them against an upstream."
}

func (c *validateCmd) Usage() {
	fmt.Fprintf(os.Stderr, "Usage: razorctl validate [-upstream UP.razor -out OUT.razor] SET.razor\n")
}

func (c *validateCmd) Examples() []string {
	return []string{"system.razor", "-upstream repo.razor -out resolved.razor system.razor"}
}

func (c *validateCmd) RunCommand(args []string) error {
	setPath, err := resolveOneSetArg(args, "validate")
	if err != nil {
		return err
	}
	set, err := razorset.Open(setPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", setPath, err)
	}
	defer set.Close()

	if c.upstream == "" {
		return c.report(set)
	}

	if c.out == "" {
		return cmdmain.UsageError("-out is required with -upstream")
	}
	upstream, err := razorset.Open(c.upstream)
	if err != nil {
		return fmt.Errorf("opening upstream %s: %w", c.upstream, err)
	}
	defer upstream.Close()

	resolved, err := razorset.Update(set, upstream, nil)
	if err != nil {
		return fmt.Errorf("updating: %w", err)
	}
	defer resolved.Close()

	if err := resolved.Write(c.out); err != nil {
		return fmt.Errorf("writing %s: %w", c.out, err)
	}
	return c.report(resolved)
}

func (c *validateCmd) report(set *razorset.Set) error {
	unsatisfied := razorset.Validate(set)
	if len(unsatisfied) == 0 {
		fmt.Fprintln(cmdmain.Stdout, "no unsatisfied requirements")
		return nil
	}
	for _, idx := range unsatisfied {
		prop := set.PropertyAt(idx)
		fmt.Fprintf(cmdmain.Stdout, "unsatisfied: %s %s %s\n", set.PropertyName(prop), prop.Relation, set.PropertyVersion(prop))
	}
	return fmt.Errorf("%d unsatisfied requirements", len(unsatisfied))
}
