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
	"os"

	"razor.dev/pkg/cmdmain"
	"razor.dev/pkg/jsonconfig"
	"razor.dev/pkg/osutil"
)

// configFlag holds the path given to -config, shared across every
// subcommand so a single config file can supply default set-file
// locations instead of repeating full paths on every invocation.
var configFlag string

func registerConfigFlag(flags *flag.FlagSet) {
	flags.StringVar(&configFlag, "config", "", "Path to a JSON config file of default set-file locations (default: "+osutil.UserConfigPath()+", if present).")
}

// loadConfig reads the file named by -config. With no -config flag,
// it falls back to the default user config path, returning an empty
// config (not an error) if that default file doesn't exist; a path
// named explicitly via -config that's missing is an error.
func loadConfig() (jsonconfig.Obj, error) {
	path := configFlag
	if path == "" {
		path = osutil.UserConfigPath()
		if _, err := os.Stat(path); err != nil {
			return jsonconfig.Obj{}, nil
		}
	}
	return jsonconfig.ReadFile(path)
}

// configDefault returns cfg[key] as a string, or "" if absent or not
// a string. It never calls cfg.Validate, so unrelated config keys
// used by other subcommands don't trigger "unknown key" errors here.
func configDefault(cfg jsonconfig.Obj, key string) string {
	return cfg.OptionalString(key, "")
}

// resolveOneSetArg returns the single set-file path a subcommand
// operates on: args[0] if given, else the config's default_set.
func resolveOneSetArg(args []string, mode string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if len(args) != 0 {
		return "", cmdmain.UsageError(mode + " takes at most one set file argument")
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if path := configDefault(cfg, "default_set"); path != "" {
		return path, nil
	}
	return "", cmdmain.UsageError(mode + " requires a set file argument (or default_set in -config)")
}

// resolveTwoSetArgs returns the pair of set-file paths a subcommand
// like merge or diff operates on: args[0]/args[1] if both are given,
// else the config's default_set/default_upstream.
func resolveTwoSetArgs(args []string, mode string) (a, b string, err error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	if len(args) != 0 {
		return "", "", cmdmain.UsageError(mode + " takes exactly two set file arguments, or none with default_set/default_upstream in -config")
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", "", err
	}
	a = configDefault(cfg, "default_set")
	b = configDefault(cfg, "default_upstream")
	if a == "" || b == "" {
		return "", "", cmdmain.UsageError(mode + " requires two set file arguments (or default_set/default_upstream in -config)")
	}
	return a, b, nil
}
