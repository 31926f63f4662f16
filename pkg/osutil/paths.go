/*
Copyright 2011 Google Inc.

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

// Package osutil provides operating system-specific path information
// for locating razorctl's cache and config files.
package osutil

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// HomeDir returns the path to the user's home directory.
// It returns the empty string if the value isn't known.
func HomeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}

// Username returns the current user's username, as
// reported by the relevant environment variable.
func Username() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("USERNAME")
	}
	return os.Getenv("USER")
}

var cacheDirOnce sync.Once

// CacheDir returns the directory razorctl should use for derived
// artifacts (e.g. intermediate set files), creating it on first call.
// It is overridden by the RAZOR_CACHE_DIR environment variable.
func CacheDir() string {
	cacheDirOnce.Do(makeCacheDir)
	return cacheDir()
}

func cacheDir() string {
	if d := os.Getenv("RAZOR_CACHE_DIR"); d != "" {
		return d
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(HomeDir(), "Library", "Caches", "razor")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return filepath.Join(v, "razor")
			}
		}
		panic("No Windows TEMP or TMP environment variables found; please file a bug report.")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "razor")
	}
	return filepath.Join(HomeDir(), ".cache", "razor")
}

func makeCacheDir() {
	if err := os.MkdirAll(cacheDir(), 0700); err != nil {
		log.Fatalf("could not create cache dir %v: %v", cacheDir(), err)
	}
}

// ConfigDir returns the directory holding razorctl's own config file.
// It is overridden by the RAZOR_CONFIG_DIR environment variable.
func ConfigDir() string {
	if p := os.Getenv("RAZOR_CONFIG_DIR"); p != "" {
		return p
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "razor")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "razor")
	}
	return filepath.Join(HomeDir(), ".config", "razor")
}

// UserConfigPath returns the default path to razorctl's JSON config
// file, read by the import/query/merge/validate/diff subcommands to
// fill in set-file locations omitted on the command line.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "razorctl-config.json")
}

// FindInclude resolves a config file named by a relative path,
// searching in order: the working directory, ConfigDir(), and
// every directory in RAZOR_INCLUDE_PATH (standard PATH-list form).
// Used by jsonconfig's "_fileobj" expansion to locate included files.
func FindInclude(configFile string) (absPath string, err error) {
	if _, err = os.Stat(configFile); err == nil {
		return configFile, nil
	}
	if filepath.IsAbs(configFile) {
		return "", err
	}

	configDir := ConfigDir()
	if _, err = os.Stat(filepath.Join(configDir, configFile)); err == nil {
		return filepath.Join(configDir, configFile), nil
	}

	p := os.Getenv("RAZOR_INCLUDE_PATH")
	for _, d := range strings.Split(p, string(filepath.ListSeparator)) {
		if d == "" {
			continue
		}
		if _, err = os.Stat(filepath.Join(d, configFile)); err == nil {
			return filepath.Join(d, configFile), nil
		}
	}

	return "", os.ErrNotExist
}
