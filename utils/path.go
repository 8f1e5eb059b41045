// Copyright © NGRSoftlab 2020-2025

package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandPath turns a local file or directory reference into an absolute, cleaned path.
// A leading "~" or "~name" is replaced with the home directory, relative paths are
// joined under base when base is set. Empty input is returned unchanged.
func ExpandPath(path, base string) string {
	if path == "" {
		return path
	}

	expanded := path
	if strings.HasPrefix(expanded, "~") {
		expanded = expandHome(expanded)
	}

	if filepath.VolumeName(expanded) == "" && !strings.HasPrefix(expanded, "/") &&
		!strings.HasPrefix(expanded, string(filepath.Separator)) && base != "" {
		expanded = filepath.Join(base, expanded)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return filepath.Clean(expanded)
	}
	return abs
}

// expandHome resolves "~", "~/rest" and "~name/rest". Unknown users are left untouched.
func expandHome(path string) string {
	name, rest := path[1:], ""
	if i := strings.IndexAny(name, "/"+string(filepath.Separator)); i >= 0 {
		name, rest = name[:i], name[i+1:]
	}

	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}

	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}
