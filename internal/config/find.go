package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Origin says where a configuration file was found.
type Origin string

const (
	OriginNone     Origin = ""
	OriginExplicit Origin = "explicit"
	OriginCwdUp    Origin = "cwd-up"
	OriginXDG      Origin = "xdg"
	OriginHome     Origin = "home"
)

var (
	configFilenames = []string{
		".docblocker.yaml",
		".docblocker.yml",
		".docblocker.toml",
		".docblocker.json",
	}
	xdgFilenames = []string{
		"config.yaml",
		"config.yml",
		"config.toml",
		"config.json",
	}
)

// Find locates the configuration file. Search order: explicitPath, then
// .docblocker.* in startDir and its parents, then $XDG_CONFIG_HOME/docblocker,
// then the home directory. A missing file is not an error.
func Find(startDir, explicitPath, xdgHome, home string) (string, Origin, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		candidate, err := filepath.Abs(explicit)
		if err != nil {
			return "", OriginNone, err
		}
		info, err := os.Stat(candidate)
		if err != nil {
			return "", OriginNone, err
		}
		if info.IsDir() {
			return "", OriginNone, fmt.Errorf("%s %q points to a directory", EnvConfig, candidate)
		}
		return candidate, OriginExplicit, nil
	}

	start := strings.TrimSpace(startDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", OriginNone, err
	}
	for {
		if candidate, ok := firstExisting(dir, configFilenames); ok {
			return candidate, OriginCwdUp, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	homeDir := resolveHome(home)
	xdgRoot := strings.TrimSpace(xdgHome)
	if xdgRoot == "" && homeDir != "" {
		xdgRoot = filepath.Join(homeDir, ".config")
	}
	if xdgRoot != "" {
		if candidate, ok := firstExisting(filepath.Join(xdgRoot, "docblocker"), xdgFilenames); ok {
			return candidate, OriginXDG, nil
		}
	}
	if homeDir != "" {
		if candidate, ok := firstExisting(homeDir, configFilenames); ok {
			return candidate, OriginHome, nil
		}
	}
	return "", OriginNone, nil
}

func resolveHome(home string) string {
	if h := strings.TrimSpace(home); h != "" {
		return h
	}
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return ""
}

func firstExisting(dir string, names []string) (string, bool) {
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
