package config

import (
	"errors"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvConfig = "DOCBLOCKER_CONFIG"
	EnvGap    = "DOCBLOCKER_GAP"
	EnvExtra  = "DOCBLOCKER_EXTRA"
)

// FromEnv builds a configuration layer from environment variables.
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config
	var errs []error

	if raw := strings.TrimSpace(getenv(EnvGap)); raw != "" {
		v, err := ParseBool(raw, EnvGap)
		if err != nil {
			errs = append(errs, err)
		} else {
			value := v
			cfg.Gap = &value
		}
	}
	// An explicitly empty value is indistinguishable from unset, so extra
	// lines can only be added from the environment, not cleared.
	if raw := getenv(EnvExtra); strings.TrimSpace(raw) != "" {
		lines := SplitLines(raw)
		cfg.Extra = &lines
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}
