package config

import "fmt"

// Source supplies the current settings. Implementations must not cache: every
// call reflects the settings as they are at that moment.
type Source interface {
	Snapshot() (Snapshot, error)
}

// Static always returns the same settings.
type Static Snapshot

func (s Static) Snapshot() (Snapshot, error) {
	return Snapshot{Gap: s.Gap, Extra: cloneStrings(s.Extra)}, nil
}

// Layered resolves defaults, the configuration file, the environment and
// Overrides, in that order, on every call.
type Layered struct {
	StartDir     string
	ExplicitPath string
	XDGHome      string
	Home         string
	Getenv       func(string) string
	Overrides    Config
}

func (l Layered) Snapshot() (Snapshot, error) {
	path, _, err := Find(l.StartDir, l.ExplicitPath, l.XDGHome, l.Home)
	if err != nil {
		return Snapshot{}, fmt.Errorf("find config: %w", err)
	}
	fileCfg, err := Load(path)
	if err != nil {
		return Snapshot{}, err
	}
	envCfg, err := FromEnv(l.Getenv)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Merge(Defaults(), fileCfg, envCfg, l.Overrides)
	if err := Validate(snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// WithOverrides layers cfgs over whatever src returns. The result is
// validated again since the overrides may carry new extra lines.
func WithOverrides(src Source, cfgs ...Config) Source {
	return overridden{base: src, layers: cfgs}
}

type overridden struct {
	base   Source
	layers []Config
}

func (o overridden) Snapshot() (Snapshot, error) {
	base, err := o.base.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Merge(base, o.layers...)
	if err := Validate(snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
