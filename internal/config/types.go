package config

// Config is one configuration layer. Nil fields leave the lower layer alone.
type Config struct {
	Gap   *bool     `yaml:"gap" toml:"gap" json:"gap"`
	Extra *[]string `yaml:"extra" toml:"extra" json:"extra"`
}

// Snapshot is the resolved, read-only view of the settings used while
// building one docblock.
type Snapshot struct {
	// Gap leaves the blank line between summary and tags to the editor.
	// When false the builder writes the blank line itself.
	Gap bool
	// Extra lines are appended verbatim after the generated tags.
	Extra []string
}

func Defaults() Snapshot {
	return Snapshot{Gap: true}
}

// Layer turns a resolved snapshot back into a layer that overrides
// everything.
func (s Snapshot) Layer() Config {
	gap := s.Gap
	extra := cloneStrings(s.Extra)
	if extra == nil {
		extra = []string{}
	}
	return Config{Gap: &gap, Extra: &extra}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
