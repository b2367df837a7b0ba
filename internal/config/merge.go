package config

import (
	"fmt"
	"strings"
)

// Merge applies layers over base in order; later layers win.
func Merge(base Snapshot, layers ...Config) Snapshot {
	out := Snapshot{Gap: base.Gap, Extra: cloneStrings(base.Extra)}
	for _, layer := range layers {
		out.Gap = ResolveBool(out.Gap, layer.Gap)
		out.Extra = ResolveStrings(out.Extra, layer.Extra)
	}
	return out
}

// Validate rejects settings that would corrupt the generated block.
func Validate(s Snapshot) error {
	for i, line := range s.Extra {
		if strings.ContainsAny(line, "\r\n") {
			return fmt.Errorf("extra[%d]: line breaks are not allowed", i)
		}
		if strings.Contains(line, "*/") {
			return fmt.Errorf("extra[%d]: %q would close the comment", i, line)
		}
	}
	return nil
}
