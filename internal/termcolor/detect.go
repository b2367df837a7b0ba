package termcolor

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type ColorMode int

const (
	ModeAuto ColorMode = iota
	ModeAlways
	ModeNever
)

// EnvColor overrides --color when set to always, never or auto.
const EnvColor = "DOCBLOCKER_COLOR"

func (m ColorMode) String() string {
	switch m {
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "auto"
	}
}

func ParseMode(v string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAuto, fmt.Errorf("unknown color mode: %s", v)
	}
}

type Profile int

const (
	ProfileBasic8 Profile = iota
	ProfileANSI256
	ProfileTrueColor
)

func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		key, value, _ := strings.Cut(entry, "=")
		env[key] = value
	}
	return env
}

// DetectMode resolves ModeAuto. First match wins:
//  1. TERM=dumb, NO_COLOR or CLICOLOR=0 disable colours.
//  2. CLICOLOR_FORCE or FORCE_COLOR with a non-zero value enables them.
//  3. Otherwise colours follow whether stdout is a terminal.
func DetectMode(stdout *os.File, env map[string]string) ColorMode {
	if stdout == nil {
		return ModeNever
	}
	if strings.EqualFold(strings.TrimSpace(env["TERM"]), "dumb") ||
		strings.TrimSpace(env["NO_COLOR"]) != "" ||
		strings.TrimSpace(env["CLICOLOR"]) == "0" {
		return ModeNever
	}
	if forceColor(env["CLICOLOR_FORCE"]) || forceColor(env["FORCE_COLOR"]) {
		return ModeAlways
	}
	if isTerminal(stdout) {
		return ModeAlways
	}
	return ModeNever
}

// Enabled reports whether colours should be emitted for mode. ModeAuto only
// looks at stdout.
func Enabled(mode ColorMode, stdout *os.File) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		return isTerminal(stdout)
	}
}

func DetectProfile(env map[string]string) Profile {
	if v := strings.ToLower(strings.TrimSpace(env["COLORTERM"])); v != "" {
		if strings.Contains(v, "truecolor") || strings.Contains(v, "24bit") || strings.Contains(v, "24-bit") {
			return ProfileTrueColor
		}
	}
	if v := strings.ToLower(strings.TrimSpace(env["TERM"])); strings.Contains(v, "256color") {
		return ProfileANSI256
	}
	return ProfileBasic8
}

type Palette struct {
	Enabled bool
	Scheme  Scheme
	Profile Profile
}

// NewPalette resolves flagMode, the DOCBLOCKER_COLOR override and the
// environment into a palette for stdout.
func NewPalette(flagMode ColorMode, stdout *os.File, env map[string]string) (Palette, error) {
	mode := flagMode
	if raw := strings.TrimSpace(env[EnvColor]); raw != "" && flagMode == ModeAuto {
		m, err := ParseMode(raw)
		if err != nil {
			return Palette{}, fmt.Errorf("%s: %w", EnvColor, err)
		}
		mode = m
	}
	if mode == ModeAuto {
		mode = DetectMode(stdout, env)
	}
	return Palette{
		Enabled: mode == ModeAlways,
		Scheme:  DetectScheme(env),
		Profile: DetectProfile(env),
	}, nil
}

func (p Palette) Paint(s Style, text string) string {
	return Apply(s, text, p.Enabled)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func forceColor(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}
