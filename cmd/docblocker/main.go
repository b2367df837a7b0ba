package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/termcolor"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const usageText = `docblocker - generate PHP docblocks for declarations

Usage:
  docblocker [--config PATH] <command> [flags]

Commands:
  snippet   print the docblock for an opened /** comment in a file
  scan      list declarations that have no docblock
  fix       insert docblocks above undocumented declarations
  serve     start the HTML playground and JSON API
  version   print the version

Settings are read from --config, $DOCBLOCKER_CONFIG, .docblocker.{yaml,yml,toml,json}
in the working directory or a parent, $XDG_CONFIG_HOME/docblocker/config.*, then
the home directory. DOCBLOCKER_GAP and DOCBLOCKER_EXTRA override the file.
DOCBLOCKER_COLOR and DOCBLOCKER_THEME tune terminal colours; scan --with-link
reads DOCBLOCKER_LINK_REMOTE and DOCBLOCKER_LINK_SCHEME.

Run "docblocker <command> -h" for the flags of a command.
`

// errUsage reports a command line the flag package already complained about.
var errUsage = errors.New("usage error")

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// tty is stdout when it is a real file; colour detection looks at it.
	tty     *os.File
	environ []string

	configPath string
}

func main() {
	log.SetFlags(0)
	a := &app{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		tty:     os.Stdout,
		environ: os.Environ(),
	}
	code, err := a.run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

func (a *app) run(args []string) (int, error) {
	fs := flag.NewFlagSet("docblocker", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usageText) }
	fs.StringVar(&a.configPath, "config", "", "settings file (default: $DOCBLOCKER_CONFIG, then discovery)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, nil
		}
		return 2, nil
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2, nil
	}

	var err error
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "snippet":
		err = a.snippetCmd(cmdArgs)
	case "scan":
		return a.scanCmd(cmdArgs, false)
	case "fix":
		return a.scanCmd(cmdArgs, true)
	case "serve":
		err = a.serveCmd(cmdArgs)
	case "version":
		_, err = fmt.Fprintf(a.stdout, "docblocker %s\n", version)
	case "help":
		_, err = fmt.Fprint(a.stdout, usageText)
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2, nil
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0, nil
	}
	if errors.Is(err, errUsage) {
		return 2, nil
	}
	if err != nil {
		return 1, err
	}
	return 0, nil
}

func (a *app) getenv(key string) string {
	prefix := key + "="
	for i := len(a.environ) - 1; i >= 0; i-- {
		if strings.HasPrefix(a.environ[i], prefix) {
			return a.environ[i][len(prefix):]
		}
	}
	return ""
}

// settings layers the configuration file, the environment and overrides. The
// file is looked up from startDir on every Snapshot call.
func (a *app) settings(startDir string, overrides config.Config) config.Source {
	explicit := a.configPath
	if explicit == "" {
		explicit = a.getenv(config.EnvConfig)
	}
	return config.Layered{
		StartDir:     startDir,
		ExplicitPath: explicit,
		XDGHome:      a.getenv("XDG_CONFIG_HOME"),
		Home:         a.getenv("HOME"),
		Getenv:       a.getenv,
		Overrides:    overrides,
	}
}

func (a *app) palette(mode string) (termcolor.Palette, error) {
	m, err := termcolor.ParseMode(mode)
	if err != nil {
		return termcolor.Palette{}, fmt.Errorf("invalid --color: %w", err)
	}
	return termcolor.NewPalette(m, a.tty, termcolor.EnvMap(a.environ))
}

// newFlagSet returns a subcommand flag set that reports parse errors through
// errUsage.
func (a *app) newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  docblocker %s %s\n\nFlags:\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// settingsFlags registers --gap/--no-gap and --extra, which override the
// configured settings for one invocation.
type settingsFlags struct {
	gap   optionalBool
	noGap bool
	extra stringList
}

func (s *settingsFlags) register(fs *flag.FlagSet) {
	fs.Var(&s.gap, "gap", "leave the blank line after the summary to the editor")
	fs.BoolVar(&s.noGap, "no-gap", false, "write the blank line after the summary into the block")
	fs.Var(&s.extra, "extra", "line appended after the generated tags (repeatable)")
}

func (s *settingsFlags) layer() (config.Config, error) {
	var cfg config.Config
	if s.noGap && s.gap.set && s.gap.value {
		return cfg, errors.New("--gap and --no-gap are mutually exclusive")
	}
	switch {
	case s.noGap:
		v := false
		cfg.Gap = &v
	case s.gap.set:
		v := s.gap.value
		cfg.Gap = &v
	}
	if s.extra.set {
		lines := append([]string(nil), s.extra.values...)
		cfg.Extra = &lines
	}
	return cfg, nil
}

type optionalBool struct {
	set   bool
	value bool
}

func (b *optionalBool) String() string {
	if b == nil || !b.set {
		return ""
	}
	return fmt.Sprint(b.value)
}

func (b *optionalBool) Set(raw string) error {
	v, err := config.ParseBool(raw, "--gap")
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

// stringList collects repeated flag values. An explicit empty value clears
// the list.
type stringList struct {
	set    bool
	values []string
}

func (l *stringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(l.values, ",")
}

func (l *stringList) Set(raw string) error {
	l.set = true
	if raw == "" {
		l.values = nil
		return nil
	}
	l.values = append(l.values, raw)
	return nil
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(raw string) error {
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*m = append(*m, p)
		}
	}
	return nil
}
