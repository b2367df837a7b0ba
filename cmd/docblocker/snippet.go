package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phyten/docblocker/internal/detect"
	"github.com/phyten/docblocker/internal/documenter"
	"github.com/phyten/docblocker/internal/editor"
	"github.com/phyten/docblocker/internal/matcher"
	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/output"
)

type snippetConfig struct {
	file     string
	line     int
	col      int
	format   string
	apply    bool
	color    string
	lang     string
	settings settingsFlags
}

func (a *app) parseSnippetArgs(args []string) (snippetConfig, error) {
	var cfg snippetConfig
	fs := a.newFlagSet("snippet", "--file F|- --line N [flags]")
	fs.StringVar(&cfg.file, "file", "", "PHP source file, or - for stdin")
	fs.StringVar(&cfg.file, "f", "", "shorthand for --file")
	fs.IntVar(&cfg.line, "line", 0, "1-based line holding the opened /** comment")
	fs.IntVar(&cfg.line, "l", 0, "shorthand for --line")
	fs.IntVar(&cfg.col, "col", 0, "1-based cursor column on that line (default: end of line)")
	fs.StringVar(&cfg.format, "format", "text", "text|snippet|json")
	fs.BoolVar(&cfg.apply, "apply", false, "print the whole file with the docblock inserted")
	fs.StringVar(&cfg.color, "color", "auto", "auto|always|never")
	fs.StringVar(&cfg.lang, "lang", "", "declaration syntax: "+strings.Join(matcher.Languages(), "|")+" (default: detected from the file)")
	cfg.settings.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("snippet: unexpected argument %q", fs.Arg(0))
	}
	if strings.TrimSpace(cfg.file) == "" {
		return cfg, fmt.Errorf("snippet: --file is required")
	}
	if cfg.line < 1 {
		return cfg, fmt.Errorf("snippet: --line must be >= 1")
	}
	if cfg.col < 0 {
		return cfg, fmt.Errorf("snippet: --col must be >= 0")
	}
	cfg.format = strings.ToLower(strings.TrimSpace(cfg.format))
	valid := false
	for _, f := range output.SnippetFormats {
		if cfg.format == f {
			valid = true
		}
	}
	if !valid {
		return cfg, fmt.Errorf("snippet: invalid --format: %s", cfg.format)
	}
	return cfg, nil
}

func (a *app) snippetCmd(args []string) error {
	cfg, err := a.parseSnippetArgs(args)
	if err != nil {
		return err
	}
	return a.runSnippet(cfg)
}

func (a *app) runSnippet(cfg snippetConfig) error {
	data, err := a.readSource(cfg.file)
	if err != nil {
		return err
	}
	lang := detect.NormalizeLangName(cfg.lang)
	if lang == "" {
		lang = detect.FromPathAndContent(cfg.file, data).Name
	}
	if lang == "" {
		lang = "php"
	}
	reg, ok := matcher.ForLanguage(lang, model.DefaultPlaceholders())
	if !ok {
		return fmt.Errorf("snippet: no declaration matchers for language %q", lang)
	}
	overrides, err := cfg.settings.layer()
	if err != nil {
		return err
	}
	startDir := "."
	if cfg.file != "-" {
		startDir = filepath.Dir(cfg.file)
	}
	palette, err := a.palette(cfg.color)
	if err != nil {
		return err
	}

	buf := editor.NewBuffer(string(data))
	trigger := editor.Position{Line: cfg.line - 1}
	line, err := buf.LineAt(trigger.Line)
	if err != nil {
		return fmt.Errorf("snippet: %w", err)
	}
	trigger.Col = len(line)
	if cfg.col > 0 && cfg.col-1 < len(line) {
		trigger.Col = cfg.col - 1
	}

	d, err := documenter.New(buf, a.settings(startDir, overrides), reg, trigger)
	if err != nil {
		return err
	}
	if !d.IsValid() {
		if cfg.format == "json" && !cfg.apply {
			return output.WriteSnippet(a.stdout, "json", output.NewSnippetReport(model.KindUnknown, "", model.Doc{}, nil), nil, palette)
		}
		return fmt.Errorf("%s:%d: %w", cfg.file, cfg.line, documenter.ErrNotApplicable)
	}
	m := d.Describe()
	s, err := d.BuildSnippet(m.Doc)
	if err != nil {
		return err
	}
	if cfg.apply {
		if err := d.InsertSnippet(s); err != nil {
			return err
		}
		_, err := io.WriteString(a.stdout, buf.Text())
		return err
	}
	return output.WriteSnippet(a.stdout, cfg.format, output.NewSnippetReport(m.Kind, m.Name, m.Doc, s), s, palette)
}

func (a *app) readSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(path)
}
