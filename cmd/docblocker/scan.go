package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/phyten/docblocker/internal/engine"
	"github.com/phyten/docblocker/internal/engine/opts"
	"github.com/phyten/docblocker/internal/output"
	"github.com/phyten/docblocker/internal/progress"
)

type scanConfig struct {
	opts     engine.Options
	output   string
	fields   string
	withText bool
	sortKey  string
	color    string
	truncate int
	check    bool
	progress bool
	noProg   bool
	settings settingsFlags
}

func (a *app) parseScanArgs(args []string, fix bool) (scanConfig, error) {
	name, synopsis := "scan", "[flags] [paths...]"
	if fix {
		name, synopsis = "fix", "[--dry-run] [flags] [paths...]"
	}
	cfg := scanConfig{opts: opts.Defaults(".")}
	cfg.opts.Fix = fix

	fs := a.newFlagSet(name, synopsis)
	var kinds, excludes, pathRegex, langs multiFlag
	var lister string
	var noTypical bool
	fs.StringVar(&cfg.opts.RepoDir, "repo", ".", "root directory to scan")
	fs.Var(&kinds, "kind", strings.Join(engine.KindNames(), "|")+" (repeatable, comma separated)")
	fs.Var(&kinds, "k", "shorthand for --kind")
	fs.Var(&excludes, "exclude", "glob to skip (repeatable)")
	fs.Var(&pathRegex, "path-regex", "only files whose path matches (repeatable)")
	fs.Var(&langs, "detect-langs", "only files detected as these languages")
	fs.BoolVar(&noTypical, "no-exclude-typical", false, "also scan vendor/, node_modules/ and similar")
	fs.StringVar(&lister, "lister", string(engine.ListerAuto), "auto|git|walk")
	fs.IntVar(&cfg.opts.MaxFileBytes, "max-file-bytes", 0, "skip files larger than N bytes (0 = no limit)")
	fs.IntVar(&cfg.opts.Jobs, "jobs", cfg.opts.Jobs, "max parallel workers")
	fs.IntVar(&cfg.opts.Jobs, "j", cfg.opts.Jobs, "shorthand for --jobs")
	fs.BoolVar(&cfg.progress, "progress", false, "force progress even when piped")
	fs.BoolVar(&cfg.noProg, "no-progress", false, "disable progress")
	fs.StringVar(&cfg.color, "color", "auto", "auto|always|never")
	fs.BoolVar(&cfg.opts.WithLink, "with-link", false, "attach a blob URL for the remote at HEAD to each finding")
	if fix {
		fs.BoolVar(&cfg.opts.DryRun, "dry-run", false, "print a unified diff instead of writing files")
		cfg.settings.register(fs)
	} else {
		fs.StringVar(&cfg.output, "output", "table", strings.Join(opts.OutputFormats, "|"))
		fs.StringVar(&cfg.output, "o", "table", "shorthand for --output")
		fs.StringVar(&cfg.fields, "fields", "", "comma separated columns (kind,name,file,line,location,lang,params,fixed,text,url)")
		fs.BoolVar(&cfg.withText, "with-text", false, "add the declaration line to the default columns")
		fs.StringVar(&cfg.sortKey, "sort", "", "sort keys, e.g. -kind,name (kind,name,file,line,params,location)")
		fs.IntVar(&cfg.truncate, "truncate", 80, "truncate the text column in tables to N cells (0 = unlimited)")
		fs.BoolVar(&cfg.check, "check", false, "exit with status 1 when undocumented declarations are found")
	}
	if err := parseFlags(fs, args); err != nil {
		return cfg, err
	}

	cfg.opts.Paths = fs.Args()
	cfg.opts.Kinds = kinds
	cfg.opts.Excludes = excludes
	cfg.opts.PathRegex = pathRegex
	cfg.opts.DetectLangs = langs
	cfg.opts.ExcludeTypical = !noTypical
	cfg.opts.Lister = engine.Lister(lister)
	if err := opts.NormalizeAndValidate(&cfg.opts); err != nil {
		return cfg, err
	}
	if !fix {
		out, err := opts.NormalizeOutput(cfg.output)
		if err != nil {
			return cfg, err
		}
		cfg.output = out
		if cfg.truncate < 0 {
			return cfg, fmt.Errorf("--truncate must be >= 0")
		}
	}
	return cfg, nil
}

func (a *app) scanCmd(args []string, fix bool) (int, error) {
	cfg, err := a.parseScanArgs(args, fix)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0, nil
		case errors.Is(err, errUsage):
			return 2, nil
		}
		return 1, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return a.runScan(ctx, cfg)
}

func (a *app) runScan(ctx context.Context, cfg scanConfig) (int, error) {
	o := cfg.opts
	if o.Fix {
		overrides, err := cfg.settings.layer()
		if err != nil {
			return 1, err
		}
		o.Settings = a.settings(o.RepoDir, overrides)
	}
	o.Progress = progress.ShouldShowProgress(cfg.progress, cfg.noProg)
	if o.WithLink {
		o.LinkRemote = a.getenv("DOCBLOCKER_LINK_REMOTE")
		o.LinkScheme = a.getenv("DOCBLOCKER_LINK_SCHEME")
	}

	// Resolve everything that can fail before the run starts.
	var sel output.FieldSelection
	var spec output.SortSpec
	var err error
	if !o.Fix {
		fields := cfg.fields
		if fields == "" && o.WithLink {
			fields = "kind,name,location,url"
			if cfg.withText {
				fields = "kind,name,location,text,url"
			}
		}
		if sel, err = output.ResolveFields(fields, cfg.withText); err != nil {
			return 1, err
		}
		if spec, err = output.ParseSortSpec(cfg.sortKey); err != nil {
			return 1, err
		}
	}
	palette, err := a.palette(cfg.color)
	if err != nil {
		return 1, err
	}

	res, err := engine.Run(ctx, o)
	if err != nil {
		return 1, err
	}

	if o.Fix {
		if err := writeChanges(a.stdout, res, o.DryRun); err != nil {
			return 1, err
		}
		if err := output.WriteSummary(a.stderr, res, true); err != nil {
			return 1, err
		}
	} else {
		output.ApplySort(res.Findings, spec)
		if err := output.Write(a.stdout, cfg.output, res, sel, output.TableOptions{Palette: palette, MaxText: cfg.truncate}); err != nil {
			return 1, err
		}
		if cfg.output == "table" {
			if err := output.WriteSummary(a.stderr, res, false); err != nil {
				return 1, err
			}
		}
	}
	if err := output.WriteErrors(a.stderr, res.Errors); err != nil {
		return 1, err
	}

	switch {
	case res.ErrorCount > 0:
		return 1, nil
	case cfg.check && res.Total > 0:
		return 1, nil
	}
	return 0, nil
}

// writeChanges lists the files fix touched, or prints their diffs in dry-run
// mode.
func writeChanges(w io.Writer, res *engine.Result, dryRun bool) error {
	for _, c := range res.Changes {
		if dryRun {
			if _, err := io.WriteString(w, c.Diff); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "fixed %s (+%d)\n", c.File, c.Inserted); err != nil {
			return err
		}
	}
	return nil
}
