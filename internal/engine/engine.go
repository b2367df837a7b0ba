package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/detect"
	"github.com/phyten/docblocker/internal/editor"
	"github.com/phyten/docblocker/internal/matcher"
	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/progress"
)

// Run lists the files selected by opts, reports declarations without a
// docblock and, in fix mode, inserts generated docblocks.
//
// Per-file failures are collected in Result.Errors; the returned error is
// reserved for problems that prevent the run as a whole.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if strings.TrimSpace(opts.RepoDir) == "" {
		opts.RepoDir = "."
	}
	if opts.Settings == nil {
		opts.Settings = config.Static(config.Defaults())
	}
	if opts.Placeholders == (model.Placeholders{}) {
		opts.Placeholders = model.DefaultPlaceholders()
	}
	kinds, err := ParseKinds(opts.Kinds)
	if err != nil {
		return nil, err
	}
	if opts.PathRegexCompiled == nil && len(opts.PathRegex) > 0 {
		if opts.PathRegexCompiled, err = CompilePathRegex(opts.PathRegex); err != nil {
			return nil, fmt.Errorf("invalid --path-regex: %w", err)
		}
	}
	if opts.Fix {
		// A broken config file fails the whole run.
		if _, err := opts.Settings.Snapshot(); err != nil {
			return nil, err
		}
	}

	files, err := listFiles(ctx, opts)
	if err != nil {
		return nil, err
	}

	observer := opts.ProgressObserver
	if observer == nil {
		if opts.Progress {
			observer = progress.NewAutoObserver(os.Stderr)
		} else {
			observer = progress.NoopObserver{}
		}
	}
	tracker := progress.NewTracker(len(files), progress.Config{})
	if opts.Fix {
		tracker.SetStage(progress.StageFix)
	}

	outcomes := make([]fileOutcome, len(files))
	type job struct {
		idx  int
		file string
	}
	jobs := make(chan job)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			out := processFile(opts, kinds, j.file)
			outcomes[j.idx] = out
			if snap, notify := tracker.Advance(1, len(out.findings)); notify {
				observer.Publish(snap)
			}
		}
	}

	nw := opts.Jobs
	if nw > len(files) {
		nw = len(files)
	}
	if nw < 1 {
		nw = 1
	}
	wg.Add(nw)
	for i := 0; i < nw; i++ {
		go worker()
	}
feed:
	for i, f := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{idx: i, file: f}:
		}
	}
	close(jobs)
	wg.Wait()
	observer.Done(tracker.Complete())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Findings: []Finding{}}
	for _, out := range outcomes {
		if out.scanned {
			res.Files++
		}
		res.Findings = append(res.Findings, out.findings...)
		res.Errors = append(res.Errors, out.errs...)
		if out.change != nil {
			res.Changes = append(res.Changes, *out.change)
			res.Fixed += out.change.Inserted
		}
	}

	sort.SliceStable(res.Findings, func(i, j int) bool {
		if res.Findings[i].File == res.Findings[j].File {
			return res.Findings[i].Line < res.Findings[j].Line
		}
		return res.Findings[i].File < res.Findings[j].File
	})
	if opts.WithLink && len(res.Findings) > 0 {
		if err := addLinks(ctx, opts, res.Findings); err != nil {
			res.Errors = append(res.Errors, newItemError("", 0, "link", err))
		}
	}
	sort.Slice(res.Errors, func(i, j int) bool {
		if res.Errors[i].File == res.Errors[j].File {
			if res.Errors[i].Line == res.Errors[j].Line {
				return res.Errors[i].Stage < res.Errors[j].Stage
			}
			return res.Errors[i].Line < res.Errors[j].Line
		}
		return res.Errors[i].File < res.Errors[j].File
	})
	res.Total = len(res.Findings)
	res.ErrorCount = len(res.Errors)
	res.ElapsedMS = msSince(start)
	return res, nil
}

type fileOutcome struct {
	scanned  bool
	findings []Finding
	change   *FileChange
	errs     []ItemError
}

func newItemError(file string, line int, stage string, err error) ItemError {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return ItemError{File: file, Line: line, Stage: stage, Message: msg}
}

func processFile(opts Options, kinds map[model.Kind]bool, rel string) fileOutcome {
	var out fileOutcome
	abs := filepath.Join(opts.RepoDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		// git ls-files still lists tracked files deleted from the work tree.
		if !errors.Is(err, fs.ErrNotExist) {
			out.errs = append(out.errs, newItemError(rel, 0, "stat", err))
		}
		return out
	}
	if !info.Mode().IsRegular() {
		return out
	}
	if opts.MaxFileBytes > 0 && info.Size() > int64(opts.MaxFileBytes) {
		return out
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		out.errs = append(out.errs, newItemError(rel, 0, "read", err))
		return out
	}
	lang := detect.FromPathAndContent(rel, data)
	if !detect.KnownLanguage(lang.Name) || !detect.MatchesLang(lang, opts.DetectLangs) {
		return out
	}
	canon := detect.NormalizeLangName(lang.Name)
	reg, ok := matcher.ForLanguage(canon, opts.Placeholders)
	if !ok {
		return out
	}
	out.scanned = true

	text := string(data)
	buf := editor.NewBuffer(text)
	decls := FindUndocumented(buf, reg, kinds)
	for _, d := range decls {
		out.findings = append(out.findings, Finding{
			File:   rel,
			Line:   d.Line + 1,
			Kind:   d.Match.Kind,
			Name:   d.Match.Name,
			Lang:   canon,
			Text:   d.Text,
			Params: len(d.Match.Doc.Params),
			Fixed:  opts.Fix,
		})
	}
	if !opts.Fix || len(decls) == 0 {
		return out
	}

	n, err := FixAll(buf, decls, reg, opts.Settings)
	if err != nil {
		out.errs = append(out.errs, newItemError(rel, 0, "fix", err))
		for i := range out.findings {
			out.findings[i].Fixed = false
		}
		return out
	}
	updated := buf.Text()
	change := &FileChange{File: rel, Inserted: n}
	if opts.DryRun {
		change.Diff = UnifiedDiff(rel, text, updated)
		for i := range out.findings {
			out.findings[i].Fixed = false
		}
	} else {
		if err := os.WriteFile(abs, []byte(updated), info.Mode().Perm()); err != nil {
			out.errs = append(out.errs, newItemError(rel, 0, "write", err))
			for i := range out.findings {
				out.findings[i].Fixed = false
			}
			return out
		}
		change.Written = true
	}
	out.change = change
	return out
}

// UnifiedDiff renders a git-style diff of one file.
func UnifiedDiff(name, before, after string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}

func msSince(t time.Time) int64 { return time.Since(t).Milliseconds() }
