package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/phyten/docblocker/internal/execx"
)

var typicalExcludePatterns = []string{
	"vendor/**",
	"node_modules/**",
	"dist/**",
	"build/**",
	"var/cache/**",
	"storage/framework/**",
	"*.min.*",
}

var errNotRepository = errors.New("not a git work tree")

// buildPathspecs builds the arguments following "--" for git ls-files.
func buildPathspecs(includes, excludes []string, typical bool) []string {
	out := make([]string, 0, len(includes)+len(excludes)+len(typicalExcludePatterns)+1)
	for _, raw := range includes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		out = append(out, filepath.ToSlash(trimmed))
	}
	if len(out) == 0 {
		out = append(out, ".")
	}
	if typical {
		for _, p := range typicalExcludePatterns {
			out = append(out, ":(glob,exclude)"+p)
		}
	}
	for _, raw := range excludes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		trimmed = filepath.ToSlash(trimmed)
		if strings.HasPrefix(trimmed, ":!") || strings.HasPrefix(trimmed, ":(exclude)") || strings.HasPrefix(trimmed, ":(glob,exclude)") {
			out = append(out, trimmed)
			continue
		}
		out = append(out, ":(glob,exclude)"+trimmed)
	}
	return out
}

func buildLsFilesArgs(includes, excludes []string, typical bool) []string {
	args := []string{"-c", "core.quotePath=false", "ls-files", "-z", "--cached", "--others", "--exclude-standard", "--"}
	return append(args, buildPathspecs(includes, excludes, typical)...)
}

// CompilePathRegex compiles the --path-regex filters.
func CompilePathRegex(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		rx, err := regexp.Compile(trimmed)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, rx)
	}
	return compiled, nil
}

func filterByPathRegex(files []string, rx []*regexp.Regexp) []string {
	if len(rx) == 0 {
		return files
	}
	out := files[:0]
	for _, f := range files {
		for _, r := range rx {
			if r.MatchString(f) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// listFiles returns repo-relative, slash-separated file names in sorted order.
func listFiles(ctx context.Context, opts Options) ([]string, error) {
	var files []string
	var err error
	switch opts.Lister {
	case ListerGit:
		files, err = gitFiles(ctx, opts)
	case ListerWalk:
		files, err = walkFiles(opts)
	default:
		files, err = gitFiles(ctx, opts)
		if err != nil && (execx.IsNotFound(err) || errors.Is(err, errNotRepository)) {
			files, err = walkFiles(opts)
		}
	}
	if err != nil {
		return nil, err
	}
	files = filterByPathRegex(files, opts.PathRegexCompiled)
	sort.Strings(files)
	return files, nil
}

func gitFiles(ctx context.Context, opts Options) ([]string, error) {
	runner := opts.Runner
	if runner == nil {
		runner = execx.DefaultRunner()
	}
	args := buildLsFilesArgs(opts.Paths, opts.Excludes, opts.ExcludeTypical)
	stdout, stderr, err := runner.Run(ctx, opts.RepoDir, "git", args...)
	if err != nil {
		if execx.IsNotFound(err) {
			return nil, err
		}
		msg := strings.TrimSpace(string(stderr))
		if strings.Contains(msg, "not a git repository") {
			return nil, errNotRepository
		}
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git ls-files: %s", msg)
	}
	var files []string
	seen := make(map[string]struct{})
	for _, raw := range bytes.Split(stdout, []byte{0}) {
		name := filepath.ToSlash(string(raw))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		files = append(files, name)
	}
	return files, nil
}

func walkFiles(opts Options) ([]string, error) {
	root := opts.RepoDir
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	excludes := make([]string, 0, len(opts.Excludes)+len(typicalExcludePatterns))
	for _, e := range opts.Excludes {
		if e = strings.TrimSpace(e); e != "" {
			excludes = append(excludes, strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(e), ":(glob,exclude)"), ":!"))
		}
	}
	if opts.ExcludeTypical {
		excludes = append(excludes, typicalExcludePatterns...)
	}

	includes := opts.Paths
	if len(includes) == 0 {
		includes = []string{"."}
	}
	seen := make(map[string]struct{})
	var files []string
	for _, inc := range includes {
		start := filepath.Join(root, filepath.FromSlash(strings.TrimSpace(inc)))
		err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if d.Name() == ".git" || (rel != "." && excluded(rel+"/", excludes)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || excluded(rel, excludes) {
				return nil
			}
			if _, ok := seen[rel]; !ok {
				seen[rel] = struct{}{}
				files = append(files, rel)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// excluded matches rel against glob patterns. "dir/**" excludes a subtree; a
// pattern without a slash also matches the base name.
func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/**"); ok {
			if strings.HasPrefix(rel, prefix+"/") || strings.Contains(rel, "/"+prefix+"/") {
				return true
			}
			continue
		}
		trimmed := strings.TrimSuffix(rel, "/")
		if ok, _ := path.Match(p, trimmed); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := path.Match(p, path.Base(trimmed)); ok {
				return true
			}
		}
	}
	return false
}
