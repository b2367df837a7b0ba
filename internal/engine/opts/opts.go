package opts

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/detect"
	"github.com/phyten/docblocker/internal/engine"
)

const (
	maxJobs = 64
)

// Defaults returns the shared baseline options for both CLI and Web inputs.
func Defaults(repoDir string) engine.Options {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 1
	}
	if jobs > maxJobs {
		jobs = maxJobs
	}
	return engine.Options{
		Jobs:           jobs,
		RepoDir:        repoDir,
		Lister:         engine.ListerAuto,
		ExcludeTypical: true,
		MaxFileBytes:   0,
	}
}

// ApplyWebQueryToOptions copies recognised values from the query string into the
// provided options. Validation happens separately via NormalizeAndValidate.
// Fix mode is never enabled from a query.
func ApplyWebQueryToOptions(def engine.Options, q url.Values) (engine.Options, error) {
	out := def

	if raw := q["kind"]; len(raw) > 0 {
		out.Kinds = SplitMulti(raw)
	}
	if raw, ok := lastLiteralValue(q["lister"]); ok {
		out.Lister = engine.Lister(raw)
	}
	if raw, ok := lastLiteralValue(q["jobs"]); ok {
		n, err := ParseIntInRange(raw, "jobs", 1, maxJobs)
		if err != nil {
			return out, err
		}
		out.Jobs = n
	}
	if raw, ok := lastLiteralValue(q["max_file_bytes"]); ok {
		n, err := parseInt(raw, "max_file_bytes")
		if err != nil {
			return out, err
		}
		out.MaxFileBytes = n
	}
	if raw := q["path"]; len(raw) > 0 {
		out.Paths = SplitMulti(raw)
	}
	if raw := q["exclude"]; len(raw) > 0 {
		out.Excludes = SplitMulti(raw)
	}
	if raw := q["path_regex"]; len(raw) > 0 {
		out.PathRegex = SplitMulti(raw)
	}
	if raw := q["detect_langs"]; len(raw) > 0 {
		out.DetectLangs = SplitMulti(raw)
	}
	if raw, ok := lastLiteralValue(q["with_link"]); ok {
		v, err := ParseBool(raw, "with_link")
		if err != nil {
			return out, err
		}
		out.WithLink = v
	}
	if raw, ok := lastLiteralValue(q["exclude_typical"]); ok {
		v, err := ParseBool(raw, "exclude_typical")
		if err != nil {
			return out, err
		}
		out.ExcludeTypical = v
	}
	return out, nil
}

// NormalizeAndValidate ensures the options are canonical and within the allowed ranges.
func NormalizeAndValidate(o *engine.Options) error {
	lister := engine.Lister(strings.ToLower(strings.TrimSpace(string(o.Lister))))
	switch lister {
	case "":
		lister = engine.ListerAuto
	case engine.ListerAuto, engine.ListerGit, engine.ListerWalk:
	default:
		return fmt.Errorf("invalid --lister: %s", o.Lister)
	}
	o.Lister = lister

	if o.Jobs < 1 || o.Jobs > maxJobs {
		return fmt.Errorf("jobs must be between 1 and %d", maxJobs)
	}
	if strings.TrimSpace(o.RepoDir) == "" {
		o.RepoDir = "."
	}
	if o.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must be >= 0")
	}
	if o.DryRun && !o.Fix {
		return fmt.Errorf("--dry-run requires fix mode")
	}

	o.Kinds = trimSlice(o.Kinds)
	if _, err := engine.ParseKinds(o.Kinds); err != nil {
		return err
	}
	o.Paths = trimSlice(o.Paths)
	o.Excludes = trimSlice(o.Excludes)
	o.PathRegex = trimSlice(o.PathRegex)
	o.DetectLangs = trimSlice(o.DetectLangs)
	if len(o.DetectLangs) > 0 {
		o.DetectLangs = detect.CanonicalDetectLangs(o.DetectLangs)
		for _, lang := range o.DetectLangs {
			if !detect.KnownLanguage(lang) {
				return fmt.Errorf("invalid --detect-langs: %s", lang)
			}
		}
	}

	compiled, err := engine.CompilePathRegex(o.PathRegex)
	if err != nil {
		return fmt.Errorf("invalid --path-regex: %w", err)
	}
	o.PathRegexCompiled = compiled

	return nil
}

func ParseBool(raw, key string) (bool, error) {
	return config.ParseBool(raw, key)
}

// ParseIntInRange parses a string into an int and ensures it falls within [min, max].
// If max < min, the upper bound is ignored.
func ParseIntInRange(raw, key string, min, max int) (int, error) {
	n, err := parseInt(raw, key)
	if err != nil {
		return 0, err
	}
	if n < min {
		if max >= min {
			return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		return 0, fmt.Errorf("%s must be >= %d", key, min)
	}
	if max >= min && n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return n, nil
}

var OutputFormats = []string{"table", "tsv", "json", "ndjson", "csv", "markdown"}

// NormalizeOutput validates and lower-cases the CLI/Web output format value.
func NormalizeOutput(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "md" {
		v = "markdown"
	}
	for _, f := range OutputFormats {
		if v == f {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid --output: %s", value)
}

// SplitMulti turns repeated query parameters (and comma-separated values) into a flat slice.
func SplitMulti(vals []string) []string {
	var out []string
	for _, raw := range vals {
		for _, piece := range strings.Split(raw, ",") {
			part := strings.TrimSpace(piece)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func parseInt(raw, key string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	return n, nil
}

func lastLiteralValue(vals []string) (string, bool) {
	flat := SplitMulti(vals)
	if len(flat) == 0 {
		return "", false
	}
	return flat[len(flat)-1], true
}

func trimSlice(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0]
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
