package engine

import (
	"regexp"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/execx"
	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/progress"
)

// Finding is one declaration without a docblock.
type Finding struct {
	File   string     `json:"file"`
	Line   int        `json:"line"`
	Kind   model.Kind `json:"kind"`
	Name   string     `json:"name,omitempty"`
	Lang   string     `json:"lang"`
	Text   string     `json:"text"`
	Params int        `json:"params,omitempty"`
	Fixed  bool       `json:"fixed,omitempty"`
	URL    string     `json:"url,omitempty"`
}

// ItemError records a file that could not be processed.
type ItemError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// FileChange describes the docblocks added to one file by a fix run.
type FileChange struct {
	File     string `json:"file"`
	Inserted int    `json:"inserted"`
	Diff     string `json:"diff,omitempty"`
	Written  bool   `json:"written"`
}

// Lister selects how files are enumerated.
type Lister string

const (
	ListerAuto Lister = "auto"
	ListerGit  Lister = "git"
	ListerWalk Lister = "walk"
)

// Options controls a scan or fix run.
type Options struct {
	Fix               bool
	DryRun            bool
	Kinds             []string
	DetectLangs       []string
	Jobs              int
	RepoDir           string
	Paths             []string
	Excludes          []string
	PathRegex         []string
	PathRegexCompiled []*regexp.Regexp
	ExcludeTypical    bool
	MaxFileBytes      int
	Lister            Lister
	Progress          bool
	ProgressObserver  progress.Observer `json:"-"`
	Settings          config.Source     `json:"-"`
	Placeholders      model.Placeholders
	Runner            execx.Runner `json:"-"`

	// WithLink fills Finding.URL with a blob link at HEAD of LinkRemote.
	WithLink   bool
	LinkRemote string
	LinkScheme string
}

// Result is the outcome of Run.
type Result struct {
	Findings   []Finding    `json:"findings"`
	Changes    []FileChange `json:"changes,omitempty"`
	Files      int          `json:"files"`
	Total      int          `json:"total"`
	Fixed      int          `json:"fixed"`
	ElapsedMS  int64        `json:"elapsed_ms"`
	Errors     []ItemError  `json:"errors,omitempty"`
	ErrorCount int          `json:"error_count"`
}
