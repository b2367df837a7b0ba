package web

import (
	_ "embed"
	"html/template"
	"net/http"
	"sync"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/execx"
)

const (
	stylesPath = "/assets/styles.css"
	scriptPath = "/assets/ui.js"
)

var (
	//go:embed templates/index.html
	indexHTML string
	indexOnce sync.Once
	indexTmpl *template.Template

	//go:embed assets/styles.css
	stylesCSS string

	//go:embed assets/ui.js
	scriptJS string
)

type indexData struct {
	StylesPath string
	ScriptPath string
	RepoDir    string
}

// Options configure the playground handlers.
type Options struct {
	// RepoDir is the tree scanned by /api/scan.
	RepoDir string
	// Settings is resolved on every /api/document request; request fields
	// override it. Nil means the built-in defaults.
	Settings config.Source
	Runner   execx.Runner
}

// Register attaches the playground page, its assets and the JSON API to mux.
func Register(mux *http.ServeMux, opts Options) {
	if opts.Settings == nil {
		opts.Settings = config.Static(config.Defaults())
	}
	if opts.RepoDir == "" {
		opts.RepoDir = "."
	}
	mux.HandleFunc("/", indexHandler(opts.RepoDir))
	mux.HandleFunc(stylesPath, stylesHandler)
	mux.HandleFunc(scriptPath, scriptHandler)
	mux.Handle("/api/document", documentHandler(opts.Settings))
	mux.Handle("/api/scan", scanHandler(opts))
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("X-Frame-Options", "DENY")
}

func indexHandler(repoDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		tmpl := loadTemplate()
		securityHeaders(w)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'self'; script-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; base-uri 'none'")
		if err := tmpl.Execute(w, indexData{StylesPath: stylesPath, ScriptPath: scriptPath, RepoDir: repoDir}); err != nil {
			http.Error(w, "template rendering failed", http.StatusInternalServerError)
		}
	}
}

func stylesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(stylesCSS))
}

func scriptHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(scriptJS))
}

func loadTemplate() *template.Template {
	indexOnce.Do(func() {
		indexTmpl = template.Must(template.New("index").Parse(indexHTML))
	})
	return indexTmpl
}

// Script returns the embedded playground script.
func Script() string { return scriptJS }
