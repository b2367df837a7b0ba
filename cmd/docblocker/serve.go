package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/browser"

	"github.com/phyten/docblocker/internal/execx"
	"github.com/phyten/docblocker/internal/web"
)

type serveConfig struct {
	host     string
	port     int
	repo     string
	open     bool
	settings settingsFlags
}

func (a *app) parseServeArgs(args []string) (serveConfig, error) {
	var cfg serveConfig
	fs := a.newFlagSet("serve", "[-p PORT] [--open] [flags]")
	fs.StringVar(&cfg.host, "host", "127.0.0.1", "interface to listen on")
	fs.IntVar(&cfg.port, "p", 8080, "port")
	fs.IntVar(&cfg.port, "port", 8080, "port")
	fs.StringVar(&cfg.repo, "repo", ".", "tree scanned by /api/scan")
	fs.BoolVar(&cfg.open, "open", false, "open the playground in a browser")
	cfg.settings.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("serve: unexpected argument %q", fs.Arg(0))
	}
	if cfg.port < 0 || cfg.port > 65535 {
		return cfg, fmt.Errorf("serve: port must be between 0 and 65535")
	}
	if _, err := cfg.settings.layer(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// handler builds the playground mux. Settings are resolved per request from
// the repository directory.
func (a *app) handler(cfg serveConfig) http.Handler {
	overrides, _ := cfg.settings.layer()
	mux := http.NewServeMux()
	web.Register(mux, web.Options{
		RepoDir:  cfg.repo,
		Settings: a.settings(cfg.repo, overrides),
		Runner:   execx.DefaultRunner(),
	})
	return mux
}

func (a *app) serveCmd(args []string) error {
	cfg, err := a.parseServeArgs(args)
	if err != nil {
		return err
	}
	// A broken settings file is reported before the port is opened.
	overrides, _ := cfg.settings.layer()
	if _, err := a.settings(cfg.repo, overrides).Snapshot(); err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           a.handler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := "http://" + ln.Addr().String() + "/"
	log.Printf("docblocker serve listening on %s (repo=%s)", url, mustAbs(cfg.repo))
	if cfg.open {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("could not open a browser: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func mustAbs(p string) string {
	a, _ := filepath.Abs(p)
	return a
}
