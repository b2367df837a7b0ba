// Package gitremote turns a repository's remote into browsable links to
// declarations.
package gitremote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/phyten/docblocker/internal/execx"
)

const DefaultRemote = "origin"

type Info struct {
	Host   string
	Owner  string
	Repo   string
	Scheme string
}

// Detect reads remote.<remote>.url in repoDir and parses it. A non-empty
// scheme ("http" or "https") replaces the one derived from the URL.
func Detect(ctx context.Context, runner execx.Runner, repoDir, remote, scheme string) (Info, error) {
	if runner == nil {
		runner = execx.DefaultRunner()
	}
	remote = strings.TrimSpace(remote)
	if remote == "" {
		remote = DefaultRemote
	}
	key := fmt.Sprintf("remote.%s.url", remote)
	stdout, err := git(ctx, runner, repoDir, "config", "--get", key)
	if err != nil {
		return Info{}, err
	}
	raw := strings.TrimSpace(string(stdout))
	if raw == "" {
		return Info{}, fmt.Errorf("%s is empty", key)
	}
	info, err := Parse(raw)
	if err != nil {
		return Info{}, err
	}
	if override := normalizeScheme(scheme); override != "" {
		info.Scheme = override
	}
	return info, nil
}

func Head(ctx context.Context, runner execx.Runner, repoDir string) (string, error) {
	if runner == nil {
		runner = execx.DefaultRunner()
	}
	stdout, err := git(ctx, runner, repoDir, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", err
	}
	sha := strings.TrimSpace(string(stdout))
	if sha == "" {
		return "", errors.New("git rev-parse HEAD: empty output")
	}
	return sha, nil
}

func git(ctx context.Context, runner execx.Runner, dir string, args ...string) ([]byte, error) {
	stdout, stderr, err := runner.Run(ctx, dir, "git", args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout, nil
}

// Parse understands scp-like (git@host:owner/repo.git), ssh://, git://,
// http:// and https:// remotes.
func Parse(raw string) (Info, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Info{}, errors.New("empty remote url")
	}
	if strings.HasPrefix(raw, "git@") {
		host, rest, ok := strings.Cut(strings.TrimPrefix(raw, "git@"), ":")
		if !ok {
			return Info{}, fmt.Errorf("invalid ssh remote: %s", raw)
		}
		owner, repo, err := splitPath(rest)
		if err != nil {
			return Info{}, err
		}
		return Info{Host: strings.ToLower(strings.TrimSpace(host)), Owner: owner, Repo: repo}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Info{}, fmt.Errorf("invalid remote url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "ssh", "git", "http", "https":
	default:
		return Info{}, fmt.Errorf("unsupported remote url: %s", raw)
	}
	cleaned, err := url.PathUnescape(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return Info{}, fmt.Errorf("invalid remote path: %w", err)
	}
	owner, repo, err := splitPath(cleaned)
	if err != nil {
		return Info{}, err
	}
	info := Info{Host: strings.ToLower(strings.TrimSpace(u.Host)), Owner: owner, Repo: repo}
	if scheme == "http" || scheme == "https" {
		info.Scheme = scheme
	}
	return info, nil
}

func splitPath(p string) (string, string, error) {
	cleaned := strings.TrimSpace(p)
	cleaned = strings.TrimSuffix(cleaned, ".git")
	cleaned = strings.Trim(cleaned, "/\\")
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "" {
		return "", "", errors.New("missing owner/repo in remote url")
	}
	segments := strings.Split(cleaned, "/")
	if len(segments) < 2 {
		return "", "", errors.New("remote url must include owner and repo")
	}
	owner := segments[len(segments)-2]
	repo := strings.TrimSuffix(segments[len(segments)-1], ".git")
	if owner == "" || repo == "" {
		return "", "", errors.New("invalid owner or repo in remote url")
	}
	return owner, repo, nil
}

func (i Info) WebURL() string {
	host := strings.TrimSuffix(i.Host, "/")
	return fmt.Sprintf("%s://%s/%s/%s", i.NormalizedScheme(), host, url.PathEscape(i.Owner), url.PathEscape(i.Repo))
}

// BlobURL links to line of file at ref, or returns "" when any part is
// missing.
func (i Info) BlobURL(ref, file string, line int) string {
	if ref == "" || file == "" || line <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/blob/%s/%s#L%d", i.WebURL(), url.PathEscape(ref), BlobPath(file), line)
}

func BlobPath(file string) string {
	parts := strings.Split(filepath.ToSlash(file), "/")
	for idx, part := range parts {
		parts[idx] = url.PathEscape(part)
	}
	return path.Join(parts...)
}

// NormalizedScheme is http for http remotes and https otherwise.
func (i Info) NormalizedScheme() string {
	if normalizeScheme(i.Scheme) == "http" {
		return "http"
	}
	return "https"
}

func normalizeScheme(raw string) string {
	switch scheme := strings.ToLower(strings.TrimSpace(raw)); scheme {
	case "http", "https":
		return scheme
	}
	return ""
}
