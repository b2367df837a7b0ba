package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/execx"
	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/progress"
)

const samplePHP = `<?php

namespace App;

/**
 * Documented already.
 */
final class Invoice
{
    #[ORM\Column]
    private ?int $total = null;

    /** @var string */
    protected string $currency = 'EUR';

    /*
     * public function commentedOut($x)
     */
    public function add(int $amount, string $note = ""): self
    {
        $sql = <<<SQL
            public function notReal()
SQL;
        return $this;
    }
}
`

const sampleFixed = `<?php

namespace App;

/**
 * Documented already.
 */
final class Invoice
{
    #[ORM\Column]
    /**
     * Undocumented variable
     * @var ?int
     */
    private ?int $total = null;

    /** @var string */
    protected string $currency = 'EUR';

    /*
     * public function commentedOut($x)
     */
    /**
     * Undocumented function
     * @param int amount
     * @param string note
     * @return self
     */
    public function add(int $amount, string $note = ""): self
    {
        $sql = <<<SQL
            public function notReal()
SQL;
        return $this;
    }
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestRunScan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/Invoice.php":      samplePHP,
		"vendor/lib/Thing.php": "<?php\nclass Thing {}\n",
		"README.md":            "function notPHP()\n",
		"legacy/functions.inc": "<?php\nfunction helper($a) {}\n",
		"legacy/not-php.inc":   "function helper($a) {}\n",
	})
	res, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerWalk, ExcludeTypical: true, Jobs: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	type key struct {
		File string
		Line int
		Kind model.Kind
		Name string
	}
	var got []key
	for _, f := range res.Findings {
		got = append(got, key{f.File, f.Line, f.Kind, f.Name})
	}
	want := []key{
		{"legacy/functions.inc", 2, model.KindFunction, "helper"},
		{"src/Invoice.php", 11, model.KindProperty, "total"},
		{"src/Invoice.php", 19, model.KindFunction, "add"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("findings = %+v, want %+v", got, want)
	}
	if res.Files != 2 || res.Total != 3 || res.ErrorCount != 0 {
		t.Fatalf("unexpected summary: files=%d total=%d errors=%d", res.Files, res.Total, res.ErrorCount)
	}
	if res.Findings[2].Params != 2 || res.Findings[2].Lang != "php" {
		t.Fatalf("unexpected finding details %+v", res.Findings[2])
	}
}

func TestRunKindFilter(t *testing.T) {
	root := writeTree(t, map[string]string{"a.php": samplePHP})
	res, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerWalk, Kinds: []string{"method"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Total != 1 || res.Findings[0].Kind != model.KindFunction {
		t.Fatalf("unexpected findings %+v", res.Findings)
	}
	if _, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerWalk, Kinds: []string{"macro"}}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestRunFixIsIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{"src/Invoice.php": samplePHP})
	opts := Options{RepoDir: root, Lister: ListerWalk, Fix: true, Settings: config.Static(config.Defaults())}

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Fixed != 2 || len(res.Changes) != 1 || !res.Changes[0].Written {
		t.Fatalf("unexpected fix result %+v", res)
	}
	data, err := os.ReadFile(filepath.Join(root, "src", "Invoice.php"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != sampleFixed {
		t.Fatalf("fixed file mismatch:\n%s", UnifiedDiff("Invoice.php", sampleFixed, string(data)))
	}

	again, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Total != 0 || again.Fixed != 0 || len(again.Changes) != 0 {
		t.Fatalf("second run should change nothing: %+v", again)
	}
}

func TestRunFixDryRun(t *testing.T) {
	root := writeTree(t, map[string]string{"a.php": "<?php\nclass A {}\n"})
	res, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerWalk, Fix: true, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Changes) != 1 || res.Changes[0].Written {
		t.Fatalf("unexpected changes %+v", res.Changes)
	}
	diff := res.Changes[0].Diff
	for _, want := range []string{"--- a/a.php", "+++ b/a.php", "+/**", "+ * Undocumented class", "+ */"} {
		if !strings.Contains(diff, want) {
			t.Fatalf("diff missing %q:\n%s", want, diff)
		}
	}
	data, _ := os.ReadFile(filepath.Join(root, "a.php"))
	if string(data) != "<?php\nclass A {}\n" {
		t.Fatal("dry run modified the file")
	}
}

type brokenSettings struct{}

func (brokenSettings) Snapshot() (config.Snapshot, error) {
	return config.Snapshot{}, errors.New("bad config")
}

func TestRunFixSettingsError(t *testing.T) {
	root := writeTree(t, map[string]string{"a.php": "<?php\nclass A {}\n"})
	if _, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerWalk, Fix: true, Settings: brokenSettings{}}); err == nil {
		t.Fatal("expected settings error")
	}
}

func TestRunGitLister(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.php":       "<?php\nfunction a() {}\n",
		"b.php":       "<?php\nfunction b() {}\n",
		"ignored.php": "<?php\nfunction c() {}\n",
	})
	var gotArgs []string
	runner := execx.RunnerFunc(func(_ context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
		if dir != root || name != "git" {
			t.Fatalf("unexpected command %s in %s", name, dir)
		}
		gotArgs = args
		return []byte("b.php\x00a.php\x00deleted.php\x00"), nil, nil
	})
	res, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerGit, Runner: runner, Paths: []string{"src", ""}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Total != 2 || res.Findings[0].File != "a.php" || res.Findings[1].File != "b.php" {
		t.Fatalf("unexpected findings %+v", res.Findings)
	}
	if res.ErrorCount != 0 {
		t.Fatalf("deleted tracked files must be skipped silently: %+v", res.Errors)
	}
	want := []string{"-c", "core.quotePath=false", "ls-files", "-z", "--cached", "--others", "--exclude-standard", "--", "src"}
	if !reflect.DeepEqual(gotArgs, want) {
		t.Fatalf("git args = %q, want %q", gotArgs, want)
	}
}

func TestRunWithLink(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/my app/a.php": "<?php\nfunction a() {}\n",
	})
	runner := execx.RunnerFunc(func(_ context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
		switch strings.Join(args, " ") {
		case "config --get remote.upstream.url":
			return []byte("git@github.com:acme/shop.git\n"), nil, nil
		case "rev-parse --verify HEAD":
			return []byte("cafef00d\n"), nil, nil
		}
		return []byte("src/my app/a.php\x00"), nil, nil
	})
	res, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerGit, Runner: runner, WithLink: true, LinkRemote: "upstream"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := "https://github.com/acme/shop/blob/cafef00d/src/my%20app/a.php#L2"; res.Total != 1 || res.Findings[0].URL != want {
		t.Fatalf("unexpected findings %+v", res.Findings)
	}

	noRemote := execx.RunnerFunc(func(_ context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
		if args[0] == "config" {
			return nil, nil, errors.New("exit status 1")
		}
		return []byte("src/my app/a.php\x00"), nil, nil
	})
	res, err = Run(context.Background(), Options{RepoDir: root, Lister: ListerGit, Runner: noRemote, WithLink: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Total != 1 || res.Findings[0].URL != "" || res.ErrorCount != 1 || res.Errors[0].Stage != "link" {
		t.Fatalf("a missing remote should be reported per run: %+v", res)
	}
}

func TestRunAutoListerFallsBackToWalk(t *testing.T) {
	root := writeTree(t, map[string]string{"a.php": "<?php\nfunction a() {}\n"})
	runner := execx.RunnerFunc(func(context.Context, string, string, ...string) ([]byte, []byte, error) {
		return nil, []byte("fatal: not a git repository (or any of the parent directories): .git\n"), errors.New("exit status 128")
	})
	res, err := Run(context.Background(), Options{RepoDir: root, Runner: runner})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("expected walk fallback to find a.php, got %+v", res.Findings)
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	published int
	final     progress.Snapshot
}

func (o *recordingObserver) Publish(progress.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published++
}

func (o *recordingObserver) Done(s progress.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.final = s
}

func TestRunPublishesProgress(t *testing.T) {
	root := writeTree(t, map[string]string{"a.php": "<?php\nclass A {}\n", "b.php": "<?php\nclass B {}\n"})
	obs := &recordingObserver{}
	if _, err := Run(context.Background(), Options{RepoDir: root, Lister: ListerWalk, ProgressObserver: obs, Jobs: 1}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.published == 0 {
		t.Fatal("no progress published")
	}
	if obs.final.Done != 2 || obs.final.Total != 2 || obs.final.Findings != 2 {
		t.Fatalf("final snapshot = %+v", obs.final)
	}
}

func TestRunCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.php": "<?php\nclass A {}\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Options{RepoDir: root, Lister: ListerWalk}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
