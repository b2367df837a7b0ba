package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTrackerAdvanceIsSequential(t *testing.T) {
	const workers = 64
	tr := NewTracker(workers, Config{NotifyInterval: time.Nanosecond})

	var wg sync.WaitGroup
	results := make(chan int, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			snap, _ := tr.Advance(1, 0)
			results <- snap.Done
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for r := range results {
		if r < 1 || r > workers || seen[r] {
			t.Fatalf("unexpected progress value %d", r)
		}
		seen[r] = true
	}
	if len(seen) != workers {
		t.Fatalf("got %d distinct values, want %d", len(seen), workers)
	}
}

func TestTrackerETA(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	tr := newTracker(20, Config{WarmupSamples: 2, NotifyInterval: time.Hour}, clock.Now)

	clock.Add(time.Second)
	snap, notify := tr.Advance(1, 3)
	if !snap.Warmup || snap.ETA != 0 {
		t.Fatalf("expected warmup without ETA: %+v", snap)
	}
	if !notify {
		t.Fatal("first advance after start should notify")
	}
	clock.Add(time.Second)
	snap, notify = tr.Advance(1, 0)
	if snap.Warmup {
		t.Fatal("warmup should end after two samples")
	}
	if notify {
		t.Fatal("notify interval not respected")
	}
	if snap.ETA != 18*time.Second {
		t.Fatalf("ETA = %s, want 18s", snap.ETA)
	}
	if snap.Findings != 3 {
		t.Fatalf("findings = %d", snap.Findings)
	}
	if done := tr.Complete(); done.Done != 20 || done.Remaining != 0 {
		t.Fatalf("Complete() = %+v", done)
	}
}

func TestPercentClampsTo100(t *testing.T) {
	if got := percent(5, 4); got != 100 {
		t.Fatalf("percent(5, 4) = %d, want 100", got)
	}
	if got := percent(0, 0); got != 0 {
		t.Fatalf("percent(0, 0) = %d, want 0", got)
	}
}

func TestObservers(t *testing.T) {
	snap := Snapshot{Stage: StageScan, Total: 4, Done: 2, Findings: 1, Warmup: true}

	var tty bytes.Buffer
	NewTTYObserver(&tty).Publish(snap)
	if !strings.HasPrefix(tty.String(), "\r\033[K[scan]  50% 2/4 files, 1 undocumented") {
		t.Fatalf("unexpected tty output %q", tty.String())
	}

	var lines bytes.Buffer
	obs := NewAutoObserver(&lines)
	obs.Publish(snap)
	if !strings.Contains(lines.String(), "progress stage=scan total=4 done=2 findings=1") {
		t.Fatalf("unexpected line output %q", lines.String())
	}
	if formatETA(3725*time.Second) != "01:02:05" {
		t.Fatalf("formatETA = %s", formatETA(3725*time.Second))
	}
}
