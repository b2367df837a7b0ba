package progress

import (
	"math"
	"sync"
	"time"
)

type Stage string

const (
	StageList Stage = "list"
	StageScan Stage = "scan"
	StageFix  Stage = "fix"
)

type Snapshot struct {
	Stage     Stage         `json:"stage"`
	Total     int           `json:"total"`
	Done      int           `json:"done"`
	Remaining int           `json:"remaining"`
	Findings  int           `json:"findings"`
	Rate      float64       `json:"rate_per_sec"`
	ETA       time.Duration `json:"eta"`
	Warmup    bool          `json:"warmup"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

type Config struct {
	Alpha          float64
	WarmupSamples  int
	NotifyInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Alpha:          0.2,
		WarmupSamples:  10,
		NotifyInterval: 200 * time.Millisecond,
	}
}

// Tracker counts processed files and estimates the remaining time with an
// exponential moving average of the throughput. It is safe for concurrent
// use.
type Tracker struct {
	mu         sync.Mutex
	cfg        Config
	now        func() time.Time
	start      time.Time
	lastUpdate time.Time
	lastNotify time.Time
	stage      Stage
	total      int
	done       int
	findings   int
	ema        float64
}

func NewTracker(total int, cfg Config) *Tracker {
	return newTracker(total, cfg, time.Now)
}

func newTracker(total int, cfg Config, now func() time.Time) *Tracker {
	base := DefaultConfig()
	if cfg.Alpha > 0 {
		base.Alpha = cfg.Alpha
	}
	if cfg.WarmupSamples > 0 {
		base.WarmupSamples = cfg.WarmupSamples
	}
	if cfg.NotifyInterval > 0 {
		base.NotifyInterval = cfg.NotifyInterval
	}
	t := now()
	return &Tracker{cfg: base, now: now, start: t, lastUpdate: t, stage: StageScan, total: total}
}

func (t *Tracker) SetStage(stage Stage) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stage = stage
	return t.snapshotLocked(t.now())
}

// Advance records delta finished files and found more findings. The boolean
// reports whether observers should be notified.
func (t *Tracker) Advance(delta, found int) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if now.Before(t.lastUpdate) {
		now = t.lastUpdate
	}
	t.findings += found
	if delta > 0 {
		dt := now.Sub(t.lastUpdate).Seconds()
		if dt <= 0 {
			dt = 1e-6
		}
		t.done += delta
		instant := float64(delta) / dt
		if math.IsNaN(instant) || math.IsInf(instant, 0) || instant < 0 {
			instant = 0
		}
		if t.ema == 0 {
			t.ema = instant
		} else {
			t.ema = t.cfg.Alpha*instant + (1-t.cfg.Alpha)*t.ema
		}
		t.lastUpdate = now
	}
	snap := t.snapshotLocked(now)
	notify := now.Sub(t.lastNotify) >= t.cfg.NotifyInterval || snap.Remaining == 0
	if notify {
		t.lastNotify = now
	}
	return snap, notify
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(t.now())
}

func (t *Tracker) Complete() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done < t.total {
		t.done = t.total
	}
	return t.snapshotLocked(t.now())
}

func (t *Tracker) snapshotLocked(now time.Time) Snapshot {
	remain := t.total - t.done
	if remain < 0 {
		remain = 0
	}
	warm := t.done >= t.cfg.WarmupSamples
	var eta time.Duration
	if warm && remain > 0 {
		eta = durationFrom(float64(remain), t.ema)
	}
	return Snapshot{
		Stage:     t.stage,
		Total:     t.total,
		Done:      t.done,
		Remaining: remain,
		Findings:  t.findings,
		Rate:      t.ema,
		ETA:       eta,
		Warmup:    !warm,
		StartedAt: t.start,
		UpdatedAt: now,
		Elapsed:   now.Sub(t.start),
	}
}

func durationFrom(count, rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	seconds := count / rate
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	if seconds > float64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}
