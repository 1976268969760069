package synthesis

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"bookreel/internal/artifact"
	"bookreel/internal/chapters"
	"bookreel/internal/logging"
	"bookreel/internal/services"
	"bookreel/internal/services/tts"
	"bookreel/internal/testsupport"
)

// fakeTTS writes clips of a configurable byte size and can fail a number of
// leading attempts per chapter.
type fakeTTS struct {
	mu        sync.Mutex
	calls     map[string]int
	failFirst int
	failWith  error
	clipBytes int64
}

func newFakeTTS(clipBytes int64) *fakeTTS {
	return &fakeTTS{calls: map[string]int{}, clipBytes: clipBytes}
}

func (f *fakeTTS) Synthesize(_ context.Context, req tts.Request) error {
	f.mu.Lock()
	f.calls[req.TextFile]++
	call := f.calls[req.TextFile]
	f.mu.Unlock()

	if call <= f.failFirst {
		if f.failWith != nil {
			return f.failWith
		}
		return errors.New("service unavailable")
	}
	return os.WriteFile(req.OutputPath, make([]byte, f.clipBytes), 0o644)
}

func (f *fakeTTS) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// sizeProber reports a duration proportional to file size: one second per
// 100 bytes.
type sizeProber struct{}

func (sizeProber) Duration(_ context.Context, path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.Size()) / 100, nil
}

func newTestPool(t *testing.T, client tts.Client) (*Pool, []chapters.Chapter) {
	t.Helper()
	cfg := testsupport.NewConfig(t, WithClipFloorsOption()...)
	for _, index := range []int{1, 2, 4} {
		testsupport.WriteChapter(t, cfg, index, 100)
	}
	chaps, err := chapters.Scan(cfg.Paths.ChaptersDir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	pool := NewPool(cfg, client, sizeProber{}, logging.NewNop())
	pool.sleep = func(context.Context, time.Duration) error { return nil }
	return pool, chaps
}

// WithClipFloorsOption keeps the floors low enough that the fake 10 KiB
// clips pass validity (10240 bytes -> 102s with sizeProber).
func WithClipFloorsOption() []testsupport.ConfigOption {
	return []testsupport.ConfigOption{testsupport.WithClipFloors(1024, 5), testsupport.WithConcurrency(2)}
}

func TestRunGeneratesAllChapters(t *testing.T) {
	client := newFakeTTS(10240)
	pool, chaps := newTestPool(t, client)

	result, err := pool.Run(context.Background(), chaps, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Count(StatusGenerated); got != 3 {
		t.Fatalf("generated %d, want 3", got)
	}
	for _, ch := range chaps {
		clip := chapters.ClipPath(pool.cfg.Paths.AudioDir, ch.Index)
		if _, err := os.Stat(clip); err != nil {
			t.Fatalf("clip for chapter %d missing: %v", ch.Index, err)
		}
		if _, err := os.Stat(clip + ".partial"); !os.IsNotExist(err) {
			t.Fatalf("partial left behind for chapter %d", ch.Index)
		}
	}
}

func TestSecondRunSkipsEverything(t *testing.T) {
	client := newFakeTTS(10240)
	pool, chaps := newTestPool(t, client)

	if _, err := pool.Run(context.Background(), chaps, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	callsAfterFirst := client.totalCalls()

	result, err := pool.Run(context.Background(), chaps, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := result.Count(StatusGenerated); got != 0 {
		t.Fatalf("second run generated %d, want 0", got)
	}
	if got := result.Count(StatusSkipped); got != 3 {
		t.Fatalf("second run skipped %d, want 3", got)
	}
	if client.totalCalls() != callsAfterFirst {
		t.Fatal("second run must not call the TTS service")
	}
}

func TestRetryThenSuccess(t *testing.T) {
	client := newFakeTTS(10240)
	client.failFirst = 2
	pool, chaps := newTestPool(t, client)

	result, err := pool.Run(context.Background(), chaps[:1], nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	outcome := result.Outcomes[0]
	if outcome.Status != StatusGenerated {
		t.Fatalf("status %s, want generated (reason %q)", outcome.Status, outcome.Reason)
	}
	if outcome.Attempts != 3 {
		t.Fatalf("attempts %d, want 3", outcome.Attempts)
	}
}

func TestExhaustedRetriesFailWithoutAbortingOthers(t *testing.T) {
	client := newFakeTTS(10240)
	client.failFirst = 99
	pool, chaps := newTestPool(t, client)

	result, err := pool.Run(context.Background(), chaps, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Count(StatusFailed); got != 3 {
		t.Fatalf("failed %d, want 3", got)
	}
	// No chapter may be left unreported.
	if len(result.Outcomes) != len(chaps) {
		t.Fatalf("outcomes %d, want %d", len(result.Outcomes), len(chaps))
	}
}

func TestConfigurationErrorNotRetried(t *testing.T) {
	client := newFakeTTS(10240)
	client.failFirst = 99
	client.failWith = services.Wrap(services.ErrConfiguration, "synthesis", "synthesize", "voice rejected", nil)
	pool, chaps := newTestPool(t, client)

	result, err := pool.Run(context.Background(), chaps[:1], nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	outcome := result.Outcomes[0]
	if outcome.Status != StatusFailed {
		t.Fatalf("status %s, want failed", outcome.Status)
	}
	if outcome.Attempts != 1 {
		t.Fatalf("attempts %d, want 1 for a non-retryable error", outcome.Attempts)
	}
	if client.totalCalls() != 1 {
		t.Fatalf("tts called %d times, want 1", client.totalCalls())
	}
}

func TestSuspectDetectionDespiteSuccess(t *testing.T) {
	// 100 words at 150 wpm predicts 40s; a 2000-byte clip probes to 20s,
	// exactly half the prediction and above the hard floors, so it must be
	// flagged rather than trusted. (suspect_ratio default 0.35 -> threshold
	// 14s; use a clip short enough to trip it.)
	client := newFakeTTS(1200) // 12s probed, below 0.35*40=14s
	pool, chaps := newTestPool(t, client)

	result, err := pool.Run(context.Background(), chaps[:1], nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	outcome := result.Outcomes[0]
	if outcome.Status != StatusSuspect {
		t.Fatalf("status %s, want suspect (reason %q)", outcome.Status, outcome.Reason)
	}
	// Suspect clips stay on disk for inspection and manual regeneration.
	clip := chapters.ClipPath(pool.cfg.Paths.AudioDir, outcome.Chapter)
	if _, err := os.Stat(clip); err != nil {
		t.Fatalf("suspect clip missing: %v", err)
	}
}

func TestForceSetBypassesSkip(t *testing.T) {
	client := newFakeTTS(10240)
	pool, chaps := newTestPool(t, client)

	if _, err := pool.Run(context.Background(), chaps, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	force := artifact.ForceSet{chaps[0].Index: {}}
	result, err := pool.Run(context.Background(), chaps, force)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if got := result.Count(StatusGenerated); got != 1 {
		t.Fatalf("generated %d, want exactly the forced chapter", got)
	}
	if got := result.Count(StatusSkipped); got != 2 {
		t.Fatalf("skipped %d, want 2", got)
	}
}

func TestResumeLeavesExistingClipsUntouched(t *testing.T) {
	client := newFakeTTS(10240)
	pool, chaps := newTestPool(t, client)

	// Simulate an interrupted run: chapter 1 already has a valid clip.
	existing := chapters.ClipPath(pool.cfg.Paths.AudioDir, chaps[0].Index)
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := os.WriteFile(existing, payload, 0o644); err != nil {
		t.Fatalf("seed clip: %v", err)
	}

	if _, err := pool.Run(context.Background(), chaps, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	after, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("read clip: %v", err)
	}
	if len(after) != len(payload) {
		t.Fatalf("existing clip rewritten: %d bytes, want %d", len(after), len(payload))
	}
	for i := range payload {
		if after[i] != payload[i] {
			t.Fatal("existing clip content changed")
		}
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	client := newFakeTTS(10240)
	pool, chaps := newTestPool(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Run(ctx, chaps, nil); err == nil {
		t.Fatal("expected context error")
	}
}
