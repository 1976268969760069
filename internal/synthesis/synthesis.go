// Package synthesis turns chapter text into audio clips through the
// external TTS service: a bounded worker pool with per-chapter retry,
// resume/skip of valid existing clips, and sanity checks that catch the
// service's silent truncation failures.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"bookreel/internal/artifact"
	"bookreel/internal/chapters"
	"bookreel/internal/config"
	"bookreel/internal/fileutil"
	"bookreel/internal/logging"
	"bookreel/internal/services"
	"bookreel/internal/services/tts"
)

// Status classifies the outcome of one chapter's synthesis.
type Status string

const (
	// StatusGenerated means a new clip was written and passed all checks.
	StatusGenerated Status = "generated"
	// StatusSkipped means a valid clip already existed and was preserved.
	StatusSkipped Status = "skipped"
	// StatusFailed means synthesis exhausted its retry budget with no
	// usable clip on disk.
	StatusFailed Status = "failed"
	// StatusSuspect means a clip was written and the service reported
	// success, but the clip fails a sanity check (likely truncated).
	StatusSuspect Status = "suspect"
)

// Outcome records one chapter's result.
type Outcome struct {
	Chapter   int
	Status    Status
	Reason    string
	Attempts  int
	Duration  float64
	SizeBytes int64
}

// Result aggregates pool output in ascending chapter order.
type Result struct {
	Outcomes []Outcome
}

// Count returns how many outcomes carry the given status.
func (r *Result) Count(status Status) int {
	n := 0
	for _, outcome := range r.Outcomes {
		if outcome.Status == status {
			n++
		}
	}
	return n
}

// Chapters returns the chapter indices with the given status, ascending.
func (r *Result) Chapters(status Status) []int {
	var out []int
	for _, outcome := range r.Outcomes {
		if outcome.Status == status {
			out = append(out, outcome.Chapter)
		}
	}
	return out
}

// Pool is the bounded-concurrency synthesis executor.
type Pool struct {
	cfg    *config.Config
	client tts.Client
	prober artifact.DurationProber
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewPool constructs a synthesis pool.
func NewPool(cfg *config.Config, client tts.Client, prober artifact.DurationProber, logger *slog.Logger) *Pool {
	return &Pool{
		cfg:    cfg,
		client: client,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "synthesis"),
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run synthesizes every chapter in chaps that lacks a valid clip. Chapters
// in force are regenerated unconditionally. Per-chapter failures are
// isolated; Run only returns an error when the context is cancelled.
func (p *Pool) Run(ctx context.Context, chaps []chapters.Chapter, force artifact.ForceSet) (*Result, error) {
	outcomes := make([]Outcome, len(chaps))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.Synthesis.Concurrency)

	for i, chapter := range chaps {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			chapterCtx := services.WithChapter(services.WithStage(groupCtx, "synthesis"), chapter.Index)
			outcomes[i] = p.processChapter(chapterCtx, chapter, force.Contains(chapter.Index))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Chapter < outcomes[j].Chapter })
	result := &Result{Outcomes: outcomes}
	p.logger.Info("synthesis complete",
		logging.Int("generated", result.Count(StatusGenerated)),
		logging.Int("skipped", result.Count(StatusSkipped)),
		logging.Int("suspect", result.Count(StatusSuspect)),
		logging.Int("failed", result.Count(StatusFailed)))
	return result, nil
}

func (p *Pool) processChapter(ctx context.Context, chapter chapters.Chapter, forced bool) Outcome {
	log := logging.WithContext(ctx, p.logger)
	clipPath := chapters.ClipPath(p.cfg.Paths.AudioDir, chapter.Index)

	if !forced {
		check := artifact.ValidClip(ctx, p.prober, clipPath, p.cfg.Synthesis.MinClipBytes, p.cfg.Synthesis.MinClipSeconds)
		if check.Valid {
			log.Debug("clip exists, skipping")
			return Outcome{Chapter: chapter.Index, Status: StatusSkipped, Reason: "valid clip exists"}
		}
	}

	words, err := chapter.WordCount()
	if err != nil {
		log.Warn("chapter text unreadable", logging.Error(err))
		return Outcome{Chapter: chapter.Index, Status: StatusFailed, Reason: err.Error()}
	}
	predicted := p.predictedSeconds(words)

	attempts := p.cfg.Synthesis.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastReason string
	for attempt := 1; attempt <= attempts; attempt++ {
		outcome, retry, reason := p.attempt(ctx, chapter, clipPath, predicted, attempt)
		if !retry {
			return outcome
		}
		lastReason = reason
		log.Warn("synthesis attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("attempts_max", attempts),
			logging.String("reason", reason))
		if attempt < attempts {
			if err := p.sleep(ctx, time.Duration(1<<(attempt-1))*time.Second); err != nil {
				return Outcome{Chapter: chapter.Index, Status: StatusFailed, Reason: err.Error(), Attempts: attempt}
			}
		}
	}

	log.Error("synthesis gave up", logging.String("reason", lastReason), logging.Int("attempts", attempts))
	return Outcome{Chapter: chapter.Index, Status: StatusFailed, Reason: lastReason, Attempts: attempts}
}

// attempt performs one synthesis call. It returns the final outcome when
// the attempt settles the chapter, or retry=true with a reason otherwise.
func (p *Pool) attempt(ctx context.Context, chapter chapters.Chapter, clipPath string, predicted float64, attempt int) (outcome Outcome, retry bool, reason string) {
	partial := fileutil.PartialPath(clipPath)
	defer fileutil.Discard(partial)

	err := p.client.Synthesize(ctx, tts.Request{
		TextFile:   chapter.Path,
		Voice:      p.cfg.Book.Voice,
		Rate:       p.cfg.Book.SpeechRate,
		OutputPath: partial,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{Chapter: chapter.Index, Status: StatusFailed, Reason: ctx.Err().Error(), Attempts: attempt}, false, ""
		}
		// Configuration and not-found errors settle the chapter: the same
		// inputs would fail the same way on every attempt.
		if !services.Retryable(err) {
			return Outcome{Chapter: chapter.Index, Status: StatusFailed, Reason: err.Error(), Attempts: attempt}, false, ""
		}
		return Outcome{}, true, err.Error()
	}

	info, err := os.Stat(partial)
	if err != nil {
		return Outcome{}, true, "no output written"
	}
	duration, err := p.prober.Duration(ctx, partial)
	if err != nil {
		return Outcome{}, true, fmt.Sprintf("output unreadable: %v", err)
	}

	// Hard floors: an empty or tiny clip is an implausible success and is
	// retried like an API failure.
	if info.Size() < p.cfg.Synthesis.MinClipBytes || duration < p.cfg.Synthesis.MinClipSeconds {
		return Outcome{}, true, fmt.Sprintf("implausible output: %d bytes, %.1fs", info.Size(), duration)
	}

	if err := fileutil.Commit(partial, clipPath); err != nil {
		return Outcome{}, true, err.Error()
	}

	// The truncation gate: the service returns success for clips that stop
	// partway through the text. A clip far shorter than the chapter's word
	// count predicts is kept on disk but flagged, never trusted.
	if predicted > 0 && duration < p.cfg.Synthesis.SuspectRatio*predicted {
		reason := fmt.Sprintf("duration %.0fs below %.0f%% of predicted %.0fs", duration, p.cfg.Synthesis.SuspectRatio*100, predicted)
		logging.WithContext(ctx, p.logger).Warn("clip flagged suspect", logging.String("reason", reason))
		return Outcome{Chapter: chapter.Index, Status: StatusSuspect, Reason: reason, Attempts: attempt, Duration: duration, SizeBytes: info.Size()}, false, ""
	}

	logging.WithContext(ctx, p.logger).Info("clip generated",
		logging.Float64("seconds", duration),
		logging.Int64("bytes", info.Size()),
		logging.Int("attempt", attempt))
	return Outcome{Chapter: chapter.Index, Status: StatusGenerated, Attempts: attempt, Duration: duration, SizeBytes: info.Size()}, false, ""
}

// predictedSeconds estimates narration length from word count, corrected
// for the configured speech rate: a +15% rate shortens the prediction.
func (p *Pool) predictedSeconds(words int) float64 {
	if words <= 0 || p.cfg.Synthesis.WordsPerMinute <= 0 {
		return 0
	}
	return float64(words) / float64(p.cfg.Synthesis.WordsPerMinute) * 60 / p.cfg.SpeechRateFactor()
}
