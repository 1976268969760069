package durations

import (
	"context"
	"log/slog"
	"os"

	"bookreel/internal/artifact"
	"bookreel/internal/chapters"
	"bookreel/internal/config"
	"bookreel/internal/logging"
	"bookreel/internal/services"
)

// Analyzer measures every clip in the audio directory and rebuilds the
// duration index. It is the only writer and safe to re-run at any time;
// re-analysis overwrites rows idempotently.
type Analyzer struct {
	cfg    *config.Config
	store  *Store
	prober artifact.DurationProber
	logger *slog.Logger
}

// Summary aggregates one analyzer pass.
type Summary struct {
	Analyzed     int
	Suspect      int
	Failed       int
	TotalSeconds float64
}

// NewAnalyzer constructs an Analyzer.
func NewAnalyzer(cfg *config.Config, store *Store, prober artifact.DurationProber, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		store:  store,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "durations"),
	}
}

// Run indexes the given chapters. Chapters whose clip is missing or
// unreadable get a failed row rather than being dropped, so downstream
// stages can report them.
func (a *Analyzer) Run(ctx context.Context, chaps []chapters.Chapter) (Summary, error) {
	var summary Summary

	for _, chapter := range chaps {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		chapterCtx := services.WithChapter(services.WithStage(ctx, "durations"), chapter.Index)
		record := a.analyzeChapter(chapterCtx, chapter)
		if err := a.store.Upsert(ctx, record); err != nil {
			return summary, err
		}

		summary.Analyzed++
		summary.TotalSeconds += record.DurationSeconds
		switch record.Flag {
		case FlagSuspect:
			summary.Suspect++
		case FlagFailed:
			summary.Failed++
		}
	}

	a.logger.Info("duration index updated",
		logging.Int("analyzed", summary.Analyzed),
		logging.Int("suspect", summary.Suspect),
		logging.Int("failed", summary.Failed),
		logging.Float64("total_seconds", summary.TotalSeconds))
	return summary, nil
}

func (a *Analyzer) analyzeChapter(ctx context.Context, chapter chapters.Chapter) Record {
	log := logging.WithContext(ctx, a.logger)
	record := Record{Chapter: chapter.Index, Title: chapter.Title()}
	if words, err := chapter.WordCount(); err == nil {
		record.WordCount = words
	}

	clipPath := chapters.ClipPath(a.cfg.Paths.AudioDir, chapter.Index)
	info, err := os.Stat(clipPath)
	if err != nil {
		log.Warn("clip missing, recording failure")
		record.Flag = FlagFailed
		return record
	}
	record.SizeBytes = info.Size()

	duration, err := a.prober.Duration(ctx, clipPath)
	if err != nil {
		log.Warn("clip unreadable, recording failure", logging.Error(err))
		record.Flag = FlagFailed
		return record
	}
	record.DurationSeconds = duration
	record.Flag = a.classify(record)

	if record.Flag == FlagSuspect {
		log.Warn("clip flagged suspect",
			logging.Float64("seconds", duration),
			logging.Int64("bytes", record.SizeBytes),
			logging.Int("words", record.WordCount))
	}
	return record
}

// classify applies the sanity gates: a byte floor, and the word-count
// duration prediction. The prediction gate is what catches the TTS
// service's silent truncation regardless of the concurrency setting.
func (a *Analyzer) classify(record Record) string {
	if record.SizeBytes < a.cfg.Synthesis.MinClipBytes {
		return FlagSuspect
	}
	if record.DurationSeconds < a.cfg.Synthesis.MinClipSeconds {
		return FlagSuspect
	}
	if record.WordCount > 0 && a.cfg.Synthesis.WordsPerMinute > 0 {
		predicted := float64(record.WordCount) / float64(a.cfg.Synthesis.WordsPerMinute) * 60 / a.cfg.SpeechRateFactor()
		if record.DurationSeconds < a.cfg.Synthesis.SuspectRatio*predicted {
			return FlagSuspect
		}
	}
	return FlagOK
}
