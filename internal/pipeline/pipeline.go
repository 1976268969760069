// Package pipeline wires the stages together: synthesis, duration analysis,
// segment packing, rendering, and the optional upload. Each stage is
// resumable on its own; the pipeline adds a workspace lock, a run identity
// for log correlation, and the stage ordering.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bookreel/internal/artifact"
	"bookreel/internal/chapters"
	"bookreel/internal/config"
	"bookreel/internal/durations"
	"bookreel/internal/logging"
	"bookreel/internal/media/ffmpeg"
	"bookreel/internal/media/ffprobe"
	"bookreel/internal/packing"
	"bookreel/internal/rendering"
	"bookreel/internal/services"
	"bookreel/internal/services/rclone"
	"bookreel/internal/services/tts"
	"bookreel/internal/synthesis"
)

// Prober is the ffprobe surface the pipeline needs.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}

// Runner executes pipeline stages against one workspace.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	tts     tts.Client
	encoder ffmpeg.Encoder
	prober  Prober
	syncer  rclone.Syncer
}

// Option overrides a Runner dependency, primarily for tests.
type Option func(*Runner)

// WithTTSClient injects a TTS client.
func WithTTSClient(client tts.Client) Option {
	return func(r *Runner) { r.tts = client }
}

// WithEncoder injects an encoder.
func WithEncoder(encoder ffmpeg.Encoder) Option {
	return func(r *Runner) { r.encoder = encoder }
}

// WithProber injects a media prober.
func WithProber(prober Prober) Option {
	return func(r *Runner) { r.prober = prober }
}

// WithSyncer injects an upload syncer.
func WithSyncer(syncer rclone.Syncer) Option {
	return func(r *Runner) { r.syncer = syncer }
}

// New constructs a Runner with clients built from the configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	ttsClient, err := tts.New(cfg.Synthesis.TTSBinary)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "tts client", err)
	}

	runner := &Runner{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		tts:     ttsClient,
		encoder: ffmpeg.New(cfg.Video.FFmpegBinary),
		prober:  ffprobe.New(cfg.Video.FFprobeBinary),
	}
	if cfg.Upload.Enabled {
		syncer, err := rclone.New(cfg.Upload.RcloneBinary)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "rclone client", err)
		}
		runner.syncer = syncer
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// RunOptions narrows a full pipeline run.
type RunOptions struct {
	Start      int
	End        int
	Chapters   []int
	Force      artifact.ForceSet
	SkipUpload bool
}

// Report aggregates the results of one full run.
type Report struct {
	RunID     string
	Chapters  int
	Missing   []int
	Synthesis *synthesis.Result
	Durations durations.Summary
	Plan      packing.Plan
	Render    rendering.Result
	Uploaded  bool
	UploadErr error
}

// Run executes the full pipeline under the workspace lock: synthesis,
// duration analysis, packing, rendering, then upload when enabled. An
// upload failure is recorded in the report, not returned; every local
// artifact is already committed by then.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	unlock, err := r.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, r.logger)
	log.Info("pipeline run starting", logging.String("book", r.cfg.Book.Name))

	report := &Report{RunID: runID}

	selected, missing, err := r.selectChapters(opts)
	if err != nil {
		return nil, err
	}
	report.Chapters = len(selected)
	report.Missing = missing
	if len(missing) > 0 {
		log.Warn("requested chapters not found", logging.Any("chapters", missing))
	}

	synthResult, err := r.Synthesize(ctx, selected, opts.Force)
	if err != nil {
		return nil, err
	}
	report.Synthesis = synthResult

	summary, err := r.Analyze(ctx, selected)
	if err != nil {
		return nil, err
	}
	report.Durations = summary

	plan, err := r.Pack(ctx)
	if err != nil {
		return nil, err
	}
	report.Plan = plan

	renderResult, err := r.Render(ctx, plan)
	if err != nil {
		return nil, err
	}
	report.Render = renderResult

	if r.cfg.Upload.Enabled && !opts.SkipUpload {
		if err := r.Upload(ctx); err != nil {
			log.Error("upload failed, local artifacts are intact", logging.Error(err))
			report.UploadErr = err
		} else {
			report.Uploaded = true
		}
	}

	log.Info("pipeline run finished",
		logging.Int("chapters", report.Chapters),
		logging.Int("segments", len(plan.Segments)),
		logging.Bool("uploaded", report.Uploaded))
	return report, nil
}

// Synthesize runs the TTS stage over the given chapters.
func (r *Runner) Synthesize(ctx context.Context, chaps []chapters.Chapter, force artifact.ForceSet) (*synthesis.Result, error) {
	pool := synthesis.NewPool(r.cfg, r.tts, r.prober, r.logger)
	return pool.Run(ctx, chaps, force)
}

// Analyze rebuilds the duration index for the given chapters.
func (r *Runner) Analyze(ctx context.Context, chaps []chapters.Chapter) (durations.Summary, error) {
	store, err := durations.Open(r.cfg)
	if err != nil {
		return durations.Summary{}, err
	}
	defer store.Close()

	analyzer := durations.NewAnalyzer(r.cfg, store, r.prober, r.logger)
	return analyzer.Run(ctx, chaps)
}

// Pack reads the duration index and builds the segment plan.
func (r *Runner) Pack(ctx context.Context) (packing.Plan, error) {
	store, err := durations.Open(r.cfg)
	if err != nil {
		return packing.Plan{}, err
	}
	defer store.Close()

	records, err := store.List(ctx)
	if err != nil {
		return packing.Plan{}, err
	}
	return packing.Build(records, r.cfg.TargetVideoSeconds())
}

// Render renders the plan's segments.
func (r *Runner) Render(ctx context.Context, plan packing.Plan) (rendering.Result, error) {
	assembler := rendering.NewAssembler(r.cfg, r.encoder, r.prober, r.logger)
	return assembler.Run(ctx, plan)
}

// Upload copies the video directory to the configured remote.
func (r *Runner) Upload(ctx context.Context) error {
	if r.syncer == nil {
		return services.Wrap(services.ErrConfiguration, "upload", "sync", "upload is not enabled", nil)
	}
	return r.syncer.Copy(ctx, r.cfg.Paths.VideoDir, r.cfg.Upload.Remote, r.cfg.Book.RemoteFolder)
}

// SelectChapters scans the chapter directory and applies the run's
// narrowing options. An explicit chapter list wins over a range.
func (r *Runner) SelectChapters(opts RunOptions) ([]chapters.Chapter, []int, error) {
	return r.selectChapters(opts)
}

func (r *Runner) selectChapters(opts RunOptions) ([]chapters.Chapter, []int, error) {
	all, err := chapters.Scan(r.cfg.Paths.ChaptersDir)
	if err != nil {
		return nil, nil, err
	}
	selected, missing := chapters.Filter(all, opts.Start, opts.End, opts.Chapters)
	return selected, missing, nil
}

// acquireLock takes the workspace lock so two runs never race on the same
// audio and video directories.
func (r *Runner) acquireLock() (func(), error) {
	lockPath := filepath.Join(r.cfg.Paths.StagingDir, "bookreel.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "lock",
			fmt.Sprintf("another run holds the workspace lock (%s)", lockPath), nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
