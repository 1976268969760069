// Package rendering turns a segment plan into video files: one still-image
// mp4 per segment, cover art looped over the concatenated chapter audio.
// Segments whose output already exists and passes the byte floor are
// skipped, so an interrupted render resumes where it stopped.
package rendering

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"bookreel/internal/artifact"
	"bookreel/internal/chapters"
	"bookreel/internal/config"
	"bookreel/internal/logging"
	"bookreel/internal/media/ffmpeg"
	"bookreel/internal/packing"
	"bookreel/internal/services"
)

// Status describes how a segment ended up.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Outcome is the per-segment result of one render pass.
type Outcome struct {
	Segment    packing.Segment
	Status     Status
	Reason     string
	OutputPath string
}

// Result collects all segment outcomes of a render pass.
type Result struct {
	Outcomes []Outcome
}

// Count returns how many outcomes carry the given status.
func (r Result) Count(status Status) int {
	total := 0
	for _, outcome := range r.Outcomes {
		if outcome.Status == status {
			total++
		}
	}
	return total
}

// CoverProber reports image pixel dimensions. Satisfied by the ffprobe
// client.
type CoverProber interface {
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}

// Assembler renders planned segments with a bounded worker pool.
type Assembler struct {
	cfg     *config.Config
	encoder ffmpeg.Encoder
	prober  CoverProber
	logger  *slog.Logger
}

// NewAssembler constructs an Assembler.
func NewAssembler(cfg *config.Config, encoder ffmpeg.Encoder, prober CoverProber, logger *slog.Logger) *Assembler {
	return &Assembler{
		cfg:     cfg,
		encoder: encoder,
		prober:  prober,
		logger:  logging.NewComponentLogger(logger, "render"),
	}
}

// Run renders every segment in the plan. A segment failure is recorded and
// the remaining segments still render; only a cancelled context or an
// unusable cover aborts the pass.
func (a *Assembler) Run(ctx context.Context, plan packing.Plan) (Result, error) {
	if len(plan.Segments) == 0 {
		return Result{}, nil
	}

	a.checkDiskSpace()

	coverPath, err := a.PrepareCover(ctx)
	if err != nil {
		return Result{}, err
	}

	workers := a.cfg.Video.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]Outcome, len(plan.Segments))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, segment := range plan.Segments {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = a.renderSegment(groupCtx, segment, coverPath)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Outcomes: outcomes}
	a.logger.Info("render pass complete",
		logging.Int("rendered", result.Count(StatusRendered)),
		logging.Int("skipped", result.Count(StatusSkipped)),
		logging.Int("failed", result.Count(StatusFailed)))
	return result, nil
}

func (a *Assembler) renderSegment(ctx context.Context, segment packing.Segment, coverPath string) Outcome {
	outputPath := segment.OutputPath(a.cfg.Paths.VideoDir)
	label := fmt.Sprintf("%d_%d", segment.StartChapter(), segment.EndChapter())
	log := logging.WithContext(services.WithSegment(services.WithStage(ctx, "render"), label), a.logger)
	outcome := Outcome{Segment: segment, OutputPath: outputPath}

	if artifact.ValidVideo(outputPath, a.cfg.Video.MinVideoBytes) {
		log.Debug("video exists, skipping")
		outcome.Status = StatusSkipped
		return outcome
	}

	audioPaths := make([]string, 0, len(segment.Chapters))
	for _, record := range segment.Chapters {
		clip := chapters.ClipPath(a.cfg.Paths.AudioDir, record.Chapter)
		if _, err := os.Stat(clip); err != nil {
			outcome.Status = StatusFailed
			outcome.Reason = fmt.Sprintf("clip for chapter %d missing", record.Chapter)
			log.Error("segment unrenderable", logging.String("reason", outcome.Reason))
			return outcome
		}
		audioPaths = append(audioPaths, clip)
	}

	// The encoder infers the container from the extension, so the partial
	// keeps .mp4 and lives next to the final file for an atomic rename.
	partial := partialVideoPath(outputPath)
	err := a.encoder.RenderStillVideo(ctx, ffmpeg.RenderRequest{
		CoverPath:  coverPath,
		AudioPaths: audioPaths,
		OutputPath: partial,
	})
	if err != nil {
		_ = os.Remove(partial)
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		log.Error("render failed", logging.Error(err))
		return outcome
	}

	info, err := os.Stat(partial)
	if err != nil || info.Size() < a.cfg.Video.MinVideoBytes {
		_ = os.Remove(partial)
		outcome.Status = StatusFailed
		outcome.Reason = "encoder produced an implausibly small file"
		log.Error("render rejected", logging.String("reason", outcome.Reason))
		return outcome
	}
	if err := os.Rename(partial, outputPath); err != nil {
		_ = os.Remove(partial)
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	log.Info("segment rendered",
		logging.Int("chapters", len(segment.Chapters)),
		logging.Float64("seconds", segment.TotalSeconds))
	outcome.Status = StatusRendered
	return outcome
}

// PrepareCover validates the cover image and normalizes it to even pixel
// dimensions, caching the normalized copy in the staging directory so the
// crop runs once per book rather than once per segment.
func (a *Assembler) PrepareCover(ctx context.Context) (string, error) {
	coverPath := a.cfg.Book.CoverImage
	if _, err := os.Stat(coverPath); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "cover", "cover image not readable", err)
	}

	width, height, err := a.prober.Dimensions(ctx, coverPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "cover", "probe cover dimensions", err)
	}
	if width%2 == 0 && height%2 == 0 {
		return coverPath, nil
	}

	cached := filepath.Join(a.cfg.Paths.StagingDir, "cover_even"+filepath.Ext(coverPath))
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}
	a.logger.Info("cropping cover to even dimensions",
		logging.Int("width", width),
		logging.Int("height", height))
	if err := a.encoder.CropToEven(ctx, coverPath, cached); err != nil {
		_ = os.Remove(cached)
		return "", services.Wrap(services.ErrExternalTool, "render", "cover", "crop cover", err)
	}
	return cached, nil
}

// checkDiskSpace warns when the video volume is running low. Rendering
// proceeds regardless; the warning gives the user a chance to abort before
// ffmpeg fills the disk mid-encode.
func (a *Assembler) checkDiskSpace() {
	if a.cfg.Video.MinFreeGiB <= 0 {
		return
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(a.cfg.Paths.VideoDir, &stat); err != nil {
		return
	}
	freeGiB := float64(stat.Bavail) * float64(stat.Bsize) / (1 << 30)
	if freeGiB < float64(a.cfg.Video.MinFreeGiB) {
		a.logger.Warn("low disk space on video volume",
			logging.Float64("free_gib", freeGiB),
			logging.Int("min_gib", a.cfg.Video.MinFreeGiB))
	}
}

func partialVideoPath(final string) string {
	dir, name := filepath.Split(final)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, base+".partial"+ext)
}
