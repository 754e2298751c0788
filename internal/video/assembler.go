package video

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Adda-Baaj/newsreel/internal/logger"
	"github.com/Adda-Baaj/newsreel/internal/timeline"
)

// ErrSlideMismatch means slides and timeline segments do not pair up.
var ErrSlideMismatch = errors.New("slide count does not match timeline segments")

// Config controls encoding.
type Config struct {
	FPS         int    `mapstructure:"fps" yaml:"fps" json:"fps"`
	Codec       string `mapstructure:"codec" yaml:"codec" json:"codec"`
	PixelFormat string `mapstructure:"pixel_format" yaml:"pixel_format" json:"pixel_format"`
	FFmpegPath  string `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path" json:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path" yaml:"ffprobe_path" json:"ffprobe_path"`
	Verify      bool   `mapstructure:"verify" yaml:"verify" json:"verify"`
	KeepPlan    bool   `mapstructure:"keep_plan" yaml:"keep_plan" json:"keep_plan"`
}

// Assembler concatenates slides into one silent video.
type Assembler struct {
	cfg     Config
	encoder Encoder
	prober  Prober
	log     logger.Logger
}

// NewAssembler wires an encoder and an optional prober. A nil encoder means
// ffmpeg; prober is only consulted when cfg.Verify is set.
func NewAssembler(cfg Config, encoder Encoder, prober Prober, log logger.Logger) *Assembler {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if encoder == nil {
		encoder = NewFFmpegEncoder(cfg.FFmpegPath)
	}
	if prober == nil && cfg.Verify {
		prober = NewFFprobe(cfg.FFprobePath)
	}
	return &Assembler{cfg: cfg, encoder: encoder, prober: prober, log: logger.Ensure(log)}
}

// Assemble encodes slidePaths, one per timeline segment, into outPath.
func (a *Assembler) Assemble(ctx context.Context, tl timeline.Timeline, slidePaths []string, outPath string) error {
	plan, err := BuildPlan(tl, slidePaths)
	if err != nil {
		return err
	}

	planPath := outPath + ".ffconcat"
	if err := os.WriteFile(planPath, []byte(plan), 0o644); err != nil {
		return fmt.Errorf("write concat plan: %w", err)
	}
	if !a.cfg.KeepPlan {
		defer os.Remove(planPath)
	}

	req := EncodeRequest{
		PlanPath:     planPath,
		OutputPath:   outPath,
		FPS:          a.cfg.FPS,
		TotalSeconds: tl.TotalSeconds(),
		Codec:        a.cfg.Codec,
		PixelFormat:  a.cfg.PixelFormat,
	}
	a.log.InfoObj("encoding video", "video_encode", map[string]any{
		"output":        outPath,
		"slides":        len(slidePaths),
		"total_seconds": req.TotalSeconds,
		"fps":           req.FPS,
	})
	if err := a.encoder.Encode(ctx, req); err != nil {
		return err
	}

	if a.cfg.Verify && a.prober != nil {
		return a.verify(ctx, outPath, req.TotalSeconds)
	}
	return nil
}

// verify checks the encoded length is within one frame of the timeline.
func (a *Assembler) verify(ctx context.Context, outPath string, total int) error {
	got, err := a.prober.Duration(ctx, outPath)
	if err != nil {
		return fmt.Errorf("verify video: %w", err)
	}
	tolerance := 1 / float64(a.cfg.FPS)
	if math.Abs(got-float64(total)) > tolerance+1e-6 {
		return fmt.Errorf("verify video: duration %.3fs, want %ds", got, total)
	}
	a.log.DebugObj("video duration verified", "video_verify", map[string]any{
		"output":   outPath,
		"duration": got,
	})
	return nil
}
