package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// EncodeRequest is one ffconcat plan to encode.
type EncodeRequest struct {
	PlanPath     string
	OutputPath   string
	FPS          int
	TotalSeconds int
	Codec        string
	PixelFormat  string
}

// Encoder turns a slide plan into a video file.
type Encoder interface {
	Encode(ctx context.Context, req EncodeRequest) error
}

// Prober reports the duration of an encoded file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", name, err, lastLines(string(output), 5))
	}
	return output, nil
}

// FFmpegEncoder shells out to ffmpeg.
type FFmpegEncoder struct {
	Binary string
	run    commandRunner
}

// NewFFmpegEncoder uses binary, or "ffmpeg" from PATH when empty.
func NewFFmpegEncoder(binary string) *FFmpegEncoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpegEncoder{Binary: binary, run: defaultCommandRunner}
}

// Encode implements Encoder.
func (e *FFmpegEncoder) Encode(ctx context.Context, req EncodeRequest) error {
	if _, err := e.run(ctx, e.Binary, EncodeArgs(req)...); err != nil {
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	return nil
}

// EncodeArgs is the ffmpeg command line for req: concat demuxer in, constant
// frame rate H.264 out, no audio, cut at the timeline total.
func EncodeArgs(req EncodeRequest) []string {
	codec := req.Codec
	if codec == "" {
		codec = "libx264"
	}
	pixFmt := req.PixelFormat
	if pixFmt == "" {
		pixFmt = "yuv420p"
	}
	fps := req.FPS
	if fps <= 0 {
		fps = 30
	}
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", req.PlanPath,
		"-vf", fmt.Sprintf("fps=%d,format=%s", fps, pixFmt),
		"-c:v", codec,
		"-an",
		"-t", strconv.Itoa(req.TotalSeconds),
		"-movflags", "+faststart",
		req.OutputPath,
	}
}

// FFprobe reads container durations with ffprobe.
type FFprobe struct {
	Binary string
	run    commandRunner
}

// NewFFprobe uses binary, or "ffprobe" from PATH when empty.
func NewFFprobe(binary string) *FFprobe {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &FFprobe{Binary: binary, run: defaultCommandRunner}
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration implements Prober.
func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	output, err := p.run(ctx, p.Binary, "-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe inspect: %w", err)
	}
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, fmt.Errorf("ffprobe parse: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(result.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", result.Format.Duration, err)
	}
	return seconds, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
