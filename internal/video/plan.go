// Package video assembles rendered slides into the briefing MP4.
package video

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/newsreel/internal/timeline"
)

// BuildPlan writes an ffconcat script that shows slidePaths[i] for the
// duration of segment i. The concat demuxer ignores the duration of the last
// entry, so the final slide is listed once more without one.
func BuildPlan(tl timeline.Timeline, slidePaths []string) (string, error) {
	if len(slidePaths) != len(tl.Segments) {
		return "", fmt.Errorf("%w: %d slides, %d segments", ErrSlideMismatch, len(slidePaths), len(tl.Segments))
	}
	if len(slidePaths) == 0 {
		return "", fmt.Errorf("%w: nothing to encode", ErrSlideMismatch)
	}

	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for i, seg := range tl.Segments {
		fmt.Fprintf(&b, "file %s\nduration %d\n", quotePath(slidePaths[i]), seg.DurationSeconds)
	}
	fmt.Fprintf(&b, "file %s\n", quotePath(slidePaths[len(slidePaths)-1]))
	return b.String(), nil
}

// quotePath makes p absolute and single-quotes it for the concat demuxer.
func quotePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return "'" + strings.ReplaceAll(filepath.ToSlash(p), "'", `'\''`) + "'"
}
