package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/internal/timeline"
)

// ErrSegmentMismatch means the items and the timeline disagree on length.
var ErrSegmentMismatch = errors.New("item count does not match timeline segments")

// SubtitleText is the fixed wording of the intro and outro cues.
type SubtitleText struct {
	IntroLines []string `mapstructure:"intro_lines" yaml:"intro_lines" json:"intro_lines"`
	OutroLines []string `mapstructure:"outro_lines" yaml:"outro_lines" json:"outro_lines"`
}

// DefaultSubtitleText is the Dalsu newsroom wording.
func DefaultSubtitleText() SubtitleText {
	return SubtitleText{
		IntroLines: []string{"안녕하십니까", "수달 아나운서 달수입니다.", "오늘의 뉴스를 전해드리겠습니다."},
		OutroLines: []string{"지금까지 달수 뉴스였습니다.", "내일도 쿨~하게 소식 전해드리겠습니다."},
	}
}

// Subtitles renders one cue per timeline segment: the intro greeting, each
// item's summary and gagline, then the sign-off. Cue bounds are the segment
// bounds.
func Subtitles(items []domain.NewsItem, tl timeline.Timeline, text SubtitleText) ([]byte, error) {
	if len(tl.Segments) != len(items)+2 {
		return nil, fmt.Errorf("%w: %d items, %d segments", ErrSegmentMismatch, len(items), len(tl.Segments))
	}

	blocks := make([]string, 0, len(tl.Segments))
	for i, seg := range tl.Segments {
		var body string
		switch seg.Kind {
		case timeline.KindIntro:
			body = joinNonEmpty(text.IntroLines)
		case timeline.KindOutro:
			body = joinNonEmpty(text.OutroLines)
		default:
			if seg.ItemIndex < 0 || seg.ItemIndex >= len(items) {
				return nil, fmt.Errorf("%w: segment %d points at item %d", ErrSegmentMismatch, i, seg.ItemIndex)
			}
			body = itemCue(items[seg.ItemIndex])
		}
		blocks = append(blocks, fmt.Sprintf("%d\n%s --> %s\n%s\n",
			i+1, FormatTimestamp(seg.StartOffsetSeconds), FormatTimestamp(seg.End()), body))
	}

	return []byte(strings.Join(blocks, "\n")), nil
}

// itemCue shows the summary over the gagline. A cue needs at least one line
// of text, so an item without either falls back to its title.
func itemCue(item domain.NewsItem) string {
	if body := joinNonEmpty([]string{item.Summary, item.Gagline}); body != "" {
		return body
	}
	return item.Title
}

func joinNonEmpty(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// FormatTimestamp renders whole seconds as HH:MM:SS,000.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d,000", seconds/3600, seconds%3600/60, seconds%60)
}

// CueBounds is the time range of one cue, in seconds.
type CueBounds struct {
	Index int
	Start float64
	End   float64
}

// ParseCueBounds reads the timing lines of an SRT document back.
func ParseCueBounds(data []byte) ([]CueBounds, error) {
	var cues []CueBounds
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i, line := range lines {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid timing line %q", line)
		}
		start, err := parseTimestamp(parts[0])
		if err != nil {
			return nil, err
		}
		end, err := parseTimestamp(parts[1])
		if err != nil {
			return nil, err
		}
		index := len(cues) + 1
		if i > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(lines[i-1])); err == nil {
				index = n
			}
		}
		cues = append(cues, CueBounds{Index: index, Start: start, End: end})
	}
	return cues, nil
}

func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
