// Package timeline assigns every briefing segment a duration and a start
// offset. The script, the subtitles and the video all read the same Timeline.
package timeline

import "github.com/Adda-Baaj/newsreel/internal/domain"

// Default segment lengths, in seconds.
const (
	DefaultIntroSeconds   = 6
	DefaultClosingSeconds = 6
	DefaultItemSeconds    = 22
)

// Kind identifies what a segment shows.
type Kind string

const (
	KindIntro Kind = "intro"
	KindItem  Kind = "item"
	KindOutro Kind = "outro"
)

// Config holds segment durations in seconds. Zero or negative values fall
// back to the package defaults.
type Config struct {
	IntroSeconds       int `mapstructure:"intro_seconds" yaml:"intro_seconds" json:"intro_seconds"`
	ClosingSeconds     int `mapstructure:"closing_seconds" yaml:"closing_seconds" json:"closing_seconds"`
	DefaultItemSeconds int `mapstructure:"item_seconds" yaml:"item_seconds" json:"item_seconds"`
}

func (c Config) withDefaults() Config {
	if c.IntroSeconds <= 0 {
		c.IntroSeconds = DefaultIntroSeconds
	}
	if c.ClosingSeconds <= 0 {
		c.ClosingSeconds = DefaultClosingSeconds
	}
	if c.DefaultItemSeconds <= 0 {
		c.DefaultItemSeconds = DefaultItemSeconds
	}
	return c
}

// Segment is one contiguous span of the briefing.
type Segment struct {
	Kind               Kind `json:"kind"`
	ItemIndex          int  `json:"item_index"` // -1 for intro and outro
	DurationSeconds    int  `json:"duration_seconds"`
	StartOffsetSeconds int  `json:"start_offset_seconds"`
}

// End is the offset at which the segment stops.
func (s Segment) End() int { return s.StartOffsetSeconds + s.DurationSeconds }

// Timeline is the ordered segment list: intro, one segment per item, outro.
type Timeline struct {
	Segments []Segment `json:"segments"`
}

// TotalSeconds is the length of the whole briefing.
func (t Timeline) TotalSeconds() int {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End()
}

// Intro returns the opening segment.
func (t Timeline) Intro() Segment { return t.Segments[0] }

// Outro returns the closing segment.
func (t Timeline) Outro() Segment { return t.Segments[len(t.Segments)-1] }

// Items returns the item segments in rank order.
func (t Timeline) Items() []Segment {
	if len(t.Segments) < 2 {
		return nil
	}
	return t.Segments[1 : len(t.Segments)-1]
}

// Allocate returns a copy of items with durations and offsets filled in, and
// the matching Timeline. An item that already carries a positive duration
// keeps it. Offsets are the running sum of all earlier durations, starting
// at zero after the intro.
func Allocate(items []domain.NewsItem, cfg Config) ([]domain.NewsItem, Timeline) {
	cfg = cfg.withDefaults()

	out := make([]domain.NewsItem, len(items))
	copy(out, items)

	segments := make([]Segment, 0, len(items)+2)
	segments = append(segments, Segment{Kind: KindIntro, ItemIndex: -1, DurationSeconds: cfg.IntroSeconds})
	offset := cfg.IntroSeconds

	for i := range out {
		if out[i].DurationSeconds <= 0 {
			out[i].DurationSeconds = cfg.DefaultItemSeconds
		}
		out[i].StartOffsetSeconds = offset
		segments = append(segments, Segment{
			Kind:               KindItem,
			ItemIndex:          i,
			DurationSeconds:    out[i].DurationSeconds,
			StartOffsetSeconds: offset,
		})
		offset += out[i].DurationSeconds
	}

	segments = append(segments, Segment{
		Kind:               KindOutro,
		ItemIndex:          -1,
		DurationSeconds:    cfg.ClosingSeconds,
		StartOffsetSeconds: offset,
	})

	return out, Timeline{Segments: segments}
}
