// Package render turns the enriched items and their timeline into the text
// artifacts of a briefing: the Markdown script and the SRT subtitle track.
package render

import (
	"fmt"
	"strings"

	"github.com/Adda-Baaj/newsreel/internal/domain"
)

// ScriptText is the fixed wording of the Markdown script.
type ScriptText struct {
	IntroHeading   string   `mapstructure:"intro_heading" yaml:"intro_heading" json:"intro_heading"`
	IntroLines     []string `mapstructure:"intro_lines" yaml:"intro_lines" json:"intro_lines"`
	ItemHeading    string   `mapstructure:"item_heading" yaml:"item_heading" json:"item_heading"` // fmt verb %d receives the 1-based index
	TitleLabel     string   `mapstructure:"title_label" yaml:"title_label" json:"title_label"`
	SummaryLabel   string   `mapstructure:"summary_label" yaml:"summary_label" json:"summary_label"`
	GaglineLabel   string   `mapstructure:"gagline_label" yaml:"gagline_label" json:"gagline_label"`
	ClosingHeading string   `mapstructure:"closing_heading" yaml:"closing_heading" json:"closing_heading"`
	ClosingLines   []string `mapstructure:"closing_lines" yaml:"closing_lines" json:"closing_lines"`
}

// DefaultScriptText is the Dalsu newsroom wording.
func DefaultScriptText() ScriptText {
	return ScriptText{
		IntroHeading:   "## 🎬 인트로",
		IntroLines:     []string{"안녕하십니까, 수달 아나운서 달수입니다.", "오늘의 뉴스를 전해드리겠습니다."},
		ItemHeading:    "### 뉴스 %d",
		TitleLabel:     "- 제목: ",
		SummaryLabel:   "- 요약: ",
		GaglineLabel:   "- 능청 멘트: ",
		ClosingHeading: "## 🎤 클로징",
		ClosingLines:   []string{"지금까지 달수 뉴스였습니다.", "내일도 쿨~하게 소식 전해드리겠습니다."},
	}
}

// Script renders the Markdown briefing. The output depends only on its
// inputs, so equal items produce byte-identical documents.
func Script(items []domain.NewsItem, text ScriptText) []byte {
	lines := make([]string, 0, len(text.IntroLines)+len(text.ClosingLines)+len(items)*5+3)

	lines = append(lines, text.IntroHeading)
	lines = append(lines, text.IntroLines...)
	lines = append(lines, "")

	for i, item := range items {
		lines = append(lines,
			fmt.Sprintf(text.ItemHeading, i+1),
			text.TitleLabel+item.Title,
			text.SummaryLabel+item.Summary,
			text.GaglineLabel+item.Gagline,
			"",
		)
	}

	lines = append(lines, text.ClosingHeading)
	lines = append(lines, text.ClosingLines...)

	return []byte(strings.Join(lines, "\n"))
}
