package crawler

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultGagline is the anchor's sign-off line under every item.
const DefaultGagline = "오늘도 달수는 쿨~합니다!"

// GaglineFunc derives the caption line for an item from its title.
type GaglineFunc func(title string) string

// FixedGagline ignores the title and always returns line.
func FixedGagline(line string) GaglineFunc {
	return func(string) string { return line }
}

// NewGagline compiles a text/template with a .Title field. A template
// without actions is the fixed-line case.
func NewGagline(text string) (GaglineFunc, error) {
	if strings.TrimSpace(text) == "" {
		return FixedGagline(DefaultGagline), nil
	}
	if !strings.Contains(text, "{{") {
		return FixedGagline(text), nil
	}

	tmpl, err := template.New("gagline").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse gagline template: %w", err)
	}
	// Probe once so field typos fail at startup, not per item.
	if err := tmpl.Execute(&strings.Builder{}, gaglineData{Title: "probe"}); err != nil {
		return nil, fmt.Errorf("execute gagline template: %w", err)
	}

	return func(title string) string {
		var b strings.Builder
		if err := tmpl.Execute(&b, gaglineData{Title: title}); err != nil {
			return DefaultGagline
		}
		return strings.TrimSpace(b.String())
	}, nil
}

type gaglineData struct {
	Title string
}
