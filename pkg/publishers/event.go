package publishers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/internal/logger"
)

// EventTypeBriefingGenerated is emitted once per successful run.
const EventTypeBriefingGenerated = "briefing.generated"

// Logger is the logging contract publishers write to.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger { return logger.Ensure(log) }

// Artifacts are the files a run produced.
type Artifacts struct {
	Directory string `json:"directory"`
	Script    string `json:"script"`
	Subtitles string `json:"subtitles"`
	Video     string `json:"video"`
}

// Event describes a finished briefing.
type Event struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	ProviderID   string            `json:"provider_id"`
	RunDate      string            `json:"run_date"`
	Items        []domain.NewsItem `json:"items"`
	Artifacts    Artifacts         `json:"artifacts"`
	TotalSeconds int               `json:"total_seconds"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// attributes are the routing attributes attached to queue messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type":  e.Type,
		"provider_id": e.ProviderID,
		"run_date":    e.RunDate,
	}
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// PublishAll sends evt to every publisher. A failing sink does not stop the
// others; all failures are returned joined.
func PublishAll(ctx context.Context, pubs []Publisher, evt Event, log Logger) error {
	log = ensureLogger(log)

	var errs []error
	for _, pub := range pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			log.WarnObj("publisher failed", "publisher_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"event_id":     evt.ID,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("publisher %s: %w", pub.ID(), err))
			continue
		}
		log.InfoObj("event published", "publisher_delivery", map[string]any{
			"publisher_id": pub.ID(),
			"event_id":     evt.ID,
		})
	}
	return errors.Join(errs...)
}
