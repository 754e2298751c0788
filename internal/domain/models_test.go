package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsItemJSONUsesSnakeCase(t *testing.T) {
	item := NewsItem{
		Rank:               2,
		Title:              "헤드라인",
		URL:                "https://news.nate.com/view/2",
		PreviewImageURL:    "https://img.test/2.jpg",
		LocalImagePath:     "out/20240517/news_2.jpg",
		Summary:            "요약",
		Gagline:            "쿨~",
		DurationSeconds:    22,
		StartOffsetSeconds: 28,
		Outcomes:           Outcomes{PreviewImage: Ok(), LocalImage: Empty("no og:image")},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{
		"rank", "title", "url", "preview_image_url", "local_image_path",
		"summary", "gagline", "duration_seconds", "start_offset_seconds", "outcomes",
	} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "PreviewImageURL")

	var outcomes map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(fields["outcomes"], &outcomes))
	assert.Contains(t, outcomes, "preview_image")
}

func TestFieldOutcomeHelpers(t *testing.T) {
	assert.True(t, Ok().OK())
	assert.False(t, Empty("none").OK())
	assert.Equal(t, OutcomeFailed, Failed(nil).State)
	assert.Empty(t, Failed(nil).Reason)
}
