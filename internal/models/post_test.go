package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEngagementRate(t *testing.T) {
	tests := []struct {
		name string
		e    Engagement
		want float64
	}{
		{"no impressions", Engagement{Reactions: 10}, 0},
		{"counts", Engagement{Impressions: 1000, Reactions: 40, Comments: 8, Shares: 2}, 0.05},
		{"clicks ignored", Engagement{Impressions: 100, Clicks: 50}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EngagementRate(tt.e), 1e-12)
		})
	}
}

func TestRecordRateIgnoresStoredValue(t *testing.T) {
	r := Record{Engagement: Engagement{Impressions: 200, Reactions: 2, EngagementRate: 1.0}}
	assert.InDelta(t, 0.01, r.Rate(), 1e-12)
	assert.True(t, r.Scored())
}

func TestRecordUnmarshalLegacyCharacteristics(t *testing.T) {
	data := []byte(`{
		"post_id": "42",
		"content": "hello",
		"post_characteristics": {"type": "image", "has_image": true, "word_count": 1}
	}`)

	var r Record
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, "42", r.PostID)
	assert.Equal(t, PostTypeImage, r.Characteristics.Type)
	assert.True(t, r.Characteristics.HasImage)
	assert.Equal(t, 1, r.Characteristics.WordCount)
	assert.Equal(t, []string{}, r.Characteristics.Hashtags)
}

func TestRecordMarshalAlwaysHasArrays(t *testing.T) {
	r := Record{PostID: "1"}
	r.Normalize()
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"hashtags":[]`)
	assert.Contains(t, string(out), `"image_files":[]`)
	assert.Contains(t, string(out), `"type":"text_only"`)
}

func TestRecordHourAndPublishedAt(t *testing.T) {
	r := Record{Metadata: Metadata{Date: "2025-09-30", Time: "06:54"}}
	hour, ok := r.Hour()
	require.True(t, ok)
	assert.Equal(t, 6, hour)

	at, ok := r.PublishedAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 30, 6, 54, 0, 0, time.UTC), at)

	_, ok = Record{}.PublishedAt()
	assert.False(t, ok)
}

func TestContextLegacyAngles(t *testing.T) {
	doc := `
name: ai
topic: AI at work
themes: [agents, evals]
recent_angles_covered:
  - "2025-01-01: why agents fail"
`
	var c Context
	require.NoError(t, yaml.Unmarshal([]byte(doc), &c))
	assert.Equal(t, "ai", c.Name)
	assert.Equal(t, []string{"2025-01-01: why agents fail"}, c.CoveredAngles)
}

func TestContextUncoveredThemes(t *testing.T) {
	c := Context{
		Themes:        []string{"Agents", "Evals", "Cost"},
		CoveredAngles: []string{"2025-01-01: why agents fail in prod"},
	}
	assert.Equal(t, []string{"Evals", "Cost"}, c.UncoveredThemes())

	c.CoveredAngles = append(c.CoveredAngles, "2025-01-08: evals 101", "2025-01-15: cost of tokens")
	assert.Equal(t, c.Themes, c.UncoveredThemes(), "all covered restarts the rotation")
}

func TestContextUncoveredThemes_WordBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		themes []string
		angles []string
		want   []string
	}{
		{
			name:   "short theme inside longer words",
			themes: []string{"AI", "Hiring"},
			angles: []string{"2025-01-01: how to maintain focus", "2025-01-02: what she said about hiring"},
			want:   []string{"AI"},
		},
		{
			name:   "whole word match is covered",
			themes: []string{"AI", "Remote work"},
			angles: []string{"2025-01-01: AI pair programming"},
			want:   []string{"Remote work"},
		},
		{
			name:   "phrase and symbols",
			themes: []string{"C++", "remote work"},
			angles: []string{"2025-01-01: Remote Work rituals"},
			want:   []string{"C++"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Context{Themes: tt.themes, CoveredAngles: tt.angles}
			assert.Equal(t, tt.want, c.UncoveredThemes())
		})
	}
}

func TestContextWithCoveredAngle(t *testing.T) {
	c := Context{CoveredAngles: []string{"2025-01-01: first"}}
	day := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

	next := c.WithCoveredAngle(day, "  second  ")
	assert.Equal(t, []string{"2025-01-01: first", "2025-02-03: second"}, next.CoveredAngles)
	assert.Len(t, c.CoveredAngles, 1, "original is not modified")
}

func TestContextRecentAngles(t *testing.T) {
	c := Context{CoveredAngles: []string{"a", "b", "c", "d"}}
	assert.Equal(t, []string{"c", "d"}, c.RecentAngles(2))
	assert.Equal(t, c.CoveredAngles, c.RecentAngles(10))
}

func TestDraftIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  string
	}{
		{"context", Draft{Mode: ModeContext, Context: "AI Agents"}, "ai-agents"},
		{"manual topic", Draft{Mode: ModeManual, Topic: "Remote work tips"}, "remote-work-tips"},
		{"long topic truncated", Draft{Mode: ModeManual, Topic: "An extremely long topic that goes on and on"}, "an-extremely-long-topic-that-g"},
		{"empty", Draft{Mode: ModeManual}, "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.draft.Identifier())
		})
	}
}
