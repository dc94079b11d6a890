package drafts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/postcraft/internal/models"
)

func fixedStore(t *testing.T, at time.Time) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "drafts"))
	s.now = func() time.Time { return at }
	return s
}

func TestSplitOutput(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantBody  string
		wantImage string
	}{
		{"with suggestion", "Post body\n\n---IMAGE SUGGESTION---\nA whiteboard sketch\n", "Post body", "A whiteboard sketch"},
		{"without suggestion", "\n Just the post \n", "Just the post", ""},
		{"empty suggestion", "Body\n---IMAGE SUGGESTION---", "Body", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, image := SplitOutput(tt.in)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantImage, image)
		})
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 10, 1, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name  string
		draft models.Draft
		want  string
	}{
		{"manual", models.Draft{Mode: models.ModeManual, Topic: "Remote Work Tips", CreatedAt: at}, "draft_manual_remote-work-tips_20251001_140509.md"},
		{"context", models.Draft{Mode: models.ModeContext, Context: "ai_engineering", CreatedAt: at}, "draft_context_ai-engineering_20251001_140509.md"},
		{"variant", models.Draft{Mode: models.ModeManual, Topic: "x", Variant: "Data & Insights", CreatedAt: at}, "draft_manual_x_data--insights_20251001_140509.md"},
		{"no topic", models.Draft{Mode: models.ModeManual, CreatedAt: at}, "draft_manual_untitled_20251001_140509.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.draft))
		})
	}
}

func TestStore_SaveLoad(t *testing.T) {
	at := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	s := fixedStore(t, at)

	saved, err := s.Save(models.Draft{Mode: models.ModeManual, Topic: "Hiring", Goal: "Attract engineers"},
		"We are hiring.\n\nJoin us.\n\n---IMAGE SUGGESTION---\nTeam photo")
	require.NoError(t, err)

	assert.Len(t, saved.ID, 36)
	assert.Equal(t, "We are hiring.\n\nJoin us.", saved.Body)
	assert.Equal(t, "Team photo", saved.ImageSuggestion)
	assert.Equal(t, "draft_manual_hiring_20251001_090000.md", filepath.Base(saved.Path))

	data, err := os.ReadFile(saved.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\nid: "+saved.ID+"\nmode: manual\n"))
	assert.NotContains(t, string(data), models.ImageSuggestionMarker)

	loaded, err := s.Load(filepath.Base(saved.Path))
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, saved.Body, loaded.Body)
	assert.Equal(t, "Attract engineers", loaded.Goal)
	assert.True(t, at.Equal(loaded.CreatedAt))

	_, err = s.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveRejectsEmpty(t *testing.T) {
	s := fixedStore(t, time.Now())
	_, err := s.Save(models.Draft{Mode: models.ModeManual, Topic: "x"}, "\n---IMAGE SUGGESTION---\nonly an image")
	assert.Error(t, err)
}

func TestStore_SameSecondDoesNotOverwrite(t *testing.T) {
	s := fixedStore(t, time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC))
	meta := models.Draft{Mode: models.ModeContext, Context: "ai"}

	a, err := s.Save(meta, "first")
	require.NoError(t, err)
	b, err := s.Save(meta, "second")
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, "draft_context_ai_20251001_090000_2.md", filepath.Base(b.Path))
}

func TestStore_UniquePathStatError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	s := NewStore(file)
	_, err := s.uniquePath("draft_manual_x_20251001_090000.md")
	require.Error(t, err, "a stat failure other than not-exist must not loop")
	assert.Contains(t, err.Error(), "check draft path")
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := fixedStore(t, time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC))
	_, err := s.Save(models.Draft{Mode: models.ModeManual, Topic: "old"}, "old post")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2025, 10, 3, 9, 0, 0, 0, time.UTC) }
	_, err = s.Save(models.Draft{Mode: models.ModeManual, Topic: "new"}, "new post")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "draft_broken.md"), []byte("---\nid: [\n---\nx"), 0o644))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2, "unparseable drafts are skipped")
	assert.Equal(t, "new", list[0].Topic)
	assert.Equal(t, "old", list[1].Topic)

	empty, err := NewStore(filepath.Join(t.TempDir(), "none")).List()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMarkdownAndRender(t *testing.T) {
	d := models.Draft{Mode: models.ModeContext, Context: "ai", Variant: "Story-Driven", Body: "Hello readers", ImageSuggestion: "A sunrise"}

	md := Markdown(d)
	assert.True(t, strings.HasPrefix(md, "# Context: ai\n\n*Variant: Story-Driven*\n\nHello readers\n"))
	assert.Contains(t, md, "**Image suggestion:** A sunrise")

	out, err := Render(d, 60)
	require.NoError(t, err)
	assert.Contains(t, out, "readers")
	assert.Contains(t, out, "sunrise")
}
