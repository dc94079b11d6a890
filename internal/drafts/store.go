// Package drafts persists generated posts as markdown files with YAML front matter.
package drafts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/raphaelgruber/postcraft/internal/models"
	"github.com/raphaelgruber/postcraft/internal/parser"
)

const timestampLayout = "20060102_150405"

// ErrNotFound is returned when no draft matches a name.
var ErrNotFound = errors.New("draft not found")

// Store reads and writes drafts in one directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the drafts directory.
func (s *Store) Dir() string { return s.dir }

// SplitOutput separates generated text into the post body and the image suggestion.
func SplitOutput(text string) (body, imageSuggestion string) {
	before, after, found := strings.Cut(text, models.ImageSuggestionMarker)
	if !found {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// FileName is draft_<mode>_<identifier>[_<variant>]_<YYYYMMDD_HHMMSS>.md.
func FileName(d models.Draft) string {
	ident := d.Identifier()
	if v := models.Slugify(d.Variant); v != "" {
		ident += "_" + v
	}
	return fmt.Sprintf("draft_%s_%s_%s.md", d.Mode, ident, d.CreatedAt.Format(timestampLayout))
}

// Save writes generated output as a new draft. ID and CreatedAt are assigned here.
func (s *Store) Save(meta models.Draft, generated string) (*models.Draft, error) {
	d := meta
	d.ID = uuid.New().String()
	d.CreatedAt = s.now().Truncate(time.Second)
	d.Body, d.ImageSuggestion = SplitOutput(generated)
	if d.Body == "" {
		return nil, fmt.Errorf("save draft: generated post is empty")
	}

	content, err := parser.EncodeFrontMatter(d, d.Body)
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create drafts dir: %w", err)
	}

	d.Path, err = s.uniquePath(FileName(d))
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	if err := os.WriteFile(d.Path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write draft: %w", err)
	}
	slog.Debug("draft saved", "path", d.Path, "id", d.ID)
	return &d, nil
}

// uniquePath appends a counter when two drafts land on the same second.
func (s *Store) uniquePath(name string) (string, error) {
	path := filepath.Join(s.dir, name)
	stem := strings.TrimSuffix(name, ".md")
	for i := 2; ; i++ {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("check draft path: %w", err)
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d.md", stem, i))
	}
}

// Load reads a draft by file name or path.
func (s *Store) Load(name string) (*models.Draft, error) {
	path := name
	if !strings.ContainsRune(name, os.PathSeparator) {
		path = filepath.Join(s.dir, name)
	}
	if !strings.HasSuffix(path, ".md") {
		path += ".md"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read draft: %w", err)
	}

	var d models.Draft
	body, err := parser.DecodeFrontMatter(string(data), &d)
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", filepath.Base(path), err)
	}
	d.Body = strings.TrimSpace(body)
	d.Path = path
	return &d, nil
}

// List returns every draft, newest first. Files that fail to parse are skipped.
func (s *Store) List() ([]models.Draft, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "draft_*.md"))
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	out := make([]models.Draft, 0, len(matches))
	for _, path := range matches {
		d, err := s.Load(path)
		if err != nil {
			slog.Warn("skipping draft", "file", filepath.Base(path), "error", err)
			continue
		}
		out = append(out, *d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Path > out[j].Path
	})
	return out, nil
}

// Markdown renders a draft as a markdown document for display.
func Markdown(d models.Draft) string {
	var sb strings.Builder
	title := d.Topic
	if d.Mode == models.ModeContext {
		title = "Context: " + d.Context
	}
	if title == "" {
		title = "Draft"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if d.Variant != "" {
		fmt.Fprintf(&sb, "*Variant: %s*\n\n", d.Variant)
	}
	sb.WriteString(d.Body)
	sb.WriteString("\n")
	if d.ImageSuggestion != "" {
		fmt.Fprintf(&sb, "\n---\n\n**Image suggestion:** %s\n", d.ImageSuggestion)
	}
	return sb.String()
}

// Render formats a draft for the terminal.
func Render(d models.Draft, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(d))
	if err != nil {
		return "", fmt.Errorf("render draft: %w", err)
	}
	return out, nil
}
