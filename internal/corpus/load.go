package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/postcraft/internal/models"
	"github.com/raphaelgruber/postcraft/internal/parser"
)

// TextPost is an example post kept as a plain .txt or .md file.
type TextPost struct {
	File    string
	Content string
}

// Corpus is everything the analyzers read from the examples directory.
type Corpus struct {
	Records   []models.Record
	TextPosts []TextPost
	Issues    []FileIssue
}

// Contents returns the text of every post, records first, skipping empty ones.
func (c *Corpus) Contents() []string {
	out := make([]string, 0, len(c.Records)+len(c.TextPosts))
	for _, r := range c.Records {
		if s := strings.TrimSpace(r.Content); s != "" {
			out = append(out, s)
		}
	}
	for _, p := range c.TextPosts {
		out = append(out, p.Content)
	}
	return out
}

// Scored returns the records that have impressions to rate against.
func (c *Corpus) Scored() []models.Record {
	var out []models.Record
	for _, r := range c.Records {
		if r.Scored() {
			out = append(out, r)
		}
	}
	return out
}

// isRecordFile reports whether a JSON file in the examples dir holds a single record.
func isRecordFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".json") && lower != CombinedFile && !strings.Contains(lower, "example")
}

// IsNoteFile reports whether name is a free-text note or example post.
func IsNoteFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "readme") {
		return false
	}
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".md")
}

// Load reads the per-record JSON files and text posts in dir. When no per-record files
// exist the combined file is used instead. Unparseable files are skipped and reported.
func Load(dir string) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read examples dir: %w", err)
	}

	c := &Corpus{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)

		switch {
		case isRecordFile(name):
			rec, err := readRecord(path)
			if err != nil {
				slog.Warn("skipping unparseable record", "file", name, "error", err)
				c.Issues = append(c.Issues, FileIssue{File: name, Err: err})
				continue
			}
			c.Records = append(c.Records, rec)
		case IsNoteFile(name):
			data, err := os.ReadFile(path)
			if err != nil {
				c.Issues = append(c.Issues, FileIssue{File: name, Err: err})
				continue
			}
			if text := parser.PlainText(string(data)); text != "" {
				c.TextPosts = append(c.TextPosts, TextPost{File: name, Content: text})
			}
		}
	}

	if len(c.Records) == 0 {
		records, err := readCombined(filepath.Join(dir, CombinedFile))
		if err == nil {
			c.Records = records
		} else if !os.IsNotExist(err) {
			c.Issues = append(c.Issues, FileIssue{File: CombinedFile, Err: err})
		}
	}
	return c, nil
}

// LoadRecords returns only the JSON records in dir.
func LoadRecords(dir string) ([]models.Record, error) {
	c, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return c.Records, nil
}

func readRecord(path string) (models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Record{}, err
	}
	var rec models.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Record{}, fmt.Errorf("parse record: %w", err)
	}
	return rec, nil
}

func readCombined(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", CombinedFile, err)
	}
	return records, nil
}
