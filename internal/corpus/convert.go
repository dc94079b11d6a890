// Package corpus converts a directory of analytics exports into the JSON post corpus
// and loads that corpus back for analysis.
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/postcraft/internal/models"
	"github.com/raphaelgruber/postcraft/internal/parser"
)

// CombinedFile is the name of the array document holding every converted record.
const CombinedFile = "all_posts.json"

// ErrNothingToProcess means the input directory holds no source tables at all.
var ErrNothingToProcess = errors.New("nothing to process")

// Options configures a conversion run.
type Options struct {
	// OutputDir receives the JSON files; defaults to the input directory.
	OutputDir string
	// ExtractImages copies embedded workbook media to ImagesDir.
	ExtractImages bool
	// ImagesDir defaults to "<OutputDir>/images".
	ImagesDir string
	// Timezone labels metadata.timezone of every record.
	Timezone string
	// Progress is called after each source file, converted or skipped.
	Progress func(Progress)
}

// Progress reports how far a batch has come.
type Progress struct {
	Done  int
	Total int
	File  string
	Err   error
}

// FileIssue is a per-file problem collected during a batch.
type FileIssue struct {
	File string
	Err  error
}

// Reason is the user-facing explanation for the issue.
func (i FileIssue) Reason() string {
	return i.Err.Error()
}

// Skipped reports whether the file produced no record.
func (i FileIssue) Skipped() bool {
	var w parser.NumericWarning
	return !errors.As(i.Err, &w)
}

// Result summarizes a conversion run.
type Result struct {
	// Records are the converted records in source file order.
	Records []models.Record
	// Written lists the output files, per-record files first then the combined file.
	Written []string
	Issues  []FileIssue
}

// Skipped returns the issues that caused a file to be dropped.
func (r *Result) Skipped() []FileIssue {
	var out []FileIssue
	for _, i := range r.Issues {
		if i.Skipped() {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns the non-fatal issues.
func (r *Result) Warnings() []FileIssue {
	var out []FileIssue
	for _, i := range r.Issues {
		if !i.Skipped() {
			out = append(out, i)
		}
	}
	return out
}

// SourceFiles lists the candidate source tables in dir in lexical order.
func SourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsCandidate(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// Convert turns every source table in dir into a record, writes one JSON file per record
// and the combined array. A bad file never stops the batch; it is reported in Result.Issues.
func Convert(ctx context.Context, dir string, opts Options) (*Result, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = dir
	}
	if opts.ImagesDir == "" {
		opts.ImagesDir = filepath.Join(opts.OutputDir, "images")
	}

	files, err := SourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .xlsx, .xlsm or .csv files in %s", ErrNothingToProcess, dir)
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	res := &Result{}
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, warnings, err := convertFile(filepath.Join(dir, name), opts)
		for _, w := range warnings {
			slog.Warn("numeric value coerced", "file", name, "field", w.Field, "value", w.Value)
			res.Issues = append(res.Issues, FileIssue{File: name, Err: w})
		}
		if err != nil {
			slog.Warn("skipping file", "file", name, "error", err)
			res.Issues = append(res.Issues, FileIssue{File: name, Err: err})
		} else {
			out := filepath.Join(opts.OutputDir, OutputName(rec))
			if err := writeJSON(out, rec); err != nil {
				return res, err
			}
			slog.Info("converted", "file", name, "output", filepath.Base(out))
			res.Records = append(res.Records, rec)
			res.Written = append(res.Written, out)
		}

		if opts.Progress != nil {
			opts.Progress(Progress{Done: i + 1, Total: len(files), File: name, Err: err})
		}
	}

	if len(res.Records) > 0 {
		combined := filepath.Join(opts.OutputDir, CombinedFile)
		if err := writeJSON(combined, res.Records); err != nil {
			return res, err
		}
		res.Written = append(res.Written, combined)
	}
	return res, nil
}

func convertFile(path string, opts Options) (models.Record, []parser.NumericWarning, error) {
	name := filepath.Base(path)

	table, err := parser.LoadTable(path)
	if err != nil {
		return models.Record{}, nil, err
	}

	ex, err := parser.Extract(table, parser.ExtractOptions{SourceFile: name, Timezone: opts.Timezone})
	if err != nil {
		return models.Record{}, nil, err
	}
	rec := ex.Record

	if opts.ExtractImages && parser.IsWorkbook(name) {
		images, err := parser.ExtractImages(path, opts.ImagesDir, recordKey(rec))
		if err != nil {
			slog.Warn("could not extract images", "file", name, "error", err)
		}
		rec = parser.WithImages(rec, images)
	}
	return rec, ex.Warnings, nil
}

// recordKey is the stable identity used in output and image file names.
func recordKey(r models.Record) string {
	switch {
	case r.PostID != "":
		return r.PostID
	case r.Metadata.Date != "":
		return strings.ReplaceAll(r.Metadata.Date, "-", "_")
	default:
		return models.Slugify(strings.TrimSuffix(r.SourceFile, filepath.Ext(r.SourceFile)))
	}
}

// OutputName names a record's JSON file: by date, else post id, else source file stem.
// Two records with the same name overwrite each other; the later source file wins.
func OutputName(r models.Record) string {
	if r.Metadata.Date != "" {
		return "post_" + strings.ReplaceAll(r.Metadata.Date, "-", "_") + ".json"
	}
	return "post_" + recordKey(r) + ".json"
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(path string, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
