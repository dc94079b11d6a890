package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Exchange is one logged prompt/response pair.
type Exchange struct {
	ID         string    `json:"id"`
	Provider   string    `json:"provider"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// ExchangeLog records every call of the wrapped generator as a JSON file.
type ExchangeLog struct {
	next     Generator
	dir      string
	provider string
	now      func() time.Time
}

// NewExchangeLog wraps next, writing exchanges to <cacheDir>/exchanges.
func NewExchangeLog(next Generator, cacheDir, provider string) *ExchangeLog {
	return &ExchangeLog{
		next:     next,
		dir:      filepath.Join(cacheDir, "exchanges"),
		provider: provider,
		now:      time.Now,
	}
}

// Generate delegates to the wrapped generator and logs the exchange.
// Logging failures are reported but never fail the generation.
func (l *ExchangeLog) Generate(ctx context.Context, prompt string) (string, error) {
	start := l.now()
	out, genErr := l.next.Generate(ctx, prompt)

	ex := Exchange{
		ID:         uuid.New().String(),
		Provider:   l.provider,
		StartedAt:  start.UTC(),
		DurationMS: l.now().Sub(start).Milliseconds(),
		Prompt:     prompt,
		Response:   out,
	}
	if genErr != nil {
		ex.Error = genErr.Error()
	}
	if path, err := l.write(ex); err != nil {
		slog.Warn("failed to log exchange", "error", err)
	} else {
		slog.Debug("exchange logged", "path", path)
	}
	return out, genErr
}

func (l *ExchangeLog) write(ex Exchange) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create exchange dir: %w", err)
	}
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal exchange: %w", err)
	}
	name := fmt.Sprintf("%s_%s.json", ex.StartedAt.Format("20060102_150405"), ex.ID[:8])
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write exchange: %w", err)
	}
	return path, nil
}

// ReadExchanges loads every logged exchange in cacheDir, oldest first.
func ReadExchanges(cacheDir string) ([]Exchange, error) {
	dir := filepath.Join(cacheDir, "exchanges")
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}

	out := make([]Exchange, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read exchange: %w", err)
		}
		var ex Exchange
		if err := json.Unmarshal(data, &ex); err != nil {
			slog.Warn("skipping unreadable exchange", "file", filepath.Base(path), "error", err)
			continue
		}
		out = append(out, ex)
	}
	return out, nil
}
