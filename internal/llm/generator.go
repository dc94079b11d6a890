// Package llm provides the text generation backends: an external command or a langchaingo model.
package llm

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/postcraft/internal/config"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New creates the generator selected by cfg. When exchange logging is enabled,
// every call is recorded under cacheDir.
func New(ctx context.Context, cfg config.Generator, cacheDir string) (Generator, error) {
	var gen Generator
	switch cfg.Provider {
	case config.ProviderCommand, "":
		gen = NewCommand(cfg.Command, cfg.Args, cfg.Timeout)
	default:
		m, err := NewModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		gen = &timeoutGenerator{next: m, timeout: cfg.Timeout}
	}

	if cfg.LogExchanges {
		gen = NewExchangeLog(gen, cacheDir, providerLabel(cfg))
	}
	return gen, nil
}

func providerLabel(cfg config.Generator) string {
	if cfg.Provider == "" || cfg.Provider == config.ProviderCommand {
		return fmt.Sprintf("%s:%s", config.ProviderCommand, cfg.Command)
	}
	if cfg.Model == "" {
		return cfg.Provider
	}
	return fmt.Sprintf("%s:%s", cfg.Provider, cfg.Model)
}
