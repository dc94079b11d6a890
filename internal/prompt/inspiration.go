package prompt

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/postcraft/internal/corpus"
	"github.com/raphaelgruber/postcraft/internal/parser"
)

// Bounds for the number of notes sampled into one prompt.
const (
	MinInspirations = 2
	MaxInspirations = 3
)

// Inspiration is one free-text note offered to the generator as creative fuel.
type Inspiration struct {
	File    string
	Content string
}

// LoadInspirationPool reads every non-empty .txt/.md note in dir, README excluded,
// in lexical order. A missing directory is an empty pool.
func LoadInspirationPool(dir string) ([]Inspiration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inspiration dir: %w", err)
	}

	var pool []Inspiration
	for _, e := range entries {
		if e.IsDir() || !corpus.IsNoteFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			slog.Warn("skipping inspiration note", "file", e.Name(), "error", err)
			continue
		}
		if text := parser.PlainText(string(data)); text != "" {
			pool = append(pool, Inspiration{File: e.Name(), Content: text})
		}
	}
	return pool, nil
}

// SampleInspirations picks n notes without replacement. A non-positive n lets the seed choose
// between MinInspirations and MaxInspirations. The same seed and pool always give the same
// sample; n is clamped to the pool size.
func SampleInspirations(pool []Inspiration, n int, seed uint64) []Inspiration {
	if len(pool) == 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if n <= 0 {
		n = MinInspirations + rng.IntN(MaxInspirations-MinInspirations+1)
	}
	n = min(n, len(pool))
	perm := rng.Perm(len(pool))

	out := make([]Inspiration, n)
	for i := range out {
		out[i] = pool[perm[i]]
	}
	return out
}

// RandomSeed returns a fresh seed for production sampling.
func RandomSeed() uint64 {
	return rand.Uint64()
}
