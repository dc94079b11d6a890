// Package contexts stores topic contexts as YAML documents, one file per context.
package contexts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/postcraft/internal/models"
)

const ext = ".yaml"

var (
	ErrNotFound    = errors.New("context not found")
	ErrExists      = errors.New("context already exists")
	ErrInvalidName = errors.New("invalid context name")
)

// Store reads and writes contexts under a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the context files.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for a context name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Create writes a template context. It fails if one with the same name exists.
func (s *Store) Create(name string) (*models.Context, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path(name)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, name)
	}
	c := models.NewContextTemplate(name)
	if err := s.Save(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads one context by name.
func (s *Store) Load(name string) (*models.Context, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read context: %w", err)
	}

	var c models.Context
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse context %s: %w", name, err)
	}
	if c.Name == "" {
		c.Name = name
	}
	return &c, nil
}

// Save writes c to <dir>/<c.Name>.yaml.
func (s *Store) Save(c *models.Context) error {
	if err := validName(c.Name); err != nil {
		return err
	}
	if c.CoveredAngles == nil {
		c.CoveredAngles = []string{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode context: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create contexts dir: %w", err)
	}
	if err := os.WriteFile(s.Path(c.Name), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write context: %w", err)
	}
	return nil
}

// List returns the names of all stored contexts, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list contexts: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named context.
func (s *Store) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete context: %w", err)
	}
	return nil
}

// Cover appends a dated covered angle to the named context and saves it.
func (s *Store) Cover(name string, day time.Time, summary string) (*models.Context, error) {
	if strings.TrimSpace(summary) == "" {
		return nil, errors.New("angle summary is required")
	}
	c, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	updated := c.WithCoveredAngle(day, summary)
	if err := s.Save(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
