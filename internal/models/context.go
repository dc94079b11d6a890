package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Context is a reusable content theme used by auto-mode prompt composition.
type Context struct {
	Name             string   `yaml:"name" json:"name"`
	Topic            string   `yaml:"topic" json:"topic"`
	Description      string   `yaml:"description" json:"description"`
	TargetAudience   string   `yaml:"target_audience" json:"target_audience"`
	Themes           []string `yaml:"themes" json:"themes"`
	KeyMessages      []string `yaml:"key_messages" json:"key_messages"`
	PostingFrequency string   `yaml:"posting_frequency" json:"posting_frequency"`
	// CoveredAngles is append-only, oldest first, entries formatted "YYYY-MM-DD: summary".
	CoveredAngles []string `yaml:"covered_angles" json:"covered_angles"`
}

// UnmarshalYAML accepts the legacy "recent_angles_covered" key.
func (c *Context) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Context
	aux := struct {
		plain  `yaml:",inline"`
		Legacy []string `yaml:"recent_angles_covered"`
	}{}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	*c = Context(aux.plain)
	if len(c.CoveredAngles) == 0 && len(aux.Legacy) > 0 {
		c.CoveredAngles = aux.Legacy
	}
	return nil
}

// FormatAngle renders a covered-angle entry for the given day.
func FormatAngle(day time.Time, summary string) string {
	return fmt.Sprintf("%s: %s", day.Format(DateLayout), strings.TrimSpace(summary))
}

// WithCoveredAngle returns a copy of c with the angle appended.
func (c Context) WithCoveredAngle(day time.Time, summary string) Context {
	angles := make([]string, 0, len(c.CoveredAngles)+1)
	angles = append(angles, c.CoveredAngles...)
	c.CoveredAngles = append(angles, FormatAngle(day, summary))
	return c
}

// RecentAngles returns up to n of the most recently covered angles, oldest first.
func (c Context) RecentAngles(n int) []string {
	if n <= 0 || len(c.CoveredAngles) <= n {
		return c.CoveredAngles
	}
	return c.CoveredAngles[len(c.CoveredAngles)-n:]
}

// UncoveredThemes returns the themes no covered angle mentions as a whole word or phrase
// (case-insensitive). When every theme has been covered, all themes are returned so the
// rotation restarts.
func (c Context) UncoveredThemes() []string {
	var out []string
	for _, theme := range c.Themes {
		expr := themeExpr(theme)
		covered := false
		for _, angle := range c.CoveredAngles {
			if expr != nil && expr.MatchString(angle) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, theme)
		}
	}
	if len(out) == 0 {
		return c.Themes
	}
	return out
}

// themeExpr matches theme on word boundaries. Boundaries are only required next to word
// characters, so themes such as "C++" still match.
func themeExpr(theme string) *regexp.Regexp {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil
	}
	pattern := regexp.QuoteMeta(theme)
	if isWordByte(theme[0]) {
		pattern = `\b` + pattern
	}
	if isWordByte(theme[len(theme)-1]) {
		pattern += `\b`
	}
	return regexp.MustCompile(`(?i)` + pattern)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// NewContextTemplate returns the skeleton written by "context create".
func NewContextTemplate(name string) Context {
	return Context{
		Name:             name,
		Topic:            "Your main topic here",
		Description:      "Describe what this content series is about",
		TargetAudience:   "Who are you writing for?",
		Themes:           []string{"Theme 1", "Theme 2", "Theme 3"},
		KeyMessages:      []string{"Key message 1", "Key message 2"},
		PostingFrequency: "weekly",
		CoveredAngles:    []string{},
	}
}
