package models

import "time"

// GenerationMode says whether a prompt was composed from manual input or from a context.
type GenerationMode string

const (
	ModeManual  GenerationMode = "manual"
	ModeContext GenerationMode = "context"
)

// ImageSuggestionMarker separates the post body from the image suggestion in generated output.
const ImageSuggestionMarker = "---IMAGE SUGGESTION---"

// Draft is a generated post saved for review.
type Draft struct {
	ID              string         `yaml:"id"`
	Mode            GenerationMode `yaml:"mode"`
	Variant         string         `yaml:"variant,omitempty"`
	Topic           string         `yaml:"topic,omitempty"`
	Goal            string         `yaml:"goal,omitempty"`
	Context         string         `yaml:"context,omitempty"`
	CreatedAt       time.Time      `yaml:"created_at"`
	ImageSuggestion string         `yaml:"image_suggestion,omitempty"`

	// Body is the post text; it is stored after the front matter, not inside it.
	Body string `yaml:"-"`
	// Path is where the draft was loaded from or written to.
	Path string `yaml:"-"`
}

// Identifier is the filename component naming what the draft was generated for.
func (d Draft) Identifier() string {
	if d.Mode == ModeContext && d.Context != "" {
		return Slugify(d.Context)
	}
	slug := Slugify(Truncate(d.Topic, 30))
	if slug == "" {
		return "untitled"
	}
	return slug
}
