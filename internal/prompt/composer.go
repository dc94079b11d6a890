// Package prompt assembles the text prompts handed to the generation tool.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/postcraft/internal/analysis"
	"github.com/raphaelgruber/postcraft/internal/models"
)

// RecentAngleLimit is how many covered angles are listed as off-limits.
const RecentAngleLimit = 10

var (
	ErrMissingTopic   = errors.New("manual mode requires a topic")
	ErrMissingGoal    = errors.New("manual mode requires a goal")
	ErrMissingContext = errors.New("context mode requires a context")
	ErrUnknownMode    = errors.New("unknown generation mode")
)

// Defaults are the audience and length settings used when a request does not carry its own.
type Defaults struct {
	TargetAudience string
	Tone           string
	MaxLength      int
}

// Request describes one prompt to compose.
type Request struct {
	Mode         models.GenerationMode
	Topic        string
	Goal         string
	Context      *models.Context
	Variant      *Variant
	Inspirations []Inspiration
	Insights     *analysis.Insights
}

// Composer builds generation prompts from a style guide and defaults. It performs no generation.
type Composer struct {
	StyleGuide string
	Defaults   Defaults
}

// NewComposer creates a composer, filling empty defaults.
func NewComposer(styleGuide string, d Defaults) *Composer {
	if d.TargetAudience == "" {
		d.TargetAudience = "professional audience"
	}
	if d.Tone == "" {
		d.Tone = "professional"
	}
	if d.MaxLength <= 0 {
		d.MaxLength = 1300
	}
	return &Composer{StyleGuide: strings.TrimSpace(styleGuide), Defaults: d}
}

// Compose validates the request and returns the prompt text.
func (c *Composer) Compose(req Request) (string, error) {
	switch req.Mode {
	case models.ModeManual:
		if strings.TrimSpace(req.Topic) == "" {
			return "", ErrMissingTopic
		}
		if strings.TrimSpace(req.Goal) == "" {
			return "", ErrMissingGoal
		}
		return c.manual(req), nil
	case models.ModeContext:
		if req.Context == nil {
			return "", ErrMissingContext
		}
		return c.context(req), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
}

func (c *Composer) manual(req Request) string {
	var sb strings.Builder

	c.writeHeader(&sb)
	fmt.Fprintf(&sb, `

POST REQUIREMENTS:
- Topic: %s
- Goal: %s
- Target Audience: %s
- Tone: %s
- Maximum Length: %d characters`,
		strings.TrimSpace(req.Topic), strings.TrimSpace(req.Goal),
		c.Defaults.TargetAudience, c.Defaults.Tone, c.Defaults.MaxLength)

	writeInspirations(&sb, "INSPIRATION NOTES (use these as creative fuel, not direct content):", req.Inspirations)
	writeVariant(&sb, req.Variant)
	writeInsights(&sb, req.Insights)

	sb.WriteString(`

Write a LinkedIn post draft that matches the style guide precisely. The post should feel authentic and natural, as if written by the person whose style you're emulating.`)
	writeOutputFormat(&sb)
	return sb.String()
}

func (c *Composer) context(req Request) string {
	ctx := req.Context
	audience := ctx.TargetAudience
	if audience == "" {
		audience = c.Defaults.TargetAudience
	}
	topic := ctx.Topic
	if topic == "" {
		topic = "Unknown"
	}

	var sb strings.Builder
	c.writeHeader(&sb)
	fmt.Fprintf(&sb, `

BROADER TOPIC CONTEXT:
Topic: %s
Target Audience: %s`, topic, audience)
	if ctx.Description != "" {
		fmt.Fprintf(&sb, "\nDescription: %s", ctx.Description)
	}

	sb.WriteString("\n\nKey Themes to Draw From (not yet covered):\n")
	sb.WriteString(bullets(ctx.UncoveredThemes(), "None defined"))
	sb.WriteString("\n\nKey Messages to Convey:\n")
	sb.WriteString(bullets(ctx.KeyMessages, "None defined"))
	sb.WriteString("\n\nRecently Covered Angles (DO NOT REPEAT):\n")
	sb.WriteString(bullets(ctx.RecentAngles(RecentAngleLimit), "None yet"))

	writeInspirations(&sb, "INSPIRATION NOTES (recent observations and ideas - use as creative fuel):", req.Inspirations)
	writeVariant(&sb, req.Variant)
	writeInsights(&sb, req.Insights)

	fmt.Fprintf(&sb, `

POST REQUIREMENTS:
- Choose a FRESH angle or theme from the list above that hasn't been recently covered
- Maximum Length: %d characters
- Tone: %s
- Match the style guide precisely
- Keep the post authentic and natural

Write a LinkedIn post draft that explores a new angle within this topic.`, c.Defaults.MaxLength, c.Defaults.Tone)
	writeOutputFormat(&sb)
	return sb.String()
}

func (c *Composer) writeHeader(sb *strings.Builder) {
	guide := c.StyleGuide
	if guide == "" {
		guide = "No style guide available. Write in a clear, professional voice."
	}
	fmt.Fprintf(sb, `You are a LinkedIn post writer. Your task is to write a post that EXACTLY matches the following style guide.

STYLE GUIDE TO FOLLOW:
%s`, guide)
}

func writeInspirations(sb *strings.Builder, heading string, notes []Inspiration) {
	if len(notes) == 0 {
		return
	}
	sb.WriteString("\n\n")
	sb.WriteString(heading)
	for _, n := range notes {
		sb.WriteString("\n- ")
		sb.WriteString(strings.TrimSpace(n.Content))
	}
}

func writeVariant(sb *strings.Builder, v *Variant) {
	if v == nil {
		return
	}
	fmt.Fprintf(sb, "\n\nVARIANT STYLE (create a unique approach for this variant):\n%s", v.Description)
}

func writeInsights(sb *strings.Builder, in *analysis.Insights) {
	if in == nil {
		return
	}
	fmt.Fprintf(sb, "\n\nPERFORMANCE OPTIMIZATION (based on your top-performing posts):\n- Target Length: ~%d characters", in.AvgLength)
	if names := in.FormatNames(); len(names) > 0 {
		fmt.Fprintf(sb, "\n- Consider using: %s", strings.Join(names, ", "))
	}
	sb.WriteString("\n\nLINKEDIN ALGORITHM OPTIMIZATION:")
	for _, tip := range analysis.AlgorithmTips {
		sb.WriteString("\n- ")
		sb.WriteString(tip)
	}
}

func writeOutputFormat(sb *strings.Builder) {
	fmt.Fprintf(sb, `

After the post content, add a separator line and suggest an image that would complement the post.

Format your output as:
[POST CONTENT]

%s
[Brief description of what image/visual would work well with this post]`, models.ImageSuggestionMarker)
}

func bullets(items []string, empty string) string {
	var lines []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, "\n")
}
