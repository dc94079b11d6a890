package prompt

import (
	"fmt"
	"strings"
)

// MaxVariants is the number of built-in variant styles.
const MaxVariants = 5

// Variant is an A/B writing approach added to the prompt.
type Variant struct {
	Name        string
	Slug        string
	Description string
}

// Variants returns the built-in styles in the order they are assigned to variants.
func Variants() []Variant {
	return []Variant{
		{
			Name: "Story-Driven",
			Slug: "story",
			Description: `OPENING: Start with a personal anecdote or specific story
STRUCTURE: Narrative arc with setup, conflict, resolution
HOOK: "Last week..." or "I just realized..." or specific moment
CTA: Invite readers to share their own stories
TONE: Personal, relatable, conversational`,
		},
		{
			Name: "Data & Insights",
			Slug: "data",
			Description: `OPENING: Lead with a surprising statistic, number, or insight
STRUCTURE: Problem → Data → Analysis → Conclusion
HOOK: Bold statement backed by evidence
CTA: Ask for agreement/disagreement with the analysis
TONE: Analytical, thought-provoking, authoritative`,
		},
		{
			Name: "Question-Led",
			Slug: "question",
			Description: `OPENING: Start with a provocative question
STRUCTURE: Question → Exploration → Multiple perspectives → Your take
HOOK: Question that challenges common assumptions
CTA: Direct question to audience for their input
TONE: Curious, exploratory, dialogue-focused`,
		},
		{
			Name: "Listicle/Framework",
			Slug: "framework",
			Description: `OPENING: Promise specific, actionable insights
STRUCTURE: Numbered list or framework (3-5 points)
HOOK: "Here are X things I learned..." or "X ways to..."
CTA: Ask which point resonates most
TONE: Practical, structured, educational`,
		},
		{
			Name: "Contrarian Take",
			Slug: "contrarian",
			Description: `OPENING: Challenge conventional wisdom
STRUCTURE: Common belief → Why it's wrong → Alternative view → Evidence
HOOK: "Everyone says X, but..." or "Unpopular opinion:"
CTA: Invite debate and different perspectives
TONE: Bold, confident, thought-provoking`,
		},
	}
}

// SelectVariants returns the styles for n variants. A single variant uses no style.
func SelectVariants(n int) ([]*Variant, error) {
	if n < 1 || n > MaxVariants {
		return nil, fmt.Errorf("variants must be between 1 and %d, got %d", MaxVariants, n)
	}
	if n == 1 {
		return []*Variant{nil}, nil
	}
	all := Variants()
	out := make([]*Variant, n)
	for i := range out {
		out[i] = &all[i]
	}
	return out, nil
}

// VariantByName finds a built-in style by name or slug, case-insensitively.
func VariantByName(name string) (*Variant, bool) {
	for _, v := range Variants() {
		if strings.EqualFold(v.Name, name) || strings.EqualFold(v.Slug, name) {
			return &v, true
		}
	}
	return nil, false
}
