package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	numbers = message.NewPrinter(language.English)
	title   = cases.Title(language.English)
)

// Percent renders a fractional rate as a percentage, e.g. 0.0098 -> "0.98%".
func Percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// RenderStyleGuide writes the statistical style guide as markdown.
func RenderStyleGuide(s *StyleStats) string {
	var sb strings.Builder

	sb.WriteString("# Writing Style Guide\n\n")
	fmt.Fprintf(&sb, "Derived from %d example posts.\n\n", s.Posts)

	sb.WriteString("## Length\n\n")
	fmt.Fprintf(&sb, "- Average: %.0f words, %s characters\n", s.AvgWords, numbers.Sprintf("%d", int(s.AvgChars+0.5)))
	fmt.Fprintf(&sb, "- Range: %s to %s characters\n", numbers.Sprintf("%d", s.MinChars), numbers.Sprintf("%d", s.MaxChars))
	fmt.Fprintf(&sb, "- Line breaks per post: %.1f on average\n\n", s.AvgLineBreaks)

	sb.WriteString("## Formatting\n\n")
	for _, f := range s.Flags {
		fmt.Fprintf(&sb, "- %s: %s of posts (%d)\n", title.String(f.Flag.Label), usage(f.Share), f.Count)
	}
	sb.WriteString("\n")

	if len(s.Types) > 0 {
		sb.WriteString("## Post Types\n\n")
		for _, t := range s.Types {
			fmt.Fprintf(&sb, "- %s: %d\n", t.Name, t.Count)
		}
		sb.WriteString("\n")
	}

	if len(s.TopHashtags) > 0 {
		sb.WriteString("## Common Hashtags\n\n")
		tags := make([]string, len(s.TopHashtags))
		for i, t := range s.TopHashtags {
			tags[i] = fmt.Sprintf("#%s (%d)", t.Name, t.Count)
		}
		sb.WriteString(strings.Join(tags, ", "))
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Guidance\n\n")
	for _, line := range styleGuidance(s) {
		fmt.Fprintf(&sb, "- %s\n", line)
	}
	return sb.String()
}

func usage(share float64) string {
	return fmt.Sprintf("%.0f%%", share*100)
}

// styleGuidance turns the frequencies into imperative writing rules.
func styleGuidance(s *StyleStats) []string {
	lines := []string{fmt.Sprintf("Aim for roughly %.0f words per post.", s.AvgWords)}
	for _, f := range s.Flags {
		switch {
		case f.Share >= 0.6:
			lines = append(lines, fmt.Sprintf("Usually include %s.", describeFlag(f.Flag.Label)))
		case f.Share > 0 && f.Share < 0.2:
			lines = append(lines, fmt.Sprintf("Rarely include %s.", describeFlag(f.Flag.Label)))
		case f.Share == 0:
			lines = append(lines, fmt.Sprintf("Avoid %s.", describeFlag(f.Flag.Label)))
		}
	}
	if s.AvgChars > 0 && s.AvgLineBreaks/max(1, s.AvgWords)*100 > 5 {
		lines = append(lines, "Use short paragraphs separated by blank lines.")
	}
	return lines
}

func describeFlag(label string) string {
	switch label {
	case "list":
		return "a numbered or bulleted list"
	case "question":
		return "a question to the reader"
	case "emoji":
		return "emoji"
	case "hashtags":
		return "hashtags"
	case "link":
		return "external links"
	case "image":
		return "an image"
	default:
		return "a " + label
	}
}

// RenderPerformance writes the performance report as markdown.
func RenderPerformance(r *PerformanceReport) string {
	var sb strings.Builder

	sb.WriteString("# Performance Analysis\n\n")
	fmt.Fprintf(&sb, "%d posts with impressions. Engagement rate is (reactions + comments + shares) / impressions.\n\n", r.Posts)

	writeGroups(&sb, "Best Days to Post", r.ByDay)
	writeGroups(&sb, "Best Times to Post", r.ByHour)
	writeGroups(&sb, "Engagement by Length", r.ByLength)
	writeGroups(&sb, "Engagement by Post Type", r.ByType)

	if len(r.Features) > 0 {
		sb.WriteString("## Format Elements\n\n")
		sb.WriteString("| Element | With | Without | Lift |\n|---|---|---|---|\n")
		for _, f := range r.Features {
			lift := "n/a"
			if f.Lift > 0 {
				lift = fmt.Sprintf("%.2fx", f.Lift)
			}
			fmt.Fprintf(&sb, "| %s | %s (%d) | %s (%d) | %s |\n",
				title.String(f.Flag.Label), Percent(f.MeanWith), f.With, Percent(f.MeanWithout), f.Without, lift)
		}
		sb.WriteString("\n")
	}

	if len(r.Top) > 0 {
		fmt.Fprintf(&sb, "## Top %d Posts\n\n", len(r.Top))
		for _, p := range r.Top {
			e := p.Record.Engagement
			fmt.Fprintf(&sb, "%d. **%s** on %s, %s impressions, %d reactions, %d comments, %d shares\n",
				p.Rank, Percent(p.Rate), dateOrUnknown(p.Record.Metadata.Date),
				numbers.Sprintf("%d", e.Impressions), e.Reactions, e.Comments, e.Shares)
			fmt.Fprintf(&sb, "   > %s\n", Preview(p.Record.Content, 80))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Recommendations\n\n")
	fmt.Fprintf(&sb, "Based on the top %d posts:\n\n", r.Insights.TopCount)
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&sb, "- %s\n", rec)
	}
	sb.WriteString("\n### Feed Algorithm\n\n")
	for _, tip := range AlgorithmTips {
		fmt.Fprintf(&sb, "- %s\n", tip)
	}
	return sb.String()
}

func writeGroups(sb *strings.Builder, heading string, groups []Group) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", heading)
	for _, g := range groups {
		fmt.Fprintf(sb, "- %s: %s avg (%d posts)\n", g.Key, Percent(g.MeanRate), g.Count)
	}
	sb.WriteString("\n")
}

func dateOrUnknown(d string) string {
	if d == "" {
		return "unknown date"
	}
	return d
}

// Preview flattens the first n runes of content onto one line.
func Preview(content string, n int) string {
	flat := strings.Join(strings.Fields(content), " ")
	r := []rune(flat)
	if len(r) <= n {
		return flat
	}
	return string(r[:n]) + "..."
}

// RenderInsufficient is the qualitative report for a too-small corpus.
func RenderInsufficient(err *InsufficientSample) string {
	return fmt.Sprintf("# Performance Analysis\n\nInsufficient data: %d posts with impressions, need at least %d. "+
		"Add more exports and run convert again.\n", err.Have, err.Need)
}
