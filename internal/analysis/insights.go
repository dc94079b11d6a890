package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/raphaelgruber/postcraft/internal/models"
)

// formatFlags are the characteristics checked for common use among top posts.
var formatFlags = []struct {
	name string
	get  func(models.Characteristics) bool
}{
	{"lists", func(c models.Characteristics) bool { return c.HasList }},
	{"questions", func(c models.Characteristics) bool { return c.HasQuestion }},
	{"hashtags", func(c models.Characteristics) bool { return c.HasHashtags }},
	{"emoji", func(c models.Characteristics) bool { return c.HasEmoji }},
	{"images", func(c models.Characteristics) bool { return c.HasImage }},
}

// FormatShare is how many of the top posts use a format.
type FormatShare struct {
	Name  string
	Share float64
}

// Insights summarize what the top quartile of posts have in common.
type Insights struct {
	Sample   int
	TopCount int
	// AvgLength is the mean character count of the top posts.
	AvgLength int
	// CommonFormats are used by at least half of the top posts, most used first.
	CommonFormats []FormatShare

	BestHour    int
	HasBestHour bool
	BestDay     time.Weekday
	HasBestDay  bool
}

// FormatNames returns the names of the common formats.
func (in Insights) FormatNames() []string {
	names := make([]string, len(in.CommonFormats))
	for i, f := range in.CommonFormats {
		names[i] = f.Name
	}
	return names
}

// BestTime renders the best hour as "HH:00", or "" when unknown.
func (in Insights) BestTime() string {
	if !in.HasBestHour {
		return ""
	}
	return fmt.Sprintf("%02d:00", in.BestHour)
}

// ComputeInsights derives top-quartile insights. Fewer than minSamples scored
// records yields an *InsufficientSample error.
func ComputeInsights(records []models.Record, minSamples int) (*Insights, error) {
	if minSamples <= 0 {
		minSamples = DefaultInsightMinSamples
	}
	ranked := rank(records)
	if len(ranked) < minSamples {
		return nil, &InsufficientSample{Have: len(ranked), Need: minSamples}
	}
	in := insightsFrom(ranked)
	return &in, nil
}

func insightsFrom(ranked []scoredPost) Insights {
	top := topQuartile(ranked)
	in := Insights{Sample: len(ranked), TopCount: len(top)}

	var chars int
	for _, p := range top {
		chars += p.rec.Characteristics.CharacterCount
	}
	in.AvgLength = chars / len(top)

	for _, f := range formatFlags {
		used := 0
		for _, p := range top {
			if f.get(p.rec.Characteristics) {
				used++
			}
		}
		share := float64(used) / float64(len(top))
		if share >= 0.5 {
			in.CommonFormats = append(in.CommonFormats, FormatShare{Name: f.name, Share: share})
		}
	}
	sort.SliceStable(in.CommonFormats, func(i, j int) bool {
		return in.CommonFormats[i].Share > in.CommonFormats[j].Share
	})

	if g := groupBy(top, hourKey); len(g) > 0 {
		in.BestHour, in.HasBestHour = g[0].order, true
	}
	if g := groupBy(top, dayKey); len(g) > 0 {
		in.BestDay, in.HasBestDay = weekdayFromOrder(g[0].order), true
	}
	return in
}

func weekdayFromOrder(order int) time.Weekday {
	return time.Weekday((order + 1) % 7)
}

// AlgorithmTips are general feed-ranking tips appended to recommendations and prompts.
var AlgorithmTips = []string{
	"Create a strong hook in the first 2 lines (crucial for dwell time)",
	"Aim for engagement in the first hour (reactions/comments boost visibility)",
	"End with a question or call-to-action to encourage comments",
	"Keep paragraphs short for mobile readability",
	"Avoid external links in the post itself (add in first comment if needed)",
}

// Recommendations turns the insights into actionable advice.
func (in Insights) Recommendations() []string {
	recs := []string{fmt.Sprintf("Optimal post length: ~%d characters", in.AvgLength)}
	for _, f := range in.CommonFormats {
		recs = append(recs, fmt.Sprintf("Use %s: present in %.0f%% of top posts", f.Name, f.Share*100))
	}
	if in.HasBestHour {
		recs = append(recs, "Best posting time: around "+in.BestTime())
	}
	if in.HasBestDay {
		recs = append(recs, "Best posting day: "+in.BestDay.String())
	}
	return recs
}
