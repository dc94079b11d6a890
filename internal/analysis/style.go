package analysis

import (
	"sort"

	"github.com/raphaelgruber/postcraft/internal/models"
	"github.com/raphaelgruber/postcraft/internal/parser"
)

// FlagFrequency is how often a characteristic appears across the posts.
type FlagFrequency struct {
	Flag  Flag
	Count int
	Share float64
}

// Count is a named tally.
type Count struct {
	Name  string
	Count int
}

// StyleStats are the descriptive writing statistics of the example posts.
type StyleStats struct {
	Posts         int
	AvgWords      float64
	AvgChars      float64
	AvgLineBreaks float64
	MinChars      int
	MaxChars      int
	Flags         []FlagFrequency
	Types         []Count
	TopHashtags   []Count
}

// StyleSamples collects characteristics for every example post: records keep their
// stored characteristics, text posts are detected from their content.
func StyleSamples(records []models.Record, texts []string) []models.Characteristics {
	out := make([]models.Characteristics, 0, len(records)+len(texts))
	for _, r := range records {
		if r.Content == "" {
			continue
		}
		c := r.Characteristics
		if c.WordCount == 0 && c.CharacterCount == 0 {
			c = parser.Detect(r.Content, parser.Signals{Image: c.HasImage, Video: c.HasVideo, ImageFiles: c.ImageFiles})
		}
		out = append(out, c)
	}
	for _, text := range texts {
		out = append(out, parser.Detect(text, parser.Signals{}))
	}
	return out
}

// AnalyzeStyle computes averages, length range, flag frequencies, the type mix and top hashtags.
func AnalyzeStyle(samples []models.Characteristics, topHashtags int) (*StyleStats, error) {
	if len(samples) == 0 {
		return nil, &InsufficientSample{Have: 0, Need: 1}
	}
	if topHashtags <= 0 {
		topHashtags = 10
	}

	s := &StyleStats{Posts: len(samples), MinChars: samples[0].CharacterCount}
	n := float64(len(samples))

	types := make(map[string]int)
	tags := make(map[string]int)
	var tagOrder []string
	for _, c := range samples {
		s.AvgWords += float64(c.WordCount) / n
		s.AvgChars += float64(c.CharacterCount) / n
		s.AvgLineBreaks += float64(c.LineBreaks) / n
		s.MinChars = min(s.MinChars, c.CharacterCount)
		s.MaxChars = max(s.MaxChars, c.CharacterCount)

		t := string(c.Type)
		if t == "" {
			t = string(models.PostTypeTextOnly)
		}
		types[t]++

		for _, tag := range c.Hashtags {
			if tags[tag] == 0 {
				tagOrder = append(tagOrder, tag)
			}
			tags[tag]++
		}
	}

	for _, flag := range Flags {
		count := 0
		for _, c := range samples {
			if flag.Get(c) {
				count++
			}
		}
		s.Flags = append(s.Flags, FlagFrequency{Flag: flag, Count: count, Share: float64(count) / n})
	}

	for t, c := range types {
		s.Types = append(s.Types, Count{Name: t, Count: c})
	}
	sortCounts(s.Types)

	for _, tag := range tagOrder {
		s.TopHashtags = append(s.TopHashtags, Count{Name: tag, Count: tags[tag]})
	}
	sort.SliceStable(s.TopHashtags, func(i, j int) bool { return s.TopHashtags[i].Count > s.TopHashtags[j].Count })
	if len(s.TopHashtags) > topHashtags {
		s.TopHashtags = s.TopHashtags[:topHashtags]
	}
	return s, nil
}

func sortCounts(c []Count) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].Count != c[j].Count {
			return c[i].Count > c[j].Count
		}
		return c[i].Name < c[j].Name
	})
}
