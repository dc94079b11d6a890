// Package analysis computes descriptive style and engagement statistics over the corpus.
package analysis

import (
	"fmt"
	"sort"

	"github.com/raphaelgruber/postcraft/internal/models"
)

// Defaults for sample size thresholds.
const (
	DefaultMinSamples        = 5
	DefaultInsightMinSamples = 3
	DefaultTopN              = 5
)

// InsufficientSample is the qualitative result returned when there are too few posts.
type InsufficientSample struct {
	Have int
	Need int
}

func (e *InsufficientSample) Error() string {
	return fmt.Sprintf("insufficient data: have %d, need %d", e.Have, e.Need)
}

// Flag is one boolean characteristic the analyzers report on.
type Flag struct {
	Key   string // JSON field name, e.g. "has_list"
	Label string // human name, e.g. "list"
	Get   func(models.Characteristics) bool
}

// Flags lists the characteristics in report order.
var Flags = []Flag{
	{"has_image", "image", func(c models.Characteristics) bool { return c.HasImage }},
	{"has_video", "video", func(c models.Characteristics) bool { return c.HasVideo }},
	{"has_link", "link", func(c models.Characteristics) bool { return c.HasLink }},
	{"has_hashtags", "hashtags", func(c models.Characteristics) bool { return c.HasHashtags }},
	{"has_emoji", "emoji", func(c models.Characteristics) bool { return c.HasEmoji }},
	{"has_list", "list", func(c models.Characteristics) bool { return c.HasList }},
	{"has_question", "question", func(c models.Characteristics) bool { return c.HasQuestion }},
}

// scoredPost pairs a record with its recomputed engagement rate.
type scoredPost struct {
	rec  models.Record
	rate float64
}

// rank returns the records with impressions, best rate first.
// Ties keep a stable order: earlier date first, then post id.
func rank(records []models.Record) []scoredPost {
	posts := make([]scoredPost, 0, len(records))
	for _, r := range records {
		if r.Scored() {
			posts = append(posts, scoredPost{rec: r, rate: r.Rate()})
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.rate != b.rate {
			return a.rate > b.rate
		}
		if a.rec.Metadata.Date != b.rec.Metadata.Date {
			return a.rec.Metadata.Date < b.rec.Metadata.Date
		}
		return a.rec.PostID < b.rec.PostID
	})
	return posts
}

// topQuartile is the best quarter of the ranked posts, at least one.
func topQuartile(ranked []scoredPost) []scoredPost {
	n := max(1, len(ranked)/4)
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
