package analysis

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/postcraft/internal/models"
)

// post builds a scored record; reactions per 1000 impressions sets the rate.
func post(id, date, clock string, reactions int, chars models.Characteristics) models.Record {
	if chars.Type == "" {
		chars.Type = models.PostTypeTextOnly
	}
	return models.Record{
		PostID:          id,
		Content:         "post " + id,
		Metadata:        models.Metadata{Date: date, Time: clock},
		Engagement:      models.Engagement{Impressions: 1000, Reactions: reactions},
		Characteristics: chars,
	}
}

// corpusFixture: 2025-09-29 is a Monday, 2025-09-30 a Tuesday.
func corpusFixture() []models.Record {
	return []models.Record{
		post("a", "2025-09-30", "09:15", 80, models.Characteristics{HasList: true, HasQuestion: true, CharacterCount: 900}),
		post("b", "2025-09-29", "17:00", 10, models.Characteristics{CharacterCount: 300}),
		post("c", "2025-09-30", "09:45", 60, models.Characteristics{HasList: true, CharacterCount: 1100}),
		post("d", "2025-10-01", "12:00", 20, models.Characteristics{HasHashtags: true, CharacterCount: 400}),
		post("e", "2025-10-02", "", 30, models.Characteristics{HasImage: true, Type: models.PostTypeImage, CharacterCount: 1600}),
		post("f", "2025-10-03", "08:00", 40, models.Characteristics{HasQuestion: true, CharacterCount: 700}),
		post("g", "2025-10-04", "18:00", 5, models.Characteristics{CharacterCount: 200}),
		post("h", "2025-10-05", "07:00", 50, models.Characteristics{HasList: true, CharacterCount: 800}),
		{PostID: "unscored", Content: "no impressions"},
	}
}

func TestAnalyzePerformance_InsufficientData(t *testing.T) {
	records := corpusFixture()[:3]

	report, err := AnalyzePerformance(records, Options{MinSamples: 5})
	require.Error(t, err)
	assert.Nil(t, report)

	var insufficient *InsufficientSample
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 3, insufficient.Have)
	assert.Equal(t, 5, insufficient.Need)
	assert.Equal(t, "insufficient data: have 3, need 5", err.Error())
}

func TestAnalyzePerformance_UnscoredNotCounted(t *testing.T) {
	records := append(corpusFixture()[:4], models.Record{PostID: "x"}, models.Record{PostID: "y"})
	_, err := AnalyzePerformance(records, Options{})
	var insufficient *InsufficientSample
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 4, insufficient.Have)
}

func TestAnalyzePerformance_Report(t *testing.T) {
	report, err := AnalyzePerformance(corpusFixture(), Options{TopN: 3})
	require.NoError(t, err)

	assert.Equal(t, 8, report.Posts)

	require.Len(t, report.Top, 3)
	assert.Equal(t, []string{"a", "c", "h"}, []string{report.Top[0].Record.PostID, report.Top[1].Record.PostID, report.Top[2].Record.PostID})
	assert.Equal(t, 1, report.Top[0].Rank)
	assert.InDelta(t, 0.08, report.Top[0].Rate, 1e-12)

	require.NotEmpty(t, report.ByDay)
	assert.Equal(t, "Tuesday", report.ByDay[0].Key)
	assert.Equal(t, 2, report.ByDay[0].Count)
	assert.InDelta(t, 0.07, report.ByDay[0].MeanRate, 1e-12)

	require.NotEmpty(t, report.ByHour)
	assert.Equal(t, "09:00-09:59", report.ByHour[0].Key)
	total := 0
	for _, g := range report.ByHour {
		total += g.Count
	}
	assert.Equal(t, 7, total, "records without a time are not bucketed by hour")

	lengths := map[string]int{}
	for _, g := range report.ByLength {
		lengths[g.Key] = g.Count
	}
	assert.Equal(t, map[string]int{
		"Short (0-500 chars)":     3,
		"Medium (501-1000 chars)": 3,
		"Long (1001-1500 chars)":  1,
		"Very long (1501+ chars)": 1,
	}, lengths)

	types := map[string]int{}
	for _, g := range report.ByType {
		types[g.Key] = g.Count
	}
	assert.Equal(t, map[string]int{"text_only": 7, "image": 1}, types)

	require.NotEmpty(t, report.Features)
	assert.Equal(t, "has_list", report.Features[0].Flag.Key)
	list := report.Features[0]
	assert.Equal(t, 3, list.With)
	assert.Equal(t, 5, list.Without)
	assert.InDelta(t, (0.08+0.06+0.05)/3, list.MeanWith, 1e-12)
	assert.InDelta(t, (0.01+0.02+0.03+0.04+0.005)/5, list.MeanWithout, 1e-12)
	assert.Greater(t, list.Lift, 1.0)

	for _, f := range report.Features {
		assert.NotEqual(t, "has_video", f.Flag.Key, "flags nobody uses are omitted")
	}
}

func TestAnalyzePerformance_TiesAreStable(t *testing.T) {
	var records []models.Record
	for i, id := range []string{"z", "y", "x", "w", "v"} {
		records = append(records, post(id, fmt.Sprintf("2025-01-%02d", i+1), "10:00", 10, models.Characteristics{}))
	}
	report, err := AnalyzePerformance(records, Options{TopN: 5})
	require.NoError(t, err)

	var ids []string
	for _, p := range report.Top {
		ids = append(ids, p.Record.PostID)
	}
	assert.Equal(t, []string{"z", "y", "x", "w", "v"}, ids, "equal rates rank by date")
}

func TestComputeInsights(t *testing.T) {
	in, err := ComputeInsights(corpusFixture(), 3)
	require.NoError(t, err)

	assert.Equal(t, 8, in.Sample)
	assert.Equal(t, 2, in.TopCount, "top quartile of 8")
	assert.Equal(t, (900+1100)/2, in.AvgLength)
	assert.Equal(t, []FormatShare{{Name: "lists", Share: 1}, {Name: "questions", Share: 0.5}}, in.CommonFormats,
		"lists are in both top posts, questions in exactly half")

	require.True(t, in.HasBestHour)
	assert.Equal(t, 9, in.BestHour)
	assert.Equal(t, "09:00", in.BestTime())
	require.True(t, in.HasBestDay)
	assert.Equal(t, time.Tuesday, in.BestDay)
}

func TestComputeInsights_SingleTopPost(t *testing.T) {
	records := corpusFixture()[:4]
	in, err := ComputeInsights(records, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, in.TopCount)
	assert.ElementsMatch(t, []string{"lists", "questions"}, in.FormatNames())
}

func TestComputeInsights_Insufficient(t *testing.T) {
	_, err := ComputeInsights(corpusFixture()[:2], 3)
	var insufficient *InsufficientSample
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Have)
	assert.Equal(t, 3, insufficient.Need)
}

func TestInsightsRecommendations(t *testing.T) {
	in := Insights{
		AvgLength:     850,
		CommonFormats: []FormatShare{{Name: "lists", Share: 0.75}},
		BestHour:      9, HasBestHour: true,
		BestDay: time.Tuesday, HasBestDay: true,
	}
	assert.Equal(t, []string{
		"Optimal post length: ~850 characters",
		"Use lists: present in 75% of top posts",
		"Best posting time: around 09:00",
		"Best posting day: Tuesday",
	}, in.Recommendations())

	assert.Equal(t, []string{"Optimal post length: ~0 characters"}, Insights{}.Recommendations())
}

func TestAnalyzeStyle(t *testing.T) {
	samples := StyleSamples(
		[]models.Record{
			{Content: "stored", Characteristics: models.Characteristics{Type: models.PostTypeImage, HasImage: true, WordCount: 10, CharacterCount: 100, LineBreaks: 2, Hashtags: []string{"go"}, HasHashtags: true}},
			{Content: ""},
		},
		[]string{"Hello #go #rust\n- one\n- two?", "short"},
	)
	require.Len(t, samples, 3, "empty records are skipped")

	s, err := AnalyzeStyle(samples, 5)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Posts)
	assert.Equal(t, 5, s.MinChars)
	assert.Equal(t, 100, s.MaxChars)
	assert.InDelta(t, float64(10+7+1)/3, s.AvgWords, 1e-9)

	assert.Equal(t, []Count{{Name: "go", Count: 2}, {Name: "rust", Count: 1}}, s.TopHashtags)
	assert.Equal(t, []Count{{Name: "text_only", Count: 2}, {Name: "image", Count: 1}}, s.Types)

	freq := map[string]int{}
	for _, f := range s.Flags {
		freq[f.Flag.Key] = f.Count
	}
	assert.Equal(t, 2, freq["has_hashtags"])
	assert.Equal(t, 1, freq["has_list"])
	assert.Equal(t, 1, freq["has_question"])
	assert.Equal(t, 0, freq["has_video"])
}

func TestAnalyzeStyle_NoPosts(t *testing.T) {
	_, err := AnalyzeStyle(nil, 5)
	var insufficient *InsufficientSample
	assert.ErrorAs(t, err, &insufficient)
}

func TestRenderStyleGuide(t *testing.T) {
	s, err := AnalyzeStyle(StyleSamples(nil, []string{"One #go\n\n- a\n- b", "Two?"}), 5)
	require.NoError(t, err)

	guide := RenderStyleGuide(s)
	assert.True(t, strings.HasPrefix(guide, "# Writing Style Guide"))
	assert.Contains(t, guide, "#go (1)")
	assert.Contains(t, guide, "- List: 50% of posts (1)")
	assert.Contains(t, guide, "Avoid a video.")
}

func TestRenderPerformance(t *testing.T) {
	report, err := AnalyzePerformance(corpusFixture(), Options{})
	require.NoError(t, err)

	out := RenderPerformance(report)
	assert.Contains(t, out, "## Best Days to Post")
	assert.Contains(t, out, "- Tuesday: 7.00% avg (2 posts)")
	assert.Contains(t, out, "1. **8.00%** on 2025-09-30, 1,000 impressions")
	assert.Contains(t, out, "Best posting day: Tuesday")
	assert.Contains(t, out, AlgorithmTips[0])

	assert.Contains(t, RenderInsufficient(&InsufficientSample{Have: 2, Need: 5}), "2 posts with impressions, need at least 5")
}

func TestPercentAndPreview(t *testing.T) {
	assert.Equal(t, "0.98%", Percent(0.0098))
	assert.Equal(t, "a b c", Preview("a\nb   c", 80))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
}
