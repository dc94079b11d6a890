package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/raphaelgruber/postcraft/internal/models"
)

// Options tunes the performance analyzer.
type Options struct {
	MinSamples int
	TopN       int
}

func (o Options) withDefaults() Options {
	if o.MinSamples <= 0 {
		o.MinSamples = DefaultMinSamples
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	return o
}

// Group is the mean engagement rate of the posts sharing one key.
type Group struct {
	Key      string
	Count    int
	MeanRate float64
	order    int
}

// Feature compares posts with and without one characteristic.
type Feature struct {
	Flag        Flag
	With        int
	Without     int
	MeanWith    float64
	MeanWithout float64
	// Lift is MeanWith/MeanWithout, 0 when there is nothing to compare against.
	Lift float64
}

// RankedPost is one entry of the top-N list.
type RankedPost struct {
	Rank   int
	Record models.Record
	Rate   float64
}

// PerformanceReport is the full descriptive engagement analysis.
type PerformanceReport struct {
	Posts           int
	ByDay           []Group
	ByHour          []Group
	ByLength        []Group
	ByType          []Group
	Features        []Feature
	Top             []RankedPost
	Insights        Insights
	Recommendations []string
}

// Length buckets by character count.
var lengthBuckets = []struct {
	label string
	max   int
}{
	{"Short (0-500 chars)", 500},
	{"Medium (501-1000 chars)", 1000},
	{"Long (1001-1500 chars)", 1500},
	{"Very long (1501+ chars)", -1},
}

func lengthBucket(chars int) (string, int) {
	for i, b := range lengthBuckets {
		if b.max < 0 || chars <= b.max {
			return b.label, i
		}
	}
	return "", 0
}

// HourBucket labels an hour of day, e.g. "06:00-06:59".
func HourBucket(hour int) string {
	return fmt.Sprintf("%02d:00-%02d:59", hour, hour)
}

// AnalyzePerformance groups, ranks and compares the records that have impressions.
// Fewer than MinSamples scored records yields an *InsufficientSample error.
func AnalyzePerformance(records []models.Record, opts Options) (*PerformanceReport, error) {
	opts = opts.withDefaults()

	ranked := rank(records)
	if len(ranked) < opts.MinSamples {
		return nil, &InsufficientSample{Have: len(ranked), Need: opts.MinSamples}
	}

	report := &PerformanceReport{
		Posts:    len(ranked),
		ByDay:    groupBy(ranked, dayKey),
		ByHour:   groupBy(ranked, hourKey),
		ByLength: groupBy(ranked, lengthKey),
		ByType:   groupBy(ranked, typeKey),
		Features: features(ranked),
	}

	for i, p := range ranked[:min(opts.TopN, len(ranked))] {
		report.Top = append(report.Top, RankedPost{Rank: i + 1, Record: p.rec, Rate: p.rate})
	}

	report.Insights = insightsFrom(ranked)
	report.Recommendations = report.Insights.Recommendations()
	return report, nil
}

type keyFunc func(models.Record) (key string, order int, ok bool)

func dayKey(r models.Record) (string, int, bool) {
	t, ok := r.PublishedAt()
	if !ok {
		return "", 0, false
	}
	return t.Weekday().String(), weekdayOrder(t.Weekday()), true
}

func hourKey(r models.Record) (string, int, bool) {
	hour, ok := r.Hour()
	if !ok {
		return "", 0, false
	}
	return HourBucket(hour), hour, true
}

func lengthKey(r models.Record) (string, int, bool) {
	label, order := lengthBucket(r.Characteristics.CharacterCount)
	return label, order, true
}

func typeKey(r models.Record) (string, int, bool) {
	t := string(r.Characteristics.Type)
	if t == "" {
		t = string(models.PostTypeTextOnly)
	}
	return t, 0, true
}

// weekdayOrder puts Monday first.
func weekdayOrder(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// groupBy returns groups sorted by mean rate, best first; ties by natural key order.
func groupBy(posts []scoredPost, key keyFunc) []Group {
	rates := make(map[string][]float64)
	order := make(map[string]int)
	for _, p := range posts {
		k, o, ok := key(p.rec)
		if !ok {
			continue
		}
		rates[k] = append(rates[k], p.rate)
		order[k] = o
	}

	groups := make([]Group, 0, len(rates))
	for k, rs := range rates {
		groups = append(groups, Group{Key: k, Count: len(rs), MeanRate: mean(rs), order: order[k]})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.MeanRate != b.MeanRate {
			return a.MeanRate > b.MeanRate
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.Key < b.Key
	})
	return groups
}

// features reports mean rate with and without each flag, highest mean-with first.
func features(posts []scoredPost) []Feature {
	var out []Feature
	for _, flag := range Flags {
		var with, without []float64
		for _, p := range posts {
			if flag.Get(p.rec.Characteristics) {
				with = append(with, p.rate)
			} else {
				without = append(without, p.rate)
			}
		}
		if len(with) == 0 {
			continue
		}
		f := Feature{
			Flag:        flag,
			With:        len(with),
			Without:     len(without),
			MeanWith:    mean(with),
			MeanWithout: mean(without),
		}
		if f.MeanWithout > 0 {
			f.Lift = f.MeanWith / f.MeanWithout
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeanWith > out[j].MeanWith })
	return out
}
