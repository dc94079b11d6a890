package models

import (
	"encoding/json"
	"time"
)

// PostType is the single format classification of a post.
type PostType string

const (
	PostTypeTextOnly PostType = "text_only"
	PostTypeImage    PostType = "image"
	PostTypeVideo    PostType = "video"
	PostTypeLink     PostType = "link"
	PostTypePoll     PostType = "poll"
)

// Layouts used for the normalized metadata strings.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Record is one normalized post with content, metadata, engagement and characteristics.
// Every field is always serialized; empty values use zero defaults instead of omission.
type Record struct {
	PostID          string          `json:"post_id"`
	SourceFile      string          `json:"source_file"`
	Content         string          `json:"content"`
	Metadata        Metadata        `json:"metadata"`
	Engagement      Engagement      `json:"engagement"`
	Characteristics Characteristics `json:"characteristics"`
	Context         PostContext     `json:"context"`
	Notes           string          `json:"notes"`
}

// Metadata holds when the post was published.
type Metadata struct {
	Date     string `json:"date"`     // YYYY-MM-DD or ""
	Time     string `json:"time"`     // HH:MM (24h) or ""
	Timezone string `json:"timezone"` // free-form zone label, e.g. "EET"
}

// Engagement holds the interaction counters reported by the analytics export.
type Engagement struct {
	Impressions    int `json:"impressions"`
	MembersReached int `json:"members_reached"`
	Reactions      int `json:"reactions"`
	Comments       int `json:"comments"`
	Shares         int `json:"shares"`
	Clicks         int `json:"clicks"`
	// EngagementRate is a fraction (0.0098 means 0.98%), derived from the counters.
	EngagementRate float64 `json:"engagement_rate"`
	// ReportedRate is the export's own engagement rate cell, as a fraction. Informational.
	ReportedRate float64 `json:"reported_engagement_rate"`
}

// Characteristics are derived boolean and count features of the post text and format.
type Characteristics struct {
	Type           PostType `json:"type"`
	HasImage       bool     `json:"has_image"`
	HasVideo       bool     `json:"has_video"`
	HasLink        bool     `json:"has_link"`
	HasHashtags    bool     `json:"has_hashtags"`
	Hashtags       []string `json:"hashtags"`
	HasEmoji       bool     `json:"has_emoji"`
	HasList        bool     `json:"has_list"`
	HasQuestion    bool     `json:"has_question"`
	WordCount      int      `json:"word_count"`
	CharacterCount int      `json:"character_count"`
	LineBreaks     int      `json:"line_breaks"`
	ImageFiles     []string `json:"image_files"`
}

// PostContext is user-maintained labelling of what a post was about.
type PostContext struct {
	Topic string `json:"topic"`
	Goal  string `json:"goal"`
	Tone  string `json:"tone"`
}

// EngagementRate computes (reactions+comments+shares)/impressions, or 0 without impressions.
func EngagementRate(e Engagement) float64 {
	if e.Impressions <= 0 {
		return 0
	}
	return float64(e.Reactions+e.Comments+e.Shares) / float64(e.Impressions)
}

// Rate recomputes the engagement rate from the counters, ignoring any stored value.
func (r Record) Rate() float64 {
	return EngagementRate(r.Engagement)
}

// Scored reports whether the record has impressions to rate against.
func (r Record) Scored() bool {
	return r.Engagement.Impressions > 0
}

// PublishedAt parses the metadata date (and time when present).
// ok is false when the record carries no parseable date.
func (r Record) PublishedAt() (t time.Time, ok bool) {
	if r.Metadata.Date == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, r.Metadata.Date)
	if err != nil {
		return time.Time{}, false
	}
	if hour, ok := r.Hour(); ok {
		clock, _ := time.Parse(TimeLayout, r.Metadata.Time)
		d = d.Add(time.Duration(hour)*time.Hour + time.Duration(clock.Minute())*time.Minute)
	}
	return d, true
}

// Hour returns the hour of day the post was published.
func (r Record) Hour() (int, bool) {
	if r.Metadata.Time == "" {
		return 0, false
	}
	t, err := time.Parse(TimeLayout, r.Metadata.Time)
	if err != nil {
		return 0, false
	}
	return t.Hour(), true
}

// Normalize replaces nil slices so that JSON output always has arrays.
func (r *Record) Normalize() {
	if r.Characteristics.Hashtags == nil {
		r.Characteristics.Hashtags = []string{}
	}
	if r.Characteristics.ImageFiles == nil {
		r.Characteristics.ImageFiles = []string{}
	}
	if r.Characteristics.Type == "" {
		r.Characteristics.Type = PostTypeTextOnly
	}
}

// UnmarshalJSON accepts the legacy "post_characteristics" key.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Legacy *Characteristics `json:"post_characteristics"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Legacy != nil && r.Characteristics.Type == "" {
		r.Characteristics = *aux.Legacy
	}
	r.Normalize()
	return nil
}
