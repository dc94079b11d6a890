package parser

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/postcraft/internal/models"
)

type field int

const (
	fieldPostURL field = iota
	fieldDate
	fieldTime
	fieldImpressions
	fieldMembersReached
	fieldReactions
	fieldComments
	fieldShares
	fieldClicks
	fieldEngagementRate
	fieldContent
	fieldImage
	fieldVideo
	fieldPoll
)

// labelAliases maps each recognized field to the lowercase labels exports use for it.
var labelAliases = map[field][]string{
	fieldPostURL:        {"post url", "url", "post link"},
	fieldDate:           {"post date", "date", "published date"},
	fieldTime:           {"post publish time", "publish time", "post time", "time"},
	fieldImpressions:    {"impressions"},
	fieldMembersReached: {"members reached", "unique impressions"},
	fieldReactions:      {"reactions", "likes"},
	fieldComments:       {"comments"},
	fieldShares:         {"reposts / shares", "reposts", "shares", "reposts/shares"},
	fieldClicks:         {"clicks"},
	fieldEngagementRate: {"engagement rate"},
	fieldContent:        {"content", "post content", "post text"},
	fieldImage:          {"image", "images"},
	fieldVideo:          {"video"},
	fieldPoll:           {"poll"},
}

var (
	exactLabels   = map[string]field{}
	wordLabelExpr []wordLabel
)

type wordLabel struct {
	field field
	expr  *regexp.Regexp
	size  int
}

func init() {
	for f, aliases := range labelAliases {
		for _, a := range aliases {
			exactLabels[a] = f
			wordLabelExpr = append(wordLabelExpr, wordLabel{
				field: f,
				expr:  regexp.MustCompile(`\b` + regexp.QuoteMeta(a) + `\b`),
				size:  len(a),
			})
		}
	}
	sort.Slice(wordLabelExpr, func(i, j int) bool {
		if wordLabelExpr[i].size != wordLabelExpr[j].size {
			return wordLabelExpr[i].size > wordLabelExpr[j].size
		}
		return wordLabelExpr[i].expr.String() < wordLabelExpr[j].expr.String()
	})
}

// DateLayouts are the accepted Post Date formats, tried in order.
var DateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	models.DateLayout,
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"2 Jan 2006",
	"2-Jan-06",
	"2-Jan-2006",
	"1/2/06 15:04",
	"1/2/2006 15:04",
}

// TimeLayouts are the accepted Post Publish Time formats, tried in order.
var TimeLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"15:04",
	"15:04:05",
}

// ExtractOptions carries per-file context that is not part of the table.
type ExtractOptions struct {
	SourceFile string
	Timezone   string
	Notes      string
}

// Extraction is a built record plus the non-fatal warnings raised while building it.
type Extraction struct {
	Record   models.Record
	Warnings []NumericWarning
}

// labelIndex is the single-pass mapping from recognized field to its label row.
// Rows inside the Content block are never labels.
type labelIndex struct {
	rows         map[field]int
	contentStart int
	contentEnd   int
}

// contentTerminators are the bare labels that end a Content block. Any other label ends it
// only when the row also carries a value, so a post line such as "Time" stays content.
var contentTerminators = map[string]bool{
	"post url":          true,
	"post date":         true,
	"post publish time": true,
	"impressions":       true,
	"members reached":   true,
	"reactions":         true,
	"comments":          true,
	"reposts / shares":  true,
	"reposts/shares":    true,
	"clicks":            true,
	"engagement rate":   true,
	"image":             true,
	"images":            true,
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, ":"))
	return strings.Join(strings.Fields(s), " ")
}

// matchLabel resolves a column A cell to a field. Substring matches only count when the
// row also carries a value, so free text in a multi-row Content block is not mistaken for a label.
func matchLabel(cell string, hasValue bool) (field, bool) {
	label := normalizeLabel(cell)
	if label == "" {
		return 0, false
	}
	if f, ok := exactLabels[label]; ok {
		return f, true
	}
	if !hasValue {
		return 0, false
	}
	for _, w := range wordLabelExpr {
		if w.expr.MatchString(label) {
			return w.field, true
		}
	}
	return 0, false
}

func buildIndex(t Table) labelIndex {
	matched := make([]field, len(t))
	isLabel := make([]bool, len(t))
	start := -1
	for i := range t {
		f, ok := matchLabel(t.Cell(i, 0), t.Cell(i, 1) != "")
		if !ok {
			continue
		}
		matched[i], isLabel[i] = f, true
		if f == fieldContent && start < 0 {
			start = i
		}
	}

	end := len(t)
	if start >= 0 {
		for i := start + 1; i < len(t); i++ {
			if isLabel[i] && endsContent(t, i) {
				end = i
				break
			}
			isLabel[i] = false
		}
	}

	idx := labelIndex{rows: make(map[field]int), contentStart: start, contentEnd: end}
	for i := range t {
		if !isLabel[i] {
			continue
		}
		if _, seen := idx.rows[matched[i]]; !seen {
			idx.rows[matched[i]] = i
		}
	}
	return idx
}

func endsContent(t Table, row int) bool {
	return t.Cell(row, 1) != "" || contentTerminators[normalizeLabel(t.Cell(row, 0))]
}

func (idx labelIndex) has(f field) bool {
	_, ok := idx.rows[f]
	return ok
}

func (idx labelIndex) value(t Table, f field) string {
	row, ok := idx.rows[f]
	if !ok {
		return ""
	}
	return t.Cell(row, 1)
}

// content collects the label row's value and every row up to the end of the block.
func (idx labelIndex) content(t Table) string {
	start := idx.contentStart
	if start < 0 {
		return ""
	}

	var lines []string
	if v := t.raw(start, 1); strings.TrimSpace(v) != "" {
		lines = append(lines, v)
	}
	for i := start + 1; i < idx.contentEnd; i++ {
		line := t.raw(i, 1)
		if strings.TrimSpace(line) == "" {
			line = t.raw(i, 0)
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return trimBlankLines(strings.Join(lines, "\n"))
}

func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// Extract builds a post record from a label/value table.
func Extract(t Table, opts ExtractOptions) (*Extraction, error) {
	idx := buildIndex(t)

	content := idx.content(t)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, ReasonContentEmpty)
	}

	date, err := ParseDate(idx.value(t, fieldDate))
	if err != nil {
		return nil, err
	}
	clock, err := ParseTime(idx.value(t, fieldTime))
	if err != nil {
		return nil, err
	}

	ex := &Extraction{}
	count := func(f field, name string) int {
		raw := idx.value(t, f)
		n, ok := ParseCount(raw)
		if !ok {
			ex.Warnings = append(ex.Warnings, NumericWarning{Field: name, Value: raw})
		}
		return n
	}

	eng := models.Engagement{
		Impressions:    count(fieldImpressions, "impressions"),
		MembersReached: count(fieldMembersReached, "members_reached"),
		Reactions:      count(fieldReactions, "reactions"),
		Comments:       count(fieldComments, "comments"),
		Shares:         count(fieldShares, "shares"),
		Clicks:         count(fieldClicks, "clicks"),
	}
	if raw := idx.value(t, fieldEngagementRate); raw != "" {
		rate, ok := ParseRate(raw)
		if !ok {
			ex.Warnings = append(ex.Warnings, NumericWarning{Field: "engagement_rate", Value: raw})
		}
		eng.ReportedRate = rate
	}
	eng.EngagementRate = models.EngagementRate(eng)

	sig := Signals{
		Image: idx.has(fieldImage),
		Video: idx.has(fieldVideo),
		Poll:  idx.has(fieldPoll),
	}
	if v := idx.value(t, fieldImage); v != "" {
		sig.ImageFiles = []string{v}
	}

	notes := opts.Notes
	if notes == "" {
		notes = "Imported from analytics export"
	}

	ex.Record = models.Record{
		PostID:          PostIDFromURL(idx.value(t, fieldPostURL)),
		SourceFile:      opts.SourceFile,
		Content:         content,
		Metadata:        models.Metadata{Date: date, Time: clock, Timezone: opts.Timezone},
		Engagement:      eng,
		Characteristics: Detect(content, sig),
		Context:         models.PostContext{Tone: "professional"},
		Notes:           notes,
	}
	ex.Record.Normalize()
	return ex, nil
}

// WithImages returns a copy of r that references the extracted image files.
func WithImages(r models.Record, files []string) models.Record {
	if len(files) == 0 {
		return r
	}
	c := r.Characteristics
	c.ImageFiles = append(append([]string{}, c.ImageFiles...), files...)
	c.HasImage = true
	c.Type = models.PostTypeImage
	r.Characteristics = c
	return r
}

// ParseCount parses a non-negative integer, ignoring thousands separators.
// Empty input is 0 without complaint; anything else unparseable is 0 and ok=false.
func ParseCount(s string) (int, bool) {
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseRate parses an engagement rate into a fraction: "0.98%" and "0.98" above 1 are percents.
func ParseRate(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, true
	}
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	if percent || f > 1 {
		return f / 100, true
	}
	return f, true
}

// ParseDate normalizes a date cell to YYYY-MM-DD. Empty input yields "".
func ParseDate(s string) (string, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", nil
	}
	for _, layout := range DateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(models.DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: post date %q", ErrDateParse, s)
}

// ParseTime normalizes a time cell to 24h HH:MM. Empty input yields "".
func ParseTime(s string) (string, error) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return "", nil
	}
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.TimeLayout), nil
		}
	}
	return "", fmt.Errorf("%w: post publish time %q", ErrDateParse, s)
}

// PostIDFromURL extracts the activity id from a post URL or URN.
func PostIDFromURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
