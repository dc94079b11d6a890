package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raphaelgruber/postcraft/internal/models"
)

var (
	hashtagRegex = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	listRegex    = regexp.MustCompile(`(?m)^[ \t]*(?:\d+[.)]|[-*•–▪])[ \t]+\S`)
	linkRegex    = regexp.MustCompile(`(?i)https?://\S+|\bwww\.\S+`)
)

// Signals are format facts that come from the table rather than from the text.
type Signals struct {
	Image      bool
	Video      bool
	Poll       bool
	ImageFiles []string
}

// Detect derives the characteristics of a post from its text and format signals.
func Detect(text string, sig Signals) models.Characteristics {
	c := models.Characteristics{
		HasImage:       sig.Image || len(sig.ImageFiles) > 0,
		HasVideo:       sig.Video,
		HasLink:        linkRegex.MatchString(text),
		Hashtags:       ExtractHashtags(text),
		HasEmoji:       HasEmoji(text),
		HasList:        listRegex.MatchString(text),
		HasQuestion:    strings.Contains(text, "?"),
		WordCount:      len(strings.Fields(text)),
		CharacterCount: utf8.RuneCountInString(text),
		LineBreaks:     strings.Count(text, "\n"),
		ImageFiles:     append([]string{}, sig.ImageFiles...),
	}
	c.HasHashtags = len(c.Hashtags) > 0
	c.Type = classify(c, sig.Poll)
	return c
}

// classify picks exactly one type; the first matching rule wins.
func classify(c models.Characteristics, poll bool) models.PostType {
	switch {
	case c.HasImage:
		return models.PostTypeImage
	case c.HasVideo:
		return models.PostTypeVideo
	case c.HasLink:
		return models.PostTypeLink
	case poll:
		return models.PostTypePoll
	default:
		return models.PostTypeTextOnly
	}
}

// ExtractHashtags returns hashtags without '#', deduplicated in first-seen order.
func ExtractHashtags(text string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(text, -1)

	tags := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, match := range matches {
		tag := match[1]
		if !seen[tag] {
			tags = append(tags, tag)
			seen[tag] = true
		}
	}
	return tags
}

// HasEmoji reports whether text contains a non-ASCII symbol or pictograph.
func HasEmoji(text string) bool {
	for _, r := range text {
		if r <= unicode.MaxASCII {
			continue
		}
		if unicode.Is(unicode.So, r) || isPictograph(r) {
			return true
		}
	}
	return false
}

func isPictograph(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // emoticons, symbols, pictographs, flags
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0xFE0F, r == 0x200D: // variation selector, zero-width joiner
		return true
	}
	return false
}
