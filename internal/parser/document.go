package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// SplitFrontMatter separates a leading YAML front matter block from the document body.
// ok is false when the document has no front matter; body is then the whole input.
func SplitFrontMatter(content string) (frontMatter, body string, ok bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, frontMatterDelim+"\n") {
		return "", content, false
	}
	rest := content[len(frontMatterDelim)+1:]
	if strings.HasPrefix(rest, frontMatterDelim+"\n") || rest == frontMatterDelim {
		return "", strings.TrimPrefix(strings.TrimPrefix(rest, frontMatterDelim), "\n"), true
	}
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return "", content, false
	}
	frontMatter = rest[:end]
	body = strings.TrimLeft(rest[end+len(frontMatterDelim)+1:], "\n")
	return frontMatter, body, true
}

// DecodeFrontMatter unmarshals the front matter into v and returns the body.
func DecodeFrontMatter(content string, v any) (string, error) {
	fm, body, ok := SplitFrontMatter(content)
	if !ok {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(fm), v); err != nil {
		return body, fmt.Errorf("parse front matter: %w", err)
	}
	return body, nil
}

// EncodeFrontMatter renders v as a front matter block followed by body.
func EncodeFrontMatter(v any, body string) (string, error) {
	fm, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterDelim + "\n")
	sb.Write(fm)
	sb.WriteString(frontMatterDelim + "\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String(), nil
}

// PlainText strips front matter and surrounding whitespace from a note or example post.
func PlainText(content string) string {
	_, body, _ := SplitFrontMatter(content)
	return strings.TrimSpace(body)
}
