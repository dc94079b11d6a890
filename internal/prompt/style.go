package prompt

import (
	"fmt"
	"strings"
)

// PostSeparator divides example posts inside the style analysis prompt.
const PostSeparator = "\n\n---POST SEPARATOR---\n\n"

const styleAnalysisTemplate = `Analyze these LinkedIn posts and create a detailed style guide that captures the author's writing style.

EXAMPLE POSTS:
%s

Please analyze and document:
1. **Tone & Voice**: Is it professional, casual, personal, authoritative, conversational?
2. **Structure Patterns**: How do posts typically open? How do they close? Common section patterns?
3. **Sentence Style**: Short and punchy? Long and flowing? Mix of both? Use of questions?
4. **Formatting**: Use of emojis, bullet points, numbered lists, line breaks, capitalization
5. **Content Approach**: Storytelling, data-driven, opinion-based, educational, provocative?
6. **Typical Length**: Character/word count range
7. **Engagement Tactics**: How does the author encourage interaction? Calls to action?
8. **Unique Quirks**: Any distinctive patterns or signature elements?

Output this as a clear, actionable style guide that can be used to generate new posts that match this exact style.`

// StyleAnalysis builds the prompt asking the generator to describe the author's style.
func StyleAnalysis(posts []string) (string, error) {
	var kept []string
	for _, p := range posts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("build style prompt: no example posts")
	}
	return fmt.Sprintf(styleAnalysisTemplate, strings.Join(kept, PostSeparator)), nil
}
