package models

import "strings"

// DefaultFavoriteTitle is used when a prompt yields no usable suggestion.
const DefaultFavoriteTitle = "New favorite"

const suggestedTitleMax = 40

// titleDelimiters are the sentence boundaries a suggested title stops at.
const titleDelimiters = ".,;:!?"

// SuggestTitle derives a favorite title from prompt text: everything up to
// the first sentence delimiter, truncated to 40 characters with an ellipsis
// when longer. An empty prompt falls back to [DefaultFavoriteTitle].
func SuggestTitle(prompt string) string {
	text := strings.TrimSpace(prompt)
	if text == "" {
		return DefaultFavoriteTitle
	}

	if idx := strings.IndexAny(text, titleDelimiters); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	if text == "" {
		return DefaultFavoriteTitle
	}

	runes := []rune(text)
	if len(runes) > suggestedTitleMax {
		return string(runes[:suggestedTitleMax]) + "…"
	}
	return text
}
