package parser

import "strings"

// cutLabel removes label from the end of text when it stands as whole words
// and something is left in front of it.
func cutLabel(text, label string) (string, bool) {
	if label == "" || len(text) <= len(label) || !strings.HasSuffix(text, label) {
		return text, false
	}
	rest := text[:len(text)-len(label)]
	if !strings.HasSuffix(rest, " ") {
		return text, false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return text, false
	}
	return rest, true
}

// extractCategory splits a trailing category label off a description. vocab must
// be sorted longest first. Stacked labels are all removed and the outermost one is
// returned, so running it again on its own output changes nothing. The description
// is never stripped to nothing.
func extractCategory(text string, vocab []string) (description, category string) {
	description = strings.TrimSpace(text)
	for {
		found := false
		for _, label := range vocab {
			if rest, ok := cutLabel(description, label); ok {
				if category == "" {
					category = label
				}
				description = rest
				found = true
				break
			}
		}
		if !found {
			return description, category
		}
	}
}
