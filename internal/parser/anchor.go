package parser

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// window is one candidate transaction: an anchor line plus any continuation
// lines merged into it.
type window struct {
	date       civil.Date
	lineNum    int
	anchorText string // the anchor line after its date token
	text       string // anchorText joined with continuation lines
	next       int    // index of the first line after the window
}

// matchAnchor tries the profile's date formats against the start of a line.
func (e *Engine) matchAnchor(text string) (token, rest, layout string, ok bool) {
	for _, df := range e.profile.DateFormats {
		sub := df.Pattern.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		return sub[1], strings.TrimSpace(sub[2]), df.Layout, true
	}
	return "", "", "", false
}

func parseDate(token, layout string) (civil.Date, error) {
	t, err := time.Parse(layout, token)
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// isNotification reports whether the anchor carries a status banner rather
// than a posting. A banner with a money figure is still a posting.
func (e *Engine) isNotification(rest string) bool {
	if len(e.profile.NoiseBanners) == 0 || decimalFigure.MatchString(rest) {
		return false
	}
	return containsAny(strings.ToLower(rest), e.profile.NoiseBanners)
}
