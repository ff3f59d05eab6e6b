package parser

import (
	"cloud.google.com/go/civil"
)

// collect builds the window for the anchor at lines[i]. When the anchor itself
// ends in figures the window is that line alone. Otherwise up to Lookahead lines
// are merged until one ends in figures; the scan stops early at the next anchor
// or a section boundary.
func (e *Engine) collect(lines []line, i int, date civil.Date, rest string) *window {
	w := &window{
		date:       date,
		lineNum:    lines[i].num,
		anchorText: rest,
		text:       rest,
		next:       i + 1,
	}
	if e.matcher.hasTrailingAmounts(rest) {
		return w
	}

	parts := []string{rest}
	for j := i + 1; j < len(lines) && j <= i+e.profile.Lookahead; j++ {
		ln := lines[j]
		if ln.kind == lineBoundary {
			break
		}
		if _, _, _, ok := e.matchAnchor(ln.text); ok {
			break
		}
		if e.matcher.hasTrailingAmounts(ln.text) {
			parts = append(parts, ln.text)
			w.text = joinNonEmpty(parts)
			w.next = j + 1
			return w
		}
		if matchesAny(ln.text, e.profile.IgnoreContinuation) {
			continue
		}
		parts = append(parts, ln.text)
	}
	// Nothing with figures turned up; the skipped lines stay available to later anchors.
	w.text = joinNonEmpty(parts)
	return w
}
