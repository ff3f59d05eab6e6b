package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/config"
)

type lineKind int

const (
	lineText lineKind = iota
	// lineBoundary marks a section banner. It carries no text but stops continuation.
	lineBoundary
)

type line struct {
	num  int // 1-based position in the raw text
	text string
	kind lineKind
}

// normalizeLines splits raw statement text into trimmed, whitespace-collapsed lines,
// dropping blank lines and boilerplate. Section banners survive as boundary markers.
func normalizeLines(raw string, p *config.Profile) []line {
	rawLines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]line, 0, len(rawLines))

	for i, rl := range rawLines {
		for _, sep := range p.Separators {
			rl = strings.ReplaceAll(rl, sep, " ")
		}
		text := strings.Join(strings.Fields(rl), " ")
		if text == "" {
			continue
		}
		if matchesAny(text, p.Boundaries) {
			out = append(out, line{num: i + 1, text: text, kind: lineBoundary})
			continue
		}
		if matchesAny(text, p.Boilerplate) {
			continue
		}
		out = append(out, line{num: i + 1, text: text, kind: lineText})
	}
	return out
}
