package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/config"
)

// amountToken is one whitespace-separated field that reads as a money figure
// or as a column placeholder.
type amountToken struct {
	raw         string
	value       decimal.Decimal // signed; zero for placeholders and malformed figures
	sign        int             // -1, +1 when written explicitly, 0 when unsigned
	placeholder bool
	malformed   bool
}

// trailing is a line split into its leading text and the run of amount fields at its end.
type trailing struct {
	head   []string
	tokens []amountToken
	// category is a label printed after the amount columns, if one was found there.
	category string
}

func (t trailing) real() int {
	n := 0
	for _, tok := range t.tokens {
		if !tok.placeholder {
			n++
		}
	}
	return n
}

// lastReal reports whether the final n tokens are all real figures.
func (t trailing) lastReal(n int) bool {
	if len(t.tokens) < n {
		return false
	}
	for _, tok := range t.tokens[len(t.tokens)-n:] {
		if tok.placeholder {
			return false
		}
	}
	return true
}

// headWith rebuilds the description text from the head plus any real figures
// the chosen pattern did not consume.
func (t trailing) headWith(used int) string {
	parts := append([]string(nil), t.head...)
	for _, tok := range t.tokens[:len(t.tokens)-used] {
		if !tok.placeholder {
			parts = append(parts, tok.raw)
		}
	}
	return joinNonEmpty(parts)
}

// amountMatch is the matcher's reading of one window.
type amountMatch struct {
	pattern     string
	description string
	category    string
	value       decimal.Decimal // magnitude of the principal
	sign        int
	fee         decimal.Decimal
	balance     decimal.Decimal
	// feeOnly means the principal is itself a charge rather than a posting with a fee.
	feeOnly bool
	// markFee is set when the figure came from a fees column: the description gets
	// the profile's fee marker and the record is always a debit.
	markFee   bool
	malformed bool
}

// matcher reads money figures out of window text for one profile.
type matcher struct {
	profile *config.Profile
	token   *regexp.Regexp
	feeWord *regexp.Regexp // nil when the profile has no fee token
}

func newMatcher(p *config.Profile) *matcher {
	sym := ""
	if len(p.CurrencySymbols) > 0 {
		quoted := make([]string, 0, len(p.CurrencySymbols))
		for _, s := range p.CurrencySymbols {
			quoted = append(quoted, regexp.QuoteMeta(s))
		}
		sym = `(?:` + strings.Join(quoted, "|") + `)?`
	}
	m := &matcher{
		profile: p,
		token:   regexp.MustCompile(`^([-+])?` + sym + `([-+])?((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})$`),
	}
	if p.FeeToken != "" {
		m.feeWord = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.FeeToken) + `\b`)
	}
	return m
}

func (m *matcher) isPlaceholder(field string) bool {
	for _, ph := range m.profile.Placeholders {
		if field == ph {
			return true
		}
	}
	return false
}

// parseToken reads one field. ok is false when the field is neither a figure nor a placeholder.
func (m *matcher) parseToken(field string) (amountToken, bool) {
	if m.isPlaceholder(field) {
		return amountToken{raw: field, placeholder: true}, true
	}
	sub := m.token.FindStringSubmatch(field)
	if sub == nil {
		return amountToken{}, false
	}
	tok := amountToken{raw: field}
	sign := sub[1]
	if sign == "" {
		sign = sub[2]
	}
	switch sign {
	case "-":
		tok.sign = -1
	case "+":
		tok.sign = 1
	}
	v, err := parseAmount(sub[3])
	if err != nil || (!m.profile.MaxAmount.IsZero() && v.GreaterThan(m.profile.MaxAmount)) {
		tok.malformed = true
		return tok, true
	}
	if tok.sign < 0 {
		v = v.Neg()
	}
	tok.value = v
	return tok, true
}

func (m *matcher) scanTrailing(fields []string) trailing {
	i := len(fields)
	for i > 0 {
		if _, ok := m.parseToken(fields[i-1]); !ok {
			break
		}
		i--
	}
	t := trailing{head: fields[:i]}
	for _, f := range fields[i:] {
		tok, _ := m.parseToken(f)
		t.tokens = append(t.tokens, tok)
	}
	return t
}

// splitTrailing separates the amount columns at the end of text. When no figure
// ends the line, a known category label printed after the columns is peeled off
// and the scan repeated.
func (m *matcher) splitTrailing(text string) trailing {
	t := m.scanTrailing(strings.Fields(text))
	if t.real() > 0 {
		return t
	}
	for _, label := range m.profile.Categories {
		rest, ok := cutLabel(text, label)
		if !ok {
			continue
		}
		lt := m.scanTrailing(strings.Fields(rest))
		if lt.real() > 0 {
			lt.category = label
			return lt
		}
	}
	return t
}

// hasTrailingAmounts reports whether text ends in at least one money figure.
func (m *matcher) hasTrailingAmounts(text string) bool {
	return m.splitTrailing(text).real() > 0
}

// match tries each of the profile's amount patterns in order against the window.
func (m *matcher) match(w *window) (amountMatch, bool) {
	t := m.splitTrailing(w.text)
	for _, pattern := range m.profile.AmountPatterns {
		var (
			am amountMatch
			ok bool
		)
		switch pattern {
		case config.PatternColumnar:
			am, ok = m.columnar(t)
		case config.PatternTriple:
			am, ok = m.triple(t)
		case config.PatternPair:
			am, ok = m.pair(t)
		case config.PatternSingle:
			am, ok = m.single(t)
		case config.PatternEmbedded:
			am, ok = m.embedded(w.anchorText)
		}
		if ok {
			am.pattern = pattern
			return am, true
		}
	}
	return amountMatch{}, false
}

// finish splits the category off the description unless one was found after the columns.
func (m *matcher) finish(am amountMatch, head, suffixCategory string) amountMatch {
	if suffixCategory != "" {
		am.description, am.category = head, suffixCategory
	} else {
		am.description, am.category = extractCategory(head, m.profile.Categories)
	}
	return am
}

// columnar reads fees, money out, money in and balance columns where absent cells print a placeholder.
func (m *matcher) columnar(t trailing) (amountMatch, bool) {
	if len(t.tokens) < 4 || t.tokens[len(t.tokens)-1].placeholder {
		return amountMatch{}, false
	}
	cols := t.tokens[len(t.tokens)-4:]
	fee, out, in, bal := cols[0], cols[1], cols[2], cols[3]

	am := amountMatch{balance: bal.value}
	switch {
	case in.value.Abs().IsPositive():
		am.value, am.sign = in.value.Abs(), 1
		am.fee = fee.value.Abs()
	case out.value.Abs().IsPositive():
		am.value, am.sign = out.value.Abs(), -1
		am.fee = fee.value.Abs()
	case fee.value.Abs().IsPositive():
		am.value, am.sign = fee.value.Abs(), -1
		am.feeOnly, am.markFee = true, true
	}
	am.malformed = fee.malformed || out.malformed || in.malformed
	return m.finish(am, t.headWith(4), t.category), true
}

// triple reads value, fee and balance.
func (m *matcher) triple(t trailing) (amountMatch, bool) {
	if !t.lastReal(3) {
		return amountMatch{}, false
	}
	cols := t.tokens[len(t.tokens)-3:]
	am := amountMatch{
		value:     cols[0].value.Abs(),
		sign:      cols[0].sign,
		fee:       cols[1].value.Abs(),
		balance:   cols[2].value,
		malformed: cols[0].malformed,
	}
	return m.finish(am, t.headWith(3), t.category), true
}

// pair reads value and balance. A pair on a fee posting is the fee itself.
func (m *matcher) pair(t trailing) (amountMatch, bool) {
	if !t.lastReal(2) {
		return amountMatch{}, false
	}
	cols := t.tokens[len(t.tokens)-2:]
	am := amountMatch{
		value:     cols[0].value.Abs(),
		sign:      cols[0].sign,
		balance:   cols[1].value,
		malformed: cols[0].malformed,
	}
	am = m.finish(am, t.headWith(2), t.category)
	am.feeOnly = m.isFeeText(am.description) || m.isFeeText(am.category)
	return am, true
}

// isFeeText reports whether text names the profile's fee token as a whole word,
// so "Admin Fee" counts and "Coffee" does not.
func (m *matcher) isFeeText(text string) bool {
	return m.feeWord != nil && m.feeWord.MatchString(text)
}

// single reads a lone value; the balance is unknown.
func (m *matcher) single(t trailing) (amountMatch, bool) {
	if !t.lastReal(1) {
		return amountMatch{}, false
	}
	last := t.tokens[len(t.tokens)-1]
	am := amountMatch{
		value:     last.value.Abs(),
		sign:      last.sign,
		malformed: last.malformed,
	}
	return m.finish(am, t.headWith(1), t.category), true
}

// embedded pulls figures from anywhere in the anchor line: the first is the
// value and the last, when there are two or more, the balance.
func (m *matcher) embedded(text string) (amountMatch, bool) {
	var (
		rest []string
		toks []amountToken
	)
	for _, f := range strings.Fields(text) {
		tok, ok := m.parseToken(strings.Trim(f, ",;:()"))
		if ok && !tok.placeholder {
			toks = append(toks, tok)
			continue
		}
		rest = append(rest, f)
	}
	if len(toks) == 0 {
		return amountMatch{}, false
	}
	am := amountMatch{
		value:     toks[0].value.Abs(),
		sign:      toks[0].sign,
		malformed: toks[0].malformed,
	}
	if len(toks) >= 2 {
		am.balance = toks[len(toks)-1].value
	}
	return m.finish(am, joinNonEmpty(rest), ""), true
}
