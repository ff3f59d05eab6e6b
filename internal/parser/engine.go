package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Engine reconstructs a ledger from statement text for one bank profile.
// It holds no per-parse state and is safe for concurrent use.
type Engine struct {
	profile *config.Profile
	matcher *matcher
	log     zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-window debug output and diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine returns an engine for the given profile.
func NewEngine(p *config.Profile, opts ...Option) *Engine {
	e := &Engine{
		profile: p,
		matcher: newMatcher(p),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("bank", string(p.Bank)).Logger()
	return e
}

// BankName returns the human-readable bank name.
func (e *Engine) BankName() string { return e.profile.Name }

// Profile returns the profile the engine parses with.
func (e *Engine) Profile() *config.Profile { return e.profile }

// Parse joins extracted pages and parses them as one statement.
func (e *Engine) Parse(pages []string) *models.StatementInfo {
	return e.ParseText(strings.Join(pages, "\n"))
}

// parseRun is the mutable state of one parse.
type parseRun struct {
	info *models.StatementInfo
	seq  int
}

func (r *parseRun) diagnose(lineNum int, text string, reason models.DiagnosticReason) {
	r.info.Diagnostics = append(r.info.Diagnostics, models.Diagnostic{
		LineNum: lineNum,
		Text:    text,
		Reason:  reason,
	})
}

// ParseText parses raw statement text. It never fails: lines it cannot turn
// into transactions are reported as diagnostics. Equal input gives equal output.
func (e *Engine) ParseText(text string) *models.StatementInfo {
	run := &parseRun{info: &models.StatementInfo{
		Bank:         e.profile.Bank,
		Transactions: []models.ParsedTransaction{},
		Diagnostics:  []models.Diagnostic{},
	}}
	e.extractMetadata(text, run.info)

	lines := normalizeLines(text, e.profile)
	for i := 0; i < len(lines); {
		ln := lines[i]
		if ln.kind == lineBoundary {
			i++
			continue
		}
		token, rest, layout, ok := e.matchAnchor(ln.text)
		if !ok {
			i++
			continue
		}
		date, err := parseDate(token, layout)
		if err != nil {
			e.log.Debug().Int("line", ln.num).Str("date", token).Msg("unparseable anchor date")
			run.diagnose(ln.num, ln.text, models.ReasonBadDate)
			i++
			continue
		}
		if e.isNotification(rest) {
			run.diagnose(ln.num, ln.text, models.ReasonNotification)
			i++
			continue
		}

		w := e.collect(lines, i, date, rest)
		i = w.next
		e.emit(w, run)
	}

	reconcile(run.info.Transactions, e.profile.BalanceOrder)
	return run.info
}

// emit turns a window into zero, one or two records.
func (e *Engine) emit(w *window, run *parseRun) {
	am, ok := e.matcher.match(w)
	if !ok {
		e.log.Warn().Int("line", w.lineNum).Str("text", w.text).Msg("window abandoned: no amount")
		run.diagnose(w.lineNum, w.text, models.ReasonNoAmount)
		return
	}
	if !am.value.IsPositive() {
		reason := models.ReasonZeroValue
		if am.malformed {
			reason = models.ReasonMalformedAmount
		}
		e.log.Debug().Int("line", w.lineNum).Str("reason", string(reason)).Msg("window dropped")
		run.diagnose(w.lineNum, w.text, reason)
		return
	}
	if len(am.description) < e.profile.MinDescriptionLength {
		run.diagnose(w.lineNum, w.text, models.ReasonShortDescription)
		return
	}

	description := am.description
	if am.markFee {
		description += e.profile.FeeMarker
	}
	category := am.category
	if am.markFee && category == "" {
		category = e.profile.FeeCategory
	}
	// An unsigned charge leans to money out; keywords still decide first.
	sign := am.sign
	if am.feeOnly && sign == 0 {
		sign = -1
	}
	direction, rule := classify(e.profile, description, category, sign)
	if am.markFee {
		direction, rule = models.Debit, "fee-column"
	}

	txn := models.ParsedTransaction{
		Date:        w.date,
		Description: description,
		Amount:      am.value,
		Direction:   direction,
		Category:    category,
		Fee:         am.fee,
		Balance:     am.balance,
		Reference:   e.reference(w, run.seq),
	}
	run.seq++
	run.info.Transactions = append(run.info.Transactions, txn)

	e.log.Debug().
		Int("line", w.lineNum).
		Str("pattern", am.pattern).
		Str("rule", rule).
		Str("reference", txn.Reference).
		Msg("transaction")

	if feeTxn, ok := splitFee(e.profile, txn, e.reference(w, run.seq)+"-FEE"); ok {
		run.seq++
		run.info.Transactions = append(run.info.Transactions, feeTxn)
	}
}

// reference is PREFIX-YYYYMMDD-NNNN where NNNN counts records emitted so far.
func (e *Engine) reference(w *window, seq int) string {
	d := w.date
	return fmt.Sprintf("%s-%04d%02d%02d-%04d", e.profile.ReferencePrefix, d.Year, int(d.Month), d.Day, seq)
}
