package models

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Direction says whether money entered or left the account.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// ParsedTransaction is one ledger entry reconstructed from statement text.
// Every field is always serialised: an absent category is "", an absent fee is 0.
type ParsedTransaction struct {
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
	Category    string          `json:"category"`
	Fee         decimal.Decimal `json:"fee"`
	Balance     decimal.Decimal `json:"balance"`
	Reference   string          `json:"reference"`
	// ParentReference links a split fee record to the posting it was charged on.
	ParentReference string `json:"parentReference"`
}

// IsFee reports whether the record was produced by the fee splitter.
func (t ParsedTransaction) IsFee() bool {
	return t.ParentReference != ""
}

// BankType identifies a statement layout.
type BankType string

const (
	BankCapitec  BankType = "capitec"
	BankTymeBank BankType = "tymebank"
	BankOther    BankType = "other"
	// BankAuto asks the caller to detect the layout from the statement text.
	BankAuto BankType = "auto"
)

// DiagnosticReason classifies why a line or window produced no transaction.
type DiagnosticReason string

const (
	ReasonNotification     DiagnosticReason = "notification"
	ReasonNoAmount         DiagnosticReason = "no-amount"
	ReasonZeroValue        DiagnosticReason = "zero-value"
	ReasonBadDate          DiagnosticReason = "bad-date"
	ReasonShortDescription DiagnosticReason = "short-description"
	ReasonMalformedAmount  DiagnosticReason = "malformed-amount"
)

// Diagnostic records a non-fatal parse problem.
type Diagnostic struct {
	LineNum int              `json:"lineNum"`
	Text    string           `json:"text"`
	Reason  DiagnosticReason `json:"reason"`
}

// StatementInfo holds the parsed ledger plus metadata extracted from the statement.
type StatementInfo struct {
	Bank            BankType            `json:"bank"`
	AccountNumber   string              `json:"accountNumber"`
	StatementPeriod string              `json:"statementPeriod"`
	Transactions    []ParsedTransaction `json:"transactions"`
	Diagnostics     []Diagnostic        `json:"diagnostics"`
}

// Totals sums the ledger by direction.
func (s *StatementInfo) Totals() (debit, credit decimal.Decimal) {
	for _, txn := range s.Transactions {
		if txn.Direction == Credit {
			credit = credit.Add(txn.Amount)
		} else {
			debit = debit.Add(txn.Amount)
		}
	}
	return debit, credit
}

// DiagnosticCounts groups diagnostics by reason.
func (s *StatementInfo) DiagnosticCounts() map[DiagnosticReason]int {
	counts := make(map[DiagnosticReason]int)
	for _, d := range s.Diagnostics {
		counts[d.Reason]++
	}
	return counts
}
