package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// JSONWriter writes the statement, ledger and diagnostics as one JSON document.
type JSONWriter struct {
	Indent bool
}

type jsonDocument struct {
	*models.StatementInfo
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Count       int             `json:"count"`
}

func (w *JSONWriter) ContentType() string { return "application/json" }
func (w *JSONWriter) Extension() string   { return "json" }

func (w *JSONWriter) Write(out io.Writer, info *models.StatementInfo) error {
	debit, credit := info.Totals()
	enc := json.NewEncoder(out)
	if w.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(jsonDocument{
		StatementInfo: info,
		TotalDebit:    debit,
		TotalCredit:   credit,
		Count:         len(info.Transactions),
	}); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
