package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

func (w *CSVWriter) ContentType() string { return "text/csv" }
func (w *CSVWriter) Extension() string   { return "csv" }

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, info *models.StatementInfo) error {
	writer := csv.NewWriter(out)

	// Metadata rows ahead of the column headers
	if w.IncludeHeader {
		meta := [][]string{
			{"# Bank", string(info.Bank)},
			{"# Account Number", info.AccountNumber},
			{"# Statement Period", info.StatementPeriod},
		}
		for _, row := range meta {
			if row[1] == "" {
				continue
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	header := []string{"Date", "Description", "Direction", "Amount", "Fee", "Balance", "Category", "Reference", "Parent Reference"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range info.Transactions {
		row := []string{
			txn.Date.String(),
			txn.Description,
			string(txn.Direction),
			formatAmount(txn.Amount),
			formatAmount(txn.Fee),
			formatAmount(txn.Balance),
			txn.Category,
			txn.Reference,
			txn.ParentReference,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
