package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

const (
	xlsxLedgerSheet  = "Transactions"
	xlsxSummarySheet = "Summary"
)

// XLSXWriter writes a workbook with the ledger and a summary sheet.
type XLSXWriter struct{}

func (w *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (w *XLSXWriter) Extension() string { return "xlsx" }

func (w *XLSXWriter) Write(out io.Writer, info *models.StatementInfo) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxLedgerSheet); err != nil {
		return fmt.Errorf("failed to name ledger sheet: %w", err)
	}
	if _, err := f.NewSheet(xlsxSummarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	header := []any{"Date", "Description", "Direction", "Amount", "Fee", "Balance", "Category", "Reference", "Parent Reference"}
	if err := f.SetSheetRow(xlsxLedgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, txn := range info.Transactions {
		row := []any{
			txn.Date.String(),
			txn.Description,
			string(txn.Direction),
			txn.Amount.InexactFloat64(),
			txn.Fee.InexactFloat64(),
			txn.Balance.InexactFloat64(),
			txn.Category,
			txn.Reference,
			txn.ParentReference,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(xlsxLedgerSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if n := len(info.Transactions); n > 0 {
		last, _ := excelize.CoordinatesToCellName(6, n+1)
		_ = f.SetCellStyle(xlsxLedgerSheet, "D2", last, money)
	}
	_ = f.SetColWidth(xlsxLedgerSheet, "B", "B", 40)

	debit, credit := info.Totals()
	summary := [][]any{
		{"Bank", string(info.Bank)},
		{"Account Number", info.AccountNumber},
		{"Statement Period", info.StatementPeriod},
		{"Transactions", len(info.Transactions)},
		{"Total Debit", debit.InexactFloat64()},
		{"Total Credit", credit.InexactFloat64()},
		{"Skipped Lines", len(info.Diagnostics)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(xlsxSummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
