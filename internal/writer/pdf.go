package writer

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// PDFWriter renders the reconstructed ledger as a printable report.
type PDFWriter struct{}

func (w *PDFWriter) ContentType() string { return "application/pdf" }
func (w *PDFWriter) Extension() string   { return "pdf" }

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 22, "C"},
	{"Description", 70, "L"},
	{"Dir", 14, "C"},
	{"Amount", 24, "R"},
	{"Balance", 26, "R"},
	{"Category", 34, "L"},
}

func (w *PDFWriter) Write(out io.Writer, info *models.StatementInfo) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Reconstructed Statement Ledger")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, meta := range [][2]string{
		{"Bank", string(info.Bank)},
		{"Account", info.AccountNumber},
		{"Period", info.StatementPeriod},
	} {
		if meta[1] == "" {
			continue
		}
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s", meta[0], tr(meta[1])))
		pdf.Ln(5)
	}
	debit, credit := info.Totals()
	pdf.Cell(0, 6, fmt.Sprintf("Transactions: %d   Debits: %s   Credits: %s",
		len(info.Transactions), debit.StringFixed(2), credit.StringFixed(2)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 6, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, txn := range info.Transactions {
		cells := []string{
			txn.Date.String(),
			tr(truncate(txn.Description, 45)),
			string(txn.Direction),
			txn.Amount.StringFixed(2),
			formatAmount(txn.Balance),
			tr(truncate(txn.Category, 20)),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 5, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}
