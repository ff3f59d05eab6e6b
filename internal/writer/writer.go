// Package writer renders parsed statements in the supported export formats.
package writer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// ErrUnknownFormat is returned for an export format with no writer.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer renders a parsed statement to out.
type Writer interface {
	Write(out io.Writer, info *models.StatementInfo) error
	// ContentType is the MIME type of the rendered output.
	ContentType() string
	// Extension is the file extension, without the dot.
	Extension() string
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"csv", "json", "xlsx", "ofx", "pdf"}
}

// New returns the writer for a format name.
func New(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "csv", "":
		return &CSVWriter{IncludeHeader: true}, nil
	case "json":
		return &JSONWriter{Indent: true}, nil
	case "xlsx":
		return &XLSXWriter{}, nil
	case "ofx":
		return &OFXWriter{Currency: "ZAR"}, nil
	case "pdf":
		return &PDFWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

// WriteToFile renders info into a file at path.
func WriteToFile(w Writer, path string, info *models.StatementInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, info); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatAmount(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return amount.StringFixed(2)
}
