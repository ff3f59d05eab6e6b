package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrPasswordRequired means the document is encrypted and no password was given.
	ErrPasswordRequired = errors.New("document is password protected")
	// ErrIncorrectPassword means the supplied password did not open the document.
	ErrIncorrectPassword = errors.New("incorrect document password")
	// ErrUnreadableDocument means no usable text could be produced.
	ErrUnreadableDocument = errors.New("document is unreadable")
)

// ExtractText returns the text of each page of a statement document.
// PDFs go through the structured library first, then the external pdftotext
// command (poppler-utils), then Tesseract OCR when installed. Anything that is not a PDF is read as plain UTF-8
// text with form feeds separating pages.
func ExtractText(ctx context.Context, data []byte, password string) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrUnreadableDocument)
	}
	if !IsPDF(data) {
		return extractPlainText(data)
	}

	pages, libErr := extractWithLibrary(data, password)
	if isPasswordError(libErr) {
		return nil, libErr
	}
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	popplerPages, popplerErr := extractWithPdftotext(ctx, data, password)
	if isPasswordError(popplerErr) {
		return nil, popplerErr
	}
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	// Scanned statements have no text layer at all
	if IsOCRAvailable() {
		ocrPages, ocrErr := extractWithOCR(ctx, data, password)
		if isPasswordError(ocrErr) {
			return nil, ocrErr
		}
		if ocrErr == nil && isReadableText(ocrPages) {
			return ocrPages, nil
		}
	}

	// Never return garbage text
	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, libErr)
	}
	return nil, fmt.Errorf("%w: no readable text could be extracted; the file may be image-based or use custom font encodings", ErrUnreadableDocument)
}

// IsPDF reports whether data starts with a PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF-"))
}

func extractPlainText(data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not a PDF and not UTF-8 text", ErrUnreadableDocument)
	}
	pages := strings.Split(string(data), "\f")
	if textQuality(pages) <= 0.6 {
		return nil, fmt.Errorf("%w: text is mostly non-printable", ErrUnreadableDocument)
	}
	return pages, nil
}

// passwordError picks the password error kind for an encrypted document.
func passwordError(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	return ErrIncorrectPassword
}

func isPasswordError(err error) bool {
	return errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrIncorrectPassword)
}

// openPDF opens an in-memory PDF, trying the password once if the document is encrypted.
func openPDF(data []byte, password string) (*pdf.Reader, error) {
	tried := false
	r, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	})
	if err != nil {
		return nil, mapOpenError(err, password)
	}
	return r, nil
}

func mapOpenError(err error, password string) error {
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return passwordError(password)
	}
	return err
}

// pageMethod is one way of pulling page text out of the library.
type pageMethod struct {
	name    string
	extract func(r *pdf.Reader, numPages int) []string
}

var pageMethods = []pageMethod{
	{"rows", extractByRow},
	{"content", extractByContent},
	{"page-plain", extractByPagePlainText},
	{"reader-plain", func(r *pdf.Reader, _ int) []string {
		if text := extractByReaderPlainText(r); text != "" {
			return []string{text}
		}
		return nil
	}},
}

// extractWithLibrary uses the ledongthuc/pdf library, trying each method until
// one yields readable text.
func extractWithLibrary(data []byte, password string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := openPDF(data, password)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for _, m := range pageMethods {
		pages = m.extract(r, numPages)
		if isReadableText(pages) {
			return pages, nil
		}
	}
	return pages, nil
}

// extractByRow uses GetTextByRow, best for well-structured PDFs.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent groups raw text objects by Y coordinate to rebuild rows,
// then orders each row by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type textItem struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y runs bottom to top
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var b strings.Builder
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					// column gap
					b.WriteString("  ")
				}
				b.WriteString(item.s)
				prevX = item.x
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
