package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// spoolPDF writes the document to a temp file because the poppler and
// tesseract tools only read from disk. The caller must run cleanup.
func spoolPDF(data []byte) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("failed to spool document: %w", err)
	}
	cleanup = func() { os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to spool document: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to spool document: %w", err)
	}
	return f.Name(), cleanup, nil
}

func popplerPasswordArgs(password string) []string {
	if password == "" {
		return nil
	}
	return []string{"-upw", password}
}

// pdfPageCount asks pdfinfo for the page count, returning 0 when it cannot tell.
func pdfPageCount(ctx context.Context, path, password string) int {
	args := append(popplerPasswordArgs(password), path)
	out, err := exec.CommandContext(ctx, "pdfinfo", args...).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// extractWithPdftotext runs pdftotext from poppler-utils as a fallback for
// PDFs the Go library cannot decode.
func extractWithPdftotext(ctx context.Context, data []byte, password string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %v", err)
	}

	path, cleanup, err := spoolPDF(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	numPages := max(pdfPageCount(ctx, path, password), 1)

	// Extract each page separately to preserve page boundaries
	var pages []string
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		args := append([]string{"-layout", "-f", pageStr, "-l", pageStr}, popplerPasswordArgs(password)...)
		args = append(args, path, "-")
		out, err := exec.CommandContext(ctx, "pdftotext", args...).Output()
		if err != nil {
			if perr := popplerPasswordError(err, password); perr != nil {
				return nil, perr
			}
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}

// popplerPasswordError recognises poppler's "Incorrect password" failure.
func popplerPasswordError(err error, password string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && strings.Contains(strings.ToLower(string(exitErr.Stderr)), "password") {
		return passwordError(password)
	}
	return nil
}
