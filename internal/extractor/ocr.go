package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// IsOCRAvailable reports whether pdftoppm and tesseract are both installed.
func IsOCRAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

// extractWithOCR renders each page to an image and runs Tesseract over it.
// This is the last resort for scanned statements with no text layer.
func extractWithOCR(ctx context.Context, data []byte, password string) ([]string, error) {
	if !IsOCRAvailable() {
		return nil, fmt.Errorf("OCR tools not available (install poppler-utils and tesseract-ocr)")
	}

	path, cleanup, err := spoolPDF(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// 300 DPI keeps small statement print legible
	args := append([]string{"-r", "300", "-png"}, popplerPasswordArgs(password)...)
	args = append(args, path, filepath.Join(tmpDir, "page"))
	if _, err := exec.CommandContext(ctx, "pdftoppm", args...).Output(); err != nil {
		if perr := popplerPasswordError(err, password); perr != nil {
			return nil, perr
		}
		return nil, fmt.Errorf("pdftoppm failed: %w", err)
	}

	images, err := filepath.Glob(filepath.Join(tmpDir, "page*.png"))
	if err != nil || len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	sort.Strings(images)

	var pages []string
	for _, img := range images {
		// PSM 4: a single column of variable-size text
		out, err := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", "eng", "--psm", "4").Output()
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract OCR produced no text from %d page images", len(images))
	}
	return pages, nil
}
