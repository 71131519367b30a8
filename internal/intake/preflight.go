// Package intake automates project creation from a drop folder: plan
// PDFs copied into the watched directory are preflighted and uploaded.
package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PreflightResult describes a validated plan document.
type PreflightResult struct {
	Pages      int
	FileSizeMB float64
}

// Preflight validates a plan file before upload: it must be a readable
// PDF with at least one page, under the configured size limit.
func Preflight(path string, maxSizeMB int) (*PreflightResult, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%s: only PDF plans are supported", filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access plan file: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	if maxSizeMB > 0 && sizeMB > float64(maxSizeMB) {
		return nil, fmt.Errorf("%s: file too large: %.2fMB (max: %dMB)", filepath.Base(path), sizeMB, maxSizeMB)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%s: not a readable PDF: %w", filepath.Base(path), err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return nil, fmt.Errorf("%s: document has no pages", filepath.Base(path))
	}

	return &PreflightResult{Pages: pages, FileSizeMB: sizeMB}, nil
}
