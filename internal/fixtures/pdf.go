package fixtures

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// SampleFileName is the attachment written by SamplePDF.
const SampleFileName = "sample.pdf"

// SamplePDF writes a one-page PDF into dir and returns its absolute path,
// suitable for a file input.
func SamplePDF(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachment dir: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(dir, SampleFileName))
	if err != nil {
		return "", fmt.Errorf("failed to resolve attachment path: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Recruitment attachment")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, "Sample document uploaded by the recruitment end-to-end suite.", "", "L", false)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write sample PDF: %w", err)
	}
	return path, nil
}
