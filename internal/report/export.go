package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const resultsSheet = "Results"

var resultHeader = []any{"Case", "Test", "Priority", "Status", "Duration (s)", "Reason", "Started"}

// Ago renders t relative to now, e.g. "5 minutes ago".
func Ago(t, now time.Time) string {
	return timeago.English.FormatReference(t, now)
}

// ExportXLSX writes the run's results as a spreadsheet with a summary sheet.
func ExportXLSX(path string, run *RunSummary, results []Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(resultsSheet, "A1", &resultHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(resultHeader), 1)
	if err := f.SetCellStyle(resultsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, r := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			r.CaseID, r.Test, r.Priority, r.Status,
			r.Duration().Seconds(), r.Reason, r.StartedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(resultsSheet, "B", "B", 40); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(resultsSheet, "F", "F", 60); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	rows := [][]any{
		{"Run", run.ID},
		{"Suite", run.Suite},
		{"Engine", run.Engine},
		{"Target", run.BaseURL},
		{"Started", run.StartedAt.Format(time.RFC3339)},
		{"Passed", run.Passed},
		{"Skipped", run.Skipped},
		{"Failed", run.Failed},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Markdown renders a run summary and result table.
func Markdown(run *RunSummary, results []Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- **Suite:** %s\n", run.Suite)
	fmt.Fprintf(&b, "- **Engine:** %s\n", run.Engine)
	fmt.Fprintf(&b, "- **Target:** %s\n", run.BaseURL)
	fmt.Fprintf(&b, "- **Started:** %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Passed:** %d, **Skipped:** %d, **Failed:** %d\n\n", run.Passed, run.Skipped, run.Failed)

	if len(results) == 0 {
		b.WriteString("No results recorded.\n")
		return b.String()
	}
	b.WriteString("| Case | Test | Priority | Status | Duration | Reason |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			cell(r.CaseID), cell(r.Test), cell(r.Priority), cell(r.Status),
			r.Duration().Round(time.Millisecond), cell(r.Reason))
	}
	return b.String()
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTML renders Markdown(run, results) as a standalone page.
func HTML(run *RunSummary, results []Result) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(run, results)), &body); err != nil {
		return nil, fmt.Errorf("failed to render summary: %w", err)
	}
	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Run %s</title></head><body>\n", run.ID)
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

// ExportHTML writes HTML(run, results) to path.
func ExportHTML(path string, run *RunSummary, results []Result) error {
	page, err := HTML(run, results)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	return os.WriteFile(path, page, 0o644)
}
