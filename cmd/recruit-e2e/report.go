package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/recruitment-e2e/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect and export recorded suite runs",
}

var reportListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded runs, newest first",
	Args:    cobra.NoArgs,
	RunE:    runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [run]",
	Short: "Show the results of a run (default: latest)",
	Long:  `Show a run's results as Markdown. The run may be given as an ID prefix.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportShow,
}

var reportExportCmd = &cobra.Command{
	Use:   "export [run]",
	Short: "Export a run to XLSX and/or HTML (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportExport,
}

var (
	limitFlag int
	dbFlag    string
	xlsxFlag  string
	htmlFlag  string
)

func init() {
	reportCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Run ledger path (default: report.path)")
	reportListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum runs to list (0 for all)")
	reportExportCmd.Flags().StringVar(&xlsxFlag, "xlsx", "", "Write an XLSX workbook to this path")
	reportExportCmd.Flags().StringVar(&htmlFlag, "html", "", "Write an HTML summary to this path")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportExportCmd)
}

func openLedger(cmd *cobra.Command) (*report.Store, error) {
	path := dbFlag
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Report.Path
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no run ledger at %s (enable report.enabled and run the suite): %w", path, err)
	}
	return report.Open(cmd.Context(), path)
}

// pickRun resolves an optional run argument, defaulting to the latest run.
func pickRun(cmd *cobra.Command, store *report.Store, args []string) (*report.RunSummary, []report.Result, error) {
	ctx := cmd.Context()
	var (
		run *report.RunSummary
		err error
	)
	if len(args) == 1 {
		run, err = store.Run(ctx, args[0])
	} else {
		run, err = store.Latest(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	results, err := store.Results(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, results, nil
}

func runReportList(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tENGINE\tPASSED\tSKIPPED\tFAILED\tTARGET")
	for _, r := range runs {
		started := report.Ago(r.StartedAt, now)
		if !r.FinishedAt.Valid {
			started += " (unfinished)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID), started, r.Engine, r.Passed, r.Skipped, r.Failed, r.BaseURL)
	}
	return w.Flush()
}

func runReportShow(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, results, err := pickRun(cmd, store, args)
	if err != nil {
		return err
	}
	fmt.Print(report.Markdown(run, results))
	return nil
}

func runReportExport(cmd *cobra.Command, args []string) error {
	if xlsxFlag == "" && htmlFlag == "" {
		return fmt.Errorf("nothing to export: pass --xlsx and/or --html")
	}
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, results, err := pickRun(cmd, store, args)
	if err != nil {
		return err
	}
	if xlsxFlag != "" {
		if err := report.ExportXLSX(xlsxFlag, run, results); err != nil {
			return err
		}
		fmt.Printf("📊 Wrote %s\n", absPath(xlsxFlag))
	}
	if htmlFlag != "" {
		if err := report.ExportHTML(htmlFlag, run, results); err != nil {
			return err
		}
		fmt.Printf("📝 Wrote %s\n", absPath(filepath.Clean(htmlFlag)))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
