package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/complaintstat/internal/browse"
	"github.com/verte-zerg/complaintstat/internal/complaint"
	"github.com/verte-zerg/complaintstat/internal/config"
	"github.com/verte-zerg/complaintstat/internal/export"
	"github.com/verte-zerg/complaintstat/internal/logging"
	"github.com/verte-zerg/complaintstat/internal/model"
	"github.com/verte-zerg/complaintstat/internal/stats"
	"github.com/verte-zerg/complaintstat/internal/store"
)

var (
	dateColumn    string
	productColumn string
	companyColumn string
	dbPath        string

	reportFormat string
	reportSave   bool

	showTop int

	browseRun string

	historyLimit int
	historyRun   string
)

func addColumnFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dateColumn, "date-column", model.DefaultDateColumn, "header of the date received column")
	cmd.Flags().StringVar(&productColumn, "product-column", model.DefaultProductColumn, "header of the product column")
	cmd.Flags().StringVar(&companyColumn, "company-column", model.DefaultCompanyColumn, "header of the company column")
}

func addStoreFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDBPath(), "run history database path")
}

func resolveColumns(cmd *cobra.Command) model.Columns {
	applyStringConfig(cmd, "date-column", &dateColumn, fileCfg.Columns.Date)
	applyStringConfig(cmd, "product-column", &productColumn, fileCfg.Columns.Product)
	applyStringConfig(cmd, "company-column", &companyColumn, fileCfg.Columns.Company)
	return model.Columns{Date: dateColumn, Product: productColumn, Company: companyColumn}
}

func resolveDBPath(cmd *cobra.Command) string {
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	return dbPath
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report INPUT OUTPUT",
		Short: "Write the product/year report for a complaints CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  runReportCmd,
	}
	addColumnFlags(cmd)
	addStoreFlag(cmd)
	cmd.Flags().StringVar(&reportFormat, "format", "", "output format: csv or xlsx (default: from OUTPUT extension)")
	cmd.Flags().BoolVar(&reportSave, "save", false, "save the run to the history database")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	applyStringConfig(cmd, "format", &reportFormat, fileCfg.Report.Format)
	applyBoolConfig(cmd, "save", &reportSave, fileCfg.Report.Save)
	cfg := model.ReportConfig{
		Columns: resolveColumns(cmd),
		Format:  reportFormat,
		Save:    reportSave,
		DBPath:  resolveDBPath(cmd),
	}
	inputPath, outputPath := args[0], args[1]

	format := export.FormatForPath(outputPath)
	if cfg.Format != "" {
		parsed, err := export.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}
		format = parsed
	}

	ctx := cmd.Context()
	report, err := buildFileReport(ctx, inputPath, cfg.Columns)
	if err != nil {
		return err
	}
	if err := export.WriteFile(outputPath, format, report.Rows); err != nil {
		return err
	}
	logger.InfoContext(ctx, "report written",
		"output", outputPath,
		"format", string(format),
		"rows", report.Run.Rows,
		"accepted", report.Run.Accepted,
		"rejected", report.Run.Rejected,
		"groups", report.Run.Groups,
	)

	if !cfg.Save {
		return nil
	}
	return withStore(cfg.DBPath, func(st *store.Store) error {
		run, err := st.SaveRun(ctx, report.Run, report.Rows)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		logger.InfoContext(logging.WithRunID(ctx, run.ID), "run saved", "db", cfg.DBPath)
		return nil
	})
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show INPUT",
		Short: "Print a summary, table and trends for a complaints CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
	addColumnFlags(cmd)
	cmd.Flags().IntVar(&showTop, "top", defaultTop, "only show the N products with most complaints (0 = all)")
	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	applyIntConfig(cmd, "top", &showTop, fileCfg.Report.Top)
	if showTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	report, err := buildFileReport(cmd.Context(), args[0], resolveColumns(cmd))
	if err != nil {
		return err
	}
	rows := report.Rows
	if showTop > 0 {
		rows = stats.FilterProducts(rows, stats.TopProducts(rows, showTop))
	}

	out := cmd.OutOrStdout()
	width := stats.TerminalWidth(out)
	if err := stats.RenderSummary(out, stats.Summarize(rows)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := stats.RenderTable(out, rows, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrends(out, stats.ProductTrends(rows), width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [INPUT]",
		Short: "Browse a report interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBrowseCmd,
	}
	addColumnFlags(cmd)
	addStoreFlag(cmd)
	cmd.Flags().StringVar(&browseRun, "run", "", "browse a saved run instead of a CSV file")
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	if (len(args) == 1) == (browseRun != "") {
		return fmt.Errorf("pass either INPUT or --run")
	}
	ctx := cmd.Context()

	var report stats.Report
	var source string
	if browseRun != "" {
		err := withStore(resolveDBPath(cmd), func(st *store.Store) error {
			var err error
			report, err = stats.LoadReport(ctx, st, browseRun)
			return err
		})
		if err != nil {
			return runLoadError(browseRun, err)
		}
		source = report.Run.Source + " (run " + report.Run.ID + ")"
	} else {
		var err error
		report, err = buildFileReport(ctx, args[0], resolveColumns(cmd))
		if err != nil {
			return err
		}
		source = args[0]
	}

	program := tea.NewProgram(browse.NewModel(report.Rows, source), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs or print one saved report",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	addStoreFlag(cmd)
	cmd.Flags().IntVar(&historyLimit, "limit", defaultLimit, "number of runs to list (0 = all)")
	cmd.Flags().StringVar(&historyRun, "run", "", "print the rows of a saved run")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	return withStore(resolveDBPath(cmd), func(st *store.Store) error {
		if historyRun == "" {
			runs, err := st.ListRuns(ctx, historyLimit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			return stats.RenderRuns(out, runs)
		}
		report, err := stats.LoadReport(ctx, st, historyRun)
		if err != nil {
			return runLoadError(historyRun, err)
		}
		if err := stats.RenderSummary(out, stats.Summarize(report.Rows)); err != nil {
			return err
		}
		return stats.RenderTable(out, report.Rows, stats.TerminalWidth(out))
	})
}

func buildFileReport(ctx context.Context, path string, cols model.Columns) (stats.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return stats.Report{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("failed to close input", "path", path, "err", cerr)
		}
	}()

	reader := complaint.NewReader(cols, logger)
	report, err := stats.BuildReport(ctx, reader, f)
	if err != nil {
		return stats.Report{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		report.Run.Source = abs
	} else {
		report.Run.Source = path
	}
	for reason, n := range report.Input.Rejected {
		logger.DebugContext(ctx, "rows skipped", "reason", reason.String(), "count", n)
	}
	if report.Run.Rejected > 0 {
		logger.WarnContext(ctx, "skipped invalid rows", "rejected", report.Run.Rejected, "rows", report.Run.Rows)
	}
	return report, nil
}

func withStore(path string, fn func(*store.Store) error) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", "err", cerr)
		}
	}()
	return fn(st)
}

func runLoadError(id string, err error) error {
	if errors.Is(err, store.ErrRunNotFound) {
		return fmt.Errorf("run %q not found (list runs with: complaintstat history)", id)
	}
	return fmt.Errorf("failed to load run: %w", err)
}
