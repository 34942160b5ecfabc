package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"testdeck/internal/config"
	"testdeck/internal/formatting"
	"testdeck/internal/report"
)

var (
	reportInput         string
	reportOutputDir     string
	reportFormat        string
	reportTemplate      string
	reportTitle         string
	reportTheme         string
	reportCoverage      bool
	reportPerformance   bool
	reportListDir       string
	reportMergeInputs   []string
	reportMergeOutput   string
	reportBaseline      string
	reportCurrent       string
	reportCompareFormat string
	reportServePort     int
	reportServeHost     string
	reportCleanDays     int
	reportCleanConfirm  bool
	reportCleanDir      string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate, inspect, and compare test reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return fmt.Errorf("a subcommand is required")
	},
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render a report from one or more result files",
	Long: `Loads a result file, or every result file in a directory, merges them
when there is more than one, and renders the requested format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := loadResults(reportInput)
		if err != nil {
			return err
		}
		merged, err := report.Merge(results)
		if err != nil {
			return err
		}

		path, err := report.Generate(merged, report.Options{
			Title:              reportTitle,
			Format:             reportFormat,
			Template:           reportTemplate,
			Theme:              reportTheme,
			IncludeCoverage:    reportCoverage,
			IncludePerformance: reportPerformance,
			OutputDir:          reportOutputDir,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated report artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		artifacts, err := report.ListArtifacts(reportListDir)
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			fmt.Printf("No report artifacts in %s\n", reportListDir)
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Name", "Size", "Modified"})
		for _, artifact := range artifacts {
			t.AppendRow(table.Row{artifact.Name, artifact.Size, artifact.ModTime.Format("2006-01-02 15:04:05")})
		}
		t.Render()
		return nil
	},
}

var reportMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge result files into one summed result document",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(reportMergeInputs) == 0 {
			return fmt.Errorf("--inputs is required")
		}

		var results []*report.TestRunResult
		for _, path := range reportMergeInputs {
			result, err := report.Load(path)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		merged, err := report.Merge(results)
		if err != nil {
			return err
		}

		if reportMergeOutput != "" {
			path, err := report.Generate(merged, report.Options{
				Format:     report.FormatJSON,
				OutputPath: reportMergeOutput,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Merged %d result(s) into %s\n", len(results), path)
			return nil
		}

		formatter, err := formatting.New(formatting.FormatJSON)
		if err != nil {
			return err
		}
		out, err := formatter.Format(merged)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var reportCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a current result against a baseline",
	Long: `Loads exactly two result documents and prints per-metric deltas
computed as current minus baseline, including the success-rate delta.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportBaseline == "" || reportCurrent == "" {
			return fmt.Errorf("both --baseline and --current are required")
		}

		baseline, err := report.Load(reportBaseline)
		if err != nil {
			return err
		}
		current, err := report.Load(reportCurrent)
		if err != nil {
			return err
		}
		comparison := report.Compare(baseline, current)

		switch reportCompareFormat {
		case formatting.FormatTable:
			printComparisonTable(comparison)
			return nil
		case formatting.FormatJSON:
			formatter, err := formatting.New(formatting.FormatJSON)
			if err != nil {
				return err
			}
			out, err := formatter.Format(comparison)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		case report.FormatHTML:
			out, err := report.RenderComparisonHTML(comparison)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		default:
			return fmt.Errorf("invalid output format %q, must be one of: table, json, html", reportCompareFormat)
		}
	},
}

var reportServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report artifacts over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return report.Serve(cmd.Context(), report.ServeOptions{
			Host: reportServeHost,
			Port: reportServePort,
			Dir:  reportListDir,
		})
	},
}

var reportCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete report artifacts older than N days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !reportCleanConfirm {
			fmt.Fprintf(os.Stderr, "clean deletes artifacts in %s older than %d days; re-run with --confirm to proceed\n",
				reportCleanDir, reportCleanDays)
			return fmt.Errorf("clean declined")
		}

		removed, err := report.Clean(reportCleanDir, reportCleanDays)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d artifact(s)\n", removed)
		return nil
	},
}

// loadResults loads one result file, or every JSON result file in a directory.
func loadResults(input string) ([]*report.TestRunResult, error) {
	if input == "" {
		return nil, fmt.Errorf("--input is required")
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, &config.IOError{Op: "read", Path: input, Err: err}
	}

	if !info.IsDir() {
		result, err := report.Load(input)
		if err != nil {
			return nil, err
		}
		return []*report.TestRunResult{result}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, &config.IOError{Op: "list", Path: input, Err: err}
	}
	var results []*report.TestRunResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		result, err := report.Load(filepath.Join(input, entry.Name()))
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result files found in %s", input)
	}
	return results, nil
}

func printComparisonTable(comparison *report.Comparison) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Baseline", "Current", "Change"})
	t.AppendRows([]table.Row{
		{"Total tests", comparison.Baseline.TotalTests, comparison.Current.TotalTests, fmt.Sprintf("%+d", comparison.Changes.TotalTests)},
		{"Passed", comparison.Baseline.Passed, comparison.Current.Passed, fmt.Sprintf("%+d", comparison.Changes.Passed)},
		{"Failures", comparison.Baseline.Failures, comparison.Current.Failures, fmt.Sprintf("%+d", comparison.Changes.Failures)},
		{"Errors", comparison.Baseline.Errors, comparison.Current.Errors, fmt.Sprintf("%+d", comparison.Changes.Errors)},
		{"Skipped", comparison.Baseline.Skipped, comparison.Current.Skipped, fmt.Sprintf("%+d", comparison.Changes.Skipped)},
		{"Success rate", fmt.Sprintf("%.1f%%", comparison.Baseline.SuccessRate),
			fmt.Sprintf("%.1f%%", comparison.Current.SuccessRate),
			fmt.Sprintf("%+.1f%%", comparison.Changes.SuccessRate)},
	})
	t.Render()
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportGenerateCmd, reportListCmd, reportMergeCmd, reportCompareCmd, reportServeCmd, reportCleanCmd)

	reportGenerateCmd.Flags().StringVarP(&reportInput, "input", "i", "", "Result file or directory of result files")
	reportGenerateCmd.Flags().StringVarP(&reportOutputDir, "output", "o", config.DefaultReportDir, "Output directory for the artifact")
	reportGenerateCmd.Flags().StringVarP(&reportFormat, "format", "f", report.FormatHTML, "Report format (html, json, junit)")
	reportGenerateCmd.Flags().StringVarP(&reportTemplate, "template", "t", report.LayoutDefault, "HTML layout (default, detailed, summary, executive)")
	reportGenerateCmd.Flags().StringVar(&reportTitle, "title", "Test Report", "Report title")
	reportGenerateCmd.Flags().StringVar(&reportTheme, "theme", report.ThemeLight, "HTML theme (light, dark, corporate)")
	reportGenerateCmd.Flags().BoolVar(&reportCoverage, "include-coverage", false, "Include coverage data in the report")
	reportGenerateCmd.Flags().BoolVar(&reportPerformance, "include-performance", false, "Include performance data in the report")

	reportListCmd.Flags().StringVarP(&reportListDir, "dir", "d", config.DefaultReportDir, "Report directory")
	reportServeCmd.Flags().StringVarP(&reportListDir, "dir", "d", config.DefaultReportDir, "Report directory")

	reportMergeCmd.Flags().StringSliceVar(&reportMergeInputs, "inputs", nil, "Comma-separated result files to merge")
	reportMergeCmd.Flags().StringVar(&reportMergeOutput, "output-file", "", "Write the merged result to this file instead of stdout")

	reportCompareCmd.Flags().StringVarP(&reportBaseline, "baseline", "b", "", "Baseline result file")
	reportCompareCmd.Flags().StringVarP(&reportCurrent, "current", "c", "", "Current result file")
	reportCompareCmd.Flags().StringVar(&reportCompareFormat, "output-format", formatting.FormatTable, "Output format (table, json, html)")

	reportServeCmd.Flags().IntVarP(&reportServePort, "port", "p", 8090, "Port to listen on")
	reportServeCmd.Flags().StringVar(&reportServeHost, "host", "127.0.0.1", "Host to bind")

	reportCleanCmd.Flags().IntVarP(&reportCleanDays, "days", "d", 30, "Delete artifacts older than this many days")
	reportCleanCmd.Flags().BoolVar(&reportCleanConfirm, "confirm", false, "Confirm deletion")
	reportCleanCmd.Flags().StringVar(&reportCleanDir, "dir", config.DefaultReportDir, "Report directory")
}
