package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"testdeck/internal/config"
	"testdeck/internal/formatting"
	"testdeck/internal/orchestrator"
	"testdeck/internal/report"
	"testdeck/internal/validation"
)

var (
	testConfigFile  string
	testEnvironment string
	testParallel    int
	testTimeoutMs   int64
	testRetries     int
	testOutput      string
	testBail        bool
	testDryRun      bool
	testFilter      string
	testTags        []string
	testExcludeTags []string
	testCoverage    bool
	testWatch       bool
	testReportDir   string
)

var testCmd = &cobra.Command{
	Use:   "test [suite]",
	Short: "Run the configured test suites",
	Long: `Loads the test configuration (the configuration file if present, the
built-in defaults otherwise), applies any flag overrides, validates the
result, and executes the resolved plan. With --dry-run the plan is printed
and nothing is executed.

Passing a suite ID runs only that suite plus its transitive dependencies.

Example usage:
  testdeck test                          # run everything
  testdeck test booking                  # run one suite and its dependencies
  testdeck test --tags critical          # run suites tagged critical
  testdeck test -e staging -p 20 --bail  # staging, 20 workers, stop on failure
  testdeck test --dry-run -o json        # print the plan as JSON`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("parallel") && testParallel < 1 {
			return fmt.Errorf("parallel workers must be at least 1, got %d", testParallel)
		}
		if cmd.Flags().Changed("environment") {
			valid := false
			for _, env := range config.Environments() {
				if testEnvironment == env {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("invalid environment %q, must be one of: %s",
					testEnvironment, strings.Join(config.Environments(), ", "))
			}
		}
		switch testOutput {
		case "console", report.FormatJSON, report.FormatJUnit, report.FormatHTML:
			return nil
		default:
			return fmt.Errorf("invalid output %q, must be one of: console, json, junit, html", testOutput)
		}
	},
	RunE: runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, stopping tests...")
		cancel()
	}()

	if testWatch {
		// Watch mode is accepted but not implemented: it performs exactly one
		// run. Documented limitation rather than a silent no-op.
		fmt.Fprintln(os.Stderr, "warning: --watch is not implemented, running once")
	}

	cfg, err := config.LoadFileOrDefault(testConfigFile)
	if err != nil {
		return err
	}
	applyTestOverrides(cmd, &cfg)

	result := validation.Validate(&cfg)
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if err := result.Err(); err != nil {
		return err
	}

	filter := orchestrator.Filter{
		Tags:        testTags,
		ExcludeTags: testExcludeTags,
	}
	if len(args) == 1 {
		filter.Suite = args[0]
	}
	if testFilter != "" {
		pattern, err := regexp.Compile(testFilter)
		if err != nil {
			return fmt.Errorf("invalid --filter pattern: %w", err)
		}
		filter.Pattern = pattern
	}

	plan, err := orchestrator.BuildPlan(&cfg, filter)
	if err != nil {
		return err
	}
	plan.Bail = testBail
	plan.Coverage = testCoverage

	if testDryRun {
		return printPlan(plan)
	}
	if len(plan.Suites) == 0 {
		fmt.Println("No suites matched, nothing to run.")
		return nil
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = fmt.Sprintf(" Running %d suite(s) on %s...", len(plan.Suites), plan.Environment)
	spin.Start()

	runner := orchestrator.NewLocalRunner()
	runResult, err := runner.Execute(ctx, plan)
	spin.Stop()
	if err != nil {
		return err
	}

	printRunSummary(runResult)

	if testOutput != "console" {
		path, err := report.Generate(runResult, report.Options{
			Title:           fmt.Sprintf("Test Report: %s", cfg.Name),
			Format:          testOutput,
			IncludeCoverage: testCoverage,
			OutputDir:       resolveReportDir(cfg),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
	}

	if !runResult.Success {
		return fmt.Errorf("test run failed: %d failure(s), %d error(s)", runResult.Failures, runResult.Errors)
	}
	return nil
}

// applyTestOverrides copies changed flag values onto the loaded configuration.
// Flags().Changed distinguishes an explicit zero from an omitted flag.
func applyTestOverrides(cmd *cobra.Command, cfg *config.TestConfiguration) {
	if cmd.Flags().Changed("environment") {
		cfg.Environment = config.Environment(testEnvironment)
	}
	if cmd.Flags().Changed("parallel") {
		cfg.ConcurrencyLevel = testParallel
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = config.Millis(time.Duration(testTimeoutMs) * time.Millisecond)
	}
	if cmd.Flags().Changed("retries") {
		cfg.RetryAttempts = testRetries
	}
}

func resolveReportDir(cfg config.TestConfiguration) string {
	if testReportDir != "" {
		return testReportDir
	}
	if cfg.ReportingOptions.OutputDir != "" {
		return cfg.ReportingOptions.OutputDir
	}
	return config.DefaultReportDir
}

func printPlan(plan *orchestrator.Plan) error {
	if testOutput == report.FormatJSON {
		formatter, err := formatting.New(formatting.FormatJSON)
		if err != nil {
			return err
		}
		out, err := formatter.Format(plan)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	fmt.Printf("Execution plan for %q (%s)\n", plan.ConfigurationName, plan.Environment)
	fmt.Printf("  concurrency: %d, timeout: %v, retries: %d, bail: %t\n",
		plan.ConcurrencyLevel, plan.Timeout.Duration(), plan.RetryAttempts, plan.Bail)
	for i, suite := range plan.Suites {
		fmt.Printf("  %d. %s (%s)", i+1, suite.Name, suite.ID)
		if len(suite.Dependencies) > 0 {
			fmt.Printf(" after %s", strings.Join(suite.Dependencies, ", "))
		}
		fmt.Println()
	}
	fmt.Printf("  %d profile(s), %d suite(s)\n", len(plan.Profiles), len(plan.Suites))
	return nil
}

func printRunSummary(result *report.TestRunResult) {
	status := "PASS"
	if !result.Success {
		status = "FAIL"
	}
	fmt.Printf("\n%s  %d tests: %d passed, %d failed, %d errors, %d skipped (%v)\n",
		status, result.TotalTests, result.Passed, result.Failures, result.Errors,
		result.Skipped, result.Duration.Duration())
	for _, suite := range result.Suites {
		marker := "ok"
		if suite.Failures > 0 || suite.Errors > 0 {
			marker = "FAIL"
		} else if suite.Skipped > 0 && suite.Passed == 0 {
			marker = "skip"
		}
		fmt.Printf("  %-4s %s (%d passed, %d failed, %d errors, %d skipped)\n",
			marker, suite.Name, suite.Passed, suite.Failures, suite.Errors, suite.Skipped)
	}
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testConfigFile, "config", "c", config.DefaultConfigFile, "Configuration file to load")
	testCmd.Flags().StringVarP(&testEnvironment, "environment", "e", "", "Override target environment (development, staging, production)")
	testCmd.Flags().IntVarP(&testParallel, "parallel", "p", 0, "Override concurrency level")
	testCmd.Flags().Int64VarP(&testTimeoutMs, "timeout", "t", 0, "Override timeout in milliseconds")
	testCmd.Flags().IntVarP(&testRetries, "retries", "r", 0, "Override retry attempts")
	testCmd.Flags().StringVarP(&testOutput, "output", "o", "console", "Output format (console, json, junit, html)")
	testCmd.Flags().BoolVar(&testBail, "bail", false, "Stop scheduling suites after the first failure")
	testCmd.Flags().BoolVar(&testDryRun, "dry-run", false, "Print the execution plan without running anything")
	testCmd.Flags().StringVar(&testFilter, "filter", "", "Only run suites whose name matches this regular expression")
	testCmd.Flags().StringSliceVar(&testTags, "tags", nil, "Only run suites carrying one of these tags")
	testCmd.Flags().StringSliceVar(&testExcludeTags, "exclude-tags", nil, "Skip suites carrying any of these tags")
	testCmd.Flags().BoolVar(&testCoverage, "coverage", false, "Collect coverage data during the run")
	testCmd.Flags().BoolVar(&testWatch, "watch", false, "Watch mode (currently runs once)")
	testCmd.Flags().StringVar(&testReportDir, "report-dir", "", "Directory for report artifacts")

	testCmd.MarkFlagsMutuallyExclusive("dry-run", "watch")
}
