package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"testdeck/internal/config"
	"testdeck/internal/formatting"
	"testdeck/internal/validation"
)

var (
	configFile         string
	configInitTemplate string
	configInitForce    bool
	configShowFormat   string
	configResetConfirm bool
)

// File template names for `config init`. These shape the initial file and are
// distinct from the registry templates used by the Store-backed manager.
var initTemplates = map[string]func() config.TestConfiguration{
	"basic":       initBasic,
	"advanced":    initAdvanced,
	"ci":          initCI,
	"performance": initPerformance,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the local test configuration file",
	Long: `The config command group manages a single test configuration file on
disk (testdeck.json by default). This is the file the test command loads;
it is separate from the Store's multi-document index used by templates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return fmt.Errorf("a subcommand is required")
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new configuration file",
	Long: `Writes a template-shaped configuration file. Refuses to overwrite an
existing file unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder, ok := initTemplates[configInitTemplate]
		if !ok {
			return fmt.Errorf("unknown template %q (supported: basic, advanced, ci, performance)", configInitTemplate)
		}

		if _, err := os.Stat(configFile); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", configFile)
		}

		cfg := builder()
		now := time.Now().UTC()
		cfg.CreatedAt = now
		cfg.UpdatedAt = now
		if err := config.SaveFile(configFile, cfg); err != nil {
			return err
		}
		fmt.Printf("Created %s from the %s template\n", configFile, configInitTemplate)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(configFile)
		if err != nil {
			return err
		}

		result := validation.Validate(&cfg)
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s", w)
			if w.Suggestion != "" {
				fmt.Printf(" (%s)", w.Suggestion)
			}
			fmt.Println()
		}
		if !result.IsValid {
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "error: %s\n", e)
			}
			return fmt.Errorf("%s is not valid: %d error(s)", configFile, len(result.Errors))
		}
		fmt.Printf("%s is valid\n", configFile)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(configFile)
		if err != nil {
			return err
		}
		formatter, err := formatting.New(configShowFormat)
		if err != nil {
			return err
		}
		out, err := formatter.Format(cfg)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read one field of the configuration file by dot-path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfigDocument(configFile)
		if err != nil {
			return err
		}
		value, err := config.GetPath(doc, args[0])
		if err != nil {
			return err
		}
		out, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one field of the configuration file by dot-path",
	Long: `Sets a field addressed by dot-path (e.g. reportingOptions.outputDir or
testSuites.0.priority). The value is parsed as JSON when possible and taken
as a plain string otherwise. The resulting document must still validate.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfigDocument(configFile)
		if err != nil {
			return err
		}
		if err := config.SetPath(doc, args[0], config.ParseValue(args[1])); err != nil {
			return err
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		var cfg config.TestConfiguration
		if err := json.Unmarshal(data, &cfg); err != nil {
			return &config.ParseError{Source: configFile, Err: err}
		}
		cfg.UpdatedAt = time.Now().UTC()

		result := validation.Validate(&cfg)
		if err := result.Err(); err != nil {
			return err
		}
		if err := config.SaveFile(configFile, cfg); err != nil {
			return err
		}
		fmt.Printf("Set %s\n", args[0])
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the configuration file to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !configResetConfirm {
			fmt.Fprintf(os.Stderr, "reset overwrites %s with the default configuration; re-run with --confirm to proceed\n", configFile)
			return fmt.Errorf("reset declined")
		}

		cfg := config.DefaultConfiguration()
		now := time.Now().UTC()
		cfg.CreatedAt = now
		cfg.UpdatedAt = now
		if err := config.SaveFile(configFile, cfg); err != nil {
			return err
		}
		fmt.Printf("Reset %s to defaults\n", configFile)
		return nil
	},
}

func loadConfigDocument(path string) (map[string]interface{}, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func initBasic() config.TestConfiguration {
	cfg := config.DefaultConfiguration()
	cfg.Name = "Basic Test Configuration"
	cfg.TestSuites = []config.TestSuiteConfig{
		{ID: "auth", Name: "Authentication", Enabled: true, Priority: 1},
		{ID: "booking", Name: "Ride Booking", Enabled: true, Priority: 2, Dependencies: []string{"auth"}},
	}
	cfg.UserProfiles = []config.UserProfile{
		{ID: "passenger-default", Name: "Passenger", Role: config.RolePassenger, Weight: 70},
		{ID: "driver-default", Name: "Driver", Role: config.RoleDriver, Weight: 30},
	}
	return cfg
}

func initAdvanced() config.TestConfiguration {
	cfg := initBasic()
	cfg.Name = "Advanced Test Configuration"
	cfg.Environment = config.EnvironmentStaging
	cfg.TestSuites = append(cfg.TestSuites,
		config.TestSuiteConfig{ID: "payments", Name: "Payments", Enabled: true, Priority: 3, Dependencies: []string{"booking"}},
		config.TestSuiteConfig{ID: "notifications", Name: "Notifications", Enabled: true, Priority: 4, Dependencies: []string{"booking"}},
		config.TestSuiteConfig{ID: "dashboard", Name: "Operator Dashboard", Enabled: true, Priority: 5},
	)
	cfg.UserProfiles = []config.UserProfile{
		{ID: "passenger-default", Name: "Passenger", Role: config.RolePassenger, Weight: 55},
		{ID: "driver-default", Name: "Driver", Role: config.RoleDriver, Weight: 30},
		{ID: "operator-default", Name: "Operator", Role: config.RoleOperator, Weight: 10},
		{ID: "admin-default", Name: "Admin", Role: config.RoleAdmin, Weight: 5},
	}
	cfg.ReportingOptions.Formats = []string{"json", "html"}
	cfg.ReportingOptions.Verbose = true
	return cfg
}

func initCI() config.TestConfiguration {
	cfg := initBasic()
	cfg.Name = "CI Test Configuration"
	cfg.RetryAttempts = 0
	cfg.ReportingOptions.Formats = []string{"junit", "json"}
	cfg.ReportingOptions.RetainReportDays = 7
	cfg.NotificationSettings = config.NotificationSettings{Enabled: true, Channels: []string{"slack"}, OnFailure: true}
	cfg.Tags = []string{"ci"}
	return cfg
}

func initPerformance() config.TestConfiguration {
	cfg := config.DefaultConfiguration()
	cfg.Name = "Performance Test Configuration"
	cfg.Environment = config.EnvironmentStaging
	cfg.ConcurrencyLevel = 100
	cfg.Timeout = config.Millis(30 * time.Minute)
	cfg.RetryAttempts = 0
	cfg.TestSuites = []config.TestSuiteConfig{
		{ID: "booking-load", Name: "Booking Load", Enabled: true, Priority: 1,
			Parameters: map[string]interface{}{"tags": []interface{}{"performance"}}},
	}
	cfg.UserProfiles = []config.UserProfile{
		{ID: "passenger-peak", Name: "Peak Passenger", Role: config.RolePassenger, Weight: 80},
		{ID: "driver-peak", Name: "Peak Driver", Role: config.RoleDriver, Weight: 20},
	}
	cfg.Tags = []string{"performance"}
	return cfg
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configValidateCmd, configShowCmd, configGetCmd, configSetCmd, configResetCmd)

	configCmd.PersistentFlags().StringVarP(&configFile, "file", "f", config.DefaultConfigFile, "Configuration file to operate on")

	configInitCmd.Flags().StringVar(&configInitTemplate, "template", "basic", "File template (basic, advanced, ci, performance)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")

	configShowCmd.Flags().StringVar(&configShowFormat, "format", formatting.FormatJSON, "Output format (json, yaml, table)")

	configResetCmd.Flags().BoolVar(&configResetConfirm, "confirm", false, "Confirm overwriting the configuration file")
}
