package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gripe/internal/engine"
	"gripe/internal/model"
	"gripe/internal/rules"
)

var (
	cfgFile   string
	rulesFile string
	dataDir   string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gripe",
	Short: "Gripe - deterministic complaint intake, classification and routing",
	Long: `Gripe files user complaints and turns free-form frustration into
structured, routable records.

Every complaint is classified by transparent keyword rules: category,
severity, probable root causes, a routing target, and a confidence
estimate, with the reasoning recorded in the record itself. Similar
complaints are linked, and every change is audit-trailed.

The same input always produces the same classification.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Gripe.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gripe v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.gripe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule overrides file (YAML)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "complaint storage directory (default: ./complaint_data)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("storage.dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.gripe")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GRIPE_*
	viper.SetEnvPrefix("GRIPE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults, then config
// file / environment, then flags.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("storage.dir"); v != "" {
		cfg.Storage.Dir = v
	}
	if dataDir != "" {
		cfg.Storage.Dir = dataDir
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetInt("intake.max_clarification_rounds"); v > 0 {
		cfg.Intake.MaxClarificationRounds = v
	}
	if v := viper.GetInt("intake.max_field_length"); v > 0 {
		cfg.Intake.MaxFieldLength = v
	}
	if v := viper.GetInt("concurrency.workers"); v > 0 {
		cfg.Concurrency.Workers = v
	}
	if v := viper.GetString("output.artifact_dir"); v != "" {
		cfg.Output.ArtifactDir = v
	}
	cfg.Output.Verbose = verbose

	return cfg
}

// loadRules loads the rule tables, applying overrides when --rules is set
func loadRules() (*rules.Rules, error) {
	if rulesFile == "" {
		return rules.Default(), nil
	}
	r, err := rules.Load(rulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return r, nil
}

// newEngine builds the processing engine from the effective configuration
func newEngine(cfg *model.Config) (*engine.Engine, error) {
	r, err := loadRules()
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, r, nil)
}
