package cmd

import (
	"fmt"
	"os"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsmostafa/bomfold/internal/logging"
	"github.com/itsmostafa/bomfold/internal/rules"
	"github.com/itsmostafa/bomfold/internal/version"
)

var verbose bool
var rulesFile string

var rootCmd = &cobra.Command{
	Use:   "bomfold",
	Short: "Fold level-ordered BOM exports into item sync records",
	Long: dedent.Dedent(`
		bomfold converts a flat, level-ordered bill of materials export (CSV or
		XLSX) into a forest of assemblies and emits it as item sync records: one
		BOM header per assembly and one entry per parent/child edge.

		Rules are read from --rules, then $BOMFOLD_RULES, then the built-in
		defaults (level / Part Number / Part Name / Quantity).`),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("bomfold %s\n", version.String()))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "Rules file (default $"+rules.EnvRulesPath+" or built-in)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger, honoring --verbose and the env overrides.
func newLogger(config logging.Config) *zap.Logger {
	config = config.FromEnv()
	if verbose {
		config.Level = "debug"
	}
	return logging.Must(config)
}
