package cmd

import (
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsmostafa/bomfold/internal/logging"
	"github.com/itsmostafa/bomfold/internal/metrics"
	"github.com/itsmostafa/bomfold/internal/output"
	"github.com/itsmostafa/bomfold/internal/pipeline"
	"github.com/itsmostafa/bomfold/internal/rules"
	"github.com/itsmostafa/bomfold/internal/sink"
)

var (
	foldInput       string
	foldSheet       string
	foldOutput      string
	foldMetricsFile string
	foldLimit       int
	foldQuiet       bool
	overrides       rules.Overrides
)

var foldCmd = &cobra.Command{
	Use:   "fold",
	Short: "Convert a flat BOM export into item sync records",
	Long: dedent.Dedent(`
		Convert a flat BOM export into item sync records.

		--output selects the sink:
		  s3://bucket/prefix   upload CSV objects ($BOMFOLD_S3_ENDPOINT and keys)
		  arrow:DIR            Arrow IPC files boms.arrow and bom_entries.arrow
		  FILE.xlsx            workbook with "BOMs" and "BOM Entries" sheets
		  FILE.json            JSON document
		  DIR                  boms.csv and bom_entries.csv

		Without --output the records are printed as tables.`),
	Example: dedent.Dedent(`
		  bomfold fold --input export.csv
		  bomfold fold --input export.xlsx --sheet BOM --output out/bom.xlsx
		  bomfold fold --input export.csv --level-key Depth --id-key SKU --output s3://boms/latest`),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(logging.CLI())
		defer logger.Sync()

		r, err := rules.Load(rulesFile)
		if err != nil {
			return err
		}
		r = r.Apply(overrides)

		req := pipeline.Request{Path: foldInput, Sheet: foldSheet, Rules: r}
		if foldOutput != "" {
			req.Sink, err = sink.ForPath(foldOutput, sink.StoreConfigFromEnv())
			if err != nil {
				return err
			}
		}

		m := metrics.New()
		runner := &pipeline.Runner{Logger: logger, Metrics: m}

		w := cmd.OutOrStdout()
		if !foldQuiet {
			output.FormatHeader(w, foldInput, r.String())
		}

		result, runErr := runner.Run(cmd.Context(), req)

		if foldMetricsFile != "" {
			if err := m.WriteFile(foldMetricsFile); err != nil {
				logger.Warn("failed to write metrics file", zap.String("path", foldMetricsFile), zap.Error(err))
			}
		}

		if !foldQuiet {
			if runErr == nil && foldOutput == "" {
				output.FormatRecords(w, result.Output, foldLimit)
			}
			output.FormatSummary(w, result, runErr)
		}
		return runErr
	},
}

func init() {
	foldCmd.Flags().StringVarP(&foldInput, "input", "i", "", "Input file (.csv or .xlsx)")
	foldCmd.Flags().StringVar(&foldSheet, "sheet", "", "Worksheet to read from xlsx input (default first sheet)")
	foldCmd.Flags().StringVarP(&foldOutput, "output", "o", "", "Output destination")
	foldCmd.Flags().StringVar(&foldMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	foldCmd.Flags().IntVar(&foldLimit, "limit", 20, "Maximum rows per printed table (0 = all)")
	foldCmd.Flags().BoolVarP(&foldQuiet, "quiet", "q", false, "Do not print the header, tables or summary")
	addOverrideFlags(foldCmd)
	_ = foldCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(foldCmd)
}

// addOverrideFlags registers the per-field rule overrides on cmd.
func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&overrides.LevelKey, "level-key", "", "Column holding the level (ordered level key policy)")
	cmd.Flags().StringVar(&overrides.IDKey, "id-key", "", "Column holding the item id")
	cmd.Flags().StringVar(&overrides.NameKey, "name-key", "", "Column holding the item name")
	cmd.Flags().StringVar(&overrides.QuantityKey, "quantity-key", "", "Column holding the quantity (typed as a number)")
	cmd.Flags().StringSliceVar(&overrides.NumberColumns, "number-column", nil, "Additional columns to parse as numbers")
}
