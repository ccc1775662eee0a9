package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itsmostafa/bomfold/internal/fold"
	"github.com/itsmostafa/bomfold/internal/logging"
	"github.com/itsmostafa/bomfold/internal/output"
	"github.com/itsmostafa/bomfold/internal/pipeline"
	"github.com/itsmostafa/bomfold/internal/rules"
)

var treeInput string
var treeSheet string

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the folded assembly forest",
	Long:  `Fold the input and print each top-level assembly as a tree, labelled by id and level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(logging.CLI())
		defer logger.Sync()

		r, err := rules.Load(rulesFile)
		if err != nil {
			return err
		}
		r = r.Apply(overrides)

		runner := &pipeline.Runner{Logger: logger}
		result, err := runner.Run(cmd.Context(), pipeline.Request{Path: treeInput, Sheet: treeSheet, Rules: r})
		if err != nil {
			return err
		}

		var levelKey string
		if lk, ok := r.Policy.(fold.OrderedLevelKey); ok {
			levelKey = lk.Key
		}
		return output.RenderForest(cmd.OutOrStdout(), result.Forest, r.Output.IDKey, levelKey)
	},
}

func init() {
	treeCmd.Flags().StringVarP(&treeInput, "input", "i", "", "Input file (.csv or .xlsx)")
	treeCmd.Flags().StringVar(&treeSheet, "sheet", "", "Worksheet to read from xlsx input (default first sheet)")
	addOverrideFlags(treeCmd)
	_ = treeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(treeCmd)
}
