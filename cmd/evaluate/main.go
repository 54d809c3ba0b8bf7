package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"freightx/internal/dataset"
	"freightx/internal/evaluate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		predictions string
		truth       string
		top         int
		minAccuracy float64
	)
	cmd := &cobra.Command{
		Use:          "evaluate",
		Short:        "Score extracted records against ground truth",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			preds, err := dataset.LoadRecords(predictions)
			if err != nil {
				return fmt.Errorf("failed to load predictions: %w", err)
			}
			want, err := dataset.LoadRecords(truth)
			if err != nil {
				return fmt.Errorf("failed to load ground truth: %w", err)
			}

			report := evaluate.Evaluate(preds, want)
			if err := report.WriteText(cmd.OutOrStdout(), top); err != nil {
				return err
			}
			if report.Overall < minAccuracy {
				return fmt.Errorf("overall accuracy %.2f%% below %.2f%%", report.Overall, minAccuracy)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&predictions, "predictions", "p", "output.json", "extracted records JSON")
	f.StringVarP(&truth, "truth", "t", "ground_truth.json", "ground-truth records JSON")
	f.IntVarP(&top, "top", "n", 10, "number of mismatches to list")
	f.Float64Var(&minAccuracy, "min-accuracy", 0, "fail when overall accuracy is below this percentage")
	return cmd
}
