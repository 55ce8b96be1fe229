package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ksingh-scogo/vramio/pkg/estimator"
	"github.com/ksingh-scogo/vramio/pkg/logging"
)

func newEstimateCmd() *cobra.Command {
	var (
		revision   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "estimate MODEL",
		Short: "Estimate memory requirements for a model",
		Long: `Estimate the memory requirements of a HuggingFace-hosted model without
downloading its weights.

Examples:
  vramctl estimate microsoft/phi-2
  vramctl estimate meta-llama/Llama-3.1-8B --revision main --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, args[0], revision, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&revision, "revision", "main", "Repository revision to inspect")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON report")

	return cmd
}

func runEstimate(cmd *cobra.Command, modelID, revision string, jsonOutput bool) error {
	est := estimator.New(newHubClient(), logging.NewLogrusAdapterFromEntry(log))

	report, err := est.Estimate(cmd.Context(), modelID, revision)
	if err != nil {
		return fmt.Errorf("estimating %s: %w", modelID, err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Model:        %s\n", report.Model)
	cmd.Printf("Parameters:   %s\n", report.TotalParameters)
	cmd.Printf("Native dtype: %s\n", report.NativeDtype)
	cmd.Printf("Recommended:  %s (%s)\n\n", report.RecommendedMemory, report.Note)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"PRECISION", "MEMORY"}),
	)
	table.Append([]string{"native", report.NativeMemory})
	for _, precision := range []string{"fp32", "fp16", "int8", "int4"} {
		table.Append([]string{precision, report.MemoryRequirements[precision]})
	}
	table.Render()

	return nil
}
