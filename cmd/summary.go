package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/hemopost/PostParameters"
	"github.com/notargets/hemopost/pipeline"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary <input-dir>",
	Short: "Per-timestep global field statistics",
	Long: `
Computes mean/min/max statistics of pressure, velocity, WSS and traction
for every snapshot, prints the run summary, and writes time-series plots
and the per-timestep CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			pattern, _   = cmd.Flags().GetString("pattern")
			outputDir, _ = cmd.Flags().GetString("output-dir")
			noPlot, _    = cmd.Flags().GetBool("no-plot")
			csvOut, _    = cmd.Flags().GetBool("csv")
		)
		params := PostParameters.Defaults()
		params.Pattern = pattern
		if cmd.Flags().Changed("steps-per-beat") {
			params.StepsPerBeat, _ = cmd.Flags().GetInt("steps-per-beat")
		} else {
			params.StepsPerBeat = 0
		}

		log := newLogger(cmd)
		defer log.Sync()

		_, err := pipeline.RunSummary(pipeline.SummaryConfig{
			InputDir:  args[0],
			OutputDir: outputDir,
			Params:    params,
			NoPlot:    noPlot,
			CSV:       csvOut,
			Log:       log,
		})
		if err != nil {
			return err
		}
		fmt.Println("\nPost-processing complete!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringP("pattern", "p", "steady_*.vtk", "file pattern for snapshot files")
	summaryCmd.Flags().StringP("output-dir", "o", "post_results", "output directory for plots and CSV")
	summaryCmd.Flags().Int("steps-per-beat", 0, "steps per heart beat for the beat overlay plot")
	summaryCmd.Flags().Bool("no-plot", false, "skip plotting")
	summaryCmd.Flags().Bool("csv", false, "export results to CSV")
}
