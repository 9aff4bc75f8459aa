package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/hemopost/PostParameters"
	"github.com/notargets/hemopost/pipeline"
)

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:   "post <input-dir>",
	Short: "Time-averaged profiles over the final cardiac cycle",
	Long: `
Classifies mesh points into centerline and wall locations, extracts
pressure, velocity and WSS per snapshot from the start step onwards,
time-averages over the window, and writes profile plots, ring time series,
the beat overlay and a run description.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			paramsFile, _ = cmd.Flags().GetString("params")
			pattern, _    = cmd.Flags().GetString("pattern")
			outputDir, _  = cmd.Flags().GetString("output-dir")
			noPlot, _     = cmd.Flags().GetBool("no-plot")
			csvOut, _     = cmd.Flags().GetBool("csv")
		)
		params, err := PostParameters.Load(paramsFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("pattern") {
			params.Pattern = pattern
		}
		if cmd.Flags().Changed("start-step") {
			params.StartStep, _ = cmd.Flags().GetInt("start-step")
		}
		if cmd.Flags().Changed("steps-per-beat") {
			params.StepsPerBeat, _ = cmd.Flags().GetInt("steps-per-beat")
		}
		params.Print()

		log := newLogger(cmd)
		defer log.Sync()

		_, err = pipeline.RunPost(pipeline.PostConfig{
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
		fmt.Printf("\nResults saved to: %s\n", outputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
	postCmd.Flags().StringP("pattern", "p", "steady_*.vtk", "file pattern for snapshot files")
	postCmd.Flags().StringP("output-dir", "o", "post_results_pulsatile", "output directory for plots")
	postCmd.Flags().Int("start-step", 96, "first step index (0-based) for time averaging")
	postCmd.Flags().Int("steps-per-beat", 32, "steps per heart beat for the beat overlay plot")
	postCmd.Flags().String("params", "", "YAML run parameter file")
	postCmd.Flags().Bool("no-plot", false, "skip plotting")
	postCmd.Flags().Bool("csv", false, "export mid-ring WSS to CSV")
}
