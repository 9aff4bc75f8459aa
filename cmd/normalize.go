package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/hemopost/waveform"
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize <waveform.dat>",
	Short: "Rescale an inflow waveform to a target time-averaged velocity",
	Long: `
Reads a two-column (time, velocity) inflow waveform, computes its
trapezoidal time average, and rewrites the file scaled so the average
equals the target. The metadata header line is preserved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetFloat64("target-mean")

		w, err := waveform.Read(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Original time-averaged velocity: %.2f mm/s\n", w.TimeAverage())

		factor, err := w.Normalize(target)
		if err != nil {
			return err
		}
		fmt.Printf("Scaling factor: %.6f\n", factor)
		fmt.Printf("New time-averaged velocity: %.2f mm/s\n", w.TimeAverage())

		if err = w.Write(args[0]); err != nil {
			return err
		}
		fmt.Printf("\nNormalized data written to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().Float64("target-mean", -1000.0,
		"target time-averaged velocity [mm/s]")
}
