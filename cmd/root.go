package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "hemopost",
	Short: "Post-processing for cardiovascular flow simulation results",
	Long: `
Reads per-timestep snapshot files written by the flow solver, extracts
pressure, velocity and wall shear stress at classified vessel locations,
time-averages over the final cardiac cycle, and writes plots and CSV
summaries. Also compares two runs' convergence logs for regression testing.`,
}

// Execute runs the root command; errors exit non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func newLogger(cmd *cobra.Command) *zap.SugaredLogger {
	var (
		verbose, _ = cmd.Flags().GetBool("verbose")
		cfg        = zap.NewProductionConfig()
	)
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.Sugar()
}
