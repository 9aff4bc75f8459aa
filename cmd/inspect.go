package cmd

import (
	"github.com/spf13/cobra"

	"github.com/notargets/hemopost/pipeline"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <input-dir>",
	Short: "List the point-data arrays of the first snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, _ := cmd.Flags().GetString("pattern")
		return pipeline.Inspect(args[0], pattern)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("pattern", "p", "steady_*.vtk", "file pattern for snapshot files")
}
