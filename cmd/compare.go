package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/hemopost/compare"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <reference.json> <test.json>",
	Short: "Compare two runs' convergence logs within tolerances",
	Long: `
Regression check used in CI: timestep counts must match exactly, solver
iteration counts per timestep within an integer tolerance, and final
residual norms within a relative tolerance. With --ref-field/--test-field,
two snapshot files are additionally compared point-wise. Exits 1 on any
violation.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			iterTol, _   = cmd.Flags().GetInt("iter-tolerance")
			errTol, _    = cmd.Flags().GetFloat64("error-tolerance")
			refField, _  = cmd.Flags().GetString("ref-field")
			testField, _ = cmd.Flags().GetString("test-field")
		)
		defer func() {
			fmt.Println(strings.Repeat("=", 70))
			if err != nil {
				fmt.Println("COMPARISON FAILED")
				fmt.Println(strings.Repeat("=", 70))
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Println("OVERALL RESULT: PASS")
				fmt.Println(strings.Repeat("=", 70))
			}
		}()

		fmt.Printf("Loading reference: %s\n", args[0])
		ref, err := compare.LoadConvergence(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Loading test results: %s\n\n", args[1])
		test, err := compare.LoadConvergence(args[1])
		if err != nil {
			return err
		}

		compare.PrintSummary(ref, test, iterTol, errTol)

		fmt.Println("1. Comparing time step counts...")
		if err = compare.CompareTimeSteps(ref, test); err != nil {
			return err
		}
		fmt.Println("   PASS: time step counts match")

		fmt.Printf("\n2. Comparing iteration counts (tolerance: %d)...\n", iterTol)
		if err = compare.CompareIterations(ref, test, iterTol); err != nil {
			return err
		}
		fmt.Println("   PASS: iteration counts within tolerance")

		fmt.Printf("\n3. Comparing error norms (tolerance: %.1f%%)...\n", errTol*100)
		if err = compare.CompareErrorNorms(ref, test, errTol); err != nil {
			return err
		}
		fmt.Println("   PASS: error norms within tolerance")

		if refField != "" || testField != "" {
			if refField == "" || testField == "" {
				return fmt.Errorf("both --ref-field and --test-field must be provided together")
			}
			fmt.Println("\n4. Comparing snapshot fields...")
			if err = compare.CompareSnapshots(refField, testField); err != nil {
				return err
			}
			fmt.Println("\n   PASS: snapshot fields within tolerance")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Int("iter-tolerance", compare.DefaultIterTolerance,
		"iteration count tolerance")
	compareCmd.Flags().Float64("error-tolerance", compare.DefaultErrorTolerance,
		"error norm relative tolerance")
	compareCmd.Flags().String("ref-field", "", "reference snapshot file for field comparison")
	compareCmd.Flags().String("test-field", "", "test snapshot file for field comparison")
}
