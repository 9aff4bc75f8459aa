// Package compare checks two simulation runs against each other for
// regression testing: convergence-log iteration counts and residual norms
// within tolerances, and optionally full-field snapshots point by point.
package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

// Defaults used by the CLI and CI workflow.
const (
	DefaultIterTolerance  = 2
	DefaultErrorTolerance = 0.10
)

// Convergence is the extracted form of a solver convergence log:
// per-timestep iteration counts and per-field final residual norms.
type Convergence struct {
	TimeSteps  int
	Iterations []int
	Errors     map[string][]float64
}

type document struct {
	Error       map[string]json.RawMessage `json:"error"`
	Convergence *struct {
		Error map[string]json.RawMessage `json:"error"`
	} `json:"convergence"`
}

// LoadConvergence reads a convergence log JSON file. The residual mapping
// lives either at the top level under "error" or nested under
// "convergence.error", keyed by physical field name, each value a sequence
// (per timestep) of sequences (per solver iteration) of norms.
func LoadConvergence(path string) (c *Convergence, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	var doc document
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	errMap := doc.Error
	if errMap == nil && doc.Convergence != nil {
		errMap = doc.Convergence.Error
	}
	if errMap == nil {
		return nil, fmt.Errorf("no 'error' or 'convergence' field found in %s", path)
	}
	return extract(errMap)
}

func extract(errMap map[string]json.RawMessage) (c *Convergence, err error) {
	c = &Convergence{Errors: make(map[string][]float64)}

	names := make([]string, 0, len(errMap))
	for name := range errMap {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var outer []json.RawMessage
		// entries that are not arrays at all (metadata strings, objects) are skipped
		if json.Unmarshal(errMap[name], &outer) != nil {
			continue
		}
		// an array entry must be a sequence of per-timestep iteration
		// sequences; a flat number list is a malformed log, not metadata
		steps := make([][]float64, len(outer))
		for t, raw := range outer {
			var iters []float64
			if json.Unmarshal(raw, &iters) != nil || len(iters) == 0 {
				return nil, fmt.Errorf("invalid error data for %s at time step %d", name, t)
			}
			steps[t] = iters
		}
		if c.TimeSteps == 0 {
			c.TimeSteps = len(steps)
		} else if c.TimeSteps != len(steps) {
			return nil, fmt.Errorf("inconsistent time step counts across fields: %d vs %d",
				c.TimeSteps, len(steps))
		}
		finals := make([]float64, len(steps))
		for t, iters := range steps {
			if len(c.Iterations) <= t {
				c.Iterations = append(c.Iterations, len(iters))
			}
			finals[t] = iters[len(iters)-1]
		}
		c.Errors[name] = finals
	}
	return
}

// CompareTimeSteps checks that both logs recorded the same number of
// timesteps. A mismatch is fatal.
func CompareTimeSteps(ref, test *Convergence) error {
	if ref.TimeSteps != test.TimeSteps {
		return fmt.Errorf("time step count mismatch: reference has %d, test has %d",
			ref.TimeSteps, test.TimeSteps)
	}
	return nil
}

// CompareIterations checks per-timestep solver iteration counts within an
// integer tolerance. All violations are collected before failing so a
// single run reports every offending timestep.
func CompareIterations(ref, test *Convergence, tolerance int) error {
	var failures []string
	for t := 0; t < ref.TimeSteps; t++ {
		refIters := ref.Iterations[t]
		testIters := test.Iterations[t]
		diff := testIters - refIters
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			failures = append(failures, fmt.Sprintf(
				"  time step %d: reference=%d iters, test=%d iters, diff=%d (tolerance: %d)",
				t, refIters, testIters, diff, tolerance))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("iteration count differences exceed tolerance:\n%s",
			strings.Join(failures, "\n"))
	}
	return nil
}

// relDiff compares residual norms: relative to the reference, except when
// the reference is exactly zero, where the absolute difference is used
// instead to avoid dividing by zero.
func relDiff(ref, test float64) float64 {
	if ref > 0 {
		return math.Abs(test-ref) / ref
	}
	return math.Abs(test - ref)
}

// CompareErrorNorms checks per-field final residual norms per timestep
// within a relative tolerance. Fields present in only one log are warned
// about and the intersection compared. Violations are aggregated.
func CompareErrorNorms(ref, test *Convergence, relTolerance float64) error {
	var fields []string
	for name := range ref.Errors {
		if _, ok := test.Errors[name]; ok {
			fields = append(fields, name)
		} else {
			fmt.Printf("WARNING: field %q missing from test log\n", name)
		}
	}
	for name := range test.Errors {
		if _, ok := ref.Errors[name]; !ok {
			fmt.Printf("WARNING: field %q missing from reference log\n", name)
		}
	}
	sort.Strings(fields)

	var failures []string
	for _, name := range fields {
		refErrs := ref.Errors[name]
		testErrs := test.Errors[name]
		for t := 0; t < ref.TimeSteps; t++ {
			rd := relDiff(refErrs[t], testErrs[t])
			if rd > relTolerance {
				failures = append(failures, fmt.Sprintf(
					"  %s at time step %d: reference=%.6e, test=%.6e, rel_diff=%.2f%% (tolerance: %.1f%%)",
					name, t, refErrs[t], testErrs[t], rd*100, relTolerance*100))
			}
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("error norm differences exceed tolerance:\n%s",
			strings.Join(failures, "\n"))
	}
	return nil
}

// PrintSummary prints the per-timestep comparison table before the checks
// run, so a failing run still shows the full picture.
func PrintSummary(ref, test *Convergence, iterTol int, relTol float64) {
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("Regression Comparison Summary")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("\nTime steps: %d\n\n", test.TimeSteps)

	fmt.Println("Iteration counts per time step:")
	for t := 0; t < test.TimeSteps && t < ref.TimeSteps; t++ {
		diff := test.Iterations[t] - ref.Iterations[t]
		status := "ok  "
		if diff > iterTol || diff < -iterTol {
			status = "FAIL"
		}
		fmt.Printf("  %s time step %d: test=%d, ref=%d, diff=%+d\n",
			status, t, test.Iterations[t], ref.Iterations[t], diff)
	}
	fmt.Println()

	var names []string
	for name := range test.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("Final error norms per time step:")
	for _, name := range names {
		fmt.Printf("  %s:\n", name)
		refErrs := ref.Errors[name]
		testErrs := test.Errors[name]
		for t := 0; t < test.TimeSteps; t++ {
			if t >= len(refErrs) {
				fmt.Printf("    ?    time step %d: test=%.6e, ref=N/A\n", t, testErrs[t])
				continue
			}
			rd := relDiff(refErrs[t], testErrs[t])
			status := "ok  "
			if rd > relTol {
				status = "FAIL"
			}
			fmt.Printf("    %s time step %d: test=%.6e, ref=%.6e, rel_diff=%.2f%%\n",
				status, t, testErrs[t], refErrs[t], rd*100)
		}
	}
	fmt.Println()
}
