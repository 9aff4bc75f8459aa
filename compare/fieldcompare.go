package compare

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/notargets/hemopost/vtkio"
)

// FieldTolerances are the per-field tolerances for snapshot comparison,
// applied as both absolute and relative tolerance in the criterion
// |test - ref| <= tol + tol*|ref|. The Displacement and Velocity values
// follow the svMultiPhysics regression suite, relaxed for cross-machine
// reproducibility.
var FieldTolerances = map[string]float64{
	"Displacement": 1.0e-8,
	"Velocity":     1.0e-7,
	"Pressure":     1.0e-7,
	"WSS":          1.0e-6,
}

// CompareSnapshots compares the physical fields of two snapshot files
// elementwise. A field missing from the reference is skipped; missing from
// the test file is fatal. For each failing field, the fraction of
// out-of-tolerance points and the worst offender's deviations are reported.
func CompareSnapshots(refPath, testPath string) (err error) {
	fmt.Printf("  Loading reference snapshot: %s\n", refPath)
	ref, err := vtkio.Read(refPath)
	if err != nil {
		return err
	}
	fmt.Printf("  Loading test snapshot:      %s\n", testPath)
	test, err := vtkio.Read(testPath)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(FieldTolerances))
	for name := range FieldTolerances {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\n  Field-by-field comparison:")
	var failures []string
	for _, name := range names {
		tol := FieldTolerances[name]
		refArr, ok := ref.Array(name)
		if !ok {
			fmt.Printf("    ?    %-20s not in reference, skipped\n", name)
			continue
		}
		testArr, ok := test.Array(name)
		if !ok {
			return fmt.Errorf("field %q missing in test snapshot", name)
		}
		if len(refArr.Data) != len(testArr.Data) {
			return fmt.Errorf("field %q: size mismatch (%d vs %d values)",
				name, len(refArr.Data), len(testArr.Data))
		}

		var (
			nWrong            int
			worstRel, worstAbs float64
		)
		for i, b := range refArr.Data {
			a := testArr.Data[i]
			// rel <= 0 means the point is within tolerance
			rel := math.Abs(a-b) - tol - tol*math.Abs(b)
			if rel > 0 {
				nWrong++
			}
			if rel > worstRel {
				worstRel = rel
				worstAbs = math.Abs(a - b)
			}
		}
		if nWrong == 0 {
			fmt.Printf("    ok   %-20s all points within tol=%.0e\n", name, tol)
			continue
		}
		frac := float64(nWrong) / float64(len(refArr.Data))
		fmt.Printf("    FAIL %-20s %.1f%% of points exceed tol=%.0e (max rel_diff=%.2e, max abs=%.2e)\n",
			name, frac*100, tol, worstRel, worstAbs)
		failures = append(failures, fmt.Sprintf(
			"  %s: %.1f%% of points exceed tol=%.0e, max rel_diff=%.2e, max abs diff=%.2e",
			name, frac*100, tol, worstRel, worstAbs))
	}
	if len(failures) > 0 {
		return fmt.Errorf("snapshot field differences exceed tolerance:\n%s",
			strings.Join(failures, "\n"))
	}
	return nil
}
