package pipeline

import (
	"fmt"
	"strings"

	"github.com/notargets/hemopost/vtkio"
)

// Inspect prints the point-data arrays available in the first snapshot of a
// series, in file declaration order, plus basic mesh info.
func Inspect(inputDir, pattern string) (err error) {
	files, err := vtkio.List(inputDir, pattern)
	if err != nil {
		return err
	}
	snap, err := vtkio.Read(files[0])
	if err != nil {
		return err
	}

	fmt.Printf("Checking file: %s\n", files[0])
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("\nPoint Data Arrays:")
	fmt.Println(strings.Repeat("-", 60))
	for _, name := range snap.ArrayOrder {
		a := snap.Arrays[name]
		fmt.Printf("  %s: %d components, %d points\n", name, a.Components, a.NumTuples())
	}
	fmt.Println("\nMesh Info:")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  Number of points: %d\n", snap.NumPoints())
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("Total snapshot files found: %d\n", len(files))
	return nil
}
