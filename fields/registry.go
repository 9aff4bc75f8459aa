// Package fields extracts named physical fields from mesh snapshots at
// classified point groups and accumulates them across timesteps.
package fields

import (
	"math"

	"github.com/notargets/hemopost/vtkio"
)

// Reduction is the rule applied when a point-data array is sampled.
type Reduction uint8

const (
	// Passthrough keeps scalar values as stored.
	Passthrough Reduction = iota
	// Magnitude reduces a vector to its Euclidean norm.
	Magnitude
)

// Spec describes one known solver output field: the array name in the
// snapshot file, its component count, and how it reduces to a per-point
// scalar. The registry replaces ad hoc presence checks with a fixed table.
type Spec struct {
	Array      string
	Components int
	Reduce     Reduction
}

// Canonical series names used throughout the pipeline.
const (
	Pressure = "pressure"
	Velocity = "velocity"
	WSS      = "wss"
	Traction = "traction"
)

// Registry lists every field the post-processor knows how to consume, in
// report order.
var Registry = []struct {
	Name string
	Spec Spec
}{
	{Pressure, Spec{Array: "Pressure", Components: 1, Reduce: Passthrough}},
	{Velocity, Spec{Array: "Velocity", Components: 3, Reduce: Magnitude}},
	{WSS, Spec{Array: "WSS", Components: 3, Reduce: Magnitude}},
	{Traction, Spec{Array: "Traction", Components: 3, Reduce: Magnitude}},
}

// Lookup returns the spec for a canonical series name.
func Lookup(name string) (sp Spec, ok bool) {
	for _, e := range Registry {
		if e.Name == name {
			return e.Spec, true
		}
	}
	return
}

// Reduce flattens an array to one scalar per point according to the spec's
// reduction rule.
func Reduce(a *vtkio.Array, r Reduction) (out []float64) {
	n := a.NumTuples()
	if r == Passthrough || a.Components == 1 {
		out = make([]float64, n)
		copy(out, a.Data[:n])
		return
	}
	out = make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for _, v := range a.Tuple(i) {
			sum += v * v
		}
		out[i] = math.Sqrt(sum)
	}
	return
}
