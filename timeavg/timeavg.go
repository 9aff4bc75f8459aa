// Package timeavg reduces extracted field series over a window of
// timesteps. The window discards the initial transient so that averages
// cover only the final, converged cardiac cycle.
package timeavg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/hemopost/cylinder"
	"github.com/notargets/hemopost/fields"
)

// Averaged holds the elementwise time mean of each (key, field) series.
type Averaged map[cylinder.Key]map[string][]float64

// CheckWindow validates the averaging window [startStep, total-1] before
// any aggregation work begins.
func CheckWindow(startStep, total int) error {
	if startStep < 0 {
		return fmt.Errorf("start step %d is negative", startStep)
	}
	if startStep >= total {
		return fmt.Errorf("start step %d is beyond available steps %d", startStep, total)
	}
	return nil
}

// Average stacks each series into a time-by-point matrix and takes column
// means. A window of length one returns that single sample unchanged. All
// frames of a series must have equal length.
func Average(s fields.Series) (avg Averaged, err error) {
	avg = make(Averaged)
	for key, byField := range s {
		avg[key] = make(map[string][]float64)
		for field, frames := range byField {
			if len(frames) == 0 {
				continue
			}
			var (
				nt = len(frames)
				np = len(frames[0])
			)
			for t, fr := range frames {
				if len(fr) != np {
					return nil, fmt.Errorf("series %s/%s: frame %d has %d points, expected %d",
						key, field, t, len(fr), np)
				}
			}
			data := make([]float64, 0, nt*np)
			for _, fr := range frames {
				data = append(data, fr...)
			}
			var (
				stack = mat.NewDense(nt, np, data)
				out   = make([]float64, np)
				col   = make([]float64, nt)
			)
			for j := 0; j < np; j++ {
				mat.Col(col, j, stack)
				out[j] = stat.Mean(col, nil)
			}
			avg[key][field] = out
		}
	}
	return
}

// Means reduces each frame of a series to its mean, producing one value per
// timestep: the ring-averaged time series used for temporal plots.
func Means(frames [][]float64) (out []float64) {
	out = make([]float64, len(frames))
	for i, fr := range frames {
		out[i] = stat.Mean(fr, nil)
	}
	return
}

// Overlay slices a full time series into consecutive windows of
// stepsPerBeat samples for the beat overlay plot. The remainder shorter
// than a full window is dropped; nil is returned when not even one full
// window fits.
func Overlay(series []float64, stepsPerBeat int) (beats [][]float64) {
	if stepsPerBeat <= 0 {
		return nil
	}
	nBeats := len(series) / stepsPerBeat
	if nBeats == 0 {
		return nil
	}
	beats = make([][]float64, nBeats)
	for i := 0; i < nBeats; i++ {
		beats[i] = series[i*stepsPerBeat : (i+1)*stepsPerBeat]
	}
	return
}
