// Package waveform handles solver inflow waveform files: a one-line header
// followed by two columns, time [s] and velocity [mm/s].
package waveform

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/integrate"
)

type Waveform struct {
	Header string
	Time   []float64
	Value  []float64
}

// Read parses a waveform file. The first line is metadata and kept
// verbatim; every following non-empty line must hold two floats.
func Read(path string) (w *Waveform, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w = &Waveform{}
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			w.Header = line
			first = false
			continue
		}
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) < 2 {
			return nil, fmt.Errorf("%s: expected two columns, got %q", path, line)
		}
		var t, v float64
		if t, err = strconv.ParseFloat(cols[0], 64); err != nil {
			return nil, fmt.Errorf("%s: invalid time %q", path, cols[0])
		}
		if v, err = strconv.ParseFloat(cols[1], 64); err != nil {
			return nil, fmt.Errorf("%s: invalid value %q", path, cols[1])
		}
		w.Time = append(w.Time, t)
		w.Value = append(w.Value, v)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if len(w.Time) < 2 {
		return nil, fmt.Errorf("%s: waveform needs at least two samples", path)
	}
	return w, nil
}

// TimeAverage returns the trapezoidal time average of the waveform over its
// span.
func (w *Waveform) TimeAverage() float64 {
	span := w.Time[len(w.Time)-1] - w.Time[0]
	return integrate.Trapezoidal(w.Time, w.Value) / span
}

// Normalize rescales the values in place so the trapezoidal time average
// equals targetMean, returning the applied scale factor.
func (w *Waveform) Normalize(targetMean float64) (factor float64, err error) {
	avg := w.TimeAverage()
	if avg == 0 {
		return 0, fmt.Errorf("waveform time average is zero, cannot normalize")
	}
	factor = targetMean / avg
	for i := range w.Value {
		w.Value[i] *= factor
	}
	return
}

// Write emits the waveform in the solver's format, header preserved.
func (w *Waveform) Write(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, w.Header)
	for i := range w.Time {
		fmt.Fprintf(bw, "%.10e %.10e\n", w.Time[i], w.Value[i])
	}
	return bw.Flush()
}
