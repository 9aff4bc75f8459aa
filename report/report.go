// Package report renders aggregated results to figure and flat-file
// artifacts: profile plots, time series, beat overlays, CSV summaries and a
// run description.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/notargets/hemopost/PostParameters"
	"github.com/notargets/hemopost/cylinder"
	"github.com/notargets/hemopost/timeavg"
)

// Emitter writes all run artifacts below OutDir.
type Emitter struct {
	OutDir string
	Params PostParameters.PostParameters
}

func NewEmitter(outDir string, params PostParameters.PostParameters) (e *Emitter, err error) {
	if err = os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}
	return &Emitter{OutDir: outDir, Params: params}, nil
}

var dimNames = [3]string{"cir", "rad", "axi"}

var dimLabels = [3]string{
	"Vessel circumference phi [deg]",
	"Vessel radius r [mm]",
	"Vessel axial z [mm]",
}

// o'clock position colors, matching the reference figures
var clockColors = map[string]drawing.Color{
	"0": {R: 31, G: 119, B: 180, A: 255},
	"3": {R: 255, G: 127, B: 14, A: 255},
	"6": {R: 214, G: 39, B: 40, A: 255},
	"9": {R: 44, G: 160, B: 44, A: 255},
}

// ProfilePlot renders the time-averaged field against the varying-axis
// coordinate for one or more location keys. With combined set, all keys
// share one chart (axial profiles at the four o'clock positions, color
// coded); otherwise one chart renders the single key. Circumferential
// profiles are closed by repeating the first value at 360 degrees.
// A field absent from every requested location is not an error: no file
// is written and the returned filename is empty.
func (e *Emitter) ProfilePlot(avg timeavg.Averaged, coords map[cylinder.Key][]float64,
	field string, keys []cylinder.Key, combined bool) (fname string, err error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("no locations to plot for %s", field)
	}
	var (
		series []chart.Series
		scale  = e.Params.Scale(field)
		dim    = keys[0].VaryingAxis()
	)
	if dim < 0 {
		return "", fmt.Errorf("location %s has no varying axis", keys[0])
	}
	for _, key := range keys {
		ydata, ok := avg[key][field]
		if !ok {
			continue
		}
		xdata, ok := coords[key]
		if !ok {
			continue
		}
		x := make([]float64, len(xdata))
		y := make([]float64, len(ydata))
		for i := range xdata {
			x[i] = xdata[i]
			y[i] = ydata[i] * scale
		}
		if dim == 0 {
			for i := range x {
				x[i] *= 180 / math.Pi
			}
			x = append(x, 360)
			y = append(y, y[0])
		}
		style := chart.Style{StrokeColor: chart.ColorBlack, StrokeWidth: 2.0}
		name := ""
		if combined {
			name = key.Cir.Label + " o'clock"
			if c, ok := clockColors[key.Cir.Label]; ok {
				style.StrokeColor = c
			}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: x,
			YValues: y,
			Style:   style,
		})
	}
	if len(series) == 0 {
		return "", nil
	}

	title := fmt.Sprintf("Time-averaged %s at %s", field, keys[0])
	if combined {
		title = fmt.Sprintf("Time-averaged %s at wall", field)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1000,
		Height: 500,
		XAxis:  chart.XAxis{Name: dimLabels[dim]},
		YAxis:  chart.YAxis{Name: e.Params.Label(field)},
		Series: series,
	}
	if combined {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	fname = profileFileName(field, keys[0], dim, combined)
	return fname, e.render(&graph, fname)
}

func profileFileName(field string, key cylinder.Key, dim int, combined bool) string {
	switch {
	case dim == 2 && combined:
		return fmt.Sprintf("%s_%s_wall_averaged.png", field, dimNames[dim])
	case dim == 2:
		return fmt.Sprintf("%s_%s_%soclock_averaged.png", field, dimNames[dim], key.Cir.Label)
	case dim == 0:
		return fmt.Sprintf("%s_%s_%s_averaged.png", field, dimNames[dim], key.Axi.Label)
	default:
		return fmt.Sprintf("%s_%s_averaged.png", field, dimNames[dim])
	}
}

// LabeledSeries is one named curve of a time-series chart.
type LabeledSeries struct {
	Label string
	X, Y  []float64
}

// TimeSeriesPlot renders named curves against timestep numbers.
func (e *Emitter) TimeSeriesPlot(fname, title, xlabel, ylabel string,
	curves []LabeledSeries) (err error) {
	var (
		series []chart.Series
		colors = []drawing.Color{
			chart.ColorBlue, chart.ColorGreen, chart.ColorRed, chart.ColorOrange,
		}
	)
	for i, c := range curves {
		series = append(series, chart.ContinuousSeries{
			Name:    c.Label,
			XValues: c.X,
			YValues: c.Y,
			Style: chart.Style{
				StrokeColor: colors[i%len(colors)],
				StrokeWidth: 2.0,
			},
		})
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1000,
		Height: 500,
		XAxis:  chart.XAxis{Name: xlabel},
		YAxis:  chart.YAxis{Name: ylabel},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return e.render(&graph, fname)
}

// BeatOverlay renders repeated cardiac cycles of a series on a shared
// step-within-beat axis, one colored curve per beat.
func (e *Emitter) BeatOverlay(beats [][]float64, field, fname string) (err error) {
	var (
		series []chart.Series
		scale  = e.Params.Scale(field)
	)
	for i, beat := range beats {
		x := make([]float64, len(beat))
		y := make([]float64, len(beat))
		for j, v := range beat {
			x[j] = float64(j)
			y[j] = v * scale
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("Beat %d", i+1),
			XValues: x,
			YValues: y,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2.0,
			},
		})
	}
	graph := chart.Chart{
		Title:  "WSS at Middle Wall - Heart Beat Overlay",
		Width:  1000,
		Height: 500,
		XAxis:  chart.XAxis{Name: "Step within Beat"},
		YAxis:  chart.YAxis{Name: e.Params.Label(field)},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return e.render(&graph, fname)
}

func (e *Emitter) render(graph *chart.Chart, fname string) (err error) {
	f, err := os.Create(filepath.Join(e.OutDir, fname))
	if err != nil {
		return err
	}
	defer f.Close()
	if err = graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering %s: %w", fname, err)
	}
	fmt.Printf("Saved: %s\n", fname)
	return nil
}
