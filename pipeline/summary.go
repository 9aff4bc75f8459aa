package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/hemopost/PostParameters"
	"github.com/notargets/hemopost/fields"
	"github.com/notargets/hemopost/report"
	"github.com/notargets/hemopost/timeavg"
	"github.com/notargets/hemopost/vtkio"
)

// SummaryConfig drives the per-timestep global statistics run.
type SummaryConfig struct {
	InputDir  string
	OutputDir string
	Params    PostParameters.PostParameters
	NoPlot    bool
	CSV       bool
	Log       *zap.SugaredLogger
}

// RunSummary reads every snapshot, computes global field statistics per
// timestep, prints the run summary, and emits time-series plots and the
// CSV export.
func RunSummary(cfg SummaryConfig) (rows []map[string]float64, err error) {
	files, err := vtkio.List(cfg.InputDir, cfg.Params.Pattern)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Found %d result files\n", len(files))

	for _, fn := range files {
		var snap *vtkio.Snapshot
		if snap, err = vtkio.Read(fn); err != nil {
			return nil, err
		}
		fmt.Printf("Reading %s\n", filepath.Base(fn))
		rows = append(rows, fields.SnapshotStats(snap, cfg.Params.WallThreshold, cfg.Log))
	}

	printSummary(rows)

	var columns []string
	for _, col := range fields.StatColumns {
		if _, ok := rows[0][col]; ok {
			columns = append(columns, col)
		}
	}

	emitter, err := report.NewEmitter(cfg.OutputDir, cfg.Params)
	if err != nil {
		return nil, err
	}
	if !cfg.NoPlot {
		if err = emitSummaryPlots(rows, emitter, cfg.Params); err != nil {
			return nil, err
		}
	}
	if cfg.CSV {
		if err = emitter.WriteCSV("fluid_results.csv", columns, rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func column(rows []map[string]float64, name string) (vals []float64, ok bool) {
	if _, ok = rows[0][name]; !ok {
		return nil, false
	}
	vals = make([]float64, len(rows))
	for i, row := range rows {
		vals[i] = row[name]
	}
	return vals, true
}

func printSummary(rows []map[string]float64) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SUMMARY OF RESULTS")
	fmt.Println(strings.Repeat("=", 60))

	if means, ok := column(rows, "pressure_mean"); ok {
		mins, _ := column(rows, "pressure_min")
		maxs, _ := column(rows, "pressure_max")
		fmt.Println("\nPressure [kg/(mm·s²)]:")
		fmt.Printf("  Mean: %.3f\n", stat.Mean(means, nil))
		fmt.Printf("  Min:  %.3f\n", floats.Min(mins))
		fmt.Printf("  Max:  %.3f\n", floats.Max(maxs))
	}
	if means, ok := column(rows, "velocity_mean"); ok {
		maxs, _ := column(rows, "velocity_max")
		fmt.Println("\nVelocity [mm/s]:")
		fmt.Printf("  Mean: %.3f\n", stat.Mean(means, nil))
		fmt.Printf("  Max:  %.3f\n", floats.Max(maxs))
	}
	if means, ok := column(rows, "wss_mean"); ok {
		maxs, _ := column(rows, "wss_max")
		m := stat.Mean(means, nil)
		fmt.Println("\nWall Shear Stress [kg/(mm·s²)]:")
		fmt.Printf("  Mean: %.6f (%.2f dyne/cm²)\n", m, m*10000)
		fmt.Printf("  Max:  %.6f (%.2f dyne/cm²)\n", floats.Max(maxs), floats.Max(maxs)*10000)
	}
	if means, ok := column(rows, "traction_mean"); ok {
		maxs, _ := column(rows, "traction_max")
		fmt.Println("\nTraction [kg/(mm·s²)]:")
		fmt.Printf("  Mean: %.3f\n", stat.Mean(means, nil))
		fmt.Printf("  Max:  %.3f\n", floats.Max(maxs))
	}
	fmt.Println("\n" + strings.Repeat("=", 60))
}

func emitSummaryPlots(rows []map[string]float64, emitter *report.Emitter,
	p PostParameters.PostParameters) (err error) {
	steps := make([]float64, len(rows))
	for i := range rows {
		steps[i] = float64(i)
	}
	quantities := []struct {
		name  string
		stats []string
	}{
		{"pressure", []string{"pressure_mean", "pressure_min", "pressure_max"}},
		{"velocity", []string{"velocity_mean", "velocity_max"}},
		{"wss", []string{"wss_mean", "wss_max"}},
		{"traction", []string{"traction_mean", "traction_max"}},
	}
	for _, q := range quantities {
		var curves []report.LabeledSeries
		for _, s := range q.stats {
			if vals, ok := column(rows, s); ok {
				curves = append(curves, report.LabeledSeries{
					Label: strings.TrimPrefix(s, q.name+"_"),
					X:     steps,
					Y:     vals,
				})
			}
		}
		if len(curves) == 0 {
			continue
		}
		fname := fmt.Sprintf("summary_%s.png", q.name)
		title := strings.ToUpper(q.name[:1]) + q.name[1:]
		if err = emitter.TimeSeriesPlot(fname,
			fmt.Sprintf("%s Evolution", title),
			"Time Step", p.Label(q.name), curves); err != nil {
			return err
		}
	}

	// beat overlay on the wall-filtered mid-section WSS means
	if p.StepsPerBeat > 0 {
		if mid, ok := column(rows, "wss_mid_mean"); ok {
			beats := timeavg.Overlay(mid, p.StepsPerBeat)
			if beats == nil {
				fmt.Println("Not enough steps for one full beat; skipping beat overlay plot")
			} else if err = emitter.BeatOverlay(beats, "wss",
				"wss_heartbeats.png"); err != nil {
				return err
			}
		}
	}
	return nil
}
