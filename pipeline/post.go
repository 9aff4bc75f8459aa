// Package pipeline wires the snapshot reader, geometry classifier, field
// extractor, time aggregator and report emitter into the batch runs the
// CLI exposes. Snapshots are processed strictly in sorted filename order,
// one in memory at a time.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/hemopost/PostParameters"
	"github.com/notargets/hemopost/cylinder"
	"github.com/notargets/hemopost/fields"
	"github.com/notargets/hemopost/report"
	"github.com/notargets/hemopost/timeavg"
	"github.com/notargets/hemopost/vtkio"
)

// PostConfig drives one pulsatile post-processing run.
type PostConfig struct {
	InputDir  string
	OutputDir string
	Params    PostParameters.PostParameters
	NoPlot    bool
	CSV       bool
	Log       *zap.SugaredLogger
}

// PostResult carries the aggregated data of a run, mainly so tests can
// assert on it without touching the emitted artifacts.
type PostResult struct {
	Files      []string
	FluidClass *cylinder.Classification
	WallClass  *cylinder.Classification
	FluidAvg   timeavg.Averaged
	WallAvg    timeavg.Averaged
	WallSeries fields.Series
	WSSMidAll  []float64
}

// RunPost executes the full pipeline: classify from snapshot 0, extract
// per-snapshot fields over the averaging window, time-average, and emit
// plots, CSV and the run description.
func RunPost(cfg PostConfig) (res *PostResult, err error) {
	var (
		p   = cfg.Params
		log = cfg.Log
	)
	files, err := vtkio.List(cfg.InputDir, p.Pattern)
	if err != nil {
		return nil, err
	}
	if err = timeavg.CheckWindow(p.StartStep, len(files)); err != nil {
		return nil, err
	}
	fmt.Printf("Found %d result files\n", len(files))
	fmt.Printf("Processing steps %d to %d for time averaging\n", p.StartStep, len(files)-1)

	res = &PostResult{Files: files}
	var (
		fluidEx, wallEx *fields.Extractor
		midKey          cylinder.Key
		haveMid         bool
	)
	for i, fn := range files {
		var snap *vtkio.Snapshot
		if snap, err = vtkio.Read(fn); err != nil {
			return nil, err
		}
		if i == 0 {
			if res.FluidClass, err = cylinder.Classify(snap.Points, cylinder.Fluid); err != nil {
				return nil, err
			}
			if res.WallClass, err = cylinder.Classify(snap.Points, cylinder.Interface); err != nil {
				return nil, err
			}
			for _, key := range res.FluidClass.Empty {
				log.Infow("no points found", "location", key.String(), "domain", "fluid")
			}
			for _, key := range res.WallClass.Empty {
				log.Infow("no points found", "location", key.String(), "domain", "interface")
			}
			fluidEx = fields.NewExtractor(res.FluidClass,
				[]string{fields.Pressure, fields.Velocity}, log)
			wallEx = fields.NewExtractor(res.WallClass,
				[]string{fields.Pressure, fields.WSS}, log)
			midKey, haveMid = res.WallClass.Find(":", "wall", "mid")
			if !haveMid {
				log.Warnw("mid wall ring location not found, beat overlay disabled")
			}
		}
		// mid-ring WSS mean over the full run, for the beat overlay
		if haveMid {
			wss := fields.WallShear(snap, log)
			ring := make([]float64, 0, len(res.WallClass.Groups[midKey]))
			for _, id := range res.WallClass.Groups[midKey] {
				ring = append(ring, wss[id])
			}
			res.WSSMidAll = append(res.WSSMidAll, stat.Mean(ring, nil))
		}
		if i >= p.StartStep {
			fluidEx.Append(snap)
			wallEx.Append(snap)
		}
	}

	res.WallSeries = wallEx.Series
	if res.FluidAvg, err = timeavg.Average(fluidEx.Series); err != nil {
		return nil, err
	}
	if res.WallAvg, err = timeavg.Average(wallEx.Series); err != nil {
		return nil, err
	}
	fmt.Printf("Time-averaged over steps %d to %d (%d steps)\n",
		p.StartStep+1, len(files), len(files)-p.StartStep)

	emitter, err := report.NewEmitter(cfg.OutputDir, p)
	if err != nil {
		return nil, err
	}
	if !cfg.NoPlot {
		if err = emitPostPlots(res, emitter, p, log); err != nil {
			return nil, err
		}
	}
	if cfg.CSV {
		if err = exportWallCSV(res, emitter, p); err != nil {
			return nil, err
		}
	}
	if err = writeDescription(res, emitter, cfg); err != nil {
		return nil, err
	}
	return res, nil
}

func emitPostPlots(res *PostResult, emitter *report.Emitter,
	p PostParameters.PostParameters, log *zap.SugaredLogger) (err error) {
	// a field absent from the run yields an empty filename, not a failure
	profile := func(avg timeavg.Averaged, coords map[cylinder.Key][]float64,
		field string, keys []cylinder.Key, combined bool) error {
		fname, err := emitter.ProfilePlot(avg, coords, field, keys, combined)
		if err != nil {
			return err
		}
		if fname == "" {
			log.Warnw("no data to plot, skipping", "field", field,
				"location", keys[0].String())
		}
		return nil
	}

	// velocity along the centerline
	if key, ok := res.FluidClass.Find("0", "center", ":"); ok {
		if err = profile(res.FluidAvg, res.FluidClass.Coords,
			fields.Velocity, []cylinder.Key{key}, false); err != nil {
			return err
		}
	}

	// pressure and WSS around circumferential rings at inlet/mid/outlet
	for _, field := range []string{fields.Pressure, fields.WSS} {
		for _, axi := range []string{"start", "mid", "end"} {
			key, ok := res.WallClass.Find(":", "wall", axi)
			if !ok {
				continue
			}
			if err = profile(res.WallAvg, res.WallClass.Coords,
				field, []cylinder.Key{key}, false); err != nil {
				return err
			}
		}
	}

	// pressure and WSS along axial lines at the o'clock positions, combined
	for _, field := range []string{fields.Pressure, fields.WSS} {
		var keys []cylinder.Key
		for _, cir := range []string{"0", "3", "6", "9"} {
			if key, ok := res.WallClass.Find(cir, "wall", ":"); ok {
				keys = append(keys, key)
			}
		}
		if len(keys) > 0 {
			if err = profile(res.WallAvg, res.WallClass.Coords,
				field, keys, true); err != nil {
				return err
			}
		}
	}

	// WSS ring means over the averaging window
	if err = emitRingTimeSeries(res, emitter, p); err != nil {
		return err
	}

	// beat overlay over the full run
	if p.StepsPerBeat > 0 && len(res.WSSMidAll) > 0 {
		beats := timeavg.Overlay(res.WSSMidAll, p.StepsPerBeat)
		if beats == nil {
			fmt.Println("Not enough steps for one full beat; skipping beat overlay plot")
		} else if err = emitter.BeatOverlay(beats, fields.WSS,
			"wss_heartbeat_overlay_mid.png"); err != nil {
			return err
		}
	}
	return nil
}

func emitRingTimeSeries(res *PostResult, emitter *report.Emitter,
	p PostParameters.PostParameters) (err error) {
	var (
		curves []report.LabeledSeries
		labels = map[string]string{"start": "Inlet", "mid": "Mid", "end": "Outlet"}
		scale  = p.Scale(fields.WSS)
	)
	for _, axi := range []string{"start", "mid", "end"} {
		key, ok := res.WallClass.Find(":", "wall", axi)
		if !ok {
			continue
		}
		frames, ok := res.WallSeries[key][fields.WSS]
		if !ok {
			continue
		}
		y := timeavg.Means(frames)
		x := make([]float64, len(y))
		for i := range y {
			y[i] *= scale
			x[i] = float64(p.StartStep + i + 1)
		}
		curves = append(curves, report.LabeledSeries{Label: labels[axi], X: x, Y: y})
	}
	if len(curves) == 0 {
		return nil
	}
	return emitter.TimeSeriesPlot("wss_time_series_rings.png",
		"Wall Shear Stress vs Time (averaged over circumferential rings)",
		"Time Step", p.Label(fields.WSS), curves)
}

func exportWallCSV(res *PostResult, emitter *report.Emitter,
	p PostParameters.PostParameters) (err error) {
	key, ok := res.WallClass.Find(":", "wall", "mid")
	if !ok {
		return nil
	}
	frames, ok := res.WallSeries[key][fields.WSS]
	if !ok {
		return nil
	}
	means := timeavg.Means(frames)
	rows := make([]map[string]float64, len(means))
	for i, m := range means {
		rows[i] = map[string]float64{"wss_mid_mean": m}
	}
	return emitter.WriteCSV("wss_mid_ring.csv", []string{"wss_mid_mean"}, rows)
}

func writeDescription(res *PostResult, emitter *report.Emitter,
	cfg PostConfig) (err error) {
	info := report.RunInfo{
		InputDir:  cfg.InputDir,
		Pattern:   cfg.Params.Pattern,
		FirstFile: res.Files[0],
		LastFile:  res.Files[len(res.Files)-1],
		NumSteps:  len(res.Files),
		StartStep: cfg.Params.StartStep,
	}
	for _, key := range res.FluidClass.SortedKeys() {
		info.Locations = append(info.Locations, "fluid "+key.String())
	}
	for _, key := range res.WallClass.SortedKeys() {
		info.Locations = append(info.Locations, "interface "+key.String())
	}
	for _, key := range res.FluidClass.Empty {
		info.EmptyKeys = append(info.EmptyKeys, "fluid "+key.String())
	}
	for _, key := range res.WallClass.Empty {
		info.EmptyKeys = append(info.EmptyKeys, "interface "+key.String())
	}
	return emitter.WriteRunDescription("run_description.txt", info)
}
