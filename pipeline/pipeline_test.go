package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notargets/hemopost/PostParameters"
	"github.com/notargets/hemopost/vtkio"
)

// writeVessel writes one snapshot of a synthetic straight vessel: five
// centerline points over z in [0,2] plus four-point wall rings of radius 1
// at the o'clock angles, at the inlet, mid and outlet sections. Pressure is
// uniform at p, velocity is (3,0,4) and WSS is (0,0.6,0.8) everywhere, so
// the magnitude reductions come out to 5 and 1 exactly.
func vesselSnapshot(p float64, withPressure bool) *vtkio.Snapshot {
	points := [][3]float64{
		{0, 0, 0}, {0, 0, 0.5}, {0, 0, 1}, {0, 0, 1.5}, {0, 0, 2},
	}
	for _, z := range []float64{0, 1, 2} {
		points = append(points,
			[3]float64{0, 1, z}, [3]float64{1, 0, z},
			[3]float64{0, -1, z}, [3]float64{-1, 0, z})
	}
	n := len(points)
	var (
		pressure = make([]float64, n)
		velocity = make([]float64, 3*n)
		wss      = make([]float64, 3*n)
	)
	for i := 0; i < n; i++ {
		pressure[i] = p
		velocity[3*i], velocity[3*i+2] = 3, 4
		wss[3*i+1], wss[3*i+2] = 0.6, 0.8
	}
	snap := &vtkio.Snapshot{
		Points: points,
		Arrays: map[string]*vtkio.Array{
			"Velocity": {Components: 3, Data: velocity},
			"WSS":      {Components: 3, Data: wss},
		},
		ArrayOrder: []string{"Velocity", "WSS"},
	}
	if withPressure {
		snap.Arrays["Pressure"] = &vtkio.Array{Components: 1, Data: pressure}
		snap.ArrayOrder = append([]string{"Pressure"}, snap.ArrayOrder...)
	}
	return snap
}

func writeVessel(t *testing.T, path string, p float64) {
	t.Helper()
	require.NoError(t, vtkio.Write(path, vesselSnapshot(p, true)))
}

// writeRun writes one snapshot per pressure value, in step order.
func writeRun(t *testing.T, dir string, pressures ...float64) {
	t.Helper()
	for i, p := range pressures {
		fn := filepath.Join(dir, fmt.Sprintf("steady_%03d.vtk", i+1))
		writeVessel(t, fn, p)
	}
}

func testParams(startStep int) PostParameters.PostParameters {
	p := PostParameters.Defaults()
	p.StartStep = startStep
	return p
}

func TestRunPostTimeAverage(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, 1.0, 2.0, 3.0)

	res, err := RunPost(PostConfig{
		InputDir:  dir,
		OutputDir: filepath.Join(dir, "out"),
		Params:    testParams(0),
		NoPlot:    true,
		CSV:       true,
		Log:       zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	assert.Len(t, res.Files, 3)

	// centerline pressure: the time average of 1, 2, 3 is 2 at every point
	key, ok := res.FluidClass.Find("0", "center", ":")
	require.True(t, ok)
	avg := res.FluidAvg[key]["pressure"]
	require.Len(t, avg, 5)
	for _, v := range avg {
		assert.InDelta(t, 2.0, v, 1e-12)
	}

	// mid wall ring WSS magnitude is 1 in every snapshot
	midKey, ok := res.WallClass.Find(":", "wall", "mid")
	require.True(t, ok)
	for _, v := range res.WallAvg[midKey]["wss"] {
		assert.InDelta(t, 1.0, v, 1e-12)
	}
	require.Len(t, res.WSSMidAll, 3)
	for _, v := range res.WSSMidAll {
		assert.InDelta(t, 1.0, v, 1e-12)
	}

	for _, fn := range []string{"run_description.txt", "wss_mid_ring.csv"} {
		_, err = os.Stat(filepath.Join(dir, "out", fn))
		assert.NoError(t, err, "expected %s to be written", fn)
	}
}

func TestRunPostWindowSkipsEarlySteps(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, 1.0, 2.0, 3.0)

	res, err := RunPost(PostConfig{
		InputDir:  dir,
		OutputDir: filepath.Join(dir, "out"),
		Params:    testParams(1),
		NoPlot:    true,
		Log:       zap.NewNop().Sugar(),
	})
	require.NoError(t, err)

	key, ok := res.FluidClass.Find("0", "center", ":")
	require.True(t, ok)
	for _, v := range res.FluidAvg[key]["pressure"] {
		assert.InDelta(t, 2.5, v, 1e-12)
	}
	// the overlay series still spans the full run
	assert.Len(t, res.WSSMidAll, 3)
}

func TestRunPostMissingFieldIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		fn := filepath.Join(dir, fmt.Sprintf("steady_%03d.vtk", i+1))
		require.NoError(t, vtkio.Write(fn, vesselSnapshot(0, false)))
	}

	// no Pressure array in any snapshot: the pressure plots are skipped
	// with a warning, the run itself still succeeds end to end
	res, err := RunPost(PostConfig{
		InputDir:  dir,
		OutputDir: filepath.Join(dir, "out"),
		Params:    testParams(0),
		NoPlot:    false,
		Log:       zap.NewNop().Sugar(),
	})
	require.NoError(t, err)

	key, ok := res.FluidClass.Find("0", "center", ":")
	require.True(t, ok)
	_, hasPressure := res.FluidAvg[key]["pressure"]
	assert.False(t, hasPressure)

	// the fields that are present still produce their plots
	for _, fn := range []string{
		"velocity_axi_0oclock_averaged.png",
		"wss_cir_mid_averaged.png",
		"wss_axi_wall_averaged.png",
		"wss_time_series_rings.png",
	} {
		_, err = os.Stat(filepath.Join(dir, "out", fn))
		assert.NoError(t, err, "expected %s to be written", fn)
	}
	_, err = os.Stat(filepath.Join(dir, "out", "pressure_axi_wall_averaged.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunPostStartStepBeyondRange(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, 1.0, 2.0, 3.0)

	_, err := RunPost(PostConfig{
		InputDir: dir,
		Params:   testParams(5),
		Log:      zap.NewNop().Sugar(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beyond available steps")
}

func TestRunPostNoMatchingFiles(t *testing.T) {
	_, err := RunPost(PostConfig{
		InputDir: t.TempDir(),
		Params:   testParams(0),
		Log:      zap.NewNop().Sugar(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no results found")
}

func TestRunSummary(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, 1.0, 2.0, 3.0)

	rows, err := RunSummary(SummaryConfig{
		InputDir:  dir,
		OutputDir: filepath.Join(dir, "out"),
		Params:    testParams(0),
		NoPlot:    true,
		CSV:       true,
		Log:       zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.InDelta(t, 1.0, rows[0]["pressure_mean"], 1e-12)
	assert.InDelta(t, 3.0, rows[2]["pressure_max"], 1e-12)
	assert.InDelta(t, 5.0, rows[1]["velocity_mean"], 1e-12)
	assert.InDelta(t, 1.0, rows[1]["wss_mean"], 1e-12)
	assert.InDelta(t, 1.0, rows[1]["wss_mid_mean"], 1e-12)

	_, err = os.Stat(filepath.Join(dir, "out", "fluid_results.csv"))
	assert.NoError(t, err)
}
