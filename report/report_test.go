package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/hemopost/PostParameters"
	"github.com/notargets/hemopost/cylinder"
	"github.com/notargets/hemopost/timeavg"
)

func newTestEmitter(t *testing.T) *Emitter {
	t.Helper()
	e, err := NewEmitter(t.TempDir(), PostParameters.Defaults())
	require.NoError(t, err)
	return e
}

func assertPNG(t *testing.T, e *Emitter, fname string) {
	t.Helper()
	info, err := os.Stat(filepath.Join(e.OutDir, fname))
	require.NoError(t, err, "expected %s to exist", fname)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteCSV(t *testing.T) {
	e := newTestEmitter(t)
	rows := []map[string]float64{
		{"pressure_mean": 1.5, "wss_mean": 0.25},
		{"pressure_mean": 2.5},
	}
	require.NoError(t, e.WriteCSV("out.csv", []string{"pressure_mean", "wss_mean"}, rows))

	raw, err := os.ReadFile(filepath.Join(e.OutDir, "out.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestep,pressure_mean,wss_mean", lines[0])
	assert.Equal(t, "0,1.5,0.25", lines[1])
	// missing statistic renders as an empty cell
	assert.Equal(t, "1,2.5,", lines[2])
}

func TestWriteRunDescription(t *testing.T) {
	e := newTestEmitter(t)
	info := RunInfo{
		InputDir:  "steady",
		Pattern:   "steady_*.vtk",
		FirstFile: "steady/steady_001.vtk",
		LastFile:  "steady/steady_128.vtk",
		NumSteps:  128,
		StartStep: 96,
		Locations: []string{"fluid (0, center, :)"},
		EmptyKeys: []string{"interface (9, wall, end)"},
	}
	require.NoError(t, e.WriteRunDescription("run_description.txt", info))

	raw, err := os.ReadFile(filepath.Join(e.OutDir, "run_description.txt"))
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "steady_001.vtk .. steady_128.vtk")
	assert.Contains(t, text, "steps 96..127 (32 steps averaged)")
	assert.Contains(t, text, "fluid (0, center, :)")
	assert.Contains(t, text, "no matching points")
}

func TestTimeSeriesPlotRendersPNG(t *testing.T) {
	e := newTestEmitter(t)
	err := e.TimeSeriesPlot("ts.png", "WSS vs Time", "Time Step", "WSS",
		[]LabeledSeries{
			{Label: "Mid", X: []float64{1, 2, 3}, Y: []float64{0.1, 0.3, 0.2}},
			{Label: "Inlet", X: []float64{1, 2, 3}, Y: []float64{0.2, 0.4, 0.3}},
		})
	require.NoError(t, err)
	assertPNG(t, e, "ts.png")
}

func TestBeatOverlayRendersPNG(t *testing.T) {
	e := newTestEmitter(t)
	beats := [][]float64{{0.1, 0.5, 0.2}, {0.11, 0.52, 0.21}}
	require.NoError(t, e.BeatOverlay(beats, "wss", "overlay.png"))
	assertPNG(t, e, "overlay.png")
}

func TestProfilePlotCircumferential(t *testing.T) {
	e := newTestEmitter(t)
	key := cylinder.Key{
		Cir: cylinder.Varying(),
		Rad: cylinder.Fixed("wall", 1),
		Axi: cylinder.Fixed("mid", 1),
	}
	avg := timeavg.Averaged{key: {"wss": {0.1, 0.2, 0.3, 0.4}}}
	coords := map[cylinder.Key][]float64{key: {0, 1.5708, 3.1416, 4.7124}}

	fname, err := e.ProfilePlot(avg, coords, "wss", []cylinder.Key{key}, false)
	require.NoError(t, err)
	assert.Equal(t, "wss_cir_mid_averaged.png", fname)
	assertPNG(t, e, fname)
}

func TestProfilePlotCombinedAxial(t *testing.T) {
	e := newTestEmitter(t)
	var (
		keys   []cylinder.Key
		avg    = timeavg.Averaged{}
		coords = map[cylinder.Key][]float64{}
	)
	for _, cir := range []string{"0", "3", "6", "9"} {
		key := cylinder.Key{
			Cir: cylinder.Fixed(cir, 0),
			Rad: cylinder.Fixed("wall", 1),
			Axi: cylinder.Varying(),
		}
		keys = append(keys, key)
		avg[key] = map[string][]float64{"pressure": {10, 11, 12}}
		coords[key] = []float64{0, 1, 2}
	}
	fname, err := e.ProfilePlot(avg, coords, "pressure", keys, true)
	require.NoError(t, err)
	assert.Equal(t, "pressure_axi_wall_averaged.png", fname)
	assertPNG(t, e, fname)
}

func TestProfilePlotMissingFieldIsSkipped(t *testing.T) {
	e := newTestEmitter(t)
	key := cylinder.Key{
		Cir: cylinder.Fixed("0", 0),
		Rad: cylinder.Fixed("wall", 1),
		Axi: cylinder.Varying(),
	}
	fname, err := e.ProfilePlot(timeavg.Averaged{}, map[cylinder.Key][]float64{},
		"wss", []cylinder.Key{key}, false)
	require.NoError(t, err)
	assert.Empty(t, fname)

	entries, err := os.ReadDir(e.OutDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProfilePlotNoKeysIsError(t *testing.T) {
	e := newTestEmitter(t)
	_, err := e.ProfilePlot(timeavg.Averaged{}, map[cylinder.Key][]float64{},
		"wss", nil, false)
	require.Error(t, err)
}
