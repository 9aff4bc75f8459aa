package waveform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWaveform = `# pulsatile inflow, 1 beat, mm/s
0.0000000000e+00 -5.0000000000e+02
2.5000000000e-01 -1.5000000000e+03
5.0000000000e-01 -2.5000000000e+03
7.5000000000e-01 -1.5000000000e+03
1.0000000000e+00 -5.0000000000e+02
`

func writeWaveform(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pulsatile_flow.dat")
	require.NoError(t, os.WriteFile(path, []byte(testWaveform), 0644))
	return path
}

func TestReadWaveform(t *testing.T) {
	w, err := Read(writeWaveform(t))
	require.NoError(t, err)
	assert.Equal(t, "# pulsatile inflow, 1 beat, mm/s", w.Header)
	require.Len(t, w.Time, 5)
	assert.Equal(t, -2500.0, w.Value[2])
}

func TestTimeAverage(t *testing.T) {
	w, err := Read(writeWaveform(t))
	require.NoError(t, err)
	// trapezoid over the symmetric profile: mean of -500, -1500, -2500,
	// -1500 segments midpoints = -1500
	assert.InDelta(t, -1500.0, w.TimeAverage(), 1e-9)
}

func TestNormalizeHitsTargetMean(t *testing.T) {
	w, err := Read(writeWaveform(t))
	require.NoError(t, err)

	factor, err := w.Normalize(-1000.0)
	require.NoError(t, err)
	assert.InDelta(t, -1000.0/-1500.0, factor, 1e-12)
	assert.InDelta(t, -1000.0, w.TimeAverage(), 1e-9)
}

func TestNormalizeZeroMeanFails(t *testing.T) {
	w := &Waveform{Time: []float64{0, 1}, Value: []float64{-1, 1}}
	_, err := w.Normalize(-1000.0)
	require.Error(t, err)
}

func TestWriteRoundTripPreservesHeader(t *testing.T) {
	path := writeWaveform(t)
	w, err := Read(path)
	require.NoError(t, err)
	_, err = w.Normalize(-1000.0)
	require.NoError(t, err)
	require.NoError(t, w.Write(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# pulsatile inflow"))

	back, err := Read(path)
	require.NoError(t, err)
	assert.InDelta(t, -1000.0, back.TimeAverage(), 1e-6)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	onecol := filepath.Join(dir, "one.dat")
	require.NoError(t, os.WriteFile(onecol, []byte("# hdr\n1.0\n"), 0644))
	_, err := Read(onecol)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two columns")

	short := filepath.Join(dir, "short.dat")
	require.NoError(t, os.WriteFile(short, []byte("# hdr\n0.0 1.0\n"), 0644))
	_, err = Read(short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two samples")
}
