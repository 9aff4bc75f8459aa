package cylinder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVessel builds a synthetic straight vessel: centerline points along
// the axis and wall rings of radius 1 at the o'clock angles, for axial
// stations 0, 0.5, 1, 1.5, 2.
func testVessel() (pts [][3]float64) {
	zAll := []float64{0, 0.5, 1.0, 1.5, 2.0}
	zRings := []float64{0, 1.0, 2.0}
	for _, z := range zAll {
		pts = append(pts, [3]float64{0, 0, z})
	}
	// angle = atan2(x, y): 0 -> +y, pi/2 -> +x, pi -> -y, 3pi/2 -> -x
	ring := [][2]float64{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	for _, z := range zRings {
		for _, xy := range ring {
			pts = append(pts, [3]float64{xy[0], xy[1], z})
		}
	}
	return
}

func TestXYZToCRA(t *testing.T) {
	tests := []struct {
		name string
		in   [3]float64
		want [3]float64
	}{
		{"12 o'clock", [3]float64{0, 1, 0.5}, [3]float64{0, 1, 0.5}},
		{"3 o'clock", [3]float64{1, 0, 0}, [3]float64{0.5 * math.Pi, 1, 0}},
		{"6 o'clock", [3]float64{0, -1, 2}, [3]float64{math.Pi, 1, 2}},
		{"9 o'clock", [3]float64{-1, 0, 0}, [3]float64{1.5 * math.Pi, 1, 0}},
		{"off axis", [3]float64{3, 4, 1}, [3]float64{math.Atan2(3, 4), 5, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := XYZToCRA(tc.in)
			assert.InDelta(t, tc.want[0], got[0], 1e-12)
			assert.InDelta(t, tc.want[1], got[1], 1e-12)
			assert.InDelta(t, tc.want[2], got[2], 1e-12)
		})
	}
}

func TestAngleRange(t *testing.T) {
	// angles must land in [0, 2pi) regardless of quadrant
	for _, p := range testVessel() {
		cra := XYZToCRA(p)
		assert.GreaterOrEqual(t, cra[0], 0.0)
		assert.Less(t, cra[0], 2*math.Pi)
	}
}

func TestClassifyFluidCenterline(t *testing.T) {
	c, err := Classify(testVessel(), Fluid)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, c.RInner, 1e-12)
	assert.InDelta(t, 1.0, c.ROuter, 1e-12)
	assert.InDelta(t, 2.0, c.Height, 1e-12)

	key, ok := c.Find("0", "center", ":")
	require.True(t, ok)
	require.Len(t, c.Groups[key], 5)
	assert.Equal(t, []float64{0, 0.5, 1.0, 1.5, 2.0}, c.Coords[key])

	// fully concrete key at the inlet
	key, ok = c.Find("0", "center", "start")
	require.True(t, ok)
	assert.Len(t, c.Groups[key], 1)
}

func TestClassifyInterfaceWall(t *testing.T) {
	c, err := Classify(testVessel(), Interface)
	require.NoError(t, err)

	// mid ring holds the four o'clock points, ordered by angle
	key, ok := c.Find(":", "wall", "mid")
	require.True(t, ok)
	require.Len(t, c.Groups[key], 4)
	want := []float64{0, 0.5 * math.Pi, math.Pi, 1.5 * math.Pi}
	for i, v := range want {
		assert.InDelta(t, v, c.Coords[key][i], 1e-12)
	}

	// axial line at each o'clock position
	for _, cir := range []string{"0", "3", "6", "9"} {
		key, ok = c.Find(cir, "wall", ":")
		require.True(t, ok, "missing axial line at %s o'clock", cir)
		assert.Equal(t, []float64{0, 1.0, 2.0}, c.Coords[key])
	}
}

func TestWildcardCoordinatesStrictlyIncreasing(t *testing.T) {
	for _, domain := range []Domain{Fluid, Interface} {
		c, err := Classify(testVessel(), domain)
		require.NoError(t, err)
		for key, crd := range c.Coords {
			for i := 1; i < len(crd); i++ {
				assert.Greater(t, crd[i], crd[i-1],
					"%s coords not strictly increasing for %s", domain, key)
			}
		}
	}
}

func TestClassifyDuplicatePointsFails(t *testing.T) {
	pts := testVessel()
	// a coincident wall point makes the axial line ordering ambiguous
	pts = append(pts, [3]float64{0, 1, 1.0})
	_, err := Classify(pts, Interface)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not unique")
}

func TestClassifyUnknownDomain(t *testing.T) {
	_, err := Classify(testVessel(), Domain("solid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown domain")
}

func TestClassifyEmptyPoints(t *testing.T) {
	_, err := Classify(nil, Fluid)
	require.Error(t, err)
}

func TestEmptyKeysAreDiagnosedNotFatal(t *testing.T) {
	// a wall-only point set has nothing on the centerline
	var pts [][3]float64
	for _, z := range []float64{0, 1.0, 2.0} {
		pts = append(pts,
			[3]float64{0, 1, z}, [3]float64{1, 0, z},
			[3]float64{0, -1, z}, [3]float64{-1, 0, z})
	}
	c, err := Classify(pts, Fluid)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Empty)
	_, ok := c.Find("0", "center", ":")
	assert.False(t, ok)
}

func TestKeyVaryingAxis(t *testing.T) {
	k := Key{Fixed("0", 0), Fixed("wall", 1), Varying()}
	assert.Equal(t, 2, k.VaryingAxis())
	assert.Equal(t, "(0, wall, :)", k.String())

	concrete := Key{Fixed("0", 0), Fixed("wall", 1), Fixed("mid", 1)}
	assert.Equal(t, -1, concrete.VaryingAxis())
}
