package fields

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/hemopost/vtkio"
)

// StatColumns is the full set of per-snapshot summary statistics, in report
// order. A run's CSV uses the subset present in its first snapshot.
var StatColumns = []string{
	"pressure_mean", "pressure_min", "pressure_max",
	"velocity_mean", "velocity_max",
	"wss_mean", "wss_max", "wss_mid_mean",
	"traction_mean", "traction_max",
}

// SnapshotStats computes global summary statistics for one snapshot:
// mean/min/max pressure, mean/max velocity and WSS magnitudes, and the
// wall-filtered mid-section WSS mean. Absent fields yield no entries.
//
// The mid-section statistic considers points within a 5% axial band around
// the vessel midpoint and, of those, only points whose WSS magnitude
// exceeds wallThreshold: interior nodes carry near-zero WSS and would
// otherwise dilute the ring mean. If no point exceeds the threshold the
// unfiltered band mean is reported.
func SnapshotStats(snap *vtkio.Snapshot, wallThreshold float64,
	log *zap.SugaredLogger) (stats map[string]float64) {
	stats = make(map[string]float64)

	if a, ok := snap.Array("Pressure"); ok {
		p := Reduce(a, Passthrough)
		stats["pressure_mean"] = stat.Mean(p, nil)
		stats["pressure_min"] = floats.Min(p)
		stats["pressure_max"] = floats.Max(p)
	}
	if a, ok := snap.Array("Velocity"); ok {
		v := Reduce(a, Magnitude)
		stats["velocity_mean"] = stat.Mean(v, nil)
		stats["velocity_max"] = floats.Max(v)
	}
	if snap.HasArray("WSS") || snap.HasArray("Traction") {
		wss := WallShear(snap, log)
		stats["wss_mean"] = stat.Mean(wss, nil)
		stats["wss_max"] = floats.Max(wss)
		stats["wss_mid_mean"] = midSectionMean(snap.Points, wss, wallThreshold)
	}
	if a, ok := snap.Array("Traction"); ok {
		tr := Reduce(a, Magnitude)
		stats["traction_mean"] = stat.Mean(tr, nil)
		stats["traction_max"] = floats.Max(tr)
	}
	return
}

func midSectionMean(points [][3]float64, wss []float64, wallThreshold float64) float64 {
	var (
		zMin = math.Inf(1)
		zMax = math.Inf(-1)
	)
	for _, p := range points {
		zMin = math.Min(zMin, p[2])
		zMax = math.Max(zMax, p[2])
	}
	var (
		zMid = (zMin + zMax) / 2
		zTol = (zMax - zMin) * 0.05
		band []float64
		wall []float64
	)
	for i, p := range points {
		if math.Abs(p[2]-zMid) < zTol {
			band = append(band, wss[i])
			if wss[i] > wallThreshold {
				wall = append(wall, wss[i])
			}
		}
	}
	if len(wall) > 0 {
		return stat.Mean(wall, nil)
	}
	if len(band) > 0 {
		return stat.Mean(band, nil)
	}
	return 0
}
