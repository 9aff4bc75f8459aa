package fields

import (
	"go.uber.org/zap"

	"github.com/notargets/hemopost/cylinder"
	"github.com/notargets/hemopost/vtkio"
)

// Series accumulates extracted values per location key and field: one inner
// slice per retained timestep, each indexed like the key's point group.
type Series map[cylinder.Key]map[string][][]float64

func (s Series) append(key cylinder.Key, field string, vals []float64) {
	m, ok := s[key]
	if !ok {
		m = make(map[string][][]float64)
		s[key] = m
	}
	m[field] = append(m[field], vals)
}

// Extractor samples snapshots at the point groups of one classification and
// appends the values to its Series. Fields absent from a snapshot are
// skipped; aggregation downstream tolerates a field missing from some keys.
type Extractor struct {
	Class  *cylinder.Classification
	Fields []string
	Series Series

	log *zap.SugaredLogger
}

func NewExtractor(class *cylinder.Classification, fieldNames []string,
	log *zap.SugaredLogger) *Extractor {
	return &Extractor{
		Class:  class,
		Fields: fieldNames,
		Series: make(Series),
		log:    log,
	}
}

// Append extracts every requested field from one snapshot and returns the
// canonical names of the fields that were found.
func (e *Extractor) Append(snap *vtkio.Snapshot) (found []string) {
	for _, name := range e.Fields {
		var vals []float64
		if name == WSS {
			vals = WallShear(snap, e.log)
		} else {
			sp, ok := Lookup(name)
			if !ok {
				e.log.Warnw("unknown field requested", "field", name)
				continue
			}
			a, ok := snap.Array(sp.Array)
			if !ok {
				continue
			}
			vals = Reduce(a, sp.Reduce)
		}
		for key, ids := range e.Class.Groups {
			e.Series.append(key, name, gather(vals, ids))
		}
		found = append(found, name)
	}
	return
}

// WallShear resolves the wall shear stress magnitude for one snapshot,
// preferring the WSS array and falling back to Traction. When neither is
// present the result is all zeros and a warning is logged.
func WallShear(snap *vtkio.Snapshot, log *zap.SugaredLogger) (wss []float64) {
	if a, ok := snap.Array("WSS"); ok {
		return Reduce(a, Magnitude)
	}
	if a, ok := snap.Array("Traction"); ok {
		return Reduce(a, Magnitude)
	}
	if log != nil {
		log.Warnw("WSS array not found, using zeros", "file", snap.Path)
	}
	return make([]float64, snap.NumPoints())
}

func gather(vals []float64, ids []int) (out []float64) {
	out = make([]float64, len(ids))
	for i, id := range ids {
		out[i] = vals[id]
	}
	return
}
