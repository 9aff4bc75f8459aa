// Package cylinder classifies mesh points of a straight-vessel simulation
// into named cylindrical locations: circumferential angle, radial layer and
// axial position. The classification is computed once from the reference
// configuration (snapshot 0) and reused for all timesteps, which assumes a
// fixed, non-deforming mesh topology.
package cylinder

import (
	"fmt"
	"math"
	"sort"
)

// Domain selects which point set is classified.
type Domain string

const (
	// Fluid classifies along the vessel centerline.
	Fluid Domain = "fluid"
	// Interface classifies the outer wall, where WSS is defined.
	Interface Domain = "interface"
)

// Slot is one axis of a location key: either a fixed bucket with a label and
// a target coordinate value, or varying, meaning the axis is swept and used
// as the independent variable of a line plot.
type Slot struct {
	varying bool
	Label   string
	Value   float64
}

// Fixed returns a concrete bucket slot.
func Fixed(label string, value float64) Slot {
	return Slot{Label: label, Value: value}
}

// Varying returns the wildcard slot.
func Varying() Slot {
	return Slot{varying: true}
}

func (s Slot) IsVarying() bool {
	return s.varying
}

func (s Slot) String() string {
	if s.varying {
		return ":"
	}
	return s.Label
}

// Key locates a group of mesh points along the circumferential, radial and
// axial axes. At most one slot is varying; fully concrete keys identify
// single points.
type Key struct {
	Cir, Rad, Axi Slot
}

func (k Key) Slots() [3]Slot {
	return [3]Slot{k.Cir, k.Rad, k.Axi}
}

// VaryingAxis returns the index (0=cir, 1=rad, 2=axi) of the varying slot,
// or -1 for a fully concrete key.
func (k Key) VaryingAxis() int {
	for i, s := range k.Slots() {
		if s.IsVarying() {
			return i
		}
	}
	return -1
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s, %s)", k.Cir, k.Rad, k.Axi)
}

// Classification maps location keys onto mesh point indices. Groups holds
// the selected indices per key, ordered along the varying axis when there is
// one; Coords holds the matching varying-axis coordinate values, co-indexed
// with Groups. Keys that matched no points are listed in Empty and absent
// from Groups.
type Classification struct {
	Groups map[Key][]int
	Coords map[Key][]float64
	Empty  []Key

	RInner, ROuter, Height float64
}

// tolerances matching numpy isclose defaults, which the reference meshes
// were classified with
const (
	relTol = 1.0e-5
	absTol = 1.0e-8
)

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= absTol+relTol*math.Abs(b)
}

// XYZToCRA converts a Cartesian point to cylindrical coordinates: angle in
// [0, 2pi), radius, axial position.
func XYZToCRA(p [3]float64) (cra [3]float64) {
	cra[0] = math.Mod(math.Atan2(p[0], p[1])+2.0*math.Pi, 2.0*math.Pi)
	cra[1] = math.Sqrt(p[0]*p[0] + p[1]*p[1])
	cra[2] = p[2]
	return
}

type bucket struct {
	label string
	value float64
}

// Classify converts every point to cylindrical coordinates, derives the
// vessel dimensions, and registers point groups for every combination of
// the domain's angle/radius/axial buckets: the fully concrete key plus the
// three keys with exactly one axis varying.
func Classify(points [][3]float64, domain Domain) (c *Classification, err error) {
	var (
		n   = len(points)
		cra = make([][3]float64, n)
	)
	if n == 0 {
		return nil, fmt.Errorf("cannot classify an empty point set")
	}
	for i, p := range points {
		cra[i] = XYZToCRA(p)
	}

	c = &Classification{
		Groups: make(map[Key][]int),
		Coords: make(map[Key][]float64),
		RInner: math.Inf(1),
	}
	for _, p := range cra {
		c.RInner = math.Min(c.RInner, p[1])
		c.ROuter = math.Max(c.ROuter, p[1])
		c.Height = math.Max(c.Height, p[2])
	}

	var pCir, pRad, pAxi []bucket
	switch domain {
	case Fluid:
		pCir = []bucket{{"0", 0.0}}
		pRad = []bucket{{"center", 0.0}}
	case Interface:
		pCir = []bucket{
			{"0", 0.0},
			{"3", 0.5 * math.Pi},
			{"6", math.Pi},
			{"9", 1.5 * math.Pi},
		}
		pRad = []bucket{{"wall", c.ROuter}}
	default:
		return nil, fmt.Errorf("unknown domain: %s", domain)
	}
	pAxi = []bucket{
		{"start", 0.0},
		{"mid", c.Height / 2},
		{"end", c.Height},
	}

	for _, cb := range pCir {
		for _, rb := range pRad {
			for _, ab := range pAxi {
				keys := []Key{
					{Fixed(cb.label, cb.value), Fixed(rb.label, rb.value), Fixed(ab.label, ab.value)},
					{Varying(), Fixed(rb.label, rb.value), Fixed(ab.label, ab.value)},
					{Fixed(cb.label, cb.value), Varying(), Fixed(ab.label, ab.value)},
					{Fixed(cb.label, cb.value), Fixed(rb.label, rb.value), Varying()},
				}
				for _, key := range keys {
					if _, done := c.Groups[key]; done {
						continue // wildcard keys repeat across bucket combos
					}
					if err = c.selectPoints(key, cra); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return c, nil
}

// selectPoints collects the indices matching all concrete slots of key, then
// orders them along the varying axis. Duplicate coordinates along the
// varying axis would make the plot ordering ambiguous and are an error.
func (c *Classification) selectPoints(key Key, cra [][3]float64) (err error) {
	var (
		ids   []int
		slots = key.Slots()
	)
	for i, p := range cra {
		match := true
		for dim, s := range slots {
			if s.IsVarying() {
				continue
			}
			if !isClose(p[dim], s.Value) {
				match = false
				break
			}
		}
		if match {
			ids = append(ids, i)
		}
	}
	if len(ids) == 0 {
		c.Empty = append(c.Empty, key)
		return nil
	}

	dim := key.VaryingAxis()
	if dim < 0 {
		c.Groups[key] = ids
		return nil
	}
	sort.Slice(ids, func(a, b int) bool {
		return cra[ids[a]][dim] < cra[ids[b]][dim]
	})
	crd := make([]float64, len(ids))
	for i, id := range ids {
		crd[i] = cra[id][dim]
	}
	for i := 1; i < len(crd); i++ {
		if crd[i] == crd[i-1] {
			return fmt.Errorf("coordinates not unique along axis %d of %s: %v",
				dim, key, crd[i])
		}
	}
	c.Groups[key] = ids
	c.Coords[key] = crd
	return nil
}

// Find addresses a classified key by slot labels, ":" matching the varying
// slot. Mirrors the (cir, rad, axi) tuple addressing of the plot layer.
func (c *Classification) Find(cir, rad, axi string) (key Key, ok bool) {
	for k := range c.Groups {
		if k.Cir.String() == cir && k.Rad.String() == rad && k.Axi.String() == axi {
			return k, true
		}
	}
	return Key{}, false
}

// SortedKeys returns the classified keys in a stable order, for
// deterministic logs and reports.
func (c *Classification) SortedKeys() (keys []Key) {
	for k := range c.Groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return
}
