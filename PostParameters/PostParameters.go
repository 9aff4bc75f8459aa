package PostParameters

import (
	"fmt"
	"os"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML run parameter file. The solver works in
// the kg-mm-s unit system; scales convert to the clinical reporting units.
type PostParameters struct {
	Title         string             `yaml:"Title"`
	Pattern       string             `yaml:"Pattern"`
	StartStep     int                `yaml:"StartStep"`
	StepsPerBeat  int                `yaml:"StepsPerBeat"`
	Fields        []string           `yaml:"Fields"`
	Scales        map[string]float64 `yaml:"Scales"`
	Labels        map[string]string  `yaml:"Labels"`
	WallThreshold float64            `yaml:"WallThreshold"`
}

// Defaults returns the parameter set used when no file is supplied:
// pressure reported in mmHg, WSS in dyne/cm2, averaging from step 96 (the
// final cycle of a four-cycle run at 32 steps per beat).
func Defaults() PostParameters {
	return PostParameters{
		Title:        "Pulsatile flow post-processing",
		Pattern:      "steady_*.vtk",
		StartStep:    96,
		StepsPerBeat: 32,
		Fields:       []string{"pressure", "velocity", "wss"},
		Scales: map[string]float64{
			"pressure": 1.0 / 0.1333, // kg/(mm·s²) to mmHg
			"wss":      10000.0,      // kg/(mm·s²) to dyne/cm²
		},
		Labels: map[string]string{
			"pressure": "Pressure [mmHg]",
			"velocity": "Velocity u [mm/s]",
			"wss":      "WSS [dyne/cm²]",
			"traction": "Traction [kg/(mm·s²)]",
		},
		WallThreshold: 1.0e-10,
	}
}

func (pp *PostParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, pp)
}

// Load reads a parameter file over the defaults.
func Load(path string) (pp PostParameters, err error) {
	pp = Defaults()
	if len(path) == 0 {
		return
	}
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	err = pp.Parse(data)
	return
}

// Scale returns the unit scale for a field, 1.0 when none is configured.
func (pp *PostParameters) Scale(field string) float64 {
	if s, ok := pp.Scales[field]; ok {
		return s
	}
	return 1.0
}

// Label returns the axis label for a field.
func (pp *PostParameters) Label(field string) string {
	if l, ok := pp.Labels[field]; ok {
		return l
	}
	return field
}

func (pp *PostParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", pp.Title)
	fmt.Printf("[%s]\t\t= Pattern\n", pp.Pattern)
	fmt.Printf("%8d\t\t= StartStep\n", pp.StartStep)
	fmt.Printf("%8d\t\t= StepsPerBeat\n", pp.StepsPerBeat)
	fmt.Printf("%v\t= Fields\n", pp.Fields)
	fmt.Printf("%8.2e\t\t= WallThreshold\n", pp.WallThreshold)
	keys := make([]string, 0, len(pp.Scales))
	for k := range pp.Scales {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Scales[%s] = %v\n", key, pp.Scales[key])
	}
}
