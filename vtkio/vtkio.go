package vtkio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Array is one point-indexed data array from a snapshot file, stored
// point-major: point i occupies Data[i*Components : (i+1)*Components].
type Array struct {
	Components int
	Data       []float64
}

// Tuple returns the components of point i.
func (a *Array) Tuple(i int) []float64 {
	return a.Data[i*a.Components : (i+1)*a.Components]
}

// NumTuples returns the number of points covered by the array.
func (a *Array) NumTuples() int {
	return len(a.Data) / a.Components
}

// Snapshot holds one timestep of solver output: the mesh point coordinates
// and the point-data arrays attached to them.
type Snapshot struct {
	Path   string
	Points [][3]float64
	Arrays map[string]*Array
	// names in file declaration order, for inspection output
	ArrayOrder []string
}

func (s *Snapshot) NumPoints() int {
	return len(s.Points)
}

// Array looks up a point-data array by name.
func (s *Snapshot) Array(name string) (a *Array, ok bool) {
	a, ok = s.Arrays[name]
	return
}

// HasArray reports whether the snapshot carries the named point-data array.
func (s *Snapshot) HasArray(name string) bool {
	_, ok := s.Arrays[name]
	return ok
}

// List globs dir/pattern and returns the matches in lexicographic order.
// Zero-padded numeric suffixes make this chronological order.
func List(dir, pattern string) (files []string, err error) {
	files, err = filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no results found matching %s",
			filepath.Join(dir, pattern))
	}
	sort.Strings(files)
	return files, nil
}

type tokens struct {
	words []string
	pos   int
	path  string
}

func (tk *tokens) next() (w string, err error) {
	if tk.pos >= len(tk.words) {
		return "", fmt.Errorf("%s: unexpected end of file", tk.path)
	}
	w = tk.words[tk.pos]
	tk.pos++
	return
}

func (tk *tokens) nextInt() (n int, err error) {
	var w string
	if w, err = tk.next(); err != nil {
		return
	}
	if n, err = strconv.Atoi(w); err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", tk.path, w)
	}
	return
}

func (tk *tokens) nextFloat() (v float64, err error) {
	var w string
	if w, err = tk.next(); err != nil {
		return
	}
	if v, err = strconv.ParseFloat(w, 64); err != nil {
		return 0, fmt.Errorf("%s: invalid float %q", tk.path, w)
	}
	return
}

func (tk *tokens) floats(n int) (vals []float64, err error) {
	vals = make([]float64, n)
	for i := 0; i < n; i++ {
		if vals[i], err = tk.nextFloat(); err != nil {
			return nil, err
		}
	}
	return
}

func (tk *tokens) peek() (w string, ok bool) {
	if tk.pos >= len(tk.words) {
		return "", false
	}
	return tk.words[tk.pos], true
}

// Read parses a legacy-ASCII VTK file into a Snapshot. The subset read is
// what the flow solver writes: POINTS, POINT_DATA with SCALARS / VECTORS /
// FIELD arrays. Topology sections (CELLS, CELL_TYPES, CELL_DATA) are
// skipped. Binary files are rejected.
func Read(path string) (s *Snapshot, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.SplitN(string(raw), "\n", 5)
	if len(lines) < 5 {
		return nil, fmt.Errorf("%s: truncated VTK header", path)
	}
	if !strings.HasPrefix(lines[0], "# vtk DataFile") {
		return nil, fmt.Errorf("%s: not a legacy VTK file", path)
	}
	// lines[1] is the free-form title
	format := strings.TrimSpace(lines[2])
	if format != "ASCII" {
		return nil, fmt.Errorf("%s: unsupported format %q (ASCII only)", path, format)
	}
	dataset := strings.Fields(lines[3])
	if len(dataset) != 2 || dataset[0] != "DATASET" {
		return nil, fmt.Errorf("%s: malformed DATASET line", path)
	}

	tk := &tokens{words: strings.Fields(lines[4]), path: path}
	s = &Snapshot{
		Path:   path,
		Arrays: make(map[string]*Array),
	}

	var nPointData int
	for {
		w, ok := tk.peek()
		if !ok {
			break
		}
		tk.pos++
		switch w {
		case "POINTS":
			if err = readPoints(tk, s); err != nil {
				return nil, err
			}
		case "POINT_DATA":
			if nPointData, err = tk.nextInt(); err != nil {
				return nil, err
			}
			if nPointData != s.NumPoints() {
				return nil, fmt.Errorf("%s: POINT_DATA count %d != POINTS count %d",
					path, nPointData, s.NumPoints())
			}
		case "SCALARS":
			if err = readScalars(tk, s, nPointData); err != nil {
				return nil, err
			}
		case "VECTORS":
			if err = readVectors(tk, s, nPointData); err != nil {
				return nil, err
			}
		case "FIELD":
			if err = readField(tk, s, nPointData); err != nil {
				return nil, err
			}
		case "CELLS", "POLYGONS", "LINES":
			if err = skipCells(tk); err != nil {
				return nil, err
			}
		case "CELL_TYPES":
			var n int
			if n, err = tk.nextInt(); err != nil {
				return nil, err
			}
			tk.pos += n
		case "CELL_DATA":
			// remainder of the file is cell data, which we never consume
			tk.pos = len(tk.words)
		default:
			return nil, fmt.Errorf("%s: unexpected token %q", path, w)
		}
	}
	if s.NumPoints() == 0 {
		return nil, fmt.Errorf("%s: no POINTS section found", path)
	}
	return s, nil
}

func readPoints(tk *tokens, s *Snapshot) (err error) {
	var (
		n int
	)
	if n, err = tk.nextInt(); err != nil {
		return
	}
	if _, err = tk.next(); err != nil { // data type, e.g. "float"
		return
	}
	s.Points = make([][3]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			if s.Points[i][j], err = tk.nextFloat(); err != nil {
				return
			}
		}
	}
	return
}

func readScalars(tk *tokens, s *Snapshot, n int) (err error) {
	var (
		name, w string
		comps   = 1
	)
	if name, err = tk.next(); err != nil {
		return
	}
	if _, err = tk.next(); err != nil { // data type
		return
	}
	// optional component count, then LOOKUP_TABLE <name>
	if w, _ = tk.peek(); w != "LOOKUP_TABLE" {
		if comps, err = tk.nextInt(); err != nil {
			return
		}
	}
	if w, err = tk.next(); err != nil {
		return
	}
	if w != "LOOKUP_TABLE" {
		return fmt.Errorf("%s: SCALARS %s missing LOOKUP_TABLE", tk.path, name)
	}
	if _, err = tk.next(); err != nil { // table name
		return
	}
	return readArray(tk, s, name, comps, n)
}

func readVectors(tk *tokens, s *Snapshot, n int) (err error) {
	var name string
	if name, err = tk.next(); err != nil {
		return
	}
	if _, err = tk.next(); err != nil { // data type
		return
	}
	return readArray(tk, s, name, 3, n)
}

func readField(tk *tokens, s *Snapshot, n int) (err error) {
	var (
		nArrays int
	)
	if _, err = tk.next(); err != nil { // field data name
		return
	}
	if nArrays, err = tk.nextInt(); err != nil {
		return
	}
	for i := 0; i < nArrays; i++ {
		var (
			name         string
			comps, count int
		)
		if name, err = tk.next(); err != nil {
			return
		}
		if comps, err = tk.nextInt(); err != nil {
			return
		}
		if count, err = tk.nextInt(); err != nil {
			return
		}
		if count != n {
			return fmt.Errorf("%s: FIELD array %s has %d tuples, expected %d",
				tk.path, name, count, n)
		}
		if _, err = tk.next(); err != nil { // data type
			return
		}
		if err = readArray(tk, s, name, comps, n); err != nil {
			return
		}
	}
	return
}

func readArray(tk *tokens, s *Snapshot, name string, comps, n int) (err error) {
	if n == 0 {
		return fmt.Errorf("%s: array %s before POINT_DATA declaration", tk.path, name)
	}
	data, err := tk.floats(comps * n)
	if err != nil {
		return fmt.Errorf("%s: array %s: %w", tk.path, name, err)
	}
	s.Arrays[name] = &Array{Components: comps, Data: data}
	s.ArrayOrder = append(s.ArrayOrder, name)
	return nil
}

func skipCells(tk *tokens) (err error) {
	var nCells, size int
	if nCells, err = tk.nextInt(); err != nil {
		return
	}
	if size, err = tk.nextInt(); err != nil {
		return
	}
	_ = nCells
	tk.pos += size
	return
}

// Write emits a Snapshot in the same legacy-ASCII grammar Read accepts.
// Arrays with one component are written as SCALARS, three as VECTORS,
// anything else as a FIELD block. Used for regression fixtures.
func Write(path string, s *Snapshot) (err error) {
	var sb strings.Builder
	sb.WriteString("# vtk DataFile Version 3.0\n")
	sb.WriteString("hemopost snapshot\n")
	sb.WriteString("ASCII\n")
	sb.WriteString("DATASET UNSTRUCTURED_GRID\n")
	fmt.Fprintf(&sb, "POINTS %d float\n", len(s.Points))
	for _, p := range s.Points {
		fmt.Fprintf(&sb, "%.10e %.10e %.10e\n", p[0], p[1], p[2])
	}
	fmt.Fprintf(&sb, "POINT_DATA %d\n", len(s.Points))

	names := s.ArrayOrder
	if len(names) == 0 {
		for name := range s.Arrays {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		a := s.Arrays[name]
		switch a.Components {
		case 1:
			fmt.Fprintf(&sb, "SCALARS %s float 1\nLOOKUP_TABLE default\n", name)
		case 3:
			fmt.Fprintf(&sb, "VECTORS %s float\n", name)
		default:
			fmt.Fprintf(&sb, "FIELD FieldData 1\n%s %d %d float\n",
				name, a.Components, a.NumTuples())
		}
		for i := 0; i < a.NumTuples(); i++ {
			t := a.Tuple(i)
			for j, v := range t {
				if j > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%.10e", v)
			}
			sb.WriteByte('\n')
		}
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
