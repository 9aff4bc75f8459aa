package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes one row per timestep with a column for each tracked
// statistic. Missing values render as empty cells.
func (e *Emitter) WriteCSV(fname string, columns []string,
	rows []map[string]float64) (err error) {
	f, err := os.Create(filepath.Join(e.OutDir, fname))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"timestep"}, columns...)
	if err = w.Write(header); err != nil {
		return err
	}
	for i, row := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, strconv.Itoa(i))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				rec = append(rec, "")
			}
		}
		if err = w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return err
	}
	fmt.Printf("Exported results to %s\n", filepath.Join(e.OutDir, fname))
	return nil
}

// RunInfo records what a run actually processed, for the description file.
type RunInfo struct {
	InputDir  string
	Pattern   string
	FirstFile string
	LastFile  string
	NumSteps  int
	StartStep int
	Locations []string
	EmptyKeys []string
}

// WriteRunDescription writes a per-run text file so results stay auditable:
// which files went in, the averaging window, and which locations matched.
func (e *Emitter) WriteRunDescription(fname string, info RunInfo) (err error) {
	f, err := os.Create(filepath.Join(e.OutDir, fname))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "%s\n", e.Params.Title)
	fmt.Fprintf(f, "input dir:      %s\n", info.InputDir)
	fmt.Fprintf(f, "pattern:        %s\n", info.Pattern)
	fmt.Fprintf(f, "snapshots:      %d (%s .. %s)\n", info.NumSteps,
		filepath.Base(info.FirstFile), filepath.Base(info.LastFile))
	fmt.Fprintf(f, "window:         steps %d..%d (%d steps averaged)\n",
		info.StartStep, info.NumSteps-1, info.NumSteps-info.StartStep)
	fmt.Fprintf(f, "wall threshold: %.2e\n", e.Params.WallThreshold)
	fmt.Fprintf(f, "\nlocations:\n")
	for _, loc := range info.Locations {
		fmt.Fprintf(f, "  %s\n", loc)
	}
	if len(info.EmptyKeys) > 0 {
		fmt.Fprintf(f, "\nlocations with no matching points:\n")
		for _, loc := range info.EmptyKeys {
			fmt.Fprintf(f, "  %s\n", loc)
		}
	}
	return nil
}
