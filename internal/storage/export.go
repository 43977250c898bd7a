package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type ExportData struct {
	Run       RunMetadata `json:"run"`
	Radii     []float64   `json:"radii_m"`
	Bulge     []float64   `json:"bulge"`
	Disk      []float64   `json:"disk"`
	Total     []float64   `json:"total"`
	Density   [][]float64 `json:"density"`
	Potential [][]float64 `json:"potential,omitempty"`
}

// ExportJSON writes the metadata, profile and fields of a run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	curves, err := s.LoadProfile(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:   *meta,
		Radii: curves.Radii,
		Bulge: curves.Bulge,
		Disk:  curves.Disk,
		Total: curves.Total,
	}

	for _, name := range []string{FieldDensity, FieldPotential} {
		if !meta.HasField(name) {
			continue
		}
		f, err := s.LoadField(runID, name)
		if err != nil {
			return err
		}
		rows := make([][]float64, f.Rows)
		for r := range rows {
			rows[r] = f.Row(r)
		}
		if name == FieldDensity {
			data.Density = rows
		} else {
			data.Potential = rows
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies the stored CSV of a field ("density", "potential" or
// "profile") to w.
func (s *Store) ExportCSV(w io.Writer, runID, name string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	file := profileFile
	if name != "profile" {
		if !meta.HasField(name) {
			return fmt.Errorf("storage: run %s has no %s field", runID, name)
		}
		file = name + ".csv"
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, file))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
