package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/galpot/internal/config"
	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/grid"
	"github.com/san-kum/galpot/internal/pipeline"
)

// ErrRunNotFound indicates a run id with no stored metadata.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	profileFile  = "profile.csv"

	FieldDensity   = "density"
	FieldPotential = "potential"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// FieldStats summarizes one stored field.
type FieldStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Sum float64 `json:"sum"`
}

type RunMetadata struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Timestamp time.Time             `json:"timestamp"`
	Config    config.Config         `json:"config"`
	Method    string                `json:"method,omitempty"`
	Points    int                   `json:"points"`
	ElapsedMS float64               `json:"elapsed_ms"`
	Fields    map[string]FieldStats `json:"fields"`
}

// HasField reports whether the run stored the named field.
func (m *RunMetadata) HasField(name string) bool {
	_, ok := m.Fields[name]
	return ok
}

// Save persists a pipeline result under a fresh run id.
func (s *Store) Save(res *pipeline.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", res.Config.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      res.Config.Name,
		Timestamp: now,
		Config:    res.Config,
		Method:    res.Method,
		Points:    res.Grid.Len(),
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
		Fields:    make(map[string]FieldStats),
	}

	fields := map[string]*grid.Field{FieldDensity: res.Density}
	if res.HasPotential() {
		fields[FieldPotential] = res.Potential
	}
	for name, f := range fields {
		if err := writeField(filepath.Join(runDir, name+".csv"), f); err != nil {
			return "", err
		}
		meta.Fields[name] = FieldStats{Min: f.Min(), Max: f.Max(), Sum: f.Sum()}
	}

	if err := writeProfile(filepath.Join(runDir, profileFile), res.Curves); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeField stores one row of values per CSV record, lowest y first.
func writeField(path string, f *grid.Field) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	record := make([]string, f.Cols)
	for row := 0; row < f.Rows; row++ {
		for col, v := range f.Row(row) {
			record[col] = formatFloat(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeProfile(path string, c *galaxy.Curves) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"radius_m", "bulge", "disk", "total"}); err != nil {
		return err
	}
	for i := range c.Radii {
		row := []string{
			formatFloat(c.Radii[i]),
			formatFloat(c.Bulge[i]),
			formatFloat(c.Disk[i]),
			formatFloat(c.Total[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadField reads a stored field back with the extent of the run's grid.
func (s *Store) LoadField(runID, name string) (*grid.Field, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	if !meta.HasField(name) {
		return nil, fmt.Errorf("storage: run %s has no %s field", runID, name)
	}

	records, err := readCSV(filepath.Join(s.baseDir, runID, name+".csv"))
	if err != nil {
		return nil, err
	}

	rows := len(records)
	cols := 0
	if rows > 0 {
		cols = len(records[0])
	}
	data := make([]float64, 0, rows*cols)
	for i, record := range records {
		if len(record) != cols {
			return nil, fmt.Errorf("storage: %s row %d has %d values, want %d", name, i, len(record), cols)
		}
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", name, i, err)
			}
			data = append(data, v)
		}
	}

	p := meta.Config.Grid.PixelAxisSize
	return grid.NewField(rows, cols, data, grid.Extent{XMin: -p, XMax: p, YMin: -p, YMax: p})
}

// LoadProfile reads the stored profile curves.
func (s *Store) LoadProfile(runID string) (*galaxy.Curves, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}
	records, err := readCSV(filepath.Join(s.baseDir, runID, profileFile))
	if err != nil {
		return nil, err
	}

	c := &galaxy.Curves{}
	for i := 1; i < len(records); i++ {
		if len(records[i]) != 4 {
			continue
		}
		var vals [4]float64
		for j := range vals {
			v, err := strconv.ParseFloat(records[i][j], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: profile row %d: %w", i, err)
			}
			vals[j] = v
		}
		c.Radii = append(c.Radii, vals[0])
		c.Bulge = append(c.Bulge, vals[1])
		c.Disk = append(c.Disk, vals[2])
		c.Total = append(c.Total, vals[3])
	}
	return c, nil
}
