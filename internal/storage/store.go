package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pvsim/internal/thermo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var csvHeader = []string{"step", "pressure", "volume", "work"}

// Store keeps recorded traces, one directory per trace.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Sample is one committed point of a trace. Work is cumulative.
type Sample struct {
	Step     int     `json:"step"`
	Pressure float64 `json:"pressure"`
	Volume   float64 `json:"volume"`
	Work     float64 `json:"work"`
}

type TraceMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Gas       GasInfo            `json:"gas"`
	Steps     int                `json:"steps"`
	Work      float64            `json:"work"`
	Metrics   map[string]float64 `json:"metrics"`
}

type GasInfo struct {
	R   float64 `json:"r"`
	N   float64 `json:"n"`
	DOF float64 `json:"dof"`
}

func gasInfo(g thermo.Gas) GasInfo {
	return GasInfo{R: g.R, N: g.N, DOF: g.DOF}
}

// Save writes a new trace and returns its id.
func (s *Store) Save(name string, gas thermo.Gas, samples []Sample, metrics map[string]float64) (string, error) {
	now := time.Now()
	id := fmt.Sprintf("%s_%d", name, now.UnixNano())
	dir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := TraceMetadata{
		ID:        id,
		Name:      name,
		Timestamp: now,
		Gas:       gasInfo(gas),
		Steps:     len(samples),
		Metrics:   metrics,
	}
	if len(samples) > 0 {
		meta.Work = samples[len(samples)-1].Work
	}

	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(dir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, samples); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}
	return id, nil
}

// List returns every readable trace, oldest first.
func (s *Store) List() ([]TraceMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TraceMetadata{}, nil
		}
		return nil, err
	}

	traces := make([]TraceMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		traces = append(traces, *meta)
	}

	sort.Slice(traces, func(i, j int) bool {
		return traces[i].Timestamp.Before(traces[j].Timestamp)
	})
	return traces, nil
}

func (s *Store) Load(id string) (*TraceMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta TraceMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("trace %s: %w", id, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(id string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// WriteCSV writes samples with a header row.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Step),
			strconv.FormatFloat(smp.Pressure, 'g', -1, 64),
			strconv.FormatFloat(smp.Volume, 'g', -1, 64),
			strconv.FormatFloat(smp.Work, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV wrote. Malformed rows are skipped.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(csvHeader) {
			continue
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		var vals [3]float64
		ok := true
		for i := range vals {
			if vals[i], err = strconv.ParseFloat(rec[i+1], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		samples = append(samples, Sample{Step: step, Pressure: vals[0], Volume: vals[1], Work: vals[2]})
	}
	return samples, nil
}
