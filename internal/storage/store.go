// Package storage keeps headless trace runs on disk, one directory per run
// holding metadata.json and samples.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/watersim/internal/trace"
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

type RunMetadata struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Timestamp       time.Time `json:"timestamp"`
	PeriodMs        float64   `json:"period_ms"`
	Ticks           int       `json:"ticks"`
	TrackLength     int       `json:"track_length"`
	TiltSensitivity float32   `json:"tilt_sensitivity"`
	Friction        float32   `json:"friction"`
	WallDamping     float32   `json:"wall_damping"`
	WallHits        int       `json:"wall_hits"`
	PeakSpeed       float32   `json:"peak_speed"`
}

// Save writes rec under a fresh run id. source names the tilt input, e.g.
// "demo" or "constant".
func (s *Store) Save(source string, rec *trace.Record) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", source, now.UnixMilli())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Source:          source,
		Timestamp:       now,
		PeriodMs:        float64(rec.Period) / float64(time.Millisecond),
		Ticks:           len(rec.Samples),
		TrackLength:     rec.Params.TrackLength,
		TiltSensitivity: rec.Params.TiltSensitivity,
		Friction:        rec.Params.Friction,
		WallDamping:     rec.Params.WallDamping,
		WallHits:        rec.WallHits,
		PeakSpeed:       rec.PeakSpeed,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := rec.WriteCSV(csvFile); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns saved runs oldest first. Directories without readable
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRecord rebuilds a trace record from a saved run.
func (s *Store) LoadRecord(runID string) (*trace.Record, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	rec := &trace.Record{
		Period:    time.Duration(meta.PeriodMs * float64(time.Millisecond)),
		WallHits:  meta.WallHits,
		PeakSpeed: meta.PeakSpeed,
	}
	rec.Params.TrackLength = meta.TrackLength
	rec.Params.TiltSensitivity = meta.TiltSensitivity
	rec.Params.Friction = meta.Friction
	rec.Params.WallDamping = meta.WallDamping

	for i := 1; i < len(records); i++ {
		row := records[i]
		if len(row) < 5 {
			return nil, fmt.Errorf("storage: %s row %d has %d fields", runID, i, len(row))
		}
		tick, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", runID, i, err)
		}
		var vals [3]float32
		for j := range vals {
			v, err := strconv.ParseFloat(row[2+j], 32)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", runID, i, err)
			}
			vals[j] = float32(v)
		}
		rec.Samples = append(rec.Samples, trace.Sample{Tick: tick, Tilt: vals[0], Position: vals[1], Velocity: vals[2]})
	}
	return rec, nil
}
