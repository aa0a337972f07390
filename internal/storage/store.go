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

	"github.com/san-kum/qjourney/internal/codec"
	"github.com/san-kum/qjourney/internal/journey"
)

const (
	metadataFile = "metadata.json"
	timelineFile = "timeline.csv"
)

var timelineHeader = []string{"time", "kind", "step", "step_name", "panel", "stage", "progress", "limit", "done"}

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
	ID        string             `json:"id"`
	Message   string             `json:"message"`
	Charset   string             `json:"charset"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Events    int                `json:"events"`
	Stats     codec.Stats        `json:"stats"`
	Bits      string             `json:"bits"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Row is one timeline.csv record.
type Row struct {
	Time     time.Duration
	Kind     string
	Step     int
	StepName string
	Panel    string
	Stage    string
	Progress int
	Limit    int
	Done     bool
}

// RowFromEvent converts a session event to a timeline row.
func RowFromEvent(e journey.Event) Row {
	return Row{
		Time:     e.Time,
		Kind:     e.Kind.String(),
		Step:     e.Step,
		StepName: e.StepName,
		Panel:    e.Panel,
		Stage:    e.Stage,
		Progress: e.Progress,
		Limit:    e.Limit,
		Done:     e.Done,
	}
}

// Save writes meta and rows under a fresh run directory and returns its ID.
// meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, rows []Row) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("run_%d", now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 2; ; i++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("run_%d_%d", now.Unix(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Events = len(rows)

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

	csvFile, err := os.Create(filepath.Join(runDir, timelineFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(timelineHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatFloat(r.Time.Seconds(), 'f', 3, 64),
			r.Kind,
			strconv.Itoa(r.Step),
			r.StepName,
			r.Panel,
			r.Stage,
			strconv.Itoa(r.Progress),
			strconv.Itoa(r.Limit),
			strconv.FormatBool(r.Done),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
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
		if !runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].Timestamp.Before(runs[j].Timestamp)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTimeline reads a run's timeline. Malformed rows are skipped.
func (s *Store) LoadTimeline(runID string) ([]Row, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, timelineFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Row{}, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(timelineHeader) {
			continue
		}
		secs, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		step, err1 := strconv.Atoi(rec[2])
		progress, err2 := strconv.Atoi(rec[6])
		limit, err3 := strconv.Atoi(rec[7])
		done, err4 := strconv.ParseBool(rec[8])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		rows = append(rows, Row{
			Time:     time.Duration(secs * float64(time.Second)).Round(time.Millisecond),
			Kind:     rec[1],
			Step:     step,
			StepName: rec[3],
			Panel:    rec[4],
			Stage:    rec[5],
			Progress: progress,
			Limit:    limit,
			Done:     done,
		})
	}
	return rows, nil
}
