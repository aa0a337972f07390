package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/qjourney/internal/journey"
)

type ExportData struct {
	journey.Export
	Steps   []journey.StepSpec `json:"steps"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func NewExportData(s *journey.Session, metrics map[string]float64) ExportData {
	specs := make([]journey.StepSpec, 0, s.Wizard().Count())
	for _, st := range s.Wizard().Steps() {
		specs = append(specs, journey.StepSpec{Title: st.Name, Panel: st.Panel})
	}
	return ExportData{
		Export:  s.Artifacts().Export(),
		Steps:   specs,
		Metrics: metrics,
	}
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
