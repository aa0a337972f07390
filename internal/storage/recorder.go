package storage

import (
	"time"

	"github.com/san-kum/qjourney/internal/journey"
	"github.com/san-kum/qjourney/internal/metrics"
)

// Recorder collects a session's events as timeline rows.
type Recorder struct {
	rows []Row
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) OnEvent(e journey.Event) {
	r.rows = append(r.rows, RowFromEvent(e))
}

func (r *Recorder) Rows() []Row {
	return r.rows
}

// Record runs s headlessly to its end with a recorder attached and returns the
// metadata describing the run. The timeline opens with a row for the step
// active at the start. The session must have autoplay enabled.
func Record(s *journey.Session, limit time.Duration) (RunMetadata, []Row, error) {
	rec := NewRecorder()
	st := s.Frame().State
	rec.rows = append(rec.rows, Row{
		Time:     s.Now(),
		Kind:     journey.EventStep.String(),
		Step:     st.Index,
		StepName: st.Name,
		Panel:    st.Panel,
		Done:     st.PanelDone(),
	})
	s.AddObserver(rec)
	ms := metrics.Defaults()
	for _, m := range ms {
		s.AddMetric(m)
	}

	if err := s.RunToEnd(limit); err != nil {
		return RunMetadata{}, nil, err
	}

	a := s.Artifacts()
	meta := RunMetadata{
		Message:  a.Message,
		Charset:  a.Policy.String(),
		Duration: s.Now().Seconds(),
		Steps:    s.Wizard().Count(),
		Stats:    a.Stats,
		Bits:     a.Bits,
		Metrics:  metrics.Values(ms),
	}
	return meta, rec.Rows(), nil
}
