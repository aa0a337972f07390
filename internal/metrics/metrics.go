// Package metrics implements session metrics fed by journey events.
package metrics

import "github.com/san-kum/qjourney/internal/journey"

// Defaults returns a fresh set of the standard session metrics.
func Defaults() []journey.Metric {
	return []journey.Metric{
		NewTicks(),
		NewStageTransitions(),
		NewStepDwell(),
	}
}

// Values collects every metric's current value by name.
func Values(ms []journey.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
