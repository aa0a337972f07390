package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/qjourney/internal/config"
	"github.com/san-kum/qjourney/internal/journey"
	"github.com/san-kum/qjourney/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMESSAGE\tTIME\tDURATION\tEVENTS\tSAVED\tPRESET")

	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%q\t%s\t%.2fs\t%d\t%.1f%%\t%s\n",
			run.ID,
			run.Message,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Events,
			journey.PercentSaved(run.Stats),
			p,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTimeline(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("message: %q (%s)\n", meta.Message, meta.Charset)
	fmt.Printf("bits: %s\n", meta.Bits)
	fmt.Printf("events: %d over %.2fs\n\n", len(rows), meta.Duration)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tENTERED\tDWELL")
	dwell := StepDwell(rows, time.Duration(meta.Duration*float64(time.Second)))
	for _, d := range dwell {
		fmt.Fprintf(w, "%d\t%s\t%.2fs\t%.2fs\n", d.Step+1, d.Name, d.Entered.Seconds(), d.Dwell.Seconds())
	}
	w.Flush()

	if len(meta.Metrics) > 0 {
		fmt.Println()
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-20s %.2f\n", name, meta.Metrics[name])
		}
	}

	fmt.Println()
	graph := asciigraph.Plot(Position(rows),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("journey position (step + panel progress) per event"),
	)
	fmt.Println(graph)
	return nil
}

// Visit is one stay on a step, as read back from a timeline.
type Visit struct {
	Step    int
	Name    string
	Entered time.Duration
	Dwell   time.Duration
}

// StepDwell splits a timeline into step visits. The last visit lasts until
// end.
func StepDwell(rows []storage.Row, end time.Duration) []Visit {
	var visits []Visit
	for _, r := range rows {
		if r.Kind != journey.EventStep.String() {
			continue
		}
		if n := len(visits); n > 0 {
			visits[n-1].Dwell = r.Time - visits[n-1].Entered
		}
		visits = append(visits, Visit{Step: r.Step, Name: r.StepName, Entered: r.Time})
	}
	if n := len(visits); n > 0 {
		visits[n-1].Dwell = max(end-visits[n-1].Entered, 0)
	}
	return visits
}

// Position maps each row to the step index plus the fraction of the
// current progress stage, so a journey reads as a rising staircase.
func Position(rows []storage.Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = float64(r.Step)
		if r.Limit > 0 {
			out[i] += float64(r.Progress) / float64(r.Limit) * 0.9
		}
	}
	return out
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHOLD\tANIMATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%v\t%v\n", name, cfg.Hold, AnimationTime(cfg))
	}
	return w.Flush()
}

// AnimationTime sums the stage durations of every step's panel, excluding
// holds and per-symbol scaling.
func AnimationTime(cfg *config.Config) time.Duration {
	var total time.Duration
	for _, s := range cfg.Steps {
		total += cfg.Panels[s.Panel].TotalDuration()
	}
	return total
}
