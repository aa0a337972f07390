package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/qjourney/internal/automation"
	"github.com/san-kum/qjourney/internal/journey"
	"github.com/san-kum/qjourney/internal/storage"
	"github.com/san-kum/qjourney/internal/tui"
)

// defaultPlayHold keeps headless playback moving when no hold is configured;
// static steps would otherwise never finish.
const defaultPlayHold = 2 * time.Second

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rt, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()
	if rt.sess.Hold() <= 0 {
		rt.sess.SetHold(defaultPlayHold)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := tui.NewLiveRenderer(rt.sess, os.Stdout, rt.cfg.FrameRate, !plain)
	r.OnFinish(cancel)
	rt.sess.AddObserver(r)
	r.Start()
	defer r.Stop()

	err = rt.sess.Run(ctx, rt.cfg.FrameInterval())
	if errors.Is(err, context.Canceled) {
		if !plain {
			r.Draw()
		}
		return nil
	}
	return err
}

func runRecord(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return recordMessages(cmd, args)
	}

	rt, err := setup(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()
	if rt.sess.Hold() <= 0 {
		rt.sess.SetHold(defaultPlayHold)
	}

	meta, rows, err := storage.Record(rt.sess, limit)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return saveRecording(rt.logger, storage.Recording{Meta: meta, Rows: rows})
}

// recordMessages records one run per message concurrently.
func recordMessages(cmd *cobra.Command, messages []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := make([]journey.Options, len(messages))
	for i, msg := range messages {
		c := cfg.Clone()
		c.Message = msg
		if c.Hold <= 0 {
			c.Hold = defaultPlayHold
		}
		o, err := c.SessionOptions(logger.With("run", i))
		if err != nil {
			return fmt.Errorf("message %q: %w", msg, err)
		}
		opts[i] = o
	}

	recs, err := storage.RecordAll(cmd.Context(), opts, limit)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	for _, rec := range recs {
		if err := saveRecording(logger, rec); err != nil {
			return err
		}
	}
	return nil
}

func saveRecording(logger *slog.Logger, rec storage.Recording) error {
	rec.Meta.Preset = preset

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	id, err := store.Save(rec.Meta, rec.Rows)
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", id, "events", len(rec.Rows), "virtual_s", rec.Meta.Duration)
	fmt.Printf("saved: %s  %q  %.2fs, %d events, %.1f%% saved by huffman\n",
		id, rec.Meta.Message, rec.Meta.Duration, len(rec.Rows), journey.PercentSaved(rec.Meta.Stats))
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Preset != "" && !cmd.Flags().Changed("preset") {
		preset = sc.Preset
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if sc.Message != "" && !cmd.Flags().Changed("message") {
		cfg.Message = sc.Message
	}

	rt, err := setupWith(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer rt.close()

	if sc.Name != "" {
		fmt.Printf("scenario: %s\n", sc.Name)
	}
	if !verbose {
		rt.sess.AddObserver(journey.ObserverFunc(func(e journey.Event) {
			fmt.Println(tui.EventLine(e))
		}))
	}
	err = automation.Run(cmd.Context(), sc, rt.sess, func(a automation.Action, f journey.Frame) {
		rt.logger.Debug("action", "do", a.Do, "step", f.State.Index, "t", f.Time)
		if !verbose {
			return
		}
		fmt.Printf("> %s\n", a.Do)
		for _, line := range tui.FrameLines(f) {
			fmt.Println("  " + line)
		}
	})
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d actions\n", len(sc.Actions))
	return nil
}
