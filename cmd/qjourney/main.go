package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/qjourney/internal/config"
	"github.com/san-kum/qjourney/internal/journey"
	"github.com/san-kum/qjourney/internal/telemetry"
	"github.com/san-kum/qjourney/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logFile  string
	// Journey configuration
	configFile string
	preset     string
	message    string
	charset    string
	frameRate  int
	theme      string
	hold       time.Duration
	// Command options
	plain      bool
	jsonOut    bool
	outFile    string
	svgFile    string
	chartFile  string
	limit      time.Duration
	verbose    bool
	huffSource string
)

// main registers the commands and runs the root command, which opens the
// interactive journey when no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "qjourney",
		Short:         "walk a message through binary, huffman and a simulated quantum channel",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".qjourney", "data directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&message, "message", config.DefaultMessage, "message to send")
	pf.StringVar(&charset, "charset", config.DefaultCharset, "out-of-range policy (reject, clamp, utf8)")
	pf.IntVar(&frameRate, "fps", config.DefaultFrameRate, "frames per second")
	pf.DurationVar(&hold, "hold", 0, "autoplay: time a finished step stays on screen (0 disables)")
	rootCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play the journey as plain terminal output",
		RunE:  runPlay,
	}
	playCmd.Flags().BoolVar(&plain, "plain", false, "log events line by line instead of redrawing")

	recordCmd := &cobra.Command{
		Use:   "record [message...]",
		Short: "run the journey headlessly and save its timeline, one run per message",
		RunE:  runRecord,
	}
	recordCmd.Flags().DurationVar(&limit, "limit", 10*time.Minute, "virtual time limit")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "replay a scripted walk and check its expectations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the frame after every action")

	encodeCmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "show the binary and huffman encodings of a text",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEncode,
	}
	encodeCmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")

	decodeCmd := &cobra.Command{
		Use:   "decode [groups...]",
		Short: "decode 8-bit groups, or a huffman stream with --huffman",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDecode,
	}
	decodeCmd.Flags().StringVar(&huffSource, "huffman", "", "decode the argument as a huffman stream using the code built from this text")

	treeCmd := &cobra.Command{
		Use:   "tree [text]",
		Short: "print the huffman tree of a text",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTree,
	}
	treeCmd.Flags().StringVar(&svgFile, "svg", "", "also write the tree as svg")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export the codec artifacts of the message as JSON",
		RunE:  runExport,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&chartFile, "chart", "", "also write the cumulative bits chart as svg")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(playCmd, recordCmd, scriptCmd, encodeCmd, decodeCmd, treeCmd,
		exportCmd, listCmd, showCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("message") {
		cfg.Message = message
	}
	if flags.Changed("charset") {
		cfg.Charset = charset
	}
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if flags.Changed("hold") {
		cfg.Hold = hold
	}
	if flags.Lookup("theme") != nil && flags.Changed("theme") {
		cfg.Theme = theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the slog logger. Without --log-file, logs go to stderr,
// or nowhere when stderr belongs to the full-screen interface.
func newLogger(interactive bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	case interactive:
		w = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	sess   *journey.Session
	tracer *telemetry.Tracer
	close  func()
}

// setup loads the configuration, opens a session and attaches tracing.
func setup(ctx context.Context, cmd *cobra.Command, interactive bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return setupWith(ctx, cfg, interactive)
}

func setupWith(ctx context.Context, cfg *config.Config, interactive bool) (*app, error) {
	logger, closeLog, err := newLogger(interactive)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SessionOptions(logger)
	if err != nil {
		closeLog()
		return nil, err
	}
	sess, err := journey.New(opts)
	if err != nil {
		closeLog()
		return nil, err
	}
	tracer, err := telemetry.NewOTLP(ctx)
	if err != nil {
		logger.Warn("tracing disabled", "err", err)
		tracer = nil
	}
	tracer.Attach(ctx, sess)
	logger.Debug("session ready",
		"message", cfg.Message,
		"charset", cfg.Charset,
		"steps", len(cfg.Steps),
		"hold", cfg.Hold,
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		sess:   sess,
		tracer: tracer,
		close: func() {
			sess.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown", "err", err)
			}
			closeLog()
		},
	}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.Context(), cmd, true)
	if err != nil {
		return err
	}
	defer rt.close()

	return viz.Run(rt.sess, viz.Options{
		FrameRate: rt.cfg.FrameRate,
		Theme:     rt.cfg.Theme,
		AutoHold:  rt.cfg.Hold,
		Logger:    rt.logger,
	})
}
