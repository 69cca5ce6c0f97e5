package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/asciiplay/internal/anim"
	"github.com/san-kum/asciiplay/internal/config"
	"github.com/san-kum/asciiplay/internal/export"
	"github.com/san-kum/asciiplay/internal/palette"
	"github.com/san-kum/asciiplay/internal/player"
	"github.com/san-kum/asciiplay/internal/render"
	"github.com/san-kum/asciiplay/internal/terminal"
	"github.com/san-kum/asciiplay/internal/timing"
	"github.com/san-kum/asciiplay/internal/viz"
)

const (
	exitUsage    = 1
	exitLoad     = 2
	exitPlayback = 3
)

var (
	file           string
	noLoop         bool
	fps            float64
	noColor        bool
	forceTrueColor bool
	force256       bool
	preferFlicker  bool
	profile        string
	configFile     string
	saveConfig     string
	logLevel       string
	// snapshot
	frameIndex int
	outPath    string
	scale      float64
	width      int
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	Prefix:          "asciiplay",
})

// exitError carries the process exit status for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// main registers the player command and the inspection subcommands, then
// executes the root command. Option errors exit 1, load errors 2 and
// playback errors 3.
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Error(err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}

// newRootCmd builds the command tree. Registering the flags resets the
// package-level flag vars to their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "asciiplay [file]",
		Short:         "play an ASCII animation in the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("fps") {
				if err := timing.CheckFPS(fps); err != nil {
					return &exitError{code: exitUsage, err: err}
				}
			}
			return applyLogLevel(logLevel)
		},
		RunE: playAnimation,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Float64Var(&fps, "fps", 0, "override fps for frames without a duration")

	rootCmd.Flags().StringVarP(&file, "file", "f", config.DefaultFile, "path to animation JSON file")
	rootCmd.Flags().BoolVar(&noLoop, "no-loop", false, "play once then exit")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().BoolVar(&forceTrueColor, "force-truecolor", false, "force truecolor output (may not be supported)")
	rootCmd.Flags().BoolVar(&force256, "force-256", false, "force 256-color output (may not be supported)")
	rootCmd.Flags().BoolVar(&preferFlicker, "prefer-flicker", false, "clear the screen before every frame instead of drawing in place")
	rootCmd.Flags().StringVar(&profile, "profile", "", "use a named playback profile")
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved settings to this yaml file and exit")

	infoCmd := &cobra.Command{
		Use:   "info [file]",
		Short: "summarize an animation",
		Args:  cobra.ExactArgs(1),
		RunE:  showInfo,
	}

	timingCmd := &cobra.Command{
		Use:   "timing [file]",
		Short: "plot per-frame durations",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTiming,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [file]",
		Short: "export the frame timeline as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [file]",
		Short: "export the frame timeline as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [file]",
		Short: "render one frame to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&frameIndex, "frame", 0, "frame index")
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default stdout)")
	snapshotCmd.Flags().Float64Var(&scale, "scale", 16, "cell height in pixels")
	snapshotCmd.Flags().IntVar(&width, "width", 0, "fixed width in cells (default canvas width)")

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "list available playback profiles",
		Args:  cobra.NoArgs,
		RunE:  listProfiles,
	}

	rootCmd.AddCommand(infoCmd, timingCmd, exportJSONCmd, exportCSVCmd, snapshotCmd, profilesCmd)
	return rootCmd
}

func applyLogLevel(name string) error {
	level, err := log.ParseLevel(name)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	logger.SetLevel(level)
	return nil
}

// resolveSettings merges defaults, profile, config file and flags, in that
// order of increasing precedence.
func resolveSettings(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if profile != "" {
		cfg = config.GetProfile(profile)
		if cfg == nil {
			return nil, fmt.Errorf("unknown profile: %s (available: %v)", profile, config.ListProfiles())
		}
	}

	if configFile != "" {
		var err error
		if profile == "" {
			cfg, err = config.Load(configFile)
		} else {
			cfg, err = config.Merge(configFile, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.File = args[0]
	} else if flags.Changed("file") {
		cfg.File = file
	}
	if flags.Changed("no-loop") {
		cfg.Loop = !noLoop
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("no-color") {
		cfg.Color = !noColor
	}
	if forceTrueColor {
		cfg.ColorMode = palette.TrueColor.String()
	} else if force256 {
		cfg.ColorMode = palette.ANSI256.String()
	}
	if flags.Changed("prefer-flicker") {
		cfg.PreferFlicker = preferFlicker
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	// 0 leaves the rate unset, unless it was asked for on the command line.
	if cfg.FPS != 0 || flags.Changed("fps") {
		if err := timing.CheckFPS(cfg.FPS); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func playAnimation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd, args)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	if err := applyLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return &exitError{code: exitUsage, err: fmt.Errorf("failed to save config: %w", err)}
		}
		logger.Info("saved settings", "path", saveConfig)
		return nil
	}

	doc, err := anim.Load(cfg.File)
	if err != nil {
		return &exitError{code: exitLoad, err: err}
	}
	doc.BackfillDurations(cfg.FPS)

	opts, err := cfg.PlayerOptions(doc.Canvas.Width)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	if !terminal.IsTerminal(os.Stdout) {
		logger.Warn("stdout is not a terminal, escape sequences are written as-is")
	}

	p := player.New(os.Stdout, player.WithLogger(logger))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			// Restore before anything else runs; the loop notices the
			// cancellation within one nap.
			if err := p.Restore(); err != nil {
				logger.Error("failed to restore terminal", "err", err)
			}
			logger.Debug("interrupted", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Debug("loaded animation", "file", cfg.File, "frames", len(doc.Frames), "canvas_width", doc.Canvas.Width)

	if err := p.Play(ctx, doc.Frames, opts); err != nil {
		return &exitError{code: exitPlayback, err: err}
	}
	return nil
}

func loadDoc(path string) (*anim.Document, error) {
	doc, err := anim.Load(path)
	if err != nil {
		return nil, &exitError{code: exitLoad, err: err}
	}
	return doc, nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	doc, err := loadDoc(args[0])
	if err != nil {
		return err
	}

	durations := timing.Durations(doc.Frames, fps)
	stats := timing.Summarize(durations)

	maxW, maxH, colored := 0, 0, 0
	kinds := map[anim.ContentKind]int{}
	for i := range doc.Frames {
		f := &doc.Frames[i]
		maxW = max(maxW, render.Width(f))
		maxH = max(maxH, len(f.Lines))
		if len(render.ColorMap(f)) > 0 {
			colored++
		}
		kinds[f.Content.Kind]++
	}

	canvas := "auto"
	if doc.Canvas.Width > 0 {
		canvas = fmt.Sprintf("%d", doc.Canvas.Width)
	}

	fields := []viz.Field{
		viz.F("frames", stats.Frames),
		viz.F("canvas width", canvas),
		viz.F("max size", fmt.Sprintf("%dx%d", maxW, maxH)),
		viz.F("colored frames", colored),
		viz.F("content", fmt.Sprintf("%d lines, %d string, %d empty", kinds[anim.PlainLines], kinds[anim.JoinedString], kinds[anim.ContentNone])),
		viz.F("total", stats.Total.Round(time.Millisecond)),
		viz.F("frame time", fmt.Sprintf("%v .. %v", stats.Min.Round(time.Microsecond), stats.Max.Round(time.Microsecond))),
		viz.F("effective fps", fmt.Sprintf("%.2f", stats.EffectiveFPS)),
		viz.F("color mode", palette.Detect(palette.None, true)),
	}
	for k, v := range doc.Metadata {
		fields = append(fields, viz.F("meta."+k, v))
	}

	fmt.Println(viz.Report(args[0], fields))
	if len(durations) > 0 {
		fmt.Println(viz.Separator(70))
		fmt.Println(viz.Subtle.Render("durations ") + viz.SparklineChart(timing.Milliseconds(durations), 60))
	}

	if tw, th, ok := terminal.Size(os.Stdout); ok {
		needW := max(maxW, doc.Canvas.Width)
		if needW > tw || maxH > th {
			fmt.Println(viz.Warning.Render(fmt.Sprintf("animation (%dx%d) is larger than this terminal (%dx%d)", needW, maxH, tw, th)))
		}
	}
	return nil
}

func plotTiming(cmd *cobra.Command, args []string) error {
	doc, err := loadDoc(args[0])
	if err != nil {
		return err
	}

	if len(doc.Frames) == 0 {
		fmt.Println("no frames found in animation")
		return nil
	}

	durations := timing.Durations(doc.Frames, fps)
	data := timing.Milliseconds(durations)
	if len(data) == 1 {
		data = append(data, data[0])
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("frame duration (ms)"),
	)
	fmt.Println(graph)
	fmt.Println()

	stats := timing.Summarize(durations)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAMES\tTOTAL\tMIN\tMAX\tMEAN\tFPS")
	fmt.Fprintf(w, "%d\t%v\t%v\t%v\t%v\t%.2f\n",
		stats.Frames,
		stats.Total.Round(time.Millisecond),
		stats.Min.Round(time.Microsecond),
		stats.Max.Round(time.Microsecond),
		stats.Mean.Round(time.Microsecond),
		stats.EffectiveFPS,
	)
	return w.Flush()
}

// output opens outPath for writing, or returns stdout.
func output() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return exportTimeline(args[0], export.WriteJSON)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return exportTimeline(args[0], export.WriteCSV)
}

func exportTimeline(path string, write func(io.Writer, *export.Timeline) error) error {
	doc, err := loadDoc(path)
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := write(w, export.NewTimeline(path, doc, fps)); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func snapshot(cmd *cobra.Command, args []string) error {
	doc, err := loadDoc(args[0])
	if err != nil {
		return err
	}

	if frameIndex < 0 || frameIndex >= len(doc.Frames) {
		return fmt.Errorf("frame %d out of range (animation has %d frames)", frameIndex, len(doc.Frames))
	}

	w := width
	if w <= 0 {
		w = doc.Canvas.Width
	}
	svg := export.FrameToSVG(&doc.Frames[frameIndex], w, scale)

	out, closeFn, err := output()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, svg+"\n"); err != nil {
		closeFn()
		return err
	}
	if outPath != "" {
		logger.Info("wrote snapshot", "frame", frameIndex, "path", outPath)
	}
	return closeFn()
}

func listProfiles(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLOOP\tFPS\tCOLOR\tMODE\tFLICKER")

	for _, name := range config.ListProfiles() {
		p := config.GetProfile(name)
		rate := "auto"
		if p.FPS > 0 {
			rate = fmt.Sprintf("%.0f", p.FPS)
		}
		mode := p.ColorMode
		if mode == "" {
			mode = "auto"
		}
		fmt.Fprintf(w, "%s\t%v\t%s\t%v\t%s\t%v\n",
			viz.Title.Render(name), p.Loop, rate, p.Color, mode, p.PreferFlicker)
	}

	return w.Flush()
}
