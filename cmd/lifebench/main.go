// Package main is the CLI entry point for LifeBench.
// A command line tool for running and archiving Game of Life simulations.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"lifebench/internal/app/repository"
	"lifebench/internal/app/usecase"
	"lifebench/internal/domain/config"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
	"lifebench/internal/domain/pattern"
	"lifebench/internal/domain/report"
	"lifebench/internal/infra/database"
	dbrepo "lifebench/internal/infra/database/repository"
	"lifebench/internal/infra/gif"
	"lifebench/internal/infra/imageload"
	infrareport "lifebench/internal/infra/report"
	"lifebench/internal/infra/sysinfo"
)

const Version = "1.0.0"

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

func main() {
	if len(os.Args) < 2 {
		showHelp()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	// Commands that need no configuration or database.
	switch cmd {
	case "version", "-v", "--version":
		fmt.Printf("LifeBench CLI v%s\n", Version)
		return
	case "help", "-h", "--help":
		showHelp()
		return
	case "patterns":
		listPatterns()
		return
	case "show":
		if err := showPattern(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	a, err := newApp(context.Background(), quietFlag(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	var cmdErr error
	switch cmd {
	case "run":
		cmdErr = a.runSimulation(args)
	case "sweep":
		cmdErr = a.runSweep(args)
	case "history":
		cmdErr = a.listHistory(args)
	case "stats":
		cmdErr = a.showStats()
	case "export":
		cmdErr = a.exportRun(args)
	case "clear-history":
		cmdErr = a.clearHistory()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		showHelp()
		os.Exit(1)
	}

	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Printf(`LifeBench CLI v%s - Game of Life Simulation Bench

USAGE:
    lifebench <command> [flags]

COMMANDS:
    run            Run a simulation and save it to history
    sweep          Run a batch of simulations across consecutive seeds
    patterns       List builtin patterns
    show           Render a builtin pattern (show <pattern> [-rows N -cols N])
    history        List saved runs (-limit N)
    stats          Aggregate statistics across saved runs
    export         Export a saved run (export <id> [-format json|markdown] [-out dir])
    clear-history  Delete all saved runs
    version        Show version information
    help           Show this help message

EXAMPLES:
    # Run a 40x40 random board for 200 steps
    lifebench run -rows 40 -cols 40 -steps 200

    # Run a glider with a pinned seed and write an animation
    lifebench run -pattern glider -steps 120 -seed 7 -gif glider.gif

    # Sweep 20 seeds and write a Markdown report
    lifebench sweep -runs 20 -steps 100 -out sweep.md

Flags default to the stored configuration (Settings tab in lifebench-gui).
`, Version)
}

// quietFlag reports whether the -quiet flag appears in the arguments. It is
// scanned before flag parsing because logging is set up first.
func quietFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-quiet" || arg == "--quiet" {
			return true
		}
	}
	return false
}

// app holds the wired use cases for one CLI invocation.
type app struct {
	cfg         *config.Config
	db          *sql.DB
	logFile     *os.File
	historyRepo repository.HistoryRepository

	settingsUC *usecase.SettingsUseCase
	simUC      *usecase.SimulationUseCase
	historyUC  *usecase.HistoryUseCase
	exportUC   *usecase.ExportUseCase
	sweepUC    *usecase.SweepUseCase
}

func newApp(ctx context.Context, quiet bool) (*app, error) {
	settingsRepo := dbrepo.NewSettingsRepository(defaultConfigPath())
	settingsUC := usecase.NewSettingsUseCase(settingsRepo)

	cfg, err := settingsUC.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logFile, err := setupLogging(cfg, quiet)
	if err != nil {
		return nil, err
	}
	slog.Info("LifeBench CLI started", "version", Version, "log_file", logFile.Name())

	db, err := database.InitializeSQLite(ctx, cfg.Database.Path)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	historyRepo := dbrepo.NewSQLiteHistoryRepository(db)
	simUC := usecase.NewSimulationUseCase(historyRepo, sysinfo.NewDetector(), imageload.NewLoader(), gif.NewExporter(cfg.GIF))

	return &app{
		cfg:         cfg,
		db:          db,
		logFile:     logFile,
		historyRepo: historyRepo,
		settingsUC:  settingsUC,
		simUC:       simUC,
		historyUC:   usecase.NewHistoryUseCase(historyRepo),
		exportUC:    usecase.NewExportUseCase(historyRepo, cfg.Reports.OutputDir),
		sweepUC:     usecase.NewSweepUseCase(simUC, historyRepo),
	}, nil
}

func (a *app) close() {
	a.db.Close()
	a.logFile.Close()
}

// setupLogging installs a handler writing to a dated log file and, unless
// quiet, to stdout.
func setupLogging(cfg *config.Config, quiet bool) (*os.File, error) {
	logDir := filepath.Join(filepath.Dir(cfg.Database.Path), "logs")
	os.MkdirAll(logDir, 0755)

	logPath := filepath.Join(logDir, fmt.Sprintf("lifebench-cli-%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	writers := []io.Writer{file}
	if !quiet {
		writers = append(writers, os.Stdout)
	}
	slog.SetDefault(slog.New(newMultiHandler(cfg.Advanced.SlogLevel(), writers...)))
	return file, nil
}

func (a *app) runSimulation(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	rows := fs.Int("rows", a.cfg.Simulation.DefaultRows, "board rows")
	cols := fs.Int("cols", a.cfg.Simulation.DefaultCols, "board columns")
	steps := fs.Int("steps", a.cfg.Simulation.DefaultSteps, "step budget")
	seed := fs.Int64("seed", 0, "RNG seed (default: random)")
	density := fs.Float64("density", a.cfg.Simulation.DefaultDensity, "alive probability for random boards")
	patternID := fs.String("pattern", "", "builtin pattern ID (see: lifebench patterns)")
	imagePath := fs.String("image", "", "image file to binarize into the initial board")
	cycleDetect := fs.Bool("cycle-detect", a.cfg.Simulation.CycleDetection, "stop when a board state repeats")
	haltExtinct := fs.Bool("halt-extinct", a.cfg.Simulation.HaltOnExtinction, "stop once every cell is dead")
	out := fs.String("out", "", "write a run report to this path (.md for Markdown, otherwise JSON)")
	gifPath := fs.String("gif", "", "write an animated GIF of the run to this path")
	fs.Bool("quiet", false, "log to file only")
	fs.Parse(args)

	spec := usecase.RunSpec{
		Rows:             *rows,
		Cols:             *cols,
		Steps:            *steps,
		PatternID:        *patternID,
		ImagePath:        *imagePath,
		DetectCycles:     *cycleDetect,
		MaxCycleStates:   a.cfg.Simulation.MaxCycleStates,
		HaltOnExtinction: *haltExtinct,
		GIFPath:          *gifPath,
	}
	if spec.PatternID == "" && spec.ImagePath == "" {
		spec.Density = density
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			spec.Seed = seed
		}
	})

	// Ctrl-C stops the run at the next step boundary; the partial run is
	// still saved with stop reason "cancelled".
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := a.simUC.Run(ctx, spec)
	if err != nil {
		return err
	}

	printSummary(summary)

	if *out != "" {
		if err := writeReport(*out, report.NewInput(summary, nil)); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", *out)
	}
	if *gifPath != "" {
		fmt.Printf("Animation written to %s\n", *gifPath)
	}
	return nil
}

func (a *app) runSweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	runs := fs.Int("runs", a.cfg.Sweep.Runs, "number of runs")
	rows := fs.Int("rows", a.cfg.Simulation.DefaultRows, "board rows")
	cols := fs.Int("cols", a.cfg.Simulation.DefaultCols, "board columns")
	steps := fs.Int("steps", a.cfg.Simulation.DefaultSteps, "step budget per run")
	baseSeed := fs.Int64("base-seed", 0, "seed of run 0, run i uses base-seed+i (default: random)")
	workers := fs.Int("workers", a.cfg.Sweep.Workers, "concurrent runs")
	density := fs.Float64("density", a.cfg.Simulation.DefaultDensity, "alive probability for random boards")
	patternID := fs.String("pattern", "", "builtin pattern ID (see: lifebench patterns)")
	cycleDetect := fs.Bool("cycle-detect", a.cfg.Simulation.CycleDetection, "stop runs when a board state repeats")
	haltExtinct := fs.Bool("halt-extinct", a.cfg.Simulation.HaltOnExtinction, "stop runs once every cell is dead")
	persist := fs.Bool("persist", true, "save every run to history")
	out := fs.String("out", "", "write a sweep report to this path (.md for Markdown, otherwise JSON)")
	fs.Bool("quiet", false, "log to file only")
	fs.Parse(args)

	spec := usecase.SweepSpec{
		Rows:             *rows,
		Cols:             *cols,
		Steps:            *steps,
		Runs:             *runs,
		Workers:          *workers,
		PatternID:        *patternID,
		DetectCycles:     *cycleDetect,
		MaxCycleStates:   a.cfg.Simulation.MaxCycleStates,
		HaltOnExtinction: *haltExtinct,
		Persist:          *persist,
	}
	if spec.PatternID == "" {
		spec.Density = density
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "base-seed" {
			spec.BaseSeed = baseSeed
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := a.sweepUC.Run(ctx, spec)
	if err != nil {
		return err
	}

	printAggregate(&result.Aggregate, fmt.Sprintf(
		"Sweep finished: %d runs in %.2fs (workers %d, base seed %d)",
		len(result.Summaries), result.Elapsed.Seconds(), spec.Workers, result.BaseSeed))

	if *out != "" {
		if err := writeReport(*out, report.NewSweepInput(&result.Aggregate, result.Summaries, nil)); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", *out)
	}
	return nil
}

func (a *app) listHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum runs to list, newest first (0 = all)")
	fs.Parse(args)

	runs, err := a.historyUC.List(context.Background(), history.Filter{Limit: *limit})
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs in history.")
		fmt.Println("\nTo record one:")
		fmt.Println("  lifebench run -rows 40 -cols 40 -steps 200")
		return nil
	}

	fmt.Printf("\nFound %d run(s):\n", len(runs))
	fmt.Println(separator)
	for i := range runs {
		s := &runs[i]
		fmt.Printf("\n[%d] %s  %dx%d\n", i+1, s.Timestamp.Local().Format("2006-01-02 15:04:05"), s.Dimensions[0], s.Dimensions[1])
		fmt.Printf("    ID:    %s\n", s.ID)
		fmt.Printf("    Steps: %d/%d  Stop: %s\n", s.StepCount, s.Steps, s.StopReason)
		fmt.Printf("    Alive: %.2f%% final (min %d, max %d cells)\n", s.FinalAlivePercent(), s.MinAliveCells, s.MaxAliveCells)
		fmt.Printf("    Seed:  %d\n", s.Seed)
		if s.LoopDetected {
			fmt.Printf("    Loop:  length %d\n", s.LoopLength)
		}
	}
	fmt.Println("\n" + separator)
	return nil
}

func (a *app) showStats() error {
	agg, runs, err := a.historyUC.Aggregate(context.Background(), history.Filter{})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs in history.")
		return nil
	}

	printAggregate(&agg, fmt.Sprintf("Statistics across %d run(s)", agg.Runs))
	return nil
}

func (a *app) exportRun(args []string) error {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("usage: lifebench export <id> [-format json|markdown] [-out dir]")
	}
	id := args[0]

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	formatName := fs.String("format", "json", "report format: json or markdown")
	outDir := fs.String("out", "", "export directory (default: configured reports directory)")
	fs.Parse(args[1:])

	format := report.Format(*formatName)
	if err := format.Validate(); err != nil {
		return err
	}

	exportUC := a.exportUC
	if *outDir != "" {
		exportUC = usecase.NewExportUseCase(a.historyRepo, *outDir)
	}

	path, err := exportUC.ExportRun(context.Background(), id, format, nil)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}

func (a *app) clearHistory() error {
	removed, err := a.historyUC.Clear(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d run(s) from history.\n", removed)
	return nil
}

func listPatterns() {
	builtin := pattern.Builtin()

	fmt.Printf("\n%d builtin pattern(s):\n", len(builtin))
	fmt.Println(separator)
	for _, p := range builtin {
		fmt.Printf("\n%-12s %s (%s, %dx%d, %d cells)\n", p.ID, p.Name, p.Category, p.Rows, p.Cols, p.AliveCount())
		if p.Description != "" {
			fmt.Printf("             %s\n", p.Description)
		}
	}
	fmt.Println("\n" + separator)
	fmt.Println("\nRender one with: lifebench show <pattern>")
}

func showPattern(args []string) error {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("usage: lifebench show <pattern> [-rows N -cols N]")
	}
	id := args[0]

	fs := flag.NewFlagSet("show", flag.ExitOnError)
	rows := fs.Int("rows", 0, "board rows to center the pattern on (default: tight)")
	cols := fs.Int("cols", 0, "board columns to center the pattern on (default: tight)")
	fs.Parse(args[1:])

	p, err := pattern.Lookup(id)
	if err != nil {
		return err
	}

	b, err := p.Board()
	if *rows > 0 && *cols > 0 {
		b, err = p.CenteredOn(*rows, *cols)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n%s (%s, %dx%d)\n", p.Name, p.Category, p.Rows, p.Cols)
	if p.Description != "" {
		fmt.Printf("%s\n", p.Description)
	}
	fmt.Printf("\n%s\n", b.String())
	return nil
}

// printSummary renders a finished run on stdout.
func printSummary(s *execution.Summary) {
	fmt.Printf("\nRun %s finished\n", s.ID)
	fmt.Println(separator)
	fmt.Printf("  Board:          %dx%d\n", s.Dimensions[0], s.Dimensions[1])
	fmt.Printf("  Steps:          %d of %d\n", s.StepCount, s.Steps)
	fmt.Printf("  Stop reason:    %s\n", s.StopReason)
	fmt.Printf("  Execution time: %.4fs\n", s.ExecutionTime)
	fmt.Printf("  Alive cells:    min %d, max %d\n", s.MinAliveCells, s.MaxAliveCells)
	if len(s.AliveCellsStats) > 0 {
		fmt.Printf("  Final alive:    %.2f%%\n", s.FinalAlivePercent())
	}
	fmt.Printf("  Seed:           %d\n", s.Seed)
	if s.LoopDetected {
		fmt.Printf("  Loop:           length %d\n", s.LoopLength)
	}
	fmt.Println(separator)
}

// printAggregate renders sweep or history statistics on stdout.
func printAggregate(agg *history.AggregateStats, title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(separator)
	fmt.Printf("  Execution time: %s s\n", history.FormatMeanStdDev(agg.ExecutionTime))
	fmt.Printf("  Final alive %%:  %s\n", history.FormatMeanStdDev(agg.FinalAlivePercent))
	fmt.Printf("  Steps executed: %s\n", history.FormatMeanStdDev(agg.StepCount))
	fmt.Printf("  Loop runs:      %d (%.1f%%)\n", agg.LoopRuns, agg.LoopRate)
	fmt.Printf("  Extinct runs:   %d\n", agg.ExtinctRuns)
	fmt.Println(separator)
}

// writeReport renders the input to the given path, picking the format from
// the file extension.
func writeReport(path string, in *report.Input) error {
	format := report.FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		format = report.FormatMarkdown
	}

	var gen report.Generator = infrareport.NewJSONGenerator()
	if format == report.FormatMarkdown {
		gen = infrareport.NewMarkdownGenerator()
	}

	in.Options = report.DefaultOptions(format)
	rpt, err := gen.Generate(in)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if err := os.WriteFile(path, rpt.Content, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// defaultConfigPath returns the settings file location under the user's
// home directory.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".lifebench", "config.json")
	}
	return filepath.Join(home, ".lifebench", "config.json")
}

// multiHandler writes log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

// newMultiHandler creates a new multi-handler that writes to all provided writers.
func newMultiHandler(level slog.Level, writers ...io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	var handlers []slog.Handler
	for _, w := range writers {
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	}
	return &multiHandler{handlers: handlers}
}

// Handle handles the log record by forwarding to all handlers.
func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if err := h.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Enabled reports whether the handler is enabled for the given level.
func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// WithAttrs returns a new handler with the given attributes.
func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var newHandlers []slog.Handler
	for _, h := range m.handlers {
		newHandlers = append(newHandlers, h.WithAttrs(attrs))
	}
	return &multiHandler{handlers: newHandlers}
}

// WithGroup returns a new handler with the given group name.
func (m *multiHandler) WithGroup(name string) slog.Handler {
	var newHandlers []slog.Handler
	for _, h := range m.handlers {
		newHandlers = append(newHandlers, h.WithGroup(name))
	}
	return &multiHandler{handlers: newHandlers}
}
