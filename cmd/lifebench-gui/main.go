// Package main is the entry point for the LifeBench GUI application.
// cmd/ only does assembly and I/O; all business logic lives in internal/.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lifebench/internal/app/usecase"
	"lifebench/internal/infra/database"
	"lifebench/internal/infra/database/repository"
	"lifebench/internal/infra/gif"
	"lifebench/internal/infra/imageload"
	"lifebench/internal/infra/sysinfo"
	"lifebench/internal/transport/ui"
)

func main() {
	// Fyne warns when no locale is set.
	if os.Getenv("LANG") == "" || os.Getenv("LANG") == "C" {
		os.Setenv("LANG", "en_US.UTF-8")
	}

	settingsRepo := repository.NewSettingsRepository(defaultConfigPath())
	settingsUC := usecase.NewSettingsUseCase(settingsRepo)

	cfg, err := settingsUC.GetConfig(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logging to both file and console
	logDir := filepath.Join(filepath.Dir(cfg.Database.Path), "logs")
	os.MkdirAll(logDir, 0755)

	logFile := filepath.Join(logDir, fmt.Sprintf("lifebench-%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	logger := slog.New(NewMultiHandler(cfg.Advanced.SlogLevel(), os.Stdout, file))
	slog.SetDefault(logger)

	slog.Info("Starting LifeBench", "log_file", logFile, "config", settingsRepo.GetConfigPath())

	// 1. Initialize database
	db, err := database.InitializeSQLite(context.Background(), cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database initialized", "path", cfg.Database.Path)

	// 2. Initialize repositories
	historyRepo := repository.NewSQLiteHistoryRepository(db)
	slog.Info("Repositories initialized")

	// 3. Initialize use cases
	detector := sysinfo.NewDetector()
	simUC := usecase.NewSimulationUseCase(historyRepo, detector, imageload.NewLoader(), gif.NewExporter(cfg.GIF))
	historyUC := usecase.NewHistoryUseCase(historyRepo)

	exportUC := usecase.NewExportUseCase(historyRepo, cfg.Reports.OutputDir)
	slog.Info("Use cases initialized")

	// 4. Start GUI
	slog.Info("Starting GUI")
	app := ui.NewApplication(simUC, historyUC, exportUC, settingsUC)
	app.Run()
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

// MultiHandler writes log records to multiple handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a new multi-handler that writes to all provided writers.
func NewMultiHandler(level slog.Level, writers ...io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	var handlers []slog.Handler
	for _, w := range writers {
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	}
	return &MultiHandler{handlers: handlers}
}

// Handle handles the log record by forwarding to all handlers.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if err := h.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Enabled reports whether the handler is enabled for the given level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// WithAttrs returns a new handler with the given attributes.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var newHandlers []slog.Handler
	for _, h := range m.handlers {
		newHandlers = append(newHandlers, h.WithAttrs(attrs))
	}
	return &MultiHandler{handlers: newHandlers}
}

// WithGroup returns a new handler with the given group name.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	var newHandlers []slog.Handler
	for _, h := range m.handlers {
		newHandlers = append(newHandlers, h.WithGroup(name))
	}
	return &MultiHandler{handlers: newHandlers}
}
