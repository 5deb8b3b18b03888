package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/moonlitlabs/oneiro/internal/ai"
	"github.com/moonlitlabs/oneiro/internal/api"
	"github.com/moonlitlabs/oneiro/internal/config"
	"github.com/moonlitlabs/oneiro/internal/image"
	"github.com/moonlitlabs/oneiro/internal/journal"
	"github.com/moonlitlabs/oneiro/internal/store"
	"github.com/moonlitlabs/oneiro/internal/worker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "oneiro",
	Short: "Oneiro - Dream Journal Service",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	analyst := newAnalyst(cfg)
	slog.Info("analyst initialized", "provider", analyst.Provider())

	illustrator := image.NewPollinations(cfg.Image.BaseURL)
	slog.Info("illustrator initialized", "base_url", cfg.Image.BaseURL)

	j := journal.New(db, analyst, illustrator, ai.NormalizeLanguage(cfg.AI.DefaultLanguage))

	handler := api.NewHandler(j, db, analyst.Provider(), cfg.Auth.APIKey, Version)
	router := api.NewRouter(handler, cfg.Profile.UserID)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	backupWorker := worker.NewBackupWorker(db, cfg.Worker.BackupDir,
		time.Duration(cfg.Worker.BackupInterval))
	startWorker(ctx, &wg, "backup", backupWorker.Run)

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	wg.Wait()

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// newAnalyst selects the analysis backend from configuration.
func newAnalyst(cfg *config.Config) ai.Analyst {
	switch cfg.AI.Provider {
	case "openai":
		return ai.NewOpenAI(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel)
	default:
		return ai.NewGemini(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.GeminiBaseURL)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(ctx)
		slog.Info("worker exited", "worker", name)
	}()
}
