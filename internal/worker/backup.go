package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/moonlitlabs/oneiro/internal/types"
)

// Exporter defines the store operation needed by the backup worker.
type Exporter interface {
	ExportAll(ctx context.Context) ([]types.Dream, error)
}

// BackupWorker writes periodic JSON exports of the full journal.
type BackupWorker struct {
	exporter Exporter
	dir      string
	interval time.Duration
}

// NewBackupWorker creates a worker writing into dir at the given interval.
func NewBackupWorker(exporter Exporter, dir string, interval time.Duration) *BackupWorker {
	return &BackupWorker{
		exporter: exporter,
		dir:      dir,
		interval: interval,
	}
}

// Run starts the worker loop. Writes a backup immediately on start,
// then on each interval. Respects context cancellation for graceful shutdown.
func (w *BackupWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "backup",
		"dir", w.dir,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.backup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "backup",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.backup(ctx)
		}
	}
}

// backup writes one export file and logs any errors.
func (w *BackupWorker) backup(ctx context.Context) {
	if err := w.writeBackup(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("backup failed",
			"component", "worker",
			"action", "backup_failed",
			"error", err,
		)
		return
	}

	slog.Info("backup written",
		"component", "worker",
		"action", "backup_complete",
	)
}

// writeBackup exports every dream to a timestamped JSON file in the backup
// directory. The file is written whole; a failed export leaves no partial file
// behind because encoding happens before the write.
func (w *BackupWorker) writeBackup(ctx context.Context) error {
	dreams, err := w.exporter.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("exporting dreams: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}

	data, err := json.MarshalIndent(dreams, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	name := fmt.Sprintf("oneiro-%s.json", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing backup file: %w", err)
	}

	return nil
}
