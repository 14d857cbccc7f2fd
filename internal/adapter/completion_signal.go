package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	m "pscan.dev/pkg/pscan/internal/model"
)

// CompletionSignal manages the durable "scan is finished" marker. The
// marker's existence is the only source of truth for completion.
type CompletionSignal interface {
	IsComplete(ctx context.Context, outputDir m.Path) (bool, error)
	// MarkComplete creates the marker. Creating an existing marker is not
	// an error.
	MarkComplete(ctx context.Context, outputDir m.Path) error
}

// LocalCompletionSignal stores the marker as an empty file.
type LocalCompletionSignal struct{}

// NewLocalCompletionSignal constructs a LocalCompletionSignal.
func NewLocalCompletionSignal() *LocalCompletionSignal {
	return &LocalCompletionSignal{}
}

// IsComplete reports whether the marker file exists.
func (c *LocalCompletionSignal) IsComplete(ctx context.Context, outputDir m.Path) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(string(CompletePath(outputDir)))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("stat completion marker: %w", err)
}

// MarkComplete creates the zero-byte marker file.
func (c *LocalCompletionSignal) MarkComplete(ctx context.Context, outputDir m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := string(CompletePath(outputDir))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			slog.Debug("Completion marker already present", "path", path)
			return nil
		}

		slog.Error("Failed to create completion marker", "path", path, "error", err)

		return fmt.Errorf("create completion marker: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close completion marker: %w", err)
	}

	slog.Info("Parameter scan marked complete", "path", path)

	return nil
}
