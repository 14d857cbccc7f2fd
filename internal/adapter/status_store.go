package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	m "pscan.dev/pkg/pscan/internal/model"
)

// Well-known file names inside a scan output directory.
const (
	StatusFileName   = "param_scan_status.json"
	LockFileName     = "param_scan_status.lock"
	CompleteFileName = "param_scan_status.complete"
	JournalDirName   = "param_scan_journal"
)

// StatusPath returns the status document path for outputDir.
func StatusPath(outputDir m.Path) m.Path {
	return outputDir.Join(StatusFileName)
}

// LockPath returns the lock file path for outputDir.
func LockPath(outputDir m.Path) m.Path {
	return outputDir.Join(LockFileName)
}

// CompletePath returns the completion marker path for outputDir.
func CompletePath(outputDir m.Path) m.Path {
	return outputDir.Join(CompleteFileName)
}

// JournalDir returns the trial journal directory for outputDir.
func JournalDir(outputDir m.Path) m.Path {
	return outputDir.Join(JournalDirName)
}

// StatusStore persists the scan state document of an output directory.
type StatusStore interface {
	// Exists reports whether a status document is present.
	Exists(ctx context.Context, outputDir m.Path) (bool, error)

	// Initialize writes state unless a status document already exists, in
	// which case the existing document is left untouched.
	Initialize(ctx context.Context, outputDir m.Path, state m.ScanState) error

	// Load reads and validates the status document. A missing, truncated
	// or invalid document yields m.ErrCorruptState.
	Load(ctx context.Context, outputDir m.Path) (m.ScanState, error)

	// Save replaces the status document atomically. Failures wrap
	// m.ErrPersistence and leave the previous document in place.
	Save(ctx context.Context, outputDir m.Path, state m.ScanState) error
}

// LocalStatusStore is a StatusStore backed by a JSON file on local disk.
type LocalStatusStore struct{}

// NewLocalStatusStore constructs a LocalStatusStore.
func NewLocalStatusStore() *LocalStatusStore {
	return &LocalStatusStore{}
}

// Exists reports whether a status document is present.
func (s *LocalStatusStore) Exists(ctx context.Context, outputDir m.Path) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(string(StatusPath(outputDir)))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("stat status document: %w", err)
}

// Initialize writes state unless a status document already exists.
func (s *LocalStatusStore) Initialize(ctx context.Context, outputDir m.Path, state m.ScanState) error {
	exists, err := s.Exists(ctx, outputDir)
	if err != nil {
		return err
	}

	if exists {
		slog.Debug("Status document already exists, keeping it", "output", outputDir)
		return nil
	}

	if err := os.MkdirAll(string(outputDir), 0o750); err != nil {
		slog.Error("Failed to create output directory", "output", outputDir, "error", err)
		return fmt.Errorf("%w: create output directory: %w", m.ErrPersistence, err)
	}

	return s.Save(ctx, outputDir, state)
}

// Load reads and validates the status document.
func (s *LocalStatusStore) Load(ctx context.Context, outputDir m.Path) (m.ScanState, error) {
	if err := ctx.Err(); err != nil {
		return m.ScanState{}, err
	}

	path := StatusPath(outputDir)

	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.ScanState{}, fmt.Errorf("%w: %s does not exist", m.ErrCorruptState, path)
		}

		slog.Error("Failed to read status document", "path", path, "error", err)

		return m.ScanState{}, fmt.Errorf("read status document: %w", err)
	}

	var state m.ScanState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Error("Failed to parse status document", "path", path, "error", err)
		return m.ScanState{}, fmt.Errorf("%w: %s: %w", m.ErrCorruptState, path, err)
	}

	if err := state.Validate(); err != nil {
		slog.Error("Invalid status document", "path", path, "error", err)
		return m.ScanState{}, fmt.Errorf("%w: %s: %w", m.ErrCorruptState, path, err)
	}

	return state, nil
}

// Save writes state to a temporary file next to the status document and
// renames it into place.
func (s *LocalStatusStore) Save(ctx context.Context, outputDir m.Path, state m.ScanState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: marshal state: %w", m.ErrPersistence, err)
	}

	path := string(StatusPath(outputDir))

	tmp, err := os.CreateTemp(filepath.Dir(path), ".param_scan_status-*.tmp")
	if err != nil {
		slog.Error("Failed to create temp status file", "output", outputDir, "error", err)
		return fmt.Errorf("%w: create temp file: %w", m.ErrPersistence, err)
	}

	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpName)

		slog.Error("Failed to write temp status file", "path", tmpName, "error", err)

		return fmt.Errorf("%w: write temp file: %w", m.ErrPersistence, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		slog.Error("Failed to replace status document", "path", path, "error", err)

		return fmt.Errorf("%w: rename status document: %w", m.ErrPersistence, err)
	}

	slog.Debug("Saved status document", "path", path, "iteration", state.Iteration)

	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
