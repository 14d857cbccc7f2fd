// Package pkg provides utilities shared by pscan commands.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// JournalExt is the file extension of journal files.
const JournalExt = ".gob"

// ErrTruncatedJournal reports a journal whose last record is incomplete,
// typically because the writer died mid-append.
var ErrTruncatedJournal = errors.New("journal ends with a truncated record")

// Journal is an append-only log of items of type T stored in one file.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Close() error
}

type journalImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// CreateJournal creates a new journal file dir/name+JournalExt. The file
// must not exist yet: one writer owns one journal.
func CreateJournal[T any](dir, name string) (Journal[T], error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create journal directory", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	path := filepath.Join(dir, name+JournalExt)

	// #nosec G304 - path is derived from the output directory
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("failed to create journal file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create journal file: %w", err)
	}

	slog.Debug("created journal", "path", path)

	return &journalImpl[T]{
		path:    path,
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append implements Journal. Each record is synced before Append returns.
func (j *journalImpl[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("journal %s is closed", j.path)
	}

	if err := j.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	if err := j.file.Sync(); err != nil {
		slog.Error("failed to sync journal", "path", j.path, "error", err)
		return fmt.Errorf("failed to sync journal: %w", err)
	}

	j.length++
	slog.Debug("appended item", "path", j.path, "index", j.length-1)

	return nil
}

// Path implements Journal.
func (j *journalImpl[T]) Path() string {
	return j.path
}

// Len implements Journal.
func (j *journalImpl[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Close implements Journal.
func (j *journalImpl[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	err := j.file.Close()
	j.file = nil

	if err != nil {
		slog.Error("failed to close journal", "path", j.path, "error", err)
		return err
	}

	slog.Debug("closed journal", "path", j.path, "length", j.length)

	return nil
}

// ReadJournal decodes every record of the journal at path in order and
// returns how many were read. A torn last record stops the read with
// ErrTruncatedJournal after the complete records were delivered.
func ReadJournal[T any](path string, fn func(index uint64, item T) error) (uint64, error) {
	// #nosec G304 - path is derived from the output directory
	file, err := os.Open(path)
	if err != nil {
		slog.Error("failed to open journal", "path", path, "error", err)
		return 0, fmt.Errorf("failed to open journal: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close journal", "path", path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	var index uint64

	for {
		var item T

		err := decoder.Decode(&item)
		if errors.Is(err, io.EOF) {
			return index, nil
		}

		if err != nil {
			slog.Warn("journal read stopped", "path", path, "index", index, "error", err)
			return index, fmt.Errorf("%w: %s at record %d: %w", ErrTruncatedJournal, path, index, err)
		}

		if err := fn(index, item); err != nil {
			return index, err
		}

		index++
	}
}

// ListJournals returns the journal files in dir, sorted by name. A missing
// directory yields no journals.
func ListJournals(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list journals: %w", err)
	}

	paths := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != JournalExt {
			continue
		}

		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(paths)

	return paths, nil
}
