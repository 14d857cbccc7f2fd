// Package adapter contains the filesystem, locking and process adapters the
// scheduling domain drives.
package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	m "pscan.dev/pkg/pscan/internal/model"
)

// ProjectFSAdapter abstracts the output directory bookkeeping done around a
// scan: creating the directory and copying the simulation project into it.
type ProjectFSAdapter interface {
	// EnsureDir creates path and any missing parents.
	EnsureDir(ctx context.Context, path m.Path) error

	// Exists reports whether path exists.
	Exists(ctx context.Context, path m.Path) (bool, error)

	// CopyDir recursively copies a directory tree.
	CopyDir(ctx context.Context, src, dst m.Path) error

	// CopyProject copies projectDir into outputDir/<basename(projectDir)>
	// unless that target already exists. It returns the target path and
	// whether a copy was made.
	CopyProject(ctx context.Context, projectDir, outputDir m.Path) (m.Path, bool, error)
}

// LocalProjectFSAdapter implements ProjectFSAdapter on the local disk.
type LocalProjectFSAdapter struct{}

// NewLocalProjectFSAdapter constructs a LocalProjectFSAdapter.
func NewLocalProjectFSAdapter() *LocalProjectFSAdapter {
	return &LocalProjectFSAdapter{}
}

// EnsureDir creates path and any missing parents.
func (a *LocalProjectFSAdapter) EnsureDir(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(string(path), 0o750); err != nil {
		slog.Error("Failed to create directory", "path", path, "error", err)
		return fmt.Errorf("create directory %s: %w", path, err)
	}

	return nil
}

// Exists reports whether path exists.
func (a *LocalProjectFSAdapter) Exists(ctx context.Context, path m.Path) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(string(path))
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// CopyDir recursively copies a directory tree.
func (a *LocalProjectFSAdapter) CopyDir(ctx context.Context, src, dst m.Path) error {
	return filepath.Walk(string(src), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(string(src), path)
		if err != nil {
			return err
		}

		if info.IsDir() && filepath.Base(path) == ".git" {
			return filepath.SkipDir
		}

		targetPath := filepath.Join(string(dst), relPath)

		if info.IsDir() {
			return os.MkdirAll(targetPath, info.Mode())
		}

		return a.copyFile(path, targetPath, info.Mode())
	})
}

// CopyProject copies projectDir into the output directory once.
func (a *LocalProjectFSAdapter) CopyProject(ctx context.Context, projectDir, outputDir m.Path) (m.Path, bool, error) {
	info, err := os.Stat(string(projectDir))
	if err != nil {
		slog.Error("Failed to stat project directory", "project", projectDir, "error", err)
		return "", false, fmt.Errorf("stat project %s: %w", projectDir, err)
	}

	if !info.IsDir() {
		return "", false, fmt.Errorf("project %s is not a directory", projectDir)
	}

	target := outputDir.Join(filepath.Base(filepath.Clean(string(projectDir))))

	exists, err := a.Exists(ctx, target)
	if err != nil {
		return "", false, err
	}

	if exists {
		return target, false, nil
	}

	if err := a.CopyDir(ctx, projectDir, target); err != nil {
		slog.Error("Failed to copy project", "project", projectDir, "target", target, "error", err)
		return "", false, fmt.Errorf("copy project %s: %w", projectDir, err)
	}

	return target, true, nil
}

// copyFile copies a single file.
func (a *LocalProjectFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src is a file inside the user supplied project directory
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is derived from the output directory
	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return os.Chmod(dst, mode)
}
