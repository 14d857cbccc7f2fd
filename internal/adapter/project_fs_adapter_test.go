package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	m "pscan.dev/pkg/pscan/internal/model"
)

func TestLocalProjectFSAdapter_CopyProject(t *testing.T) {
	ctx := context.Background()
	fs := NewLocalProjectFSAdapter()

	project := filepath.Join(t.TempDir(), "sim")
	writeTestFile(t, filepath.Join(project, "run.sh"), "echo run\n")
	writeTestFile(t, filepath.Join(project, "conf", "base.ini"), "x=1\n")
	writeTestFile(t, filepath.Join(project, ".git", "HEAD"), "ref\n")

	outputDir := m.Path(t.TempDir())

	target, copied, err := fs.CopyProject(ctx, m.Path(project), outputDir)
	if err != nil {
		t.Fatalf("CopyProject() error = %v", err)
	}

	if !copied {
		t.Fatalf("CopyProject() copied = false on first call")
	}

	if want := outputDir.Join("sim"); target != want {
		t.Fatalf("CopyProject() target = %s, want %s", target, want)
	}

	content, err := os.ReadFile(filepath.Join(string(target), "conf", "base.ini"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(content) != "x=1\n" {
		t.Fatalf("copied content = %q", content)
	}

	if _, err := os.Stat(filepath.Join(string(target), ".git")); !os.IsNotExist(err) {
		t.Fatalf(".git was copied, stat error = %v", err)
	}

	// A second copy keeps whatever the first run left behind.
	writeTestFile(t, filepath.Join(string(target), "run.sh"), "modified\n")

	_, copied, err = fs.CopyProject(ctx, m.Path(project), outputDir)
	if err != nil {
		t.Fatalf("second CopyProject() error = %v", err)
	}

	if copied {
		t.Fatalf("second CopyProject() copied = true")
	}

	content, err = os.ReadFile(filepath.Join(string(target), "run.sh"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(content) != "modified\n" {
		t.Fatalf("existing project was overwritten: %q", content)
	}
}

func TestLocalProjectFSAdapter_CopyProjectRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not_a_dir")
	writeTestFile(t, file, "x")

	if _, _, err := NewLocalProjectFSAdapter().CopyProject(context.Background(), m.Path(file), m.Path(t.TempDir())); err == nil {
		t.Fatalf("CopyProject() expected error for a regular file")
	}
}

func TestLocalProjectFSAdapter_EnsureDirAndExists(t *testing.T) {
	ctx := context.Background()
	fs := NewLocalProjectFSAdapter()
	dir := m.Path(t.TempDir()).Join("a", "b")

	exists, err := fs.Exists(ctx, dir)
	if err != nil || exists {
		t.Fatalf("Exists() = %v, %v before EnsureDir", exists, err)
	}

	if err := fs.EnsureDir(ctx, dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	exists, err = fs.Exists(ctx, dir)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v after EnsureDir", exists, err)
	}
}
