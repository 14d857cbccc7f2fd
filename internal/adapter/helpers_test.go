package adapter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	m "pscan.dev/pkg/pscan/internal/model"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", path, err)
	}
}

func rawValues(values ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		out = append(out, json.RawMessage(v))
	}

	return out
}

// testState is the A in {0,1}, B in {10,20,30} grid at its first combination.
func testState() m.ScanState {
	return m.ScanState{
		Dimensions: []m.Dimension{
			{Name: "A", Values: rawValues("0", "1")},
			{Name: "B", Values: rawValues("10", "20", "30")},
		},
	}
}
