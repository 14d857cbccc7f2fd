package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"pscan.dev/pkg/pscan/internal/adapter"
	m "pscan.dev/pkg/pscan/internal/model"
)

// testContext returns a context that is canceled when the test finishes,
// standing in for testing.T.Context on toolchains older than Go 1.24.
func testContext(t testing.TB) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx
}

func rawValues(values ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		out = append(out, json.RawMessage(v))
	}

	return out
}

// abSpec is A in {0,1}, B in {10,20,30}.
func abSpec() m.ScanSpec {
	return m.ScanSpec{Parameters: []m.ParameterSpec{
		{Name: "A", Values: rawValues("0", "1")},
		{Name: "B", Values: rawValues("10", "20", "30")},
	}}
}

// gridSpec builds a spec whose dimension i has sizes[i] integer values.
func gridSpec(sizes ...int) m.ScanSpec {
	spec := m.ScanSpec{}

	for i, size := range sizes {
		values := make([]json.RawMessage, 0, size)
		for v := 0; v < size; v++ {
			values = append(values, json.RawMessage(fmt.Sprint(v)))
		}

		spec.Parameters = append(spec.Parameters, m.ParameterSpec{Name: fmt.Sprintf("p%d", i), Values: values})
	}

	return spec
}

func newLocalCoordinator(outputDir m.Path, lockTimeout time.Duration) Coordinator {
	return NewCoordinator(
		outputDir,
		lockTimeout,
		adapter.NewLocalStatusStore(),
		adapter.NewLocalCompletionSignal(),
		adapter.NewFileLocker(time.Millisecond),
	)
}

func initializedCoordinator(t *testing.T, spec m.ScanSpec) (Coordinator, m.Path) {
	t.Helper()

	outputDir := m.Path(t.TempDir())
	coord := newLocalCoordinator(outputDir, 5*time.Second)

	if _, err := coord.Initialize(testContext(t), spec); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	return coord, outputDir
}
