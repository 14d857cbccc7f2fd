package adapter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	m "pscan.dev/pkg/pscan/internal/model"
)

func TestFileLocker_ExcludesSecondHolder(t *testing.T) {
	locker := NewFileLocker(5 * time.Millisecond)
	name := m.Path(filepath.Join(t.TempDir(), LockFileName))

	lease, err := locker.Acquire(context.Background(), name)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := locker.Acquire(ctx, name); !errors.Is(err, m.ErrLockAcquisition) {
		t.Fatalf("second Acquire() error = %v, want ErrLockAcquisition", err)
	}

	if err := lease.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	again, err := locker.Acquire(context.Background(), name)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}

	if err := again.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}

func TestFileLocker_FailedAcquireClosesFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("open descriptors are counted through /proc")
	}

	locker := NewFileLocker(time.Millisecond)
	name := m.Path(filepath.Join(t.TempDir(), LockFileName))

	lease, err := locker.Acquire(context.Background(), name)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	defer func() { _ = lease.Release() }()

	before := openDescriptors(t)

	for n := 0; n < 20; n++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)

		if _, err := locker.Acquire(ctx, name); !errors.Is(err, m.ErrLockAcquisition) {
			cancel()
			t.Fatalf("Acquire() error = %v, want ErrLockAcquisition", err)
		}

		cancel()
	}

	if after := openDescriptors(t); after > before+2 {
		t.Fatalf("open descriptors grew from %d to %d after failed acquisitions", before, after)
	}
}

func openDescriptors(t *testing.T) int {
	t.Helper()

	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Fatalf("ReadDir(/proc/self/fd) error = %v", err)
	}

	return len(entries)
}

func TestFileLocker_SerializesGoroutines(t *testing.T) {
	locker := NewFileLocker(time.Millisecond)
	name := m.Path(filepath.Join(t.TempDir(), LockFileName))

	var (
		holders int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)

	for n := 0; n < 8; n++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for n := 0; n < 5; n++ {
				lease, err := locker.Acquire(context.Background(), name)
				if err != nil {
					t.Errorf("Acquire() error = %v", err)
					return
				}

				if atomic.AddInt32(&holders, 1) > 1 {
					overlap.Store(true)
				}

				time.Sleep(time.Millisecond)
				atomic.AddInt32(&holders, -1)

				if err := lease.Release(); err != nil {
					t.Errorf("Release() error = %v", err)
					return
				}
			}
		}()
	}

	wg.Wait()

	if overlap.Load() {
		t.Fatalf("two goroutines held the lock at the same time")
	}
}

func TestFileLocker_ReleasedOnProcessDeath(t *testing.T) {
	if path := os.Getenv("PSCAN_LOCK_HELPER_PATH"); path != "" {
		if _, err := NewFileLocker(0).Acquire(context.Background(), m.Path(path)); err != nil {
			fmt.Println("error", err)
			os.Exit(1)
		}

		fmt.Println("locked")

		// Hold the lock until killed.
		time.Sleep(time.Minute)
		os.Exit(0)
	}

	name := filepath.Join(t.TempDir(), LockFileName)

	cmd := exec.Command(os.Args[0], "-test.run=TestFileLocker_ReleasedOnProcessDeath$")
	cmd.Env = append(os.Environ(), "PSCAN_LOCK_HELPER_PATH="+name)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("StdoutPipe() error = %v", err)
	}

	if err := cmd.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Cleanup(func() { _ = cmd.Process.Kill() })

	scanner := bufio.NewScanner(stdout)

	locked := false
	for scanner.Scan() {
		if scanner.Text() == "locked" {
			locked = true
			break
		}
	}

	if !locked {
		t.Fatalf("helper process did not report holding the lock")
	}

	locker := NewFileLocker(5 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	if _, err := locker.Acquire(ctx, m.Path(name)); !errors.Is(err, m.ErrLockAcquisition) {
		cancel()
		t.Fatalf("Acquire() while helper holds the lock error = %v, want ErrLockAcquisition", err)
	}

	cancel()

	if err := cmd.Process.Kill(); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	_ = cmd.Wait()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lease, err := locker.Acquire(ctx, m.Path(name))
	if err != nil {
		t.Fatalf("Acquire() after helper died error = %v", err)
	}

	if err := lease.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}
