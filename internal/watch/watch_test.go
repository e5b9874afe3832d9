package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunStopsOnCancel(t *testing.T) {
	input := filepath.Join(t.TempDir(), "demo.xlf")
	if err := os.WriteFile(input, []byte("<xliff/>"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, input, 10*time.Millisecond, func() error { return nil })
	}()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}
}

func TestRunTriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "demo.xlf")
	if err := os.WriteFile(input, []byte("<xliff/>"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, input, 20*time.Millisecond, func() error {
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher time to register, then touch the input.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(input, []byte("<xliff version=\"2.0\"/>"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-ctx.Done():
		t.Fatal("conversion callback never ran")
	}

	cancel()
	<-done
}

func TestRunChangesToOtherFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "demo.xlf")
	if err := os.WriteFile(input, []byte("<xliff/>"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, input, 20*time.Millisecond, func() error {
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	other := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Error("callback ran for an unrelated file")
	case <-ctx.Done():
	}
	<-done
}
