package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcher_DebouncesWriteBursts(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.ahk")
	if err := os.WriteFile(script, []byte("return\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var batches [][]string
	done := make(chan struct{}, 1)

	w, err := NewWatcher(100*time.Millisecond, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx) }()

	// Burst of writes within the debounce window
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(script, []byte("return\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the debounced callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected one coalesced batch, got %d", len(batches))
	}
	if len(batches[0]) != 1 || filepath.Base(batches[0][0]) != "main.ahk" {
		t.Errorf("expected batch to contain main.ahk, got %v", batches[0])
	}
}

func TestWatcher_IgnoresNonScriptFiles(t *testing.T) {
	dir := t.TempDir()

	called := make(chan []string, 1)
	w, err := NewWatcher(50*time.Millisecond, func(paths []string) {
		called <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-called:
		t.Errorf("non-script change should not trigger the callback, got %v", paths)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ContextCancellationStopsWatch(t *testing.T) {
	w, err := NewWatcher(50*time.Millisecond, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}
