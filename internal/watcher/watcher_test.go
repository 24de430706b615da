package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func startWatcher(t *testing.T, cfg Config) <-chan Event {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	events, err := w.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to initialize.
	time.Sleep(200 * time.Millisecond)
	return events
}

func collect(events <-chan Event, wait time.Duration) []Event {
	var collected []Event
	timeout := time.After(wait)
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, evt)
		case <-timeout:
			return collected
		}
	}
}

func TestEventDebouncing(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "shell.c")
	if err := os.WriteFile(testFile, []byte("int x;"), 0644); err != nil {
		t.Fatal(err)
	}

	events := startWatcher(t, Config{Paths: []string{tmpDir}})

	// Write to the file multiple times in rapid succession.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(testFile, []byte("int x = "+string(rune('0'+i))+";"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Wait for debounce window to pass.
	time.Sleep(300 * time.Millisecond)
	collected := collect(events, 500*time.Millisecond)

	if len(collected) == 0 {
		t.Error("expected at least one debounced event, got none")
	}
	if len(collected) >= 5 {
		t.Errorf("expected debouncing to reduce events, got %d events for 5 writes", len(collected))
	}
	for _, evt := range collected {
		if evt.Path != testFile {
			t.Errorf("unexpected event path: %s", evt.Path)
		}
	}
}

func TestWatcherNewDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	events := startWatcher(t, Config{Paths: []string{tmpDir}})

	subDir := filepath.Join(tmpDir, "builtins")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	// Wait a bit for the directory to be added to the watcher.
	time.Sleep(300 * time.Millisecond)

	newFile := filepath.Join(subDir, "cd.c")
	if err := os.WriteFile(newFile, []byte("int cd(void);"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	collected := collect(events, 500*time.Millisecond)
	if len(collected) == 0 {
		t.Fatal("expected events for the new file, got none")
	}
	for _, evt := range collected {
		if evt.Path == subDir {
			t.Errorf("directories must not be emitted: %v", evt)
		}
	}
}

func TestWatcherFiltersPaths(t *testing.T) {
	tmpDir := t.TempDir()
	buildDir := filepath.Join(tmpDir, "build")
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		t.Fatal(err)
	}

	events := startWatcher(t, Config{
		Paths:   []string{tmpDir},
		Exclude: []string{"build"},
	})

	// Excluded directory, unrecognized extension, then a real source file.
	if err := os.WriteFile(filepath.Join(buildDir, "gen.c"), []byte("int g;"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("TODO"), 0644); err != nil {
		t.Fatal(err)
	}
	srcFile := filepath.Join(tmpDir, "main.h")
	if err := os.WriteFile(srcFile, []byte("#define MAX 1"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	collected := collect(events, 500*time.Millisecond)
	if len(collected) == 0 {
		t.Fatal("expected an event for main.h")
	}
	for _, evt := range collected {
		if evt.Path != srcFile {
			t.Errorf("unexpected event path: %s", evt.Path)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		name   string
		op     fsnotify.Op
		want   EventOp
		wantOk bool
	}{
		{"create", fsnotify.Create, Create, true},
		{"write", fsnotify.Write, Write, true},
		{"remove", fsnotify.Remove, Remove, true},
		{"rename", fsnotify.Rename, Rename, true},
		{"chmod only", fsnotify.Chmod, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convertOp(tt.op)
			if ok != tt.wantOk {
				t.Errorf("convertOp(%v) ok = %v, want %v", tt.op, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("convertOp(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestEventOpString(t *testing.T) {
	tests := []struct {
		op   EventOp
		want string
	}{
		{Create, "Create"},
		{Write, "Write"},
		{Remove, "Remove"},
		{Rename, "Rename"},
		{EventOp(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("EventOp(%d).String() = %q, want %q", tt.op, got, tt.want)
			}
		})
	}
}
