package dropzone

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitDrop(t *testing.T, z *Zone) string {
	t.Helper()
	select {
	case path := <-z.Drops():
		return path
	case err := <-z.Errors():
		t.Fatalf("Watcher error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for drop")
	}
	return ""
}

func TestWatch_ReportsCreatedFile(t *testing.T) {
	for _, settle := range []time.Duration{0, 20 * time.Millisecond} {
		t.Run(settle.String(), func(t *testing.T) {
			dir := t.TempDir()
			z, err := Watch(dir, settle, nil)
			if err != nil {
				t.Fatalf("Watch failed: %v", err)
			}
			defer func() { _ = z.Close() }()

			path := filepath.Join(dir, "capture.pcap")
			if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}

			got := waitDrop(t, z)
			if got != path {
				t.Errorf("Expected %s, got %s", path, got)
			}
		})
	}
}

func TestWatch_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	z, err := Watch(dir, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer func() { _ = z.Close() }()

	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	path := filepath.Join(dir, "after.pcap")
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if got := waitDrop(t, z); got != path {
		t.Errorf("Expected only the file to be reported, got %s", got)
	}
}

func TestWatch_IgnoresRemovedBeforeSettle(t *testing.T) {
	dir := t.TempDir()
	z, err := Watch(dir, 200*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer func() { _ = z.Close() }()

	gone := filepath.Join(dir, "gone.pcap")
	if err := os.WriteFile(gone, []byte("x"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.Remove(gone); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}
	kept := filepath.Join(dir, "kept.pcap")
	if err := os.WriteFile(kept, []byte("x"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if got := waitDrop(t, z); got != kept {
		t.Errorf("Expected %s, got %s", kept, got)
	}
}

func TestWatch_RejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := Watch(file, 0, nil); err == nil {
		t.Error("Expected error for a regular file")
	}
	if _, err := Watch(filepath.Join(t.TempDir(), "missing"), 0, nil); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestClose_Idempotent(t *testing.T) {
	z, err := Watch(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	_ = z.Close()
	_ = z.Close()

	if _, ok := <-z.Drops(); ok {
		t.Error("Drops should be closed")
	}
	if _, ok := <-z.Errors(); ok {
		t.Error("Errors should be closed")
	}
}
