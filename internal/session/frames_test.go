package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFrame(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
	return path
}

// waitForFrame polls the source until it serves a frame or the deadline hits.
func waitForFrame(t *testing.T, s *SpoolSource) []byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := s.Frame()
		if err != nil {
			t.Fatalf("frame error: %v", err)
		}
		if data != nil {
			return data
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no frame arrived in time")
	return nil
}

func TestSpoolSource_BackfillsNewestExistingFrame(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame_001.jpg", []byte("old"))
	writeFrame(t, dir, "frame_002.jpg", []byte("new"))

	s, err := NewSpoolSource(dir)
	if err != nil {
		t.Fatalf("failed to open spool: %v", err)
	}
	defer s.Close()

	if data := waitForFrame(t, s); string(data) != "new" {
		t.Errorf("expected the newest existing frame, got %q", data)
	}
}

func TestSpoolSource_ServesEachFrameOnce(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame_001.jpg", []byte("one"))

	s, err := NewSpoolSource(dir)
	if err != nil {
		t.Fatalf("failed to open spool: %v", err)
	}
	defer s.Close()

	waitForFrame(t, s)
	if data, _ := s.Frame(); data != nil {
		t.Errorf("expected nil for an already served frame, got %q", data)
	}
}

func TestSpoolSource_PicksUpNewFrames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSpoolSource(dir)
	if err != nil {
		t.Fatalf("failed to open spool: %v", err)
	}
	defer s.Close()

	if data, _ := s.Frame(); data != nil {
		t.Fatalf("expected empty spool, got %q", data)
	}

	writeFrame(t, dir, "frame_001.jpg", []byte("fresh"))
	if data := waitForFrame(t, s); string(data) != "fresh" {
		t.Errorf("expected the new frame, got %q", data)
	}
}

func TestSpoolSource_IgnoresNonImages(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "notes.txt", []byte("not a frame"))

	s, err := NewSpoolSource(dir)
	if err != nil {
		t.Fatalf("failed to open spool: %v", err)
	}
	defer s.Close()

	if data, _ := s.Frame(); data != nil {
		t.Errorf("expected non-images skipped, got %q", data)
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"frame.jpg", true},
		{"frame.JPEG", true},
		{"frame.png", true},
		{"frame.webp", true},
		{"frame.txt", false},
		{"frame", false},
	}
	for _, tt := range tests {
		if got := isImage(tt.path); got != tt.want {
			t.Errorf("isImage(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
