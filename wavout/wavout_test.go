package wavout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteRejectsNoChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := Write(path, nil, 44100, 16); err == nil {
		t.Fatalf("expected error for zero channels")
	}
}

func TestWriteRejectsMismatchedChannelLengths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	channels := [][]float32{{0, 0.1, 0.2}, {0, 0.1}}
	if err := Write(path, channels, 44100, 16); err == nil {
		t.Fatalf("expected error for mismatched channel lengths")
	}
}

func TestWriteRejectsUnsupportedBitDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	channels := [][]float32{{0, 0.1, 0.2}}
	if err := Write(path, channels, 44100, 32); err == nil {
		t.Fatalf("expected error for unsupported bit depth")
	}
}

func TestWriteProducesNonEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	channels := [][]float32{
		{0, 0.1, 0.2, -0.1},
		{0, -0.1, 0.2, 0.1},
	}
	if err := Write(path, channels, 8000, 16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty wav file")
	}
}

func TestWrite24Bit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out24.wav")
	channels := [][]float32{{0, 0.5, -0.5}}
	if err := Write(path, channels, 44100, 24); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
