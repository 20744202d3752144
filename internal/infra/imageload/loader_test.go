package imageload

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeSplitPNG writes a PNG whose left half is black and right half
// white, and returns its path.
func writeSplitPNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "split.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encode fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestThresholdLoader_Load(t *testing.T) {
	path := writeSplitPNG(t, 8, 8)
	l := NewThresholdLoader()

	b, err := l.Load(context.Background(), path, 8, 8)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if b.Rows() != 8 || b.Cols() != 8 {
		t.Fatalf("board is %dx%d, want 8x8", b.Rows(), b.Cols())
	}
	if got := b.AliveCount(); got != 32 {
		t.Errorf("AliveCount() = %d, want 32 (dark half alive)", got)
	}
	if b.Get(0, 0) != 1 {
		t.Error("dark pixel (0,0) should be alive")
	}
	if b.Get(0, 7) != 0 {
		t.Error("bright pixel (0,7) should be dead")
	}
}

func TestLoader_Load_Dithered(t *testing.T) {
	path := writeSplitPNG(t, 8, 8)
	l := NewLoader()

	b, err := l.Load(context.Background(), path, 8, 8)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Error diffusion flips a few pixels per region, so assert the
	// dominant population of each half instead of exact counts.
	var leftAlive, rightAlive int
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			if b.Get(r, c) != 1 {
				continue
			}
			if c < 4 {
				leftAlive++
			} else {
				rightAlive++
			}
		}
	}
	if leftAlive < 26 {
		t.Errorf("left half alive = %d/32, want at least 26", leftAlive)
	}
	if rightAlive > 6 {
		t.Errorf("right half alive = %d/32, want at most 6", rightAlive)
	}
}

func TestLoader_Load_FitsBounds(t *testing.T) {
	path := writeSplitPNG(t, 100, 50)
	l := NewThresholdLoader()

	b, err := l.Load(context.Background(), path, 20, 30)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// The limiting dimension is width: 100 -> 30 means scale 0.3.
	if b.Rows() != 15 || b.Cols() != 30 {
		t.Errorf("board is %dx%d, want 15x30", b.Rows(), b.Cols())
	}
}

func TestLoader_Load_InvalidBounds(t *testing.T) {
	l := NewLoader()

	if _, err := l.Load(context.Background(), "unused.png", 0, 10); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("Load() error = %v, want ErrInvalidBounds", err)
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	l := NewLoader()

	path := filepath.Join(t.TempDir(), "absent.png")
	if _, err := l.Load(context.Background(), path, 10, 10); err == nil {
		t.Error("Load() accepted a missing file")
	}
}

func TestLoader_Load_NotAnImage(t *testing.T) {
	l := NewLoader()

	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := l.Load(context.Background(), path, 10, 10); err == nil {
		t.Error("Load() accepted a non-image file")
	}
}

func TestLoader_Load_Cancelled(t *testing.T) {
	path := writeSplitPNG(t, 8, 8)
	l := NewLoader()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Load(ctx, path, 8, 8); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

// TestFitBounds tests aspect preserving bound fitting.
func TestFitBounds(t *testing.T) {
	tests := []struct {
		name               string
		srcRows, srcCols   int
		maxRows, maxCols   int
		wantRows, wantCols int
	}{
		{"exact fit", 10, 10, 10, 10, 10, 10},
		{"wide source limited by cols", 50, 100, 20, 30, 15, 30},
		{"tall source limited by rows", 100, 50, 20, 30, 20, 10},
		{"upscale small source", 5, 5, 20, 20, 20, 20},
		{"extreme aspect clamps to one", 1, 1000, 10, 10, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols := fitBounds(tt.srcRows, tt.srcCols, tt.maxRows, tt.maxCols)
			if rows != tt.wantRows || cols != tt.wantCols {
				t.Errorf("fitBounds() = %dx%d, want %dx%d", rows, cols, tt.wantRows, tt.wantCols)
			}
		})
	}
}
