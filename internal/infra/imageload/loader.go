// Package imageload converts raster images into initial boards.
package imageload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/nfnt/resize"

	"lifebench/internal/domain/board"
)

// ErrInvalidBounds is returned when the requested board bounds are not
// positive.
var ErrInvalidBounds = errors.New("invalid board bounds")

// Luminance range after contrast stretching. Keeping headroom at both
// ends stops dithering from washing out near-saturated photos.
const (
	stretchLow  = 20.0
	stretchHigh = 235.0
)

// Loader decodes PNG, JPEG and GIF images and binarizes them into
// boards. Dark pixels become live cells.
type Loader struct {
	dither bool
}

// NewLoader creates a loader that binarizes with Floyd-Steinberg error
// diffusion, which preserves shading in photographic sources.
func NewLoader() *Loader {
	return &Loader{dither: true}
}

// NewThresholdLoader creates a loader that binarizes against the mean
// luminance. Hard edged sources such as logos come out cleaner without
// diffusion noise.
func NewThresholdLoader() *Loader {
	return &Loader{dither: false}
}

// Load reads the image at path and converts it into a board no larger
// than maxRows by maxCols, preserving the aspect ratio.
func (l *Loader) Load(ctx context.Context, path string, maxRows, maxCols int) (board.Board, error) {
	if maxRows < 1 || maxCols < 1 {
		return board.Board{}, fmt.Errorf("%w: %dx%d", ErrInvalidBounds, maxRows, maxCols)
	}
	if err := ctx.Err(); err != nil {
		return board.Board{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return board.Board{}, fmt.Errorf("read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return board.Board{}, fmt.Errorf("decode image: %w", err)
	}

	rows, cols := fitBounds(img.Bounds().Dy(), img.Bounds().Dx(), maxRows, maxCols)
	scaled := resize.Resize(uint(cols), uint(rows), img, resize.Lanczos3)

	gray := grayscale(scaled, rows, cols)
	stretchContrast(gray)

	var cells []uint8
	if l.dither {
		cells = ditherFloydSteinberg(gray, rows, cols)
	} else {
		cells = thresholdMean(gray)
	}

	b, err := board.FromCells(rows, cols, cells)
	if err != nil {
		return board.Board{}, fmt.Errorf("build board: %w", err)
	}

	hash := sha256.Sum256(data)
	slog.Debug("ImageLoader: loaded image",
		"path", path,
		"format", format,
		"rows", rows,
		"cols", cols,
		"alive", b.AliveCount(),
		"sha256", hex.EncodeToString(hash[:8]))

	return b, nil
}

// fitBounds scales srcRows x srcCols to the largest size that fits in
// maxRows x maxCols without changing the aspect ratio.
func fitBounds(srcRows, srcCols, maxRows, maxCols int) (rows, cols int) {
	scaleR := float64(maxRows) / float64(srcRows)
	scaleC := float64(maxCols) / float64(srcCols)
	scale := scaleR
	if scaleC < scale {
		scale = scaleC
	}

	rows = int(float64(srcRows) * scale)
	cols = int(float64(srcCols) * scale)
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if rows > maxRows {
		rows = maxRows
	}
	if cols > maxCols {
		cols = maxCols
	}
	return rows, cols
}

// grayscale flattens the image into row major luminance values.
func grayscale(img image.Image, rows, cols int) []float64 {
	gray := make([]float64, rows*cols)
	min := img.Bounds().Min
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g := color.GrayModel.Convert(img.At(min.X+c, min.Y+r)).(color.Gray)
			gray[r*cols+c] = float64(g.Y)
		}
	}
	return gray
}

// stretchContrast rescales the luminance range onto
// [stretchLow, stretchHigh]. Flat images collapse to stretchLow.
func stretchContrast(gray []float64) {
	if len(gray) == 0 {
		return
	}

	lo, hi := gray[0], gray[0]
	for _, v := range gray {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi-lo < 1e-9 {
		for i := range gray {
			gray[i] = stretchLow
		}
		return
	}

	scale := (stretchHigh - stretchLow) / (hi - lo)
	for i := range gray {
		gray[i] = stretchLow + (gray[i]-lo)*scale
	}
}

// thresholdMean marks cells darker than the mean luminance as alive.
func thresholdMean(gray []float64) []uint8 {
	var sum float64
	for _, v := range gray {
		sum += v
	}
	mean := sum / float64(len(gray))

	cells := make([]uint8, len(gray))
	for i, v := range gray {
		if v < mean {
			cells[i] = 1
		}
	}
	return cells
}

// ditherFloydSteinberg binarizes at mid gray and diffuses the
// quantization error onto unvisited neighbors. Mutates gray.
func ditherFloydSteinberg(gray []float64, rows, cols int) []uint8 {
	cells := make([]uint8, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			old := gray[i]
			var quantized float64
			if old > 127 {
				quantized = 255
			} else {
				cells[i] = 1
			}

			qerr := old - quantized
			if c+1 < cols {
				gray[i+1] += qerr * 7 / 16
			}
			if r+1 < rows {
				if c > 0 {
					gray[i+cols-1] += qerr * 3 / 16
				}
				gray[i+cols] += qerr * 5 / 16
				if c+1 < cols {
					gray[i+cols+1] += qerr * 1 / 16
				}
			}
		}
	}
	return cells
}
