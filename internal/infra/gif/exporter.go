// Package gif renders board animations as looping GIF files.
package gif

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imggif "image/gif"
	"io"

	xdraw "golang.org/x/image/draw"

	"lifebench/internal/domain/board"
	"lifebench/internal/domain/config"
)

// ErrNoFrames is returned when an export is requested without frames.
var ErrNoFrames = errors.New("no frames to export")

var (
	deadColor  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	aliveColor = color.RGBA{A: 0xFF}
)

// Exporter renders board sequences as two color GIF animations that loop
// forever.
type Exporter struct {
	cellPixels int
	delayMS    int
	maxFrames  int
}

// NewExporter creates an exporter from the GIF configuration.
func NewExporter(cfg config.GIFConfig) *Exporter {
	return &Exporter{
		cellPixels: cfg.CellPixels,
		delayMS:    cfg.DelayMS,
		maxFrames:  cfg.MaxFrames,
	}
}

// Export encodes the frames to w. Every frame must share the dimensions
// of the first one. Exports longer than the configured frame cap are
// truncated, not rejected.
func (e *Exporter) Export(ctx context.Context, w io.Writer, frames []board.Board) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if e.maxFrames > 0 && len(frames) > e.maxFrames {
		frames = frames[:e.maxFrames]
	}

	cell := e.cellPixels
	if cell < 1 {
		cell = 1
	}
	// GIF delays count in centiseconds; zero would leave the frame rate
	// to the viewer.
	delay := e.delayMS / 10
	if delay < 1 {
		delay = 1
	}

	rows, cols := frames[0].Rows(), frames[0].Cols()
	palette := color.Palette{deadColor, aliveColor}
	bounds := image.Rect(0, 0, cols*cell, rows*cell)

	anim := &imggif.GIF{LoopCount: 0}
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export cancelled at frame %d: %w", i, err)
		}
		if frame.Rows() != rows || frame.Cols() != cols {
			return fmt.Errorf("frame %d is %dx%d, want %dx%d", i, frame.Rows(), frame.Cols(), rows, cols)
		}

		img := image.NewPaletted(bounds, palette)
		renderFrame(img, frame)
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
	}

	if err := imggif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// renderFrame rasterizes one board into dst, scaling each cell up to the
// destination resolution with nearest neighbor sampling so cell edges
// stay crisp.
func renderFrame(dst *image.Paletted, frame board.Board) {
	src := image.NewPaletted(image.Rect(0, 0, frame.Cols(), frame.Rows()), dst.Palette)
	for r := 0; r < frame.Rows(); r++ {
		for c := 0; c < frame.Cols(); c++ {
			if frame.Get(r, c) == board.Alive {
				src.SetColorIndex(c, r, 1)
			}
		}
	}
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}
