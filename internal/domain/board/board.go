// Package board provides the toroidal game board domain model.
package board

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Cell states. Any other value is rejected at construction.
const (
	Dead  uint8 = 0
	Alive uint8 = 1
)

var (
	// ErrInvalidDimensions is returned when board dimensions are not positive.
	ErrInvalidDimensions = errors.New("invalid board dimensions")
	// ErrInvalidState is returned when cell data is not binary or does not
	// match the declared dimensions.
	ErrInvalidState = errors.New("invalid board state")
)

// Board is a finite 2D binary grid with toroidal topology: rows and columns
// wrap around, so every cell has exactly eight neighbors. The zero value is
// not usable; construct through New, FromCells or FromRows.
type Board struct {
	rows  int
	cols  int
	cells []uint8 // row-major, len == rows*cols
}

// New creates a board of the given dimensions with all cells dead.
func New(rows, cols int) (Board, error) {
	if rows < 1 || cols < 1 {
		return Board{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return Board{
		rows:  rows,
		cols:  cols,
		cells: make([]uint8, rows*cols),
	}, nil
}

// FromCells creates a board from row-major cell data. The slice is copied,
// so the caller keeps ownership of its own buffer.
func FromCells(rows, cols int, cells []uint8) (Board, error) {
	b, err := New(rows, cols)
	if err != nil {
		return Board{}, err
	}
	if len(cells) != rows*cols {
		return Board{}, fmt.Errorf("%w: got %d cells, want %d", ErrInvalidState, len(cells), rows*cols)
	}
	for i, v := range cells {
		if v > Alive {
			return Board{}, fmt.Errorf("%w: cell %d has value %d", ErrInvalidState, i, v)
		}
	}
	copy(b.cells, cells)
	return b, nil
}

// FromRows creates a board from a slice of rows. All rows must have the same
// length and contain only 0 and 1 values.
func FromRows(rows [][]uint8) (Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Board{}, fmt.Errorf("%w: empty grid", ErrInvalidDimensions)
	}
	cols := len(rows[0])
	cells := make([]uint8, 0, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return Board{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidState, r, len(row), cols)
		}
		cells = append(cells, row...)
	}
	return FromCells(len(rows), cols, cells)
}

// Rows returns the number of rows.
func (b Board) Rows() int { return b.rows }

// Cols returns the number of columns.
func (b Board) Cols() int { return b.cols }

// Size returns the total number of cells.
func (b Board) Size() int { return b.rows * b.cols }

// Get returns the cell at (r, c). Coordinates must be in range.
func (b Board) Get(r, c int) uint8 {
	return b.cells[r*b.cols+c]
}

// Set writes the cell at (r, c). Coordinates must be in range; the value
// must be Dead or Alive.
func (b Board) Set(r, c int, v uint8) error {
	if v > Alive {
		return fmt.Errorf("%w: cell value %d", ErrInvalidState, v)
	}
	b.cells[r*b.cols+c] = v
	return nil
}

// Wrapped returns the cell at (r, c) with toroidal wrapping. Negative and
// out-of-range coordinates fold back onto the board.
func (b Board) Wrapped(r, c int) uint8 {
	r = ((r % b.rows) + b.rows) % b.rows
	c = ((c % b.cols) + b.cols) % b.cols
	return b.cells[r*b.cols+c]
}

// Clone returns a deep copy. Mutating the clone never affects the source.
func (b Board) Clone() Board {
	cells := make([]uint8, len(b.cells))
	copy(cells, b.cells)
	return Board{rows: b.rows, cols: b.cols, cells: cells}
}

// Cells returns a copy of the row-major cell data.
func (b Board) Cells() []uint8 {
	cells := make([]uint8, len(b.cells))
	copy(cells, b.cells)
	return cells
}

// AliveCount returns the number of alive cells.
func (b Board) AliveCount() int {
	n := 0
	for _, v := range b.cells {
		if v == Alive {
			n++
		}
	}
	return n
}

// AlivePercent returns the alive-cell share as a percentage of the board size.
func (b Board) AlivePercent() float64 {
	if len(b.cells) == 0 {
		return 0
	}
	return float64(b.AliveCount()) / float64(len(b.cells)) * 100
}

// Empty reports whether every cell is dead.
func (b Board) Empty() bool {
	for _, v := range b.cells {
		if v == Alive {
			return false
		}
	}
	return true
}

// Equal reports whether both boards have the same dimensions and cells.
func (b Board) Equal(other Board) bool {
	return b.rows == other.rows && b.cols == other.cols && bytes.Equal(b.cells, other.cells)
}

// Fingerprint returns a BLAKE2b-256 digest over the dimensions and cell data.
// Equal boards always produce equal fingerprints.
func (b Board) Fingerprint() [32]byte {
	buf := make([]byte, 16+len(b.cells))
	binary.BigEndian.PutUint64(buf[0:8], uint64(b.rows))
	binary.BigEndian.PutUint64(buf[8:16], uint64(b.cols))
	copy(buf[16:], b.cells)
	return blake2b.Sum256(buf)
}

// String renders the board in plaintext form, one row per line,
// '.' for dead cells and 'O' for alive cells.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow((b.cols + 1) * b.rows)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			if b.Get(r, c) == Alive {
				sb.WriteByte('O')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
