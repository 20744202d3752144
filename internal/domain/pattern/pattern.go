// Package pattern provides preset initial states and their plaintext codec.
package pattern

import (
	"errors"
	"fmt"

	"lifebench/internal/domain/board"
)

var (
	// ErrUnknownPattern is returned when a pattern ID is not in the library.
	ErrUnknownPattern = errors.New("unknown pattern")
	// ErrInvalidPattern is returned when pattern data is malformed or does
	// not fit its target board.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Category classifies how a pattern behaves over time.
type Category string

const (
	CategoryStillLife  Category = "still_life" // Never changes
	CategoryOscillator Category = "oscillator" // Repeats with a fixed period
	CategorySpaceship  Category = "spaceship"  // Translates across the board
	CategoryMethuselah Category = "methuselah" // Small start, long-lived evolution
	CategoryRandom     Category = "random"     // Seeded random fill
)

// IsValid checks if the category is one of the known values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryStillLife, CategoryOscillator, CategorySpaceship,
		CategoryMethuselah, CategoryRandom:
		return true
	default:
		return false
	}
}

// Pattern is a named arrangement of cells used as an initial state.
type Pattern struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category,omitempty"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	Cells       []uint8  `json:"cells"`
}

// Validate checks the pattern geometry and cell values. ID, name and
// category are optional so that ad-hoc decoded patterns stay valid.
func (p *Pattern) Validate() error {
	if p.Rows < 1 || p.Cols < 1 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidPattern, p.Rows, p.Cols)
	}
	if len(p.Cells) != p.Rows*p.Cols {
		return fmt.Errorf("%w: %d cells for a %dx%d grid", ErrInvalidPattern, len(p.Cells), p.Rows, p.Cols)
	}
	for i, v := range p.Cells {
		if v > board.Alive {
			return fmt.Errorf("%w: cell %d has value %d", ErrInvalidPattern, i, v)
		}
	}
	if p.Category != "" && !p.Category.IsValid() {
		return fmt.Errorf("%w: category %q", ErrInvalidPattern, p.Category)
	}
	return nil
}

// AliveCount returns the number of alive cells in the pattern.
func (p *Pattern) AliveCount() int {
	n := 0
	for _, v := range p.Cells {
		if v == board.Alive {
			n++
		}
	}
	return n
}

// Board returns the pattern as a tight board of its own dimensions.
func (p *Pattern) Board() (board.Board, error) {
	if err := p.Validate(); err != nil {
		return board.Board{}, err
	}
	return board.FromCells(p.Rows, p.Cols, p.Cells)
}

// Place stamps the pattern onto dst with its top-left corner at (top, left).
// Coordinates wrap toroidally, so a pattern may straddle the board edges,
// but its dimensions must not exceed the board's.
func (p *Pattern) Place(dst board.Board, top, left int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Rows > dst.Rows() || p.Cols > dst.Cols() {
		return fmt.Errorf("%w: %dx%d does not fit board %dx%d",
			ErrInvalidPattern, p.Rows, p.Cols, dst.Rows(), dst.Cols())
	}
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			dr := ((top+r)%dst.Rows() + dst.Rows()) % dst.Rows()
			dc := ((left+c)%dst.Cols() + dst.Cols()) % dst.Cols()
			if err := dst.Set(dr, dc, p.Cells[r*p.Cols+c]); err != nil {
				return err
			}
		}
	}
	return nil
}

// CenteredOn returns a fresh board of the given dimensions with the pattern
// placed in the center.
func (p *Pattern) CenteredOn(rows, cols int) (board.Board, error) {
	dst, err := board.New(rows, cols)
	if err != nil {
		return board.Board{}, err
	}
	top := (rows - p.Rows) / 2
	left := (cols - p.Cols) / 2
	if err := p.Place(dst, top, left); err != nil {
		return board.Board{}, err
	}
	return dst, nil
}

// Builtin returns the preset pattern library.
func Builtin() []Pattern {
	return []Pattern{
		mustPattern("block", "Block", "2x2 still life, the smallest stable pattern", CategoryStillLife,
			"OO\n"+
				"OO"),
		mustPattern("beehive", "Beehive", "Six-cell still life", CategoryStillLife,
			".OO.\n"+
				"O..O\n"+
				".OO."),
		mustPattern("blinker", "Blinker", "Period-2 oscillator flipping between a row and a column", CategoryOscillator,
			"OOO"),
		mustPattern("toad", "Toad", "Period-2 oscillator of two offset rows", CategoryOscillator,
			".OOO\n"+
				"OOO."),
		mustPattern("beacon", "Beacon", "Period-2 oscillator of two blinking blocks", CategoryOscillator,
			"OO..\n"+
				"OO..\n"+
				"..OO\n"+
				"..OO"),
		mustPattern("glider", "Glider", "Smallest spaceship, travels diagonally every 4 steps", CategorySpaceship,
			".O.\n"+
				"..O\n"+
				"OOO"),
		mustPattern("lwss", "Lightweight spaceship", "Travels horizontally every 4 steps", CategorySpaceship,
			".O..O\n"+
				"O....\n"+
				"O...O\n"+
				"OOOO."),
		mustPattern("r-pentomino", "R-pentomino", "Five cells that evolve for over a thousand generations", CategoryMethuselah,
			".OO\n"+
				"OO.\n"+
				".O."),
	}
}

// Lookup finds a builtin pattern by ID.
func Lookup(id string) (Pattern, error) {
	for _, p := range Builtin() {
		if p.ID == id {
			return p, nil
		}
	}
	return Pattern{}, fmt.Errorf("%w: %q", ErrUnknownPattern, id)
}

// IDs returns the builtin pattern IDs in library order.
func IDs() []string {
	builtin := Builtin()
	ids := make([]string, len(builtin))
	for i, p := range builtin {
		ids[i] = p.ID
	}
	return ids
}

func mustPattern(id, name, description string, category Category, text string) Pattern {
	p, err := Decode(text)
	if err != nil {
		panic(fmt.Sprintf("pattern: builtin %q: %v", id, err))
	}
	p.ID = id
	p.Name = name
	p.Description = description
	p.Category = category
	return p
}
