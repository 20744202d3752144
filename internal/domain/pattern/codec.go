// Package pattern provides the plaintext pattern codec.
package pattern

import (
	"fmt"
	"strings"

	"lifebench/internal/domain/board"
)

// Decode parses a plaintext pattern. The format is line oriented: '!'
// starts a comment, '.' is a dead cell, 'O' (or '*') an alive cell. A
// leading "!Name:" comment names the pattern. Ragged rows are padded with
// dead cells to the widest row.
func Decode(text string) (Pattern, error) {
	var (
		name        string
		description string
		rows        []string
		width       int
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "!") {
			comment := strings.TrimSpace(strings.TrimPrefix(trimmed, "!"))
			switch {
			case strings.HasPrefix(comment, "Name:"):
				name = strings.TrimSpace(strings.TrimPrefix(comment, "Name:"))
			case description == "" && comment != "":
				description = comment
			}
			continue
		}
		rows = append(rows, trimmed)
		if len(trimmed) > width {
			width = len(trimmed)
		}
	}

	if len(rows) == 0 {
		return Pattern{}, fmt.Errorf("%w: no cell rows", ErrInvalidPattern)
	}

	cells := make([]uint8, 0, len(rows)*width)
	for r, row := range rows {
		for c := 0; c < width; c++ {
			if c >= len(row) {
				cells = append(cells, board.Dead)
				continue
			}
			switch row[c] {
			case '.':
				cells = append(cells, board.Dead)
			case 'O', '*':
				cells = append(cells, board.Alive)
			default:
				return Pattern{}, fmt.Errorf("%w: row %d has unexpected character %q",
					ErrInvalidPattern, r, string(row[c]))
			}
		}
	}

	p := Pattern{
		Name:        name,
		Description: description,
		Rows:        len(rows),
		Cols:        width,
		Cells:       cells,
	}
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}

// Encode renders the pattern in plaintext form, with name and description
// comments when present.
func Encode(p Pattern) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	if p.Name != "" {
		fmt.Fprintf(&sb, "!Name: %s\n", p.Name)
	}
	if p.Description != "" {
		fmt.Fprintf(&sb, "!%s\n", p.Description)
	}
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			if p.Cells[r*p.Cols+c] == board.Alive {
				sb.WriteByte('O')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
