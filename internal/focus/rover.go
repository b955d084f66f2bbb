// Package focus keeps track of the single keyboard-focusable cell of the grid.
package focus

import "github.com/rocketscienceinc/tictactoe-local/internal/entity"

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Rover is the roving focus of one view. Until the player navigates, the target
// follows the first unoccupied cell of the board.
type Rover struct {
	cell     int
	explicit bool
}

func New() *Rover {
	return &Rover{}
}

// Target returns the cell that currently holds the focus.
func (that *Rover) Target(board entity.Board) int {
	if that.explicit {
		return that.cell
	}

	return FirstEmpty(board)
}

// Move shifts the focus one cell in dir, wrapping around the grid edges.
func (that *Rover) Move(board entity.Board, dir Direction) int {
	that.cell = Step(that.Target(board), dir)
	that.explicit = true

	return that.cell
}

// Set puts the focus on cell, e.g. after a pointer click. Out of range cells are ignored.
func (that *Rover) Set(cell int) {
	if cell < 0 || cell >= entity.BoardSize {
		return
	}

	that.cell = cell
	that.explicit = true
}

// Reset hands the focus back to the first unoccupied cell.
func (that *Rover) Reset() {
	that.cell = 0
	that.explicit = false
}

// Step returns the neighbour of cell in dir with wrap-around.
func Step(cell int, dir Direction) int {
	row, col := entity.Row(cell), entity.Col(cell)

	switch dir {
	case Up:
		row = (row + entity.BoardSide - 1) % entity.BoardSide
	case Down:
		row = (row + 1) % entity.BoardSide
	case Left:
		col = (col + entity.BoardSide - 1) % entity.BoardSide
	case Right:
		col = (col + 1) % entity.BoardSide
	}

	return entity.Index(row, col)
}

// FirstEmpty returns the first unoccupied cell, or 0 when the board is full.
func FirstEmpty(board entity.Board) int {
	for i, cell := range board {
		if cell.IsEmpty() {
			return i
		}
	}

	return 0
}
