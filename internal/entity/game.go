package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-local/internal/apperror"
)

// Mark is the content of a cell: one of the two player symbols or EmptyCell.
type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

// The board is a 3x3 grid.
const (
	BoardSize = 9
	BoardSide = 3
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWin        Status = "win"
	StatusDraw       Status = "draw"
)

var (
	ErrInvalidCell = errors.New("invalid cell index")
	ErrInvalidMark = errors.New("invalid mark")

	// WinCombos are checked in this order: rows, columns, diagonals.
	WinCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Board holds the cells in row-major order: cell i is at row i/3, column i%3.
type Board [BoardSize]Mark

// Outcome is derived from a board and never stored.
type Outcome struct {
	Status Status `json:"status"`
	Winner Mark   `json:"winner,omitempty"`
	Line   []int  `json:"line,omitempty"`
}

// IsTerminal reports whether no further placements are accepted.
func (that Outcome) IsTerminal() bool {
	return that.Status != StatusInProgress
}

// Game is the state of one session: the board and the mark to be placed next.
type Game struct {
	ID    string `json:"id"`
	Board Board  `json:"board"`
	Turn  Mark   `json:"turn"`
}

// NewGame returns a game in its initial state.
func NewGame(id string) *Game {
	board, turn := Restart()

	return &Game{
		ID:    id,
		Board: board,
		Turn:  turn,
	}
}

func (that *Game) Outcome() Outcome {
	return DetermineOutcome(that.Board)
}

func (that *Game) CurrentTurn() Mark {
	return that.Turn
}

func (that *Game) IsOver() bool {
	return that.Outcome().IsTerminal()
}

// IsValid reports whether m is one of the two player marks.
func (m Mark) IsValid() bool {
	return m == PlayerX || m == PlayerO
}

func (m Mark) IsEmpty() bool {
	return m == EmptyCell
}

// Row and Col map a cell index to its grid coordinates.
func Row(cell int) int { return cell / BoardSide }

func Col(cell int) int { return cell % BoardSide }

// Index is the inverse of Row and Col.
func Index(row, col int) int { return row*BoardSide + col }

// IsFull reports whether every cell is occupied.
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell.IsEmpty() {
			return false
		}
	}

	return true
}

// DetermineOutcome evaluates every board, including ones unreachable in play.
// When several lines are complete the first one in WinCombos order wins.
func DetermineOutcome(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if !a.IsEmpty() && a == b && b == c {
			return Outcome{
				Status: StatusWin,
				Winner: a,
				Line:   []int{combo[0], combo[1], combo[2]},
			}
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return Outcome{Status: StatusInProgress}
	}

	return Outcome{Status: StatusDraw}
}

// Place returns a copy of board with turn placed at cell.
// On any error the input board is returned unchanged.
func Place(board Board, turn Mark, cell int) (Board, error) {
	if cell < 0 || cell >= BoardSize {
		return board, fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if !turn.IsValid() {
		return board, fmt.Errorf("%w: %q", ErrInvalidMark, turn)
	}

	if DetermineOutcome(board).IsTerminal() {
		return board, apperror.ErrGameFinished
	}

	if !board[cell].IsEmpty() {
		return board, apperror.ErrCellOccupied
	}

	board[cell] = turn

	return board, nil
}

// NextTurn alternates between the two marks.
func NextTurn(turn Mark) Mark {
	if turn == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Restart returns the initial state: an empty board with X to move.
func Restart() (Board, Mark) {
	return Board{}, PlayerX
}
