package terminal

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-local/internal/view"
)

// Printer writes boards as plain lines, coloured for the terminal profile of out.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{
		w:   w,
		out: termenv.NewOutput(w, opts...),
	}
}

// Print writes the board followed by its status line.
func (that *Printer) Print(game entity.Game) error {
	outcome := game.Outcome()

	var b strings.Builder
	for row := range entity.BoardSide {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}

		cells := make([]string, 0, entity.BoardSide)
		for col := range entity.BoardSide {
			cell := entity.Index(row, col)
			cells = append(cells, " "+that.mark(game.Board[cell], slices.Contains(outcome.Line, cell))+" ")
		}
		b.WriteString(strings.Join(cells, "|"))
		b.WriteString("\n")
	}
	b.WriteString(that.out.String(view.Status(game.Turn, outcome)).Bold().String())
	b.WriteString("\n")

	if _, err := io.WriteString(that.w, b.String()); err != nil {
		return fmt.Errorf("failed to print board: %w", err)
	}

	return nil
}

// Replay plays moves on a fresh game, printing the board after every accepted move.
// Rejected moves are reported and skipped.
func (that *Printer) Replay(moves []int) (entity.Game, error) {
	ctrl := tictactoe.NewGameController(entity.NewGame("replay"))

	for i, cell := range moves {
		turn := ctrl.CurrentTurn()

		if !ctrl.OnActivate(cell) {
			if _, err := fmt.Fprintf(that.w, "move %d: square %d rejected\n", i+1, cell+1); err != nil {
				return ctrl.Game(), fmt.Errorf("failed to print move: %w", err)
			}
			continue
		}

		if _, err := fmt.Fprintf(that.w, "move %d: %s takes square %d\n", i+1, turn, cell+1); err != nil {
			return ctrl.Game(), fmt.Errorf("failed to print move: %w", err)
		}

		if err := that.Print(ctrl.Game()); err != nil {
			return ctrl.Game(), err
		}
	}

	return ctrl.Game(), nil
}

func (that *Printer) mark(mark entity.Mark, winning bool) string {
	style := that.out.String(string(mark))

	switch {
	case mark.IsEmpty():
		return "."
	case winning:
		return style.Foreground(that.out.Color("2")).Bold().String()
	case mark == entity.PlayerX:
		return style.Foreground(that.out.Color("1")).String()
	default:
		return style.Foreground(that.out.Color("4")).String()
	}
}

// ParseMoves reads a comma separated list of cell indices in 0..8.
func ParseMoves(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	moves := make([]int, 0, len(parts))
	for _, part := range parts {
		cell, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid move %q: %w", part, err)
		}
		if cell < 0 || cell >= entity.BoardSize {
			return nil, fmt.Errorf("invalid move %d: %w", cell, entity.ErrInvalidCell)
		}
		moves = append(moves, cell)
	}

	return moves, nil
}
