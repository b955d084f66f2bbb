package view

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
)

// Cell is the presentation of one square.
type Cell struct {
	Index    int         `json:"index"`
	Row      int         `json:"row"`
	Col      int         `json:"col"`
	Mark     entity.Mark `json:"mark"`
	Label    string      `json:"label"`
	Disabled bool        `json:"disabled"`
	Focused  bool        `json:"focused"`
	Winning  bool        `json:"winning"`
}

// Page is everything a frontend needs to draw one game.
type Page struct {
	Cells        []Cell         `json:"cells"`
	Status       string         `json:"status"`
	Announcement string         `json:"announcement"`
	Turn         entity.Mark    `json:"turn"`
	Outcome      entity.Outcome `json:"outcome"`
	Over         bool           `json:"over"`
}

// Project renders game as a Page with the roving focus on focused.
func Project(game entity.Game, focused int) Page {
	outcome := game.Outcome()

	page := Page{
		Cells:        make([]Cell, 0, entity.BoardSize),
		Status:       Status(game.Turn, outcome),
		Announcement: Announcement(game.Turn, outcome),
		Turn:         game.Turn,
		Outcome:      outcome,
		Over:         outcome.IsTerminal(),
	}

	for i, mark := range game.Board {
		page.Cells = append(page.Cells, Cell{
			Index:    i,
			Row:      entity.Row(i),
			Col:      entity.Col(i),
			Mark:     mark,
			Label:    CellLabel(i, mark),
			Disabled: page.Over || !mark.IsEmpty(),
			Focused:  i == focused,
			Winning:  slices.Contains(outcome.Line, i),
		})
	}

	return page
}

// Rows groups the cells of p by grid row.
func (p Page) Rows() [][]Cell {
	rows := make([][]Cell, 0, entity.BoardSide)
	for start := 0; start < len(p.Cells); start += entity.BoardSide {
		rows = append(rows, p.Cells[start:min(start+entity.BoardSide, len(p.Cells))])
	}

	return rows
}

// Status is the short indicator shown above the grid.
func Status(turn entity.Mark, outcome entity.Outcome) string {
	switch outcome.Status {
	case entity.StatusWin:
		return fmt.Sprintf("Winner: Player %s", outcome.Winner)
	case entity.StatusDraw:
		return "Draw"
	default:
		return fmt.Sprintf("Turn: Player %s", turn)
	}
}

// Announcement is the sentence read out by assistive technology.
func Announcement(turn entity.Mark, outcome entity.Outcome) string {
	switch outcome.Status {
	case entity.StatusWin:
		return fmt.Sprintf("Game over. Player %s wins.", outcome.Winner)
	case entity.StatusDraw:
		return "Game over. Draw."
	default:
		return fmt.Sprintf("Player %s's turn.", turn)
	}
}

// CellLabel describes the position (1-based) and content of a cell.
func CellLabel(cell int, mark entity.Mark) string {
	if mark.IsEmpty() {
		return fmt.Sprintf("Square %d, empty", cell+1)
	}

	return fmt.Sprintf("Square %d, contains %s", cell+1, mark)
}
