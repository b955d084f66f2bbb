// Package terminal plays the game in a terminal: interactively on a tcell screen,
// or as a scripted replay printed with termenv styles.
package terminal

import (
	"context"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/internal/focus"
	"github.com/rocketscienceinc/tictactoe-local/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-local/internal/view"
)

const (
	originX   = 2
	originY   = 2
	cellWidth = 4

	helpText = "arrows move  enter/space play  r restart  q quit"
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleX       = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleO       = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleWin     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleHelp    = tcell.StyleDefault.Dim(true)
)

type UI struct {
	logger *slog.Logger
	screen tcell.Screen
	ctrl   *tictactoe.GameController
	rover  *focus.Rover
}

// NewUI binds ctrl to an initialized screen. The screen is redrawn on every
// accepted transition of ctrl.
func NewUI(logger *slog.Logger, screen tcell.Screen, ctrl *tictactoe.GameController) *UI {
	ui := &UI{
		logger: logger.With("component", "terminal"),
		screen: screen,
		ctrl:   ctrl,
		rover:  focus.New(),
	}

	ctrl.Subscribe(func(game entity.Game) {
		if game.Board == (entity.Board{}) {
			ui.rover.Reset()
		}
		ui.draw()
	})

	return ui
}

// Run handles key events until the player quits or ctx is done.
func (that *UI) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = that.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	that.draw()

	for {
		switch ev := that.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			return ctx.Err()
		case *tcell.EventResize:
			that.screen.Sync()
			that.draw()
		case *tcell.EventKey:
			if !that.handleKey(ev) {
				return nil
			}
		}
	}
}

// handleKey applies one key press and reports whether the loop should go on.
func (that *UI) handleKey(ev *tcell.EventKey) bool {
	board := that.ctrl.Game().Board

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		that.rover.Move(board, focus.Up)
	case tcell.KeyDown:
		that.rover.Move(board, focus.Down)
	case tcell.KeyLeft:
		that.rover.Move(board, focus.Left)
	case tcell.KeyRight:
		that.rover.Move(board, focus.Right)
	case tcell.KeyEnter:
		that.activate(board)
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			that.activate(board)
		case 'r', 'R':
			that.ctrl.OnRestart()
		case 'q', 'Q':
			return false
		}
	}

	that.draw()

	return true
}

func (that *UI) activate(board entity.Board) {
	cell := that.rover.Target(board)
	that.rover.Set(cell)

	if !that.ctrl.OnActivate(cell) {
		that.logger.Debug("activation rejected", "method", "activate", "cell", cell)
	}
}

func (that *UI) draw() {
	game := that.ctrl.Game()
	page := view.Project(game, that.rover.Target(game.Board))

	that.screen.Clear()

	drawText(that.screen, originX, 0, styleTitle, "Tic Tac Toe")

	for _, cell := range page.Cells {
		x := originX + cell.Col*cellWidth
		y := originY + cell.Row*2

		style := markStyle(cell.Mark)
		if cell.Winning {
			style = styleWin
		}
		if cell.Focused {
			style = style.Reverse(true)
		}

		mark := " "
		if !cell.Mark.IsEmpty() {
			mark = string(cell.Mark)
		}
		drawText(that.screen, x, y, style, " "+mark+" ")

		if cell.Col < entity.BoardSide-1 {
			that.screen.SetContent(x+3, y, '|', nil, styleDefault)
		}
		if cell.Row < entity.BoardSide-1 {
			drawText(that.screen, x, y+1, styleDefault, "---")
			if cell.Col < entity.BoardSide-1 {
				that.screen.SetContent(x+3, y+1, '+', nil, styleDefault)
			}
		}
	}

	statusY := originY + entity.BoardSide*2
	drawText(that.screen, originX, statusY, styleTitle, page.Status)
	drawText(that.screen, originX, statusY+1, styleDefault, page.Announcement)
	drawText(that.screen, originX, statusY+3, styleHelp, helpText)

	that.screen.Show()
}

func markStyle(mark entity.Mark) tcell.Style {
	switch mark {
	case entity.PlayerX:
		return styleX
	case entity.PlayerO:
		return styleO
	default:
		return styleDefault
	}
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
