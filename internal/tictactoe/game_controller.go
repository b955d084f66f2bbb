package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
)

// Activate applies a cell activation to game and returns the resulting state.
// Illegal activations (occupied cell, finished game, out of range) are rejected
// silently: the returned game equals the input and accepted is false.
func Activate(game entity.Game, cell int) (entity.Game, bool) {
	board, err := entity.Place(game.Board, game.Turn, cell)
	if err != nil {
		return game, false
	}

	game.Board = board
	game.Turn = entity.NextTurn(game.Turn)

	return game, true
}

// Restart returns the initial state of game regardless of its outcome.
func Restart(game entity.Game) entity.Game {
	game.Board, game.Turn = entity.Restart()

	return game
}

// Listener is notified with the new state after every accepted transition.
type Listener func(game entity.Game)

// GameController owns the game of one session and notifies listeners on change.
// It is not safe for concurrent use; events are handled one at a time.
type GameController struct {
	game      entity.Game
	listeners map[int]Listener
	nextID    int
}

func NewGameController(game *entity.Game) *GameController {
	return &GameController{
		game:      *game,
		listeners: make(map[int]Listener),
	}
}

// Game returns a copy of the current state.
func (that *GameController) Game() entity.Game {
	return that.game
}

func (that *GameController) Outcome() entity.Outcome {
	return that.game.Outcome()
}

func (that *GameController) CurrentTurn() entity.Mark {
	return that.game.CurrentTurn()
}

// OnActivate handles a cell activation and reports whether it was accepted.
func (that *GameController) OnActivate(cell int) bool {
	game, accepted := Activate(that.game, cell)
	if !accepted {
		return false
	}

	that.game = game
	that.notify()

	return true
}

// OnRestart resets the game unconditionally.
func (that *GameController) OnRestart() {
	that.game = Restart(that.game)
	that.notify()
}

// Subscribe registers listener and returns a function that removes it.
func (that *GameController) Subscribe(listener Listener) func() {
	id := that.nextID
	that.nextID++
	that.listeners[id] = listener

	return func() {
		delete(that.listeners, id)
	}
}

func (that *GameController) notify() {
	for id := range that.nextID {
		if listener, ok := that.listeners[id]; ok {
			listener(that.game)
		}
	}
}
