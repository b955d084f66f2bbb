package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func play(t *testing.T, game entity.Game, cells ...int) entity.Game {
	t.Helper()

	for _, cell := range cells {
		var accepted bool
		game, accepted = Activate(game, cell)
		require.True(t, accepted, "cell %d rejected", cell)
	}

	return game
}

func TestActivate(t *testing.T) {
	t.Run("Places the current mark and switches turn", func(t *testing.T) {
		// Given: a new game
		game := *entity.NewGame("123")

		// When: cell 0 is activated
		next, accepted := Activate(game, 0)

		// Then: X is placed and it is O's turn
		require.True(t, accepted)
		expectedGame := entity.Game{
			ID:    "123",
			Board: entity.Board{entity.PlayerX},
			Turn:  entity.PlayerO,
		}
		assert.Equal(t, expectedGame, next)
	})

	t.Run("Occupied cell is a silent no-op", func(t *testing.T) {
		// Given: X occupies cell 0
		game := play(t, *entity.NewGame("123"), 0)

		// When: cell 0 is activated again
		next, accepted := Activate(game, 0)

		// Then: the state is unchanged
		assert.False(t, accepted)
		assert.Equal(t, game, next)
	})

	t.Run("Out of range cell is a silent no-op", func(t *testing.T) {
		game := *entity.NewGame("123")

		next, accepted := Activate(game, 9)

		assert.False(t, accepted)
		assert.Equal(t, game, next)
	})

	t.Run("Turn parity follows the number of placements", func(t *testing.T) {
		// Given: a new game
		game := *entity.NewGame("123")

		// When/Then: after n placements the turn is X for even n and O for odd n
		for n, cell := range []int{0, 1, 2, 3, 4, 6, 5, 7, 8} {
			if n%2 == 0 {
				require.Equal(t, entity.PlayerX, game.Turn)
			} else {
				require.Equal(t, entity.PlayerO, game.Turn)
			}
			game = play(t, game, cell)
		}
	})
}

func TestScenarios(t *testing.T) {
	t.Run("X wins the top row", func(t *testing.T) {
		// Given: X plays 0,1,2 while O plays 3,4
		game := play(t, *entity.NewGame("123"), 0, 3, 1, 4, 2)

		// Then: X wins
		outcome := game.Outcome()
		assert.Equal(t, entity.StatusWin, outcome.Status)
		assert.Equal(t, entity.PlayerX, outcome.Winner)
	})

	t.Run("Alternating fill ends in a draw", func(t *testing.T) {
		// Given: the board is filled in order 0,1,2,4,3,5,7,6,8
		game := play(t, *entity.NewGame("123"), 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: no line formed and the board is full
		assert.Equal(t, entity.Outcome{Status: entity.StatusDraw}, game.Outcome())
	})

	t.Run("Row-major fill with 6 before 5 is won by X on the last cell", func(t *testing.T) {
		// Given: the board is filled in order 0,1,2,3,4,6,5,7,8
		game := play(t, *entity.NewGame("123"), 0, 1, 2, 3, 4, 6, 5, 7, 8)

		// Then: X completes the right column with its fifth mark
		outcome := game.Outcome()
		assert.Equal(t, entity.PlayerX, outcome.Winner)
		assert.Equal(t, []int{2, 5, 8}, outcome.Line)
	})

	t.Run("No placement is accepted after a win", func(t *testing.T) {
		// Given: X has won
		game := play(t, *entity.NewGame("123"), 0, 3, 1, 4, 2)

		// When: every remaining empty cell is activated
		for _, cell := range []int{5, 6, 7, 8} {
			next, accepted := Activate(game, cell)

			// Then: the board stays the same
			assert.False(t, accepted)
			assert.Equal(t, game, next)
		}
	})
}

func TestRestart(t *testing.T) {
	t.Run("Resets a finished game", func(t *testing.T) {
		// Given: a drawn game
		game := play(t, *entity.NewGame("123"), 0, 1, 2, 4, 3, 5, 7, 6, 8)
		require.Equal(t, entity.StatusDraw, game.Outcome().Status)

		// When: the game is restarted
		next := Restart(game)

		// Then: the board is empty, X moves and the ID is kept
		assert.Equal(t, *entity.NewGame("123"), next)
	})

	t.Run("Resets an ongoing game on O's turn", func(t *testing.T) {
		game := play(t, *entity.NewGame("123"), 4)

		next := Restart(game)

		assert.Equal(t, entity.Board{}, next.Board)
		assert.Equal(t, entity.PlayerX, next.Turn)
	})
}

func TestGameController(t *testing.T) {
	t.Run("Notifies listeners on accepted transitions only", func(t *testing.T) {
		// Given: a controller with one listener
		controller := NewGameController(entity.NewGame("123"))

		var seen []entity.Game
		controller.Subscribe(func(game entity.Game) {
			seen = append(seen, game)
		})

		// When: a legal move, an illegal move and a restart happen
		require.True(t, controller.OnActivate(4))
		require.False(t, controller.OnActivate(4))
		controller.OnRestart()

		// Then: the listener saw the move and the restart
		require.Len(t, seen, 2)
		assert.Equal(t, entity.PlayerX, seen[0].Board[4])
		assert.Equal(t, entity.PlayerO, seen[0].Turn)
		assert.Equal(t, *entity.NewGame("123"), seen[1])
	})

	t.Run("Unsubscribed listeners are not called", func(t *testing.T) {
		controller := NewGameController(entity.NewGame("123"))

		calls := 0
		unsubscribe := controller.Subscribe(func(entity.Game) { calls++ })
		unsubscribe()

		controller.OnActivate(0)

		assert.Zero(t, calls)
	})

	t.Run("Exposes outcome and current turn", func(t *testing.T) {
		controller := NewGameController(entity.NewGame("123"))

		for _, cell := range []int{0, 3, 1, 4, 2} {
			require.True(t, controller.OnActivate(cell))
		}

		assert.Equal(t, entity.PlayerX, controller.Outcome().Winner)
		assert.Equal(t, entity.PlayerO, controller.CurrentTurn())
		assert.False(t, controller.OnActivate(8))
		assert.Equal(t, entity.EmptyCell, controller.Game().Board[8])
	})
}
