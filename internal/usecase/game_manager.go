package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-local/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// notifier receives every accepted transition, e.g. to push it to open sockets.
type notifier interface {
	Publish(game entity.Game)
}

// GameManager runs the input controller for every browser session.
// Events of one session are handled one at a time, in arrival order.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	notifierMu sync.RWMutex
	notifiers  []notifier

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		locks:    make(map[string]*sessionLock),
	}
}

// AddNotifier registers n to be told about accepted transitions of all sessions.
func (that *GameManager) AddNotifier(n notifier) {
	that.notifierMu.Lock()
	defer that.notifierMu.Unlock()

	that.notifiers = append(that.notifiers, n)
}

// GetGame returns the game of the session, creating a fresh one if there is none.
func (that *GameManager) GetGame(ctx context.Context, sessionID string) (*entity.Game, error) {
	unlock := that.lock(sessionID)
	defer unlock()

	return that.getOrCreateGame(ctx, sessionID)
}

// Activate applies a cell activation. Illegal activations leave the game unchanged
// and are not reported as errors; accepted reports whether the game changed.
func (that *GameManager) Activate(ctx context.Context, sessionID string, cell int) (*entity.Game, bool, error) {
	log := that.logger.With("method", "Activate")

	unlock := that.lock(sessionID)
	defer unlock()

	game, err := that.getOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	next, accepted := tictactoe.Activate(*game, cell)
	if !accepted {
		log.Debug("activation rejected", "cell", cell, "status", game.Outcome().Status)
		return game, false, nil
	}

	if err = that.updateGame(ctx, &next); err != nil {
		return nil, false, err
	}

	if outcome := next.Outcome(); outcome.IsTerminal() {
		log.Info("game over", "status", outcome.Status, "winner", outcome.Winner)
	}

	that.publish(next)

	return &next, true, nil
}

// Restart resets the session's game regardless of its outcome.
func (that *GameManager) Restart(ctx context.Context, sessionID string) (*entity.Game, error) {
	unlock := that.lock(sessionID)
	defer unlock()

	game, err := that.getOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := tictactoe.Restart(*game)
	if err = that.updateGame(ctx, &next); err != nil {
		return nil, err
	}

	that.publish(next)

	return &next, nil
}

// EndSession drops the session's game. A missing game is not an error.
func (that *GameManager) EndSession(ctx context.Context, sessionID string) error {
	unlock := that.lock(sessionID)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *GameManager) getOrCreateGame(ctx context.Context, sessionID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, sessionID)
	if err == nil {
		return game, nil
	}

	if !errors.Is(err, apperror.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	game = entity.NewGame(sessionID)
	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game created", "method", "getOrCreateGame")

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) publish(game entity.Game) {
	that.notifierMu.RLock()
	defer that.notifierMu.RUnlock()

	for _, n := range that.notifiers {
		n.Publish(game)
	}
}

// lock serializes events of one session and returns the matching unlock.
func (that *GameManager) lock(sessionID string) func() {
	that.locksMu.Lock()
	l, ok := that.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		that.locks[sessionID] = l
	}
	l.refs++
	that.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		that.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, sessionID)
		}
		that.locksMu.Unlock()
	}
}
