package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/internal/focus"
	"github.com/rocketscienceinc/tictactoe-local/internal/view"
)

const (
	actionGameState    = "game:state"
	actionCellActivate = "cell:activate"
	actionGameRestart  = "game:restart"
	actionError        = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Cell *int `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Game   *entity.Game `json:"game,omitempty"`
	Page   *view.Page   `json:"page,omitempty"`
	Action string       `json:"action,omitempty"`
	Error  string       `json:"error,omitempty"`
}

var (
	errClientClosed = errors.New("client is closed")
	errSlowClient   = errors.New("client send queue is full")
)

// client is one open socket. Messages are queued and written by writePump, the
// only writer of conn; a client that lets its queue fill up is disconnected.
type client struct {
	sessionID string
	conn      *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(sessionID string, conn *websocket.Conn) *client {
	return &client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
	}
}

func (that *client) sendState(game entity.Game) error {
	page := view.Project(game, focus.FirstEmpty(game.Board))

	return that.sendMessage(actionGameState, ResponsePayload{Game: &game, Page: &page})
}

func (that *client) sendError(action, text string) error {
	return that.sendMessage(actionError, ResponsePayload{Action: action, Error: text})
}

// sendMessage queues a message without blocking.
func (that *client) sendMessage(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case <-that.done:
		return errClientClosed
	default:
	}

	select {
	case that.send <- data:
		return nil
	default:
		that.close()
		return errSlowClient
	}
}

// writePump writes queued messages until the client is closed or a write fails.
func (that *client) writePump() {
	for {
		select {
		case <-that.done:
			return
		case data := <-that.send:
			if err := that.write(data); err != nil {
				that.close()
				return
			}
		}
	}
}

func (that *client) write(data []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}
