package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/transport/session"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 16
)

type gameUseCase interface {
	GetGame(ctx context.Context, sessionID string) (*entity.Game, error)
	Activate(ctx context.Context, sessionID string, cell int) (*entity.Game, bool, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, c *client, message *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	hub         *Hub
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase, hub *Hub) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameState] = server.handleState
	server.handlers[actionCellActivate] = server.handleActivate
	server.handlers[actionGameRestart] = server.handleRestart

	return server
}

// ServeHTTP upgrades the request and serves the connection until the peer goes away.
// It expects the session middleware in front of it.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	sessionID, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(sessionID, conn)
	that.hub.register(c)
	defer func() {
		that.hub.unregister(c)
		c.close()
	}()

	go c.writePump()

	log.Info("websocket connection established")

	ctx := context.WithoutCancel(r.Context())

	if err = that.handleState(ctx, c, &Message{Action: actionGameState}); err != nil {
		log.Error("failed to send initial state", "error", err)
		return
	}

	that.handleMessages(ctx, c)
}

// handleMessages processes messages from the client in arrival order.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.Info("connection closed", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Info("failed to unmarshal message", "error", err)
			if err = c.sendError("", "malformed message"); err != nil {
				return
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			if err = c.sendError(message.Action, "unknown action"); err != nil {
				return
			}
			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			return
		}
	}
}
