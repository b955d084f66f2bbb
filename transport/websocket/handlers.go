package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleState(ctx context.Context, c *client, msg *Message) error {
	game, err := that.gameUseCase.GetGame(ctx, c.sessionID)
	if err != nil {
		that.logger.Error("failed to get game", "method", "handleState", "error", err)
		return c.sendError(msg.Action, "failed to get the game")
	}

	return c.sendState(*game)
}

// handleActivate applies a cell activation. Accepted moves reach the client
// through the hub; rejected ones produce no message at all.
func (that *Server) handleActivate(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleActivate")

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Cell == nil {
		return c.sendError(msg.Action, "cell is required")
	}

	if _, _, err := that.gameUseCase.Activate(ctx, c.sessionID, *payload.Cell); err != nil {
		log.Error("failed to activate cell", "error", err)
		return c.sendError(msg.Action, "failed to activate the cell")
	}

	return nil
}

func (that *Server) handleRestart(ctx context.Context, c *client, msg *Message) error {
	if _, err := that.gameUseCase.Restart(ctx, c.sessionID); err != nil {
		that.logger.Error("failed to restart game", "method", "handleRestart", "error", err)
		if sendErr := c.sendError(msg.Action, "failed to restart the game"); sendErr != nil {
			return fmt.Errorf("failed to send error: %w", sendErr)
		}
	}

	return nil
}
