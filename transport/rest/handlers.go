package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/internal/focus"
	"github.com/rocketscienceinc/tictactoe-local/internal/view"
	"github.com/rocketscienceinc/tictactoe-local/transport/session"
)

type pageData struct {
	Page view.Page
}

type gameResponse struct {
	Game     *entity.Game `json:"game"`
	Page     view.Page    `json:"page"`
	Accepted *bool        `json:"accepted,omitempty"`
}

func (that *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handlePage")

	sessionID, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	game, err := that.games.GetGame(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to get game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rover := focus.New()
	if raw := r.URL.Query().Get("focus"); raw != "" {
		if cell, err := strconv.Atoi(raw); err == nil {
			rover.Set(cell)
		}
	}

	data := pageData{Page: view.Project(*game, rover.Target(game.Board))}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := that.templates.ExecuteTemplate(w, "index.tmpl", data); err != nil {
		log.Error("failed to render page", "error", err)
	}
}

// handleActivateForm is the no-script fallback of a cell click. Rejected
// activations redirect back without any change.
func (that *Server) handleActivateForm(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleActivateForm")

	sessionID, cell, ok := that.cellRequest(w, r)
	if !ok {
		return
	}

	if _, _, err := that.games.Activate(r.Context(), sessionID, cell); err != nil {
		log.Error("failed to activate cell", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/?focus="+strconv.Itoa(cell), http.StatusSeeOther)
}

func (that *Server) handleRestartForm(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRestartForm")

	sessionID, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := that.games.Restart(r.Context(), sessionID); err != nil {
		log.Error("failed to restart game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetGame")

	sessionID, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	game, err := that.games.GetGame(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to get game", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(game, nil))
}

func (that *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleActivate")

	sessionID, cell, ok := that.cellRequest(w, r)
	if !ok {
		return
	}

	game, accepted, err := that.games.Activate(r.Context(), sessionID, cell)
	if err != nil {
		log.Error("failed to activate cell", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(game, &accepted))
}

func (that *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRestart")

	sessionID, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	game, err := that.games.Restart(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to restart game", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(game, nil))
}

// handleEndSession drops the session's game and its cookie.
func (that *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleEndSession")

	sessionID, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	if err := that.games.EndSession(r.Context(), sessionID); err != nil {
		log.Error("failed to end session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	that.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) cellRequest(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	sessionID, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return "", 0, false
	}

	cell, err := strconv.Atoi(chi.URLParam(r, "cell"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cell must be a number")
		return "", 0, false
	}

	return sessionID, cell, true
}

func newGameResponse(game *entity.Game, accepted *bool) gameResponse {
	return gameResponse{
		Game:     game,
		Page:     view.Project(*game, focus.FirstEmpty(game.Board)),
		Accepted: accepted,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
