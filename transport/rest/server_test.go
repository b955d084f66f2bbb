package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/internal/repository"
	"github.com/rocketscienceinc/tictactoe-local/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-local/transport/session"
)

const cookieName = "ttt_session"

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestClient(t *testing.T, extra map[string]http.Handler) *testClient {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	games := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(time.Hour))
	sessions := session.NewManager(logger, []byte("secret"), cookieName, time.Hour)

	server, err := New(logger, games, sessions, extra)
	require.NoError(t, err)

	return &testClient{t: t, handler: server.Handler()}
}

func (that *testClient) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if that.cookie != nil {
		req.AddCookie(that.cookie)
	}

	rec := httptest.NewRecorder()
	that.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == cookieName {
			that.cookie = cookie
		}
	}

	return rec
}

func (that *testClient) game(method, target string) gameResponse {
	rec := that.do(method, target)
	require.Equal(that.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp gameResponse
	require.NoError(that.t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestServer_Ping(t *testing.T) {
	client := newTestClient(t, nil)

	rec := client.do(http.MethodGet, "/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Nil(t, client.cookie)
}

func TestServer_Page(t *testing.T) {
	t.Run("Renders a fresh game", func(t *testing.T) {
		client := newTestClient(t, nil)

		rec := client.do(http.MethodGet, "/")

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Turn: Player X")
		assert.Contains(t, body, `aria-label="Square 1, empty"`)
		assert.Equal(t, 9, strings.Count(body, `role="gridcell"`))
		assert.Equal(t, 1, strings.Count(body, `tabindex="0"`))
		assert.NotNil(t, client.cookie)
	})

	t.Run("Moves the focus to the requested cell", func(t *testing.T) {
		client := newTestClient(t, nil)

		body := client.do(http.MethodGet, "/?focus=7").Body.String()

		assert.Regexp(t, `data-index="7"[^>]*tabindex="0"`, body)
	})
}

func TestServer_FormFlow(t *testing.T) {
	client := newTestClient(t, nil)

	// When: X takes the center through the form fallback
	rec := client.do(http.MethodPost, "/cells/4")

	// Then: the browser is sent back to the page with the focus kept
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?focus=4", rec.Header().Get("Location"))

	body := client.do(http.MethodGet, "/").Body.String()
	assert.Contains(t, body, "Turn: Player O")
	assert.Contains(t, body, `aria-label="Square 5, contains X"`)

	// When: the game is restarted
	rec = client.do(http.MethodPost, "/restart")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	body = client.do(http.MethodGet, "/").Body.String()
	assert.Contains(t, body, "Turn: Player X")
	assert.Contains(t, body, `aria-label="Square 5, empty"`)
}

func TestServer_API(t *testing.T) {
	t.Run("Plays a game to a win", func(t *testing.T) {
		client := newTestClient(t, nil)

		for _, cell := range []int{0, 3, 1, 4} {
			resp := client.game(http.MethodPost, "/api/game/cells/"+strconv.Itoa(cell))
			require.NotNil(t, resp.Accepted)
			require.True(t, *resp.Accepted)
		}

		resp := client.game(http.MethodPost, "/api/game/cells/2")

		assert.Equal(t, entity.StatusWin, resp.Page.Outcome.Status)
		assert.Equal(t, entity.PlayerX, resp.Page.Outcome.Winner)
		assert.Equal(t, "Winner: Player X", resp.Page.Status)
		assert.Equal(t, []int{0, 1, 2}, resp.Page.Outcome.Line)

		// And: further moves are ignored
		resp = client.game(http.MethodPost, "/api/game/cells/8")
		require.NotNil(t, resp.Accepted)
		assert.False(t, *resp.Accepted)
		assert.Equal(t, entity.EmptyCell, resp.Game.Board[8])
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		client := newTestClient(t, nil)

		client.game(http.MethodPost, "/api/game/cells/4")
		resp := client.game(http.MethodPost, "/api/game/cells/4")

		assert.False(t, *resp.Accepted)
		assert.Equal(t, entity.PlayerO, resp.Game.Turn)
	})

	t.Run("Out of range cell is ignored", func(t *testing.T) {
		client := newTestClient(t, nil)

		resp := client.game(http.MethodPost, "/api/game/cells/9")

		assert.False(t, *resp.Accepted)
		assert.Equal(t, entity.Board{}, resp.Game.Board)
	})

	t.Run("Non numeric cell is a bad request", func(t *testing.T) {
		client := newTestClient(t, nil)

		rec := client.do(http.MethodPost, "/api/game/cells/center")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Restart keeps nothing but the id", func(t *testing.T) {
		client := newTestClient(t, nil)

		first := client.game(http.MethodPost, "/api/game/cells/0")
		resp := client.game(http.MethodPost, "/api/game/restart")

		assert.Equal(t, first.Game.ID, resp.Game.ID)
		assert.Equal(t, entity.Board{}, resp.Game.Board)
		assert.Equal(t, entity.PlayerX, resp.Game.Turn)
		assert.Nil(t, resp.Accepted)
	})

	t.Run("Sessions are isolated", func(t *testing.T) {
		alice := newTestClient(t, nil)
		bob := &testClient{t: t, handler: alice.handler}

		alice.game(http.MethodPost, "/api/game/cells/0")
		resp := bob.game(http.MethodGet, "/api/game")

		assert.Equal(t, entity.Board{}, resp.Game.Board)
	})
}

func TestServer_EndSession(t *testing.T) {
	client := newTestClient(t, nil)

	// Given: a session with a move played
	first := client.game(http.MethodPost, "/api/game/cells/4")

	// When: the session is ended
	rec := client.do(http.MethodDelete, "/api/session")

	// Then: the cookie is expired
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, client.cookie)
	assert.Empty(t, client.cookie.Value)
	assert.Less(t, client.cookie.MaxAge, 0)

	// And: the next request starts over in a new session
	resp := client.game(http.MethodGet, "/api/game")
	assert.NotEqual(t, first.Game.ID, resp.Game.ID)
	assert.Equal(t, entity.Board{}, resp.Game.Board)
	assert.NotEmpty(t, client.cookie.Value)
}

func TestServer_Static(t *testing.T) {
	client := newTestClient(t, nil)

	rec := client.do(http.MethodGet, "/static/app.js")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cell:activate")
}

func TestServer_Extra(t *testing.T) {
	client := newTestClient(t, map[string]http.Handler{
		"/ws": http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := session.FromContext(r.Context())
			assert.True(t, ok)
			w.WriteHeader(http.StatusTeapot)
		}),
	})

	rec := client.do(http.MethodGet, "/ws")

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
