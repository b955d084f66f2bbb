package rest

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/web"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	GetGame(ctx context.Context, sessionID string) (*entity.Game, error)
	Activate(ctx context.Context, sessionID string, cell int) (*entity.Game, bool, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
	EndSession(ctx context.Context, sessionID string) error
}

type sessionMiddleware interface {
	Middleware(next http.Handler) http.Handler
	Clear(w http.ResponseWriter)
}

type Server struct {
	logger    *slog.Logger
	router    *chi.Mux
	games     gameUseCase
	sessions  sessionMiddleware
	templates *template.Template
}

// New builds the router. Routes in extra are mounted behind the session middleware,
// next to the game routes.
func New(logger *slog.Logger, games gameUseCase, sessions sessionMiddleware, extra map[string]http.Handler) (*Server, error) {
	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}

	static, err := web.StaticFS()
	if err != nil {
		return nil, err
	}

	server := &Server{
		logger:    logger.With("component", "rest"),
		router:    chi.NewRouter(),
		games:     games,
		sessions:  sessions,
		templates: templates,
	}

	server.router.Use(middleware.RequestID)
	server.router.Use(middleware.RealIP)
	server.router.Use(requestLogger(server.logger))
	server.router.Use(middleware.Recoverer)

	server.router.Get("/ping", pingHandler)
	server.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static)))

	server.router.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/", server.handlePage)
		r.Post("/cells/{cell}", server.handleActivateForm)
		r.Post("/restart", server.handleRestartForm)

		r.Route("/api/game", func(r chi.Router) {
			r.Get("/", server.handleGetGame)
			r.Post("/cells/{cell}", server.handleActivate)
			r.Post("/restart", server.handleRestart)
		})

		r.Delete("/api/session", server.handleEndSession)

		for pattern, handler := range extra {
			r.Handle(pattern, handler)
		}
	})

	return server, nil
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start serves HTTP on port until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
