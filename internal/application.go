package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-local/internal/config"
	"github.com/rocketscienceinc/tictactoe-local/internal/repository"
	"github.com/rocketscienceinc/tictactoe-local/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-local/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-local/transport/rest"
	"github.com/rocketscienceinc/tictactoe-local/transport/session"
	"github.com/rocketscienceinc/tictactoe-local/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

const secretSize = 32

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gameRepo, closeRepo, err := newGameRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	secret, err := sessionSecret(log, conf)
	if err != nil {
		return err
	}

	gameUseCase := usecase.NewGameManager(logger, gameRepo)

	hub := websocket.NewHub(logger)
	gameUseCase.AddNotifier(hub)

	sessions := session.NewManager(logger, secret, conf.Session.CookieName, conf.Session.TTL)
	wsServer := websocket.New(logger, gameUseCase, hub)

	httpServer, err := rest.New(logger, gameUseCase, sessions, map[string]http.Handler{"/ws": wsServer})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage.Driver)

	if err = httpServer.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newGameRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	if conf.Storage.Driver != config.StorageRedis {
		return repository.NewMemoryGameRepository(conf.Session.TTL), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
		Addr:     redisAddrString,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewGameRepository(redisStorage.Connection, conf.Session.TTL), closeFn, nil
}

// sessionSecret returns the configured signing secret, or a random one that
// invalidates all cookies on restart.
func sessionSecret(log *slog.Logger, conf *config.Config) ([]byte, error) {
	if conf.Session.Secret != "" {
		return []byte(conf.Session.Secret), nil
	}

	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}

	log.Warn("session secret is not configured, using a random one")

	return secret, nil
}
