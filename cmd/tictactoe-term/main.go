package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/rocketscienceinc/tictactoe-local/internal/config"
	"github.com/rocketscienceinc/tictactoe-local/internal/entity"
	"github.com/rocketscienceinc/tictactoe-local/internal/terminal"
	"github.com/rocketscienceinc/tictactoe-local/internal/tictactoe"
)

func main() {
	moves := flag.String("moves", "", "comma separated cells 0-8 to replay instead of playing interactively")
	configPath := flag.String("config", "config.yml", "path to the config file")
	flag.Parse()

	if err := run(*moves, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "tictactoe: %v\n", err)
		os.Exit(1)
	}
}

func run(rawMoves, configPath string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	interactive := rawMoves == ""
	logger := config.NewLogger(logOutput(interactive), conf.LogLevel)

	if !interactive {
		moves, err := terminal.ParseMoves(rawMoves)
		if err != nil {
			return err
		}

		_, err = terminal.NewPrinter(os.Stdout).Replay(moves)
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err = screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	ctrl := tictactoe.NewGameController(entity.NewGame("local"))

	if err = terminal.NewUI(logger, screen, ctrl).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// logOutput keeps log lines off the terminal while the screen owns it.
func logOutput(interactive bool) io.Writer {
	if interactive {
		return io.Discard
	}

	return os.Stderr
}
