package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/chessbuilder"
	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	deps, err := chessbuilder.New(cfg, logger)
	if err != nil {
		log.Fatalf("chess init error: %v", err)
	}

	// color.Output translates ANSI escapes on consoles that need it.
	out := color.Output
	presenter := chesspresenter.NewPresenter(
		func(message string) error {
			_, err := fmt.Fprintln(out, message)
			return err
		},
		imageSink(cfg.BoardImageDir, func(path string) {
			fmt.Fprintln(out, deps.Formatter.BoardSaved(path))
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &console{
		service:   deps.Service,
		formatter: deps.Formatter,
		presenter: presenter,
		out:       out,
		logger:    logger,
	}
	if err := c.run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("chess_console_failed", zap.Error(err))
		os.Exit(1)
	}
}

// imageSink writes board PNGs into dir. An empty dir disables images.
func imageSink(dir string, saved func(path string)) func(name string, png []byte) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	return func(name string, png []byte) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create board image dir: %w", err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("write board image: %w", err)
		}
		if saved != nil {
			saved(path)
		}
		return nil
	}
}
