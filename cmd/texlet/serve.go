package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/texlet/texlet/server"
)

const shutdownTimeout = 5 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Serve a live browser preview of a scratchpad file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "listen address (overrides config)",
				Sources: cli.EnvVars("TEXLET_ADDR"),
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "do not watch the file for changes",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	path, err := singleFileArg(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	logger, err := stderrLogger()
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	srv, err := server.New(path, cfg, logger)
	if err != nil {
		return err
	}

	if !cmd.Bool("no-watch") {
		if err := srv.Watch(cfg.Debounce()); err != nil {
			return err
		}
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = cfg.ListenAddr()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
