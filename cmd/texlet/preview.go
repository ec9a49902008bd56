package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/texlet/texlet/preview"
)

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Preview a scratchpad file in the terminal",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "once",
				Usage: "render once and exit instead of watching",
			},
		},
		Action: runPreview,
	}
}

func runPreview(_ context.Context, cmd *cli.Command) error {
	path, err := singleFileArg(cmd)
	if err != nil {
		return err
	}

	// Without a terminal the interactive view cannot run; fall back to a
	// single render, which also covers piping into a pager.
	if cmd.Bool("once") || !isatty.IsTerminal(os.Stdout.Fd()) {
		out, err := preview.Render(path)
		if err != nil {
			return err
		}

		fmt.Print(out)

		return nil
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so the watcher logs nowhere.
	return preview.Run(path, cfg, zap.NewNop(), os.Stdout)
}
