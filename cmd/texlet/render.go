package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/texlet/texlet/render"
)

const filePermissions = 0o600

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a scratchpad file to an HTML fragment",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "write the fragment to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:    "renderer",
				Aliases: []string{"r"},
				Usage:   "math renderer to use (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "exit 1 when any fragment fails to render",
			},
		},
		Action: runRender,
	}
}

func runRender(_ context.Context, cmd *cli.Command) error {
	path, err := singleFileArg(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	name := cmd.String("renderer")
	if name == "" {
		name = cfg.RendererFor(path)
	}

	math, err := render.NewMath(name)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: file path from user input is expected
	if err != nil {
		return err
	}

	res := render.New(math).Render(string(data))
	fragment := render.HTML(res.Root)

	// Failed spans still render, as error or opaque nodes, so the
	// fragment is emitted either way and the failures go to stderr.
	if res.Failures > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d fragment(s) failed: %s\n", res.Failures, res.Banner)
	}

	if out := cmd.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(fragment), filePermissions); err != nil {
			return err
		}
	} else {
		fmt.Println(fragment)
	}

	if cmd.Bool("strict") && res.Failures > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
