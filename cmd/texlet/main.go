// Package main provides the texlet CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/texlet/texlet"
)

var version = "dev"

var errSingleFile = errors.New("exactly one file argument is required")

func main() {
	app := &cli.Command{
		Name:    "texlet",
		Version: version,
		Usage:   "LaTeX scratchpad renderer and live preview tool",
		Commands: []*cli.Command{
			renderCommand(),
			serveCommand(),
			previewCommand(),
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "config file (discovered from the file's directory when unset)",
		Sources: cli.EnvVars("TEXLET_CONFIG"),
	}
}

// loadConfig resolves the effective config for path. An explicit --config
// wins; otherwise discovery walks up from the file's directory, and no
// config file at all means defaults.
func loadConfig(cmd *cli.Command, path string) (*texlet.Config, error) {
	if file := cmd.String("config"); file != "" {
		return texlet.LoadConfigFile(file)
	}

	cfg, err := texlet.LoadConfig(filepath.Dir(path))
	if errors.Is(err, texlet.ErrConfigNotFound) {
		return &texlet.Config{}, nil
	}

	return cfg, err
}

func singleFileArg(cmd *cli.Command) (string, error) {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return "", errSingleFile
	}

	return args[0], nil
}

// stderrLogger builds a development logger on stderr, keeping stdout
// free for command output.
func stderrLogger() (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	return config.Build()
}
