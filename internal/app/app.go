// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package app provides the command line commands.
package app

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cristalhq/acmd"

	"codeberg.org/chostback/chostback/configs"
)

const version = "1.0.0-dev"

var commands []acmd.Command

// appFlags holds the flags shared by every command.
type appFlags struct {
	verbose bool
}

// Flags returns a [flag.FlagSet] carrying the shared flags.
func (f *appFlags) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	return fs
}

// appPreRun loads the configuration and sets up logging. Every command
// calls it after parsing its flags.
func appPreRun(flags *appFlags) error {
	if err := configs.Load(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if flags.verbose {
		configs.Config.LogLevel = slog.LevelDebug
	}

	initLogger()
	return nil
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.Any("err", err))
	os.Exit(1)
}

// Run executes the application.
func Run() {
	r := acmd.RunnerOf(commands, acmd.Config{
		AppName:        "chostback",
		AppDescription: "Dump a project's posts and convert them to static HTML",
		Version:        version,
	})

	if err := r.Run(); err != nil {
		fatal("command failed", err)
	}
}
