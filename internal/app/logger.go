// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"log/slog"
	"os"
	"time"

	console "github.com/phsym/console-slog"

	"codeberg.org/chostback/chostback/configs"
)

// initLogger sets the process default logger: a console handler on stderr,
// with a brighter theme in dev mode.
func initLogger() {
	theme := console.NewDefaultTheme()
	if configs.Config.DevMode {
		theme = console.NewBrightTheme()
	}

	handler := console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:      configs.Config.LogLevel,
		Theme:      theme,
		TimeFormat: time.TimeOnly,
	})

	slog.SetDefault(slog.New(handler))
}
