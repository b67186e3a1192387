// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package configs holds the process configuration, loaded from the
// environment.
package configs

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config is the global configuration. It is loaded by [Load] before any
// command runs and read-only afterwards.
var Config = config{
	LogLevel:  slog.LevelInfo,
	UserAgent: "chostback/1.0 (+https://codeberg.org/chostback/chostback)",
	Cohost: cohostConfig{
		Origin: "https://cohost.org",
	},
}

type config struct {
	DevMode  bool       `env:"CHOSTBACK_DEV_MODE"`
	LogLevel slog.Level `env:"CHOSTBACK_LOG_LEVEL"`

	// UserAgent is sent with every outgoing request.
	UserAgent string `env:"CHOSTBACK_USER_AGENT"`

	Cohost cohostConfig `envPrefix:"COHOST_"`
}

type cohostConfig struct {
	// Origin is the scheme and host of the source service.
	Origin string `env:"ORIGIN"`

	// Cookie is the value of the "connect.sid" session cookie. When set,
	// dumps include private and logged-in-only posts.
	Cookie string `env:"COOKIE"`
}

// Load reads the configuration from the environment on top of the
// defaults.
func Load() error {
	return env.Parse(&Config)
}
