/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package logger

import (
	"io"
	"os"
	"time"

	"github.com/HamedShams/linear-pulse/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a console logger in dev and a JSON logger elsewhere. Logs go to stderr so that
// `pulse run --dry-run` can print the report on stdout.
func New(cfg config.Config) zerolog.Logger {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg config.Config, w io.Writer) zerolog.Logger {
	if cfg.AppEnv == "dev" {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
		logger := zerolog.New(output).With().Timestamp().Logger()
		log.Logger = logger
		return logger
	}
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(w).With().Timestamp().Str("app", "linear-pulse").Logger()
	log.Logger = logger
	return logger
}
