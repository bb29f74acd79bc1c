// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

const logPrefix = "starryrun"

// setupLogging installs a charm logger as default slog handler. Progress
// messages are logged at info level, so they are shown unless quiet is set.
func setupLogging(writer io.Writer, debug, quiet bool) {
	level := log.InfoLevel

	switch {
	case debug:
		level = log.DebugLevel
	case quiet:
		level = log.WarnLevel
	}

	logger := log.NewWithOptions(writer, log.Options{
		Level:           level,
		Prefix:          logPrefix,
		ReportTimestamp: debug,
	})

	slog.SetDefault(slog.New(logger))
}
