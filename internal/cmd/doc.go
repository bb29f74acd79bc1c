// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI command entry point for starryrun. It handles
// flag, environment and config file parsing, logging setup, error handling
// and output handling.
package cmd
