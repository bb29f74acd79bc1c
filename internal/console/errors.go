// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import "errors"

var (
	// ErrInvalidConfig is returned if the [Config] is not usable.
	ErrInvalidConfig = errors.New("invalid console config")

	// ErrConnectionExhausted is returned if all connection attempts failed,
	// either because the console could not be connected or the connection
	// was lost before the prompt showed up.
	ErrConnectionExhausted = errors.New("console connection attempts exhausted")

	// ErrPromptNotObserved is returned if the shell prompt did not show up
	// on the console in time.
	ErrPromptNotObserved = errors.New("shell prompt not observed")

	// ErrCommandTimeout is returned if the command did not complete in time.
	// It is never retried, as the command might have side effects.
	ErrCommandTimeout = errors.New("command timed out")

	// ErrMissingCommandOutput is returned if the connection ended after the
	// command was sent but before its exit code sentinel was observed.
	ErrMissingCommandOutput = errors.New("command output missing")

	errReadTimeout = errors.New("read timeout")
)
