// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exitcode

import (
	"errors"
	"fmt"
)

// Error is the non-zero exit code of a command run in the guest. It is
// returned up to the CLI, which exits with it instead of reporting a failure.
type Error int

func (e Error) Error() string {
	return fmt.Sprintf("guest command exited with %d", e)
}

func (Error) Is(other error) bool {
	_, ok := other.(Error)
	return ok
}

// Code returns the exit code as basic int type.
func (e Error) Code() int {
	return int(e)
}

// From returns the guest exit code carried by err and whether err carries one
// at all. For nil, it returns 0. For errors not wrapping an [Error] it returns
// -1.
func From(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	var exitErr Error
	if errors.As(err, &exitErr) {
		return exitErr.Code(), true
	}

	return -1, false
}
