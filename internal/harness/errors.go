// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness

import "errors"

var (
	// ErrInvalidSpec is returned if the [Spec] is not usable.
	ErrInvalidSpec = errors.New("invalid spec")

	// ErrBootTimeout is returned if the VM did not become ready within the
	// boot timeout.
	ErrBootTimeout = errors.New("boot timeout")

	// ErrProcessExitedEarly is returned if the VM process exited before its
	// console became ready.
	ErrProcessExitedEarly = errors.New("VM process exited early")
)
