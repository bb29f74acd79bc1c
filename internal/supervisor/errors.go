// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package supervisor

import "errors"

var (
	// ErrPrerequisiteMissing is returned if the build tree or its platform
	// configuration is not present.
	ErrPrerequisiteMissing = errors.New("prerequisite missing")

	// ErrPlatformMismatch is returned if the platform configuration was
	// generated for a different architecture.
	ErrPlatformMismatch = errors.New("platform config does not match arch")

	// ErrNotReaped is returned by [Process.Shutdown] if the process did not
	// go away even after it was killed.
	ErrNotReaped = errors.New("process not reaped")
)
