// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import "errors"

var (
	ErrUnknownSuite  = errors.New("unknown suite")
	ErrUnknownAction = errors.New("unknown action")
	ErrNoCases       = errors.New("suite has no cases")
	ErrMissingScript = errors.New("case script missing")
	ErrCasesFailed   = errors.New("cases failed")
)
