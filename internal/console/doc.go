// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package console drives a single interactive session on a guest's serial
// console exposed via TCP.
//
// The console is a plain terminal byte stream without any framing. A
// [Session] waits for the shell prompt to show up in the accumulated stream,
// optionally runs one command suffixed with an exit code sentinel and
// recovers the command's output and exit code from the transcript.
//
// All reads, buffer mutations and state transitions happen on the goroutine
// calling [Session.Run].
package console
