// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package exitcode provides the sentinel protocol for communicating the exit
// code of a shell command over an unstructured console stream.
//
// The command is suffixed with an echo of the shell's exit status variable
// wrapped in a fixed prefix and suffix. The echoed command line itself does
// not match the sentinel pattern, as "$?" is not a number.
package exitcode
