// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exitcode

import (
	"regexp"
	"strconv"
)

const (
	// Prefix is the fixed string the sentinel starts with.
	Prefix = "__EXIT:"

	// Suffix is the fixed string the sentinel ends with.
	Suffix = "__"
)

var sentinelRE = regexp.MustCompile(
	regexp.QuoteMeta(Prefix) + `(-?\d+)` + regexp.QuoteMeta(Suffix),
)

// Wrap returns the command line that runs the given command and echoes its
// exit status as sentinel.
func Wrap(command string) string {
	return command + "; echo " + Prefix + "$?" + Suffix
}

// Sprint creates the sentinel string for the given exit code, as the shell
// prints it.
func Sprint(exitCode int) string {
	return Prefix + strconv.Itoa(exitCode) + Suffix
}

// Parse parses the given transcript for the first sentinel.
//
// The sentinel can be anywhere in the input. Returns the exit code and whether
// it was found.
func Parse(b []byte) (int, bool) {
	match := sentinelRE.FindSubmatch(b)
	if match == nil {
		return 0, false
	}

	exitCode, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return 0, false
	}

	return exitCode, true
}

// Index returns the index of the first sentinel in s, or -1 if s does not
// contain one.
func Index(s string) int {
	loc := sentinelRE.FindStringIndex(s)
	if loc == nil {
		return -1
	}

	return loc[0]
}
