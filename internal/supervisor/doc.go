// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package supervisor launches the guest VM as a child process and owns it
// until it is reaped.
//
// The child runs in its own process group, so teardown signals reach the
// QEMU process started by the build tool as well. While the child runs, a
// [Watcher] drains its diagnostic output and signals readiness once the
// console is waiting for a client.
package supervisor
