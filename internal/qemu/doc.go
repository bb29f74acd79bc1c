// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu provides utilities for composing the invocation that builds
// and runs a guest system in QEMU via the build tree's "make justrun" target.
//
// The guest console is exposed on a local TCP port in server mode. QEMU blocks
// until a client connects to that port and announces this on its error
// stream, which is used as readiness signal by the supervisor.
package qemu
