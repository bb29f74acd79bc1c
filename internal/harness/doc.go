// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package harness runs a single bounded VM session: boot the guest, wait for
// its console, interact and tear everything down.
package harness
