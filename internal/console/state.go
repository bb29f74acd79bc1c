// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

// State is the state of a [Session].
type State int

// Session states. A session starts disconnected and ends either completed or
// failed. A new connection attempt starts over at [StateConnecting].
const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingPrompt
	StateIdleExit
	StateCommandSent
	StateCompleted
	StateFailed
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingPrompt:
		return "awaiting prompt"
	case StateIdleExit:
		return "idle exit"
	case StateCommandSent:
		return "command sent"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
