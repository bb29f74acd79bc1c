// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"fmt"
	"time"
)

const (
	// DefaultPrompt is the prompt of the guest's shell.
	DefaultPrompt = "starry:~#"

	// DefaultExitInstruction terminates the guest's interactive shell.
	DefaultExitInstruction = "exit"

	DefaultAttempts    = 5
	DefaultRetryDelay  = time.Second
	DefaultDialTimeout = 5 * time.Second
	DefaultReadTimeout = 2 * time.Second
)

// Config is the configuration of a [Session].
type Config struct {
	// Address of the console in "host:port" form.
	Address string

	// Prompt is the literal string signaling the shell is ready for input.
	Prompt string

	// Command to run once the prompt is observed. If empty, the shell is
	// exited right away.
	Command string

	// ExitInstruction is sent to leave the interactive shell.
	ExitInstruction string

	// Attempts is the number of connection attempts.
	Attempts uint

	// RetryDelay is the fixed delay between connection attempts.
	RetryDelay time.Duration

	// DialTimeout bounds each single connect.
	DialTimeout time.Duration

	// ReadTimeout bounds each single receive. It is the polling interval for
	// all other timeouts.
	ReadTimeout time.Duration

	// PromptTimeout bounds the wait for the prompt per connection attempt.
	PromptTimeout time.Duration

	// CommandTimeout bounds the time between sending the command and
	// observing its exit code sentinel.
	CommandTimeout time.Duration
}

// DefaultConfig returns a [Config] for the given address with all optional
// values set to defaults.
func DefaultConfig(address string) Config {
	return Config{
		Address:         address,
		Prompt:          DefaultPrompt,
		ExitInstruction: DefaultExitInstruction,
		Attempts:        DefaultAttempts,
		RetryDelay:      DefaultRetryDelay,
		DialTimeout:     DefaultDialTimeout,
		ReadTimeout:     DefaultReadTimeout,
		PromptTimeout:   time.Minute,
		CommandTimeout:  10 * time.Minute,
	}
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	switch {
	case c.Address == "":
		return fmt.Errorf("%w: no address", ErrInvalidConfig)
	case c.Prompt == "":
		return fmt.Errorf("%w: no prompt", ErrInvalidConfig)
	case c.ExitInstruction == "":
		return fmt.Errorf("%w: no exit instruction", ErrInvalidConfig)
	case c.Attempts < 1:
		return fmt.Errorf("%w: attempts must be at least 1", ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: negative retry delay", ErrInvalidConfig)
	case c.DialTimeout <= 0,
		c.ReadTimeout <= 0,
		c.PromptTimeout <= 0,
		c.CommandTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}

	return nil
}
