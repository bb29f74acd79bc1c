// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aibor/starryrun/internal/console"
	"github.com/aibor/starryrun/internal/qemu"
	"github.com/aibor/starryrun/internal/supervisor"
	"github.com/aibor/starryrun/internal/sys"
)

const (
	DefaultHost           = "localhost"
	DefaultPort           = 4444
	DefaultBootTimeout    = 60 * time.Second
	DefaultRetries        = 5
	DefaultCommandTimeout = 600 * time.Second
)

// Spec is the complete configuration of a single run.
type Spec struct {
	// Root is the build tree.
	Root string

	// Arch of the guest.
	Arch sys.Arch

	// PlatformConfig path. Defaults to the build tree's default config.
	PlatformConfig string

	// Executable of the build tool. Defaults to make.
	Executable string

	// QEMUArgs are additional arguments passed to QEMU.
	QEMUArgs []qemu.Argument

	// Host and Port of the guest's serial console.
	Host string
	Port int

	// BootTimeout bounds the wait for the VM's console to become ready.
	BootTimeout time.Duration

	// Retries is the number of console connection attempts.
	Retries uint

	// Command to run in the guest. If empty, the guest shell is exited
	// right away.
	Command string

	// CommandTimeout bounds the command's runtime.
	CommandTimeout time.Duration

	// PromptTimeout bounds the wait for the shell prompt per connection
	// attempt. Defaults to BootTimeout.
	PromptTimeout time.Duration

	// GracePeriod for each stage of the VM process teardown.
	GracePeriod time.Duration

	// Dialer used for connecting the console. Defaults to [net.Dialer].
	Dialer console.Dialer
}

// DefaultSpec returns a [Spec] for the given build tree with defaults set.
func DefaultSpec(root string) Spec {
	return Spec{
		Root:           root,
		Arch:           sys.AArch64,
		Host:           DefaultHost,
		Port:           DefaultPort,
		BootTimeout:    DefaultBootTimeout,
		Retries:        DefaultRetries,
		CommandTimeout: DefaultCommandTimeout,
		GracePeriod:    supervisor.DefaultGracePeriod,
	}
}

// Validate checks the spec for values that can not work.
func (s *Spec) Validate() error {
	switch {
	case s.Root == "":
		return fmt.Errorf("%w: no build root", ErrInvalidSpec)
	case s.Arch == "":
		return fmt.Errorf("%w: no arch", ErrInvalidSpec)
	case s.Port < 1 || s.Port > 65535:
		return fmt.Errorf("%w: port out of range: %d", ErrInvalidSpec, s.Port)
	case s.BootTimeout <= 0:
		return fmt.Errorf("%w: boot timeout must be positive", ErrInvalidSpec)
	case s.CommandTimeout <= 0:
		return fmt.Errorf("%w: command timeout must be positive", ErrInvalidSpec)
	case s.PromptTimeout < 0:
		return fmt.Errorf("%w: prompt timeout must not be negative", ErrInvalidSpec)
	case s.Retries < 1:
		return fmt.Errorf("%w: retries must be at least 1", ErrInvalidSpec)
	}

	return nil
}

func (s *Spec) supervisorSpec(sessionID string) supervisor.Spec {
	return supervisor.Spec{
		Root:           s.Root,
		Arch:           s.Arch,
		PlatformConfig: s.PlatformConfig,
		Port:           s.Port,
		Executable:     s.Executable,
		GracePeriod:    s.GracePeriod,
		QEMUArgs:       s.QEMUArgs,
		Env:            []string{"STARRYRUN_SESSION=" + sessionID},
	}
}

func (s *Spec) consoleConfig() console.Config {
	host := s.Host
	if host == "" {
		host = DefaultHost
	}

	cfg := console.DefaultConfig(net.JoinHostPort(host, strconv.Itoa(s.Port)))
	cfg.Command = s.Command
	cfg.Attempts = s.Retries
	cfg.CommandTimeout = s.CommandTimeout
	cfg.PromptTimeout = s.PromptTimeout

	if cfg.PromptTimeout == 0 {
		cfg.PromptTimeout = s.BootTimeout
	}

	return cfg
}

func (s *Spec) dialer() console.Dialer {
	if s.Dialer == nil {
		return &net.Dialer{}
	}

	return s.Dialer
}
