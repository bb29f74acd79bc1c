// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/aibor/starryrun/internal/qemu"
	"github.com/aibor/starryrun/internal/sys"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

const (
	// DefaultGracePeriod is the time given the process for each teardown
	// stage.
	DefaultGracePeriod = 5 * time.Second

	// waitDelay bounds the wait for the output pipes once the process
	// exited.
	waitDelay = time.Second

	// drainTimeout bounds the wait for the watcher after the process has
	// been reaped.
	drainTimeout = time.Second
)

// Spec describes the VM process to launch.
type Spec struct {
	// Root is the build tree the run target is invoked in.
	Root string

	// Arch of the guest.
	Arch sys.Arch

	// PlatformConfig is the path of the platform configuration file.
	// Relative paths are resolved in Root. Defaults to
	// [sys.PlatformConfigFile] in Root.
	PlatformConfig string

	// Port the serial console is exposed on.
	Port int

	// Executable of the build tool. Defaults to [qemu.DefaultMake].
	Executable string

	// GracePeriod for each teardown stage. Defaults to
	// [DefaultGracePeriod].
	GracePeriod time.Duration

	// ReadyMarker is the line content that signals readiness. Defaults to
	// [DefaultReadyMarker].
	ReadyMarker string

	// QEMUArgs are passed to QEMU in addition to the serial console and
	// monitor arguments.
	QEMUArgs []qemu.Argument

	// Env is added to the process's environment.
	Env []string
}

func (s *Spec) platformConfigPath() string {
	switch {
	case s.PlatformConfig == "":
		return filepath.Join(s.Root, sys.PlatformConfigFile)
	case filepath.IsAbs(s.PlatformConfig):
		return s.PlatformConfig
	default:
		return filepath.Join(s.Root, s.PlatformConfig)
	}
}

// invocation checks all prerequisites and returns the invocation to run.
func (s *Spec) invocation() (*qemu.Invocation, error) {
	err := sys.ValidateDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: build root: %w", ErrPrerequisiteMissing, err)
	}

	configPath := s.platformConfigPath()

	err = sys.ValidateFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: platform config: %w", ErrPrerequisiteMissing, err)
	}

	config, err := sys.ReadPlatformConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: platform config: %w", ErrPrerequisiteMissing, err)
	}

	if config.Arch != "" && config.Arch != s.Arch {
		return nil, fmt.Errorf("%w: %s is for %s, requested %s",
			ErrPlatformMismatch, configPath, config.Arch, s.Arch)
	}

	return &qemu.Invocation{
		Executable:     s.Executable,
		Arch:           s.Arch,
		PlatformConfig: configPath,
		Port:           s.Port,
		ExtraArgs:      s.QEMUArgs,
	}, nil
}

// Process is a launched VM process.
type Process struct {
	cmd     *exec.Cmd
	watcher *Watcher
	stderr  *os.File
	grace   time.Duration

	group   errgroup.Group
	exited  chan struct{}
	drained chan struct{}
	waitErr error

	shutdownOnce sync.Once
	shutdownErr  error
}

// Launch checks the prerequisites and starts the VM process described by
// spec.
//
// The process's stdout and all lines of its stderr are written to output,
// which is wrapped in a [SyncWriter] unless it already is one.
// Stderr is watched for the ready marker, see [Process.Ready]. If ctx is
// canceled, the process group is terminated.
//
// The caller must call [Process.Shutdown] once done with the process.
func Launch(ctx context.Context, spec Spec, output io.Writer) (*Process, error) {
	invocation, err := spec.invocation()
	if err != nil {
		return nil, err
	}

	args, err := invocation.Args()
	if err != nil {
		return nil, fmt.Errorf("build invocation: %w", err)
	}

	if output == nil {
		output = io.Discard
	}

	output = NewSyncWriter(output)

	readPipe, writePipe, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, invocation.Name(), args...)
	cmd.Dir = spec.Root
	cmd.Env = append(os.Environ(), "PWD="+spec.Root)
	cmd.Env = append(cmd.Env, spec.Env...)
	cmd.Stdout = output
	cmd.Stderr = writePipe
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = waitDelay
	cmd.Cancel = func() error {
		return signalGroup(cmd.Process.Pid, unix.SIGTERM)
	}

	slog.Debug("Launch VM process", slog.String("command", invocation.String()))

	err = cmd.Start()

	// The child holds its own copy now.
	_ = writePipe.Close()

	if err != nil {
		_ = readPipe.Close()
		return nil, fmt.Errorf("start %s: %w", invocation.Name(), err)
	}

	marker := spec.ReadyMarker
	if marker == "" {
		marker = DefaultReadyMarker
	}

	grace := spec.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	process := &Process{
		cmd:     cmd,
		watcher: NewWatcher(marker, output),
		stderr:  readPipe,
		grace:   grace,
		exited:  make(chan struct{}),
		drained: make(chan struct{}),
	}

	process.group.Go(process.watch)
	process.group.Go(process.reap)

	return process, nil
}

func (p *Process) watch() error {
	defer close(p.drained)

	err := p.watcher.Run(p.stderr)
	if err != nil {
		slog.Warn("Watch VM process output", slog.Any("error", err))
	}

	return nil
}

func (p *Process) reap() error {
	defer close(p.exited)

	p.waitErr = p.cmd.Wait()

	slog.Debug("VM process exited",
		slog.Int("pid", p.Pid()),
		slog.Any("result", p.waitErr),
	)

	return nil
}

// Pid returns the process ID, which is also the process group ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Ready returns a channel that is closed once the ready marker has been
// observed or the process's stderr has been closed. See [Process.Cause].
func (p *Process) Ready() <-chan struct{} {
	return p.watcher.Ready()
}

// Cause returns why [Process.Ready] fired.
func (p *Process) Cause() Cause {
	return p.watcher.Cause()
}

// Exited returns a channel that is closed once the process has been reaped.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Alive reports whether the process has not been reaped yet.
func (p *Process) Alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// ExitErr returns the result of waiting for the process. It is nil if the
// process is still alive or exited successfully.
func (p *Process) ExitErr() error {
	if p.Alive() {
		return nil
	}

	return p.waitErr
}

// Shutdown makes sure the process is gone.
//
// It gives the process the grace period to exit on its own. If it does not,
// its process group is sent SIGTERM and, after another grace period, SIGKILL.
// It returns an error only if the process could not be reaped. It is safe to
// call Shutdown multiple times.
func (p *Process) Shutdown() error {
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.shutdown()
	})

	return p.shutdownErr
}

func (p *Process) shutdown() error {
	stages := []struct {
		signal unix.Signal
		msg    string
	}{
		{0, "VM process still running, terminating"},
		{unix.SIGTERM, "VM process ignored SIGTERM, killing"},
		{unix.SIGKILL, ""},
	}

	for _, stage := range stages {
		if stage.signal != 0 {
			p.signal(stage.signal)
		}

		if p.waitExit(p.grace) {
			break
		}

		if stage.msg == "" {
			return fmt.Errorf("%w: pid %d", ErrNotReaped, p.Pid())
		}

		slog.Info(stage.msg, slog.Int("pid", p.Pid()))
	}

	// Members of the group might have survived the leader.
	p.signal(unix.SIGKILL)

	select {
	case <-p.drained:
	case <-time.After(drainTimeout):
		// Some process outside the group still holds the pipe.
		_ = p.stderr.Close()
	}

	_ = p.group.Wait()

	if err := p.stderr.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Debug("Close stderr pipe", slog.Any("error", err))
	}

	return nil
}

func (p *Process) waitExit(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.exited:
		return true
	case <-timer.C:
		return false
	}
}

func (p *Process) signal(sig unix.Signal) {
	err := signalGroup(p.Pid(), sig)
	if err != nil {
		slog.Debug("Signal VM process group",
			slog.Int("pgid", p.Pid()),
			slog.String("signal", sig.String()),
			slog.Any("error", err),
		)
	}
}

func signalGroup(pgid int, sig unix.Signal) error {
	err := unix.Kill(-pgid, sig)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("kill -%d: %w", pgid, err)
	}

	return nil
}
