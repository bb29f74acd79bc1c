// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aibor/starryrun/internal/console"
	"github.com/aibor/starryrun/internal/supervisor"
	"github.com/google/uuid"
)

// exitSettleTime is how long a closed process output stream may precede the
// process's exit.
const exitSettleTime = 500 * time.Millisecond

// Run boots the VM described by spec, runs the console session and tears the
// VM down again on every path.
//
// The VM process's output is written to stderr. Console output is relayed to
// stdout if no command is given, so it is the visible output of the run.
// Otherwise it is relayed to stderr, so stdout is left for the command's
// payload.
func Run(
	ctx context.Context,
	spec Spec,
	stdout io.Writer,
	stderr io.Writer,
) (console.Result, error) {
	err := spec.Validate()
	if err != nil {
		return console.Result{}, err
	}

	sessionID := uuid.NewString()
	logger := slog.With(slog.String("session", sessionID))

	if stderr == nil {
		stderr = io.Discard
	}

	// Shared by the VM process output and the console relay.
	stderr = supervisor.NewSyncWriter(stderr)

	process, err := supervisor.Launch(ctx, spec.supervisorSpec(sessionID), stderr)
	if err != nil {
		return console.Result{}, fmt.Errorf("launch: %w", err)
	}

	logger.Info("VM process launched", slog.Int("pid", process.Pid()))

	defer func() {
		err := process.Shutdown()
		if err != nil {
			logger.Error("Shutdown VM process", slog.Any("error", err))
		}
	}()

	err = awaitReady(ctx, process, spec.BootTimeout)
	if err != nil {
		return console.Result{}, err
	}

	logger.Info("VM ready, connecting console",
		slog.String("cause", process.Cause().String()))

	consoleOutput := stdout
	if spec.Command != "" {
		consoleOutput = stderr
	}

	session := console.NewSession(spec.consoleConfig(), spec.dialer(), consoleOutput)

	result, err := session.Run(ctx)
	if err != nil {
		return console.Result{}, fmt.Errorf("console session: %w", err)
	}

	return result, nil
}

func awaitReady(
	ctx context.Context,
	process *supervisor.Process,
	timeout time.Duration,
) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("await ready: %w", ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: not ready after %s", ErrBootTimeout, timeout)
	case <-process.Exited():
		return exitedEarly(process)
	case <-process.Ready():
	}

	// Both channels might have been closed when selecting.
	if !process.Alive() {
		return exitedEarly(process)
	}

	if process.Cause() != supervisor.CauseStreamClosed {
		return nil
	}

	// The output stream usually closes right before the process exits.
	settle := time.NewTimer(exitSettleTime)
	defer settle.Stop()

	select {
	case <-process.Exited():
		return exitedEarly(process)
	case <-settle.C:
	}

	slog.Warn("VM process output closed without ready marker, trying anyway")

	return nil
}

func exitedEarly(process *supervisor.Process) error {
	if err := process.ExitErr(); err != nil {
		return fmt.Errorf("%w: %w", ErrProcessExitedEarly, err)
	}

	return ErrProcessExitedEarly
}
