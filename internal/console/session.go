// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/aibor/starryrun/internal/exitcode"
	"github.com/aibor/starryrun/internal/sanitize"
	"github.com/cenkalti/backoff/v5"
)

const receiveBufferSize = 1024

// Dialer connects to the console. [net.Dialer] satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Result is the outcome of a completed [Session].
type Result struct {
	// ExitCode is the exit code reported by the command's sentinel. It is
	// always 0 if no command was given.
	ExitCode int

	// Payload is the sanitized command output.
	Payload string
}

// Session is a single console session. It is not safe for concurrent use.
type Session struct {
	cfg         Config
	dialer      Dialer
	output      io.Writer
	fullCommand string
	state       State
	attempts    uint
}

// NewSession creates a new [Session]. All bytes received from the console are
// relayed to output as they arrive. If output is nil, they are discarded.
func NewSession(cfg Config, dialer Dialer, output io.Writer) *Session {
	if output == nil {
		output = io.Discard
	}

	var fullCommand string
	if cfg.Command != "" {
		fullCommand = exitcode.Wrap(cfg.Command)
	}

	return &Session{
		cfg:         cfg,
		dialer:      dialer,
		output:      output,
		fullCommand: fullCommand,
	}
}

// State returns the current state of the session.
func (s *Session) State() State {
	return s.state
}

// Attempts returns the number of connection attempts made so far.
func (s *Session) Attempts() uint {
	return s.attempts
}

// Run connects to the console and runs the session until it completes or
// fails.
//
// Failures before the command is sent are retried with a new connection
// until the attempts are exhausted. Once the command has been sent, any
// failure is final so the command is never sent twice.
func (s *Session) Run(ctx context.Context) (Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return Result{}, err
	}

	operation := func() (Result, error) {
		s.attempts++

		result, err := s.attempt(ctx)
		if err != nil && s.state == StateCommandSent {
			return Result{}, backoff.Permanent(err)
		}

		return result, err
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.RetryDelay)),
		backoff.WithMaxTries(s.cfg.Attempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Info("Console attempt failed, retrying",
				slog.Uint64("attempt", uint64(s.attempts)),
				slog.Duration("delay", next),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		s.state = StateFailed

		return Result{}, s.classify(ctx, err)
	}

	s.state = StateCompleted

	return result, nil
}

// classify turns the error returned by the retry loop into the error
// reported to the caller.
//
// Only the end of ctx stops the session as is. Timeouts of single dials
// satisfy errors.Is(err, context.DeadlineExceeded) as well, but they count as
// failed attempts.
func (s *Session) classify(ctx context.Context, err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}

	if ctx.Err() != nil {
		return err
	}

	switch {
	case errors.Is(err, ErrCommandTimeout),
		errors.Is(err, ErrMissingCommandOutput):
		return err
	case errors.Is(err, ErrPromptNotObserved):
		return fmt.Errorf("after %d attempts: %w", s.attempts, err)
	default:
		return fmt.Errorf("%w after %d attempts: %w",
			ErrConnectionExhausted, s.attempts, err)
	}
}

// attempt runs a single connection attempt.
func (s *Session) attempt(ctx context.Context) (Result, error) {
	s.state = StateConnecting

	conn, err := s.dial(ctx)
	if err != nil {
		return Result{}, err
	}
	defer s.close(conn)

	s.state = StateAwaitingPrompt
	slog.Debug("Console connected", slog.String("address", s.cfg.Address))

	var (
		transcript      bytes.Buffer
		buf             = make([]byte, receiveBufferSize)
		promptDeadline  = time.Now().Add(s.cfg.PromptTimeout)
		commandDeadline time.Time
	)

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		chunk, err := s.receive(conn, buf)
		if err != nil && !errors.Is(err, errReadTimeout) {
			return Result{}, s.connectionLost(err)
		}

		if len(chunk) > 0 {
			s.relay(chunk)
			transcript.Write(chunk)

			switch s.state {
			case StateAwaitingPrompt:
				if !bytes.Contains(transcript.Bytes(), []byte(s.cfg.Prompt)) {
					break
				}

				if s.cfg.Command == "" {
					slog.Info("Shell prompt detected, no command given, exiting")

					return Result{}, s.exitIdle(conn, buf)
				}

				slog.Info("Shell prompt detected, executing command")

				s.state = StateCommandSent
				commandDeadline = time.Now().Add(s.cfg.CommandTimeout)

				transcript.Reset()

				if err := s.send(conn, s.fullCommand); err != nil {
					return Result{}, fmt.Errorf("%w: send command: %w",
						ErrMissingCommandOutput, err)
				}
			case StateCommandSent:
				code, found := exitcode.Parse(transcript.Bytes())
				if !found {
					break
				}

				slog.Info("Command completed", slog.Int("exit_code", code))

				if err := s.send(conn, s.cfg.ExitInstruction); err != nil {
					slog.Debug("Send exit instruction", slog.Any("error", err))
				}

				raw := strings.ToValidUTF8(transcript.String(), "")

				return Result{
					ExitCode: code,
					Payload: sanitize.Output(
						raw,
						s.cfg.Command,
						s.fullCommand,
						s.cfg.Prompt,
					),
				}, nil
			}
		}

		if err := s.checkDeadline(promptDeadline, commandDeadline); err != nil {
			return Result{}, err
		}
	}
}

func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()

	conn, err := s.dialer.DialContext(dialCtx, "tcp", s.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.cfg.Address, err)
	}

	return conn, nil
}

func (s *Session) close(conn net.Conn) {
	if err := conn.Close(); err != nil {
		slog.Debug("Close console connection", slog.Any("error", err))
	}
}

// receive reads the next chunk from the connection. If no data arrives within
// the read timeout, errReadTimeout is returned.
//
// Data is returned even if the read also failed. The failure shows up again
// on the next read.
func (s *Session) receive(conn net.Conn, buf []byte) ([]byte, error) {
	err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	if err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}

	if err == nil || errors.Is(err, os.ErrDeadlineExceeded) {
		return nil, errReadTimeout
	}

	return nil, err
}

func (s *Session) send(conn net.Conn, line string) error {
	err := conn.SetWriteDeadline(time.Now().Add(s.cfg.ReadTimeout))
	if err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	_, err = io.WriteString(conn, line+"\n")
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

func (s *Session) relay(chunk []byte) {
	if _, err := s.output.Write(chunk); err != nil {
		slog.Debug("Relay console output", slog.Any("error", err))
	}
}

func (s *Session) connectionLost(err error) error {
	if s.state == StateCommandSent {
		return fmt.Errorf("%w: connection lost: %w", ErrMissingCommandOutput, err)
	}

	return fmt.Errorf("connection lost before prompt: %w", err)
}

func (s *Session) checkDeadline(promptDeadline, commandDeadline time.Time) error {
	now := time.Now()

	switch s.state {
	case StateAwaitingPrompt:
		if now.After(promptDeadline) {
			return fmt.Errorf("%w within %s", ErrPromptNotObserved, s.cfg.PromptTimeout)
		}
	case StateCommandSent:
		if now.After(commandDeadline) {
			return fmt.Errorf("%w after %s", ErrCommandTimeout, s.cfg.CommandTimeout)
		}
	}

	return nil
}

// exitIdle leaves the shell and drains the remaining output until the guest
// closes the connection or goes quiet.
func (s *Session) exitIdle(conn net.Conn, buf []byte) error {
	if err := s.send(conn, s.cfg.ExitInstruction); err != nil {
		return fmt.Errorf("send exit instruction: %w", err)
	}

	s.state = StateIdleExit
	deadline := time.Now().Add(s.cfg.PromptTimeout)

	for time.Now().Before(deadline) {
		chunk, err := s.receive(conn, buf)
		if err != nil {
			break
		}

		s.relay(chunk)
	}

	return nil
}
