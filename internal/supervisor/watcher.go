// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package supervisor

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DefaultReadyMarker is printed by QEMU once the serial console TCP server
// waits for a client.
const DefaultReadyMarker = "QEMU waiting for connection"

const maxLineSize = 1024 * 1024

// Cause is the reason the readiness event fired.
type Cause int

const (
	// CauseNone means the readiness event has not fired yet.
	CauseNone Cause = iota
	// CauseMarkerObserved means the ready marker was found in the stream.
	CauseMarkerObserved
	// CauseStreamClosed means the stream ended without the marker. The
	// process might be gone.
	CauseStreamClosed
)

// String implements [fmt.Stringer].
func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseMarkerObserved:
		return "marker observed"
	case CauseStreamClosed:
		return "stream closed"
	default:
		return "unknown"
	}
}

// Watcher scans a stream line by line for a marker and fires a one-shot
// readiness event.
type Watcher struct {
	marker []byte
	output io.Writer
	ready  chan struct{}
	cause  Cause
}

// NewWatcher creates a new [Watcher] looking for the given marker. All lines
// are relayed to output. If output is nil, they are discarded.
func NewWatcher(marker string, output io.Writer) *Watcher {
	return &Watcher{
		marker: []byte(marker),
		output: output,
		ready:  make(chan struct{}),
	}
}

// Ready returns a channel that is closed once the readiness event fired.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Cause returns why the readiness event fired. It returns [CauseNone] as long
// as it has not fired.
func (w *Watcher) Cause() Cause {
	select {
	case <-w.ready:
		return w.cause
	default:
		return CauseNone
	}
}

// Run drains src until it ends. It must be called only once.
//
// It keeps draining after the marker has been found, so the writer on the
// other end never stalls. If src ends without the marker, the readiness
// event fires with [CauseStreamClosed].
func (w *Watcher) Run(src io.Reader) error {
	defer w.fire(CauseStreamClosed)

	scanner := bufio.NewScanner(src)
	scanner.Buffer(nil, maxLineSize)

	for scanner.Scan() {
		w.relay(scanner.Bytes())

		if bytes.Contains(scanner.Bytes(), w.marker) {
			w.fire(CauseMarkerObserved)
		}
	}

	err := scanner.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		// Do not leave the writer hanging, even if lines are not
		// watched anymore.
		_, err = io.Copy(io.Discard, src)
	}

	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("drain: %w", err)
	}

	return nil
}

func (w *Watcher) fire(cause Cause) {
	if w.cause != CauseNone {
		return
	}

	// Cause is written before the channel is closed, so readers waiting on
	// the channel observe it.
	w.cause = cause
	close(w.ready)
}

func (w *Watcher) relay(line []byte) {
	if w.output == nil {
		return
	}

	err := writeLn(w.output, line)
	if err != nil {
		slog.Warn("Stop relaying process output", slog.Any("error", err))

		w.output = nil
	}
}

// writeLn writes data terminated by a line break in a single write, so lines
// do not interleave with other writers of dst.
func writeLn(dst io.Writer, data []byte) error {
	line := make([]byte, 0, len(data)+1)
	line = append(line, data...)
	line = append(line, '\n')

	_, err := dst.Write(line)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
