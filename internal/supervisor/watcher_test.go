// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package supervisor_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/aibor/starryrun/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errWriter struct{}

func (errWriter) Write(_ []byte) (int, error) {
	return 0, assert.AnError
}

func TestWatcherRun(t *testing.T) {
	tests := []struct {
		name           string
		input          io.Reader
		expectedCause  supervisor.Cause
		expectedOutput string
		expectedErr    error
	}{
		{
			name: "marker observed",
			input: strings.NewReader("booting\r\n" +
				"QEMU waiting for connection on: disconnected:tcp::4444,server=on\n" +
				"after\n"),
			expectedCause: supervisor.CauseMarkerObserved,
			expectedOutput: "booting\n" +
				"QEMU waiting for connection on: disconnected:tcp::4444,server=on\n" +
				"after\n",
		},
		{
			name:           "marker in partial last line",
			input:          strings.NewReader("booting\nQEMU waiting for connection"),
			expectedCause:  supervisor.CauseMarkerObserved,
			expectedOutput: "booting\nQEMU waiting for connection\n",
		},
		{
			name:           "stream closed",
			input:          strings.NewReader("make: *** [justrun] Error 2\n"),
			expectedCause:  supervisor.CauseStreamClosed,
			expectedOutput: "make: *** [justrun] Error 2\n",
		},
		{
			name:          "empty stream",
			input:         strings.NewReader(""),
			expectedCause: supervisor.CauseStreamClosed,
		},
		{
			name:           "read error",
			input:          iotest.TimeoutReader(strings.NewReader("line\n")),
			expectedCause:  supervisor.CauseStreamClosed,
			expectedOutput: "line\n",
			expectedErr:    iotest.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer

			watcher := supervisor.NewWatcher(supervisor.DefaultReadyMarker, &output)
			assert.Equal(t, supervisor.CauseNone, watcher.Cause())

			err := watcher.Run(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)

			assert.Equal(t, tt.expectedOutput, output.String())
			assert.Equal(t, tt.expectedCause, watcher.Cause())

			select {
			case <-watcher.Ready():
			default:
				assert.Fail(t, "ready not fired")
			}
		})
	}
}

func TestWatcherReadyBeforeStreamEnds(t *testing.T) {
	reader, writer := io.Pipe()
	watcher := supervisor.NewWatcher("ready", nil)

	done := make(chan error)

	go func() {
		done <- watcher.Run(reader)
	}()

	_, err := io.WriteString(writer, "not yet\nready now\n")
	require.NoError(t, err)

	<-watcher.Ready()
	assert.Equal(t, supervisor.CauseMarkerObserved, watcher.Cause())

	// Still draining.
	_, err = io.WriteString(writer, "more output\n")
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	require.NoError(t, <-done)
	assert.Equal(t, supervisor.CauseMarkerObserved, watcher.Cause())
}

func TestWatcherKeepsDrainingOnWriteError(t *testing.T) {
	watcher := supervisor.NewWatcher("ready", errWriter{})

	err := watcher.Run(strings.NewReader("first\nready\nlast\n"))
	require.NoError(t, err)
	assert.Equal(t, supervisor.CauseMarkerObserved, watcher.Cause())
}

func TestWatcherLongLine(t *testing.T) {
	watcher := supervisor.NewWatcher("ready", nil)
	input := strings.NewReader(strings.Repeat("x", 2*1024*1024) + "\nready\n")

	err := watcher.Run(input)
	require.NoError(t, err)
	assert.Equal(t, supervisor.CauseStreamClosed, watcher.Cause())
	assert.Zero(t, input.Len())
}

func TestCauseString(t *testing.T) {
	assert.Equal(t, "none", supervisor.CauseNone.String())
	assert.Equal(t, "marker observed", supervisor.CauseMarkerObserved.String())
	assert.Equal(t, "stream closed", supervisor.CauseStreamClosed.String())
	assert.Equal(t, "unknown", supervisor.Cause(42).String())
}
