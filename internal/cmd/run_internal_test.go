// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/aibor/starryrun/internal/console"
	"github.com/aibor/starryrun/internal/exitcode"
	"github.com/aibor/starryrun/internal/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRunError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		expectedExitCode int
		expectedOutput   string
	}{
		{
			name:             "parse args error",
			err:              &ParseArgsError{msg: "flag --root is required"},
			expectedExitCode: errRC,
			expectedOutput:   "flag --root is required",
		},
		{
			name:             "guest non-zero exit code",
			err:              exitcode.Error(3),
			expectedExitCode: 3,
		},
		{
			name:             "wrapped guest exit code",
			err:              fmt.Errorf("run: %w", exitcode.Error(42)),
			expectedExitCode: 42,
		},
		{
			name:             "boot timeout",
			err:              harness.ErrBootTimeout,
			expectedExitCode: errRC,
			expectedOutput:   "boot timeout",
		},
		{
			name: "connection exhausted",
			err: fmt.Errorf("console session: %w",
				console.ErrConnectionExhausted),
			expectedExitCode: errRC,
			expectedOutput:   "console session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer

			setupLogging(&stderr, false, false)

			exitCode := handleRunError(tt.err)

			assert.Equal(t, tt.expectedExitCode, exitCode)

			if tt.expectedOutput == "" {
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), tt.expectedOutput)
			}
		})
	}
}

func TestPrintPayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{
			name: "empty",
		},
		{
			name:     "without line break",
			payload:  "hi",
			expected: "hi\n",
		},
		{
			name:     "with line break",
			payload:  "a\nb\n",
			expected: "a\nb\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer

			err := printPayload(&stdout, tt.payload)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, stdout.String())
		})
	}
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, version())
}
