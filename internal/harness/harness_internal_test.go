// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness

import (
	"testing"
	"time"

	"github.com/aibor/starryrun/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitReadyMarkerThenExited(t *testing.T) {
	spec := supervisor.FakeBuildTree(t, `echo "`+supervisor.DefaultReadyMarker+` on tcp::4444" >&2
exit 3`)

	process, err := supervisor.Launch(t.Context(), spec, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, process.Shutdown())
	})

	<-process.Ready()
	<-process.Exited()

	// Ready and Exited are both closed, so a plain select picks either.
	for range 20 {
		err := awaitReady(t.Context(), process, time.Minute)
		require.ErrorIs(t, err, ErrProcessExitedEarly)
	}
}
