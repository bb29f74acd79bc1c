// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package supervisor

import (
	"io"
	"sync"
)

// SyncWriter serializes writes to the underlying writer, so output of the VM
// process and other writers sharing it does not interleave within a write.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter returns a [SyncWriter] for w. If w already is a
// [*SyncWriter], it is returned as is.
func NewSyncWriter(w io.Writer) *SyncWriter {
	if sw, ok := w.(*SyncWriter); ok {
		return sw
	}

	return &SyncWriter{w: w}
}

func (w *SyncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.w.Write(p) //nolint:wrapcheck
}
