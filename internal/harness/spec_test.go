// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness_test

import (
	"testing"

	"github.com/aibor/starryrun/internal/harness"
	"github.com/stretchr/testify/require"
)

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*harness.Spec)
		expectedErr error
	}{
		{
			name:   "defaults",
			modify: func(*harness.Spec) {},
		},
		{
			name:        "no root",
			modify:      func(s *harness.Spec) { s.Root = "" },
			expectedErr: harness.ErrInvalidSpec,
		},
		{
			name:        "no arch",
			modify:      func(s *harness.Spec) { s.Arch = "" },
			expectedErr: harness.ErrInvalidSpec,
		},
		{
			name:        "port zero",
			modify:      func(s *harness.Spec) { s.Port = 0 },
			expectedErr: harness.ErrInvalidSpec,
		},
		{
			name:        "port too high",
			modify:      func(s *harness.Spec) { s.Port = 65536 },
			expectedErr: harness.ErrInvalidSpec,
		},
		{
			name:        "zero boot timeout",
			modify:      func(s *harness.Spec) { s.BootTimeout = 0 },
			expectedErr: harness.ErrInvalidSpec,
		},
		{
			name:        "negative command timeout",
			modify:      func(s *harness.Spec) { s.CommandTimeout = -1 },
			expectedErr: harness.ErrInvalidSpec,
		},
		{
			name:        "negative prompt timeout",
			modify:      func(s *harness.Spec) { s.PromptTimeout = -1 },
			expectedErr: harness.ErrInvalidSpec,
		},
		{
			name:        "no retries",
			modify:      func(s *harness.Spec) { s.Retries = 0 },
			expectedErr: harness.ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := harness.DefaultSpec("/starry")
			tt.modify(&spec)

			require.ErrorIs(t, spec.Validate(), tt.expectedErr)
		})
	}
}
