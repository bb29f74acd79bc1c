// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/starryrun/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPlatformConfig(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expected    sys.PlatformConfig
		assertError require.ErrorAssertionFunc
	}{
		{
			name: "full",
			content: `arch = "aarch64"
platform = "aarch64-qemu-virt"
package = "axplat-aarch64-qemu-virt"

[plat]
cpu-num = 1
`,
			expected: sys.PlatformConfig{
				Arch:     sys.AArch64,
				Platform: "aarch64-qemu-virt",
			},
			assertError: require.NoError,
		},
		{
			name:        "empty",
			assertError: require.NoError,
		},
		{
			name:        "invalid",
			content:     "arch = ",
			assertError: require.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), sys.PlatformConfigFile)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			actual, err := sys.ReadPlatformConfig(path)
			tt.assertError(t, err)

			assert.Equal(t, tt.expected, actual)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := sys.ReadPlatformConfig(filepath.Join(t.TempDir(), "nope"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
