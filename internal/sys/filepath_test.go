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

func TestAbsolutePath(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := sys.AbsolutePath("")
		require.ErrorIs(t, err, sys.ErrEmptyPath)
	})

	t.Run("relative", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		actual, err := sys.AbsolutePath("some/dir")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(wd, "some/dir"), actual)
	})

	t.Run("home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		actual, err := sys.AbsolutePath("~/starry")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(home, "starry"), actual)
	})
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	require.NoError(t, sys.ValidateDir(dir))
	require.ErrorIs(t, sys.ValidateDir(file), sys.ErrNotDirectory)
	require.ErrorIs(t, sys.ValidateDir(filepath.Join(dir, "nope")), os.ErrNotExist)

	require.NoError(t, sys.ValidateFile(file))
	require.ErrorIs(t, sys.ValidateFile(dir), sys.ErrNotRegularFile)
	require.ErrorIs(t, sys.ValidateFile(filepath.Join(dir, "nope")), os.ErrNotExist)
}
