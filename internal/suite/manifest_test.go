// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package suite_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aibor/starryrun/internal/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.toml")
	content := `name = "Starry CI"
description = "smoke tests"
arch = "aarch64"
default_timeout_secs = 120

[[cases]]
name = "Boot Smoke"
path = "tests/ci/cases/boot.sh"
args = ["--quick"]

[[cases]]
name = "flaky"
path = "tests/ci/cases/flaky.sh"
timeout_secs = 30
allow_failure = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	manifest, err := suite.LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "Starry CI", manifest.Name)
	assert.Equal(t, "aarch64", manifest.Arch)
	assert.Equal(t, suite.DefaultBuildScript, manifest.BuildScriptPath())
	require.Len(t, manifest.Cases, 2)

	assert.Equal(t, []string{"--quick"}, manifest.Cases[0].Args)
	assert.Equal(t, 120*time.Second, manifest.Timeout(manifest.Cases[0]))
	assert.Equal(t, 30*time.Second, manifest.Timeout(manifest.Cases[1]))
	assert.True(t, manifest.Cases[1].AllowFailure)
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := suite.LoadManifest(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[cases]\n"), 0o600))

	_, err = suite.LoadManifest(path)
	require.Error(t, err)
}

func TestManifestDefaults(t *testing.T) {
	manifest := suite.Manifest{BuildScript: "build.sh"}

	assert.Equal(t, "build.sh", manifest.BuildScriptPath())
	assert.Equal(t, suite.DefaultTimeout, manifest.DefaultTimeout())
	assert.Equal(t, suite.DefaultTimeout, manifest.Timeout(suite.Case{}))
}

func TestCaseSlug(t *testing.T) {
	tests := map[string]string{
		"Boot Smoke":          "boot-smoke",
		"process_spawn":       "process-spawn",
		"--weird--":           "weird",
		"waitpid (posix) #2":  "waitpid--posix---2",
		"Überprüfung":         "berpr-fung",
		"already-a-slug-1234": "already-a-slug-1234",
	}

	for name, expected := range tests {
		t.Run(name, func(t *testing.T) {
			c := suite.Case{Name: name}
			assert.Equal(t, expected, c.Slug())
		})
	}
}
