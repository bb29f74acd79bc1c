// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package supervisor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aibor/starryrun/internal/sys"
)

// FakeBuildTree creates a build tree in a temporary directory with a platform
// config for aarch64 and a fake build tool running the given shell script.
// It returns a [Spec] launching the fake build tool.
func FakeBuildTree(tb testing.TB, script string) Spec {
	tb.Helper()

	root := tb.TempDir()

	configPath := filepath.Join(root, sys.PlatformConfigFile)

	err := os.WriteFile(configPath, []byte("arch = \"aarch64\"\n"), 0o600)
	if err != nil {
		tb.Fatalf("failed to write platform config: %v", err)
	}

	executable := filepath.Join(root, "fake-make")

	err = os.WriteFile(executable, []byte("#!/bin/sh\n"+script+"\n"), 0o700) //nolint:gosec
	if err != nil {
		tb.Fatalf("failed to write fake build tool: %v", err)
	}

	return Spec{
		Root:        root,
		Arch:        sys.AArch64,
		Port:        4444,
		Executable:  executable,
		GracePeriod: 200 * time.Millisecond,
	}
}
