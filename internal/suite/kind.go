// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"fmt"
	"path/filepath"
)

// Kind identifies a test suite.
type Kind string

const (
	CI     Kind = "ci-test"
	Stress Kind = "stress-test"
	Daily  Kind = "daily-test"
)

// Kinds returns all known suites.
func Kinds() []Kind {
	return []Kind{CI, Stress, Daily}
}

// ParseKind returns the [Kind] with the given name.
func ParseKind(name string) (Kind, error) {
	for _, kind := range Kinds() {
		if string(kind) == name {
			return kind, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownSuite, name)
}

// Dir returns the directory name used for the suite's manifest and logs.
func (k Kind) Dir() string {
	switch k {
	case CI:
		return "ci"
	case Stress:
		return "stress"
	case Daily:
		return "daily"
	default:
		return string(k)
	}
}

// DisplayName returns the human readable name of the suite.
func (k Kind) DisplayName() string {
	switch k {
	case CI:
		return "CI Test"
	case Stress:
		return "Stress Test"
	case Daily:
		return "Daily Test"
	default:
		return string(k)
	}
}

// ManifestPath returns the path of the suite's manifest in the workspace.
func (k Kind) ManifestPath(workspace string) string {
	return filepath.Join(workspace, "tests", k.Dir(), "suite.toml")
}

// LogsRoot returns the directory all runs of the suite are logged to.
func (k Kind) LogsRoot(workspace string) string {
	return filepath.Join(workspace, "logs", k.Dir())
}
