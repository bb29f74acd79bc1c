// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultTimeout is the case timeout used if the manifest does not set
	// one.
	DefaultTimeout = 600 * time.Second

	// DefaultBuildScript is run before the cases, if it exists.
	DefaultBuildScript = "scripts/build_stub.sh"
)

// Manifest describes a suite.
type Manifest struct {
	Name               string `toml:"name"`
	Description        string `toml:"description"`
	BuildScript        string `toml:"build_script"`
	Arch               string `toml:"arch"`
	DefaultTimeoutSecs uint64 `toml:"default_timeout_secs"`
	Cases              []Case `toml:"cases"`
}

// Case is a single test case script.
type Case struct {
	Name         string   `toml:"name"`
	Description  string   `toml:"description"`
	Path         string   `toml:"path"`
	Args         []string `toml:"args"`
	TimeoutSecs  uint64   `toml:"timeout_secs"`
	AllowFailure bool     `toml:"allow_failure"`
}

// LoadManifest reads and decodes the manifest at the given path.
func LoadManifest(path string) (*Manifest, error) {
	var manifest Manifest

	_, err := toml.DecodeFile(path, &manifest)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}

	return &manifest, nil
}

// BuildScriptPath returns the build script path relative to the workspace.
func (m *Manifest) BuildScriptPath() string {
	if m.BuildScript == "" {
		return DefaultBuildScript
	}

	return m.BuildScript
}

// DefaultTimeout returns the timeout of cases that do not set their own.
func (m *Manifest) DefaultTimeout() time.Duration {
	if m.DefaultTimeoutSecs == 0 {
		return DefaultTimeout
	}

	return time.Duration(m.DefaultTimeoutSecs) * time.Second //nolint:gosec
}

// Timeout returns the timeout for the given case.
func (m *Manifest) Timeout(c Case) time.Duration {
	if c.TimeoutSecs == 0 {
		return m.DefaultTimeout()
	}

	return time.Duration(c.TimeoutSecs) * time.Second //nolint:gosec
}

// Slug returns a file system friendly version of the case name: lower case
// ASCII alphanumerics with everything else replaced by dashes and no leading
// or trailing dashes.
func (c *Case) Slug() string {
	slug := strings.Map(func(char rune) rune {
		switch {
		case 'a' <= char && char <= 'z', '0' <= char && char <= '9':
			return char
		case 'A' <= char && char <= 'Z':
			return char + ('a' - 'A')
		default:
			return '-'
		}
	}, c.Name)

	return strings.Trim(slug, "-")
}
