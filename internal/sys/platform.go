// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// PlatformConfigFile is the name of the platform config file the guest build
// generates in the root of the build tree.
const PlatformConfigFile = ".axconfig.toml"

// PlatformConfig holds the fields of a generated platform config the harness
// cares about. All other keys are ignored.
type PlatformConfig struct {
	Arch     Arch   `toml:"arch"`
	Platform string `toml:"platform"`
}

// ReadPlatformConfig decodes the platform config file at the given path.
func ReadPlatformConfig(path string) (PlatformConfig, error) {
	var cfg PlatformConfig

	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return PlatformConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return cfg, nil
}
