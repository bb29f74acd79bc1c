// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aibor/starryrun/internal/sys"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "STARRYRUN"

// loadConfig resolves the values of all flags of the given command.
//
// Flags set on the command line take precedence over environment variables
// named "STARRYRUN_<FLAG>", which take precedence over the values in the TOML
// config file given by --config. It also sets up logging, as the log level is
// known only now.
func loadConfig(cmd *cobra.Command, cfg IO) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	configFile := v.GetString("config")
	if configFile != "" {
		path, err := sys.AbsolutePath(configFile)
		if err != nil {
			return nil, &ParseArgsError{msg: "config file", err: err}
		}

		v.SetConfigFile(path)
		v.SetConfigType("toml")

		err = v.ReadInConfig()
		if err != nil {
			return nil, &ParseArgsError{msg: "read config file", err: err}
		}
	}

	setupLogging(cfg.Stderr, v.GetBool("debug"), v.GetBool("quiet"))

	if v.ConfigFileUsed() != "" {
		slog.Debug("Config file read", slog.String("path", v.ConfigFileUsed()))
	}

	return v, nil
}
