// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"strings"

	"github.com/aibor/starryrun/internal/suite"
	"github.com/aibor/starryrun/internal/sys"
	"github.com/spf13/cobra"
)

func newSuiteCommand(cfg IO) *cobra.Command {
	kinds := make([]string, 0, len(suite.Kinds()))
	for _, kind := range suite.Kinds() {
		kinds = append(kinds, string(kind))
	}

	cmd := &cobra.Command{
		Use:   "suite <" + strings.Join(kinds, "|") + "> [" + suite.ActionRun + "]",
		Short: "Run the test cases of a suite manifest",
		Long: `Run all test case scripts listed in the suite's manifest
"tests/<suite>/suite.toml" in the workspace. Logs of the run are written to
"logs/<suite>/<timestamp>" and the summary to "logs/<suite>/last_run.json".`,
		Args:      cobra.RangeArgs(1, 2), //nolint:mnd
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd, cfg)
			if err != nil {
				return err
			}

			kind, err := suite.ParseKind(args[0])
			if err != nil {
				return &ParseArgsError{msg: "suite", err: err}
			}

			if len(args) > 1 && args[1] != suite.ActionRun {
				return &ParseArgsError{
					msg: "action",
					err: fmt.Errorf("%w: %s", suite.ErrUnknownAction, args[1]),
				}
			}

			workspace, err := sys.AbsolutePath(v.GetString("workspace"))
			if err != nil {
				return &ParseArgsError{msg: "workspace", err: err}
			}

			err = sys.ValidateDir(workspace)
			if err != nil {
				return &ParseArgsError{msg: "workspace", err: err}
			}

			_, err = suite.Run(cmd.Context(), workspace, kind, cfg.Stdout)

			return err //nolint:wrapcheck
		},
	}

	cmd.Flags().String("workspace", ".", "workspace with tests/ and logs/")

	return cmd
}
