// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/aibor/starryrun/internal/exitcode"
	"github.com/aibor/starryrun/internal/harness"
	"github.com/aibor/starryrun/internal/qemu"
	"github.com/aibor/starryrun/internal/sys"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Exit code used for any failure of the harness itself. Lower codes are left
// for the command run in the guest.
const errRC = 125

// IO provides output details for the command.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func newRunCommand(cfg IO) *cobra.Command {
	arch := sys.AArch64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the guest, optionally run a command and print its output",
		Long: `Boot the guest via the build tree's run target and attach to its serial
console.

Without --command, the guest shell is exited as soon as its prompt shows up
and the console output is printed to stdout. With --command, the command is
run in the guest shell, its output is printed to stdout and its exit code
becomes the exit code of starryrun. Any failure of starryrun itself exits
with 125.`,
		Example: `  starryrun run --root ~/StarryOS
  starryrun run --root ~/StarryOS --arch riscv64 --command 'cat /proc/meminfo'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(cmd, cfg)
			if err != nil {
				return err
			}

			spec, err := newRunSpec(v, qemuArgs(cmd, v))
			if err != nil {
				return err
			}

			return run(cmd.Context(), spec, cfg)
		},
	}

	addRunFlags(cmd.Flags(), &arch)

	return cmd
}

func addRunFlags(flags *pflag.FlagSet, arch *sys.Arch) {
	flags.String("root", "", "StarryOS build tree (required)")
	flags.Var(arch, "arch", "guest architecture")
	flags.String("platform-config", "",
		"platform config file (default <root>/"+sys.PlatformConfigFile+")")
	flags.String("make", qemu.DefaultMake, "build tool executable")
	flags.StringArray("qemu-arg", nil,
		"additional QEMU argument as name[=value], can be repeated")
	flags.String("host", harness.DefaultHost, "host the serial console is exposed on")
	flags.Int("port", harness.DefaultPort, "TCP port of the serial console")
	flags.Duration("boot-timeout", harness.DefaultBootTimeout,
		"time to wait for the guest's console")
	flags.Uint("retries", harness.DefaultRetries, "console connection attempts")
	flags.String("command", "", "command to run in the guest shell")
	flags.Duration("command-timeout", harness.DefaultCommandTimeout,
		"time to wait for the command to complete")
	flags.Duration("prompt-timeout", 0,
		"time to wait for the shell prompt per attempt (default boot timeout)")
}

// qemuArgs returns the raw QEMU arguments. Values given on the command line
// are taken as is, since viper would split them at commas.
func qemuArgs(cmd *cobra.Command, v *viper.Viper) []string {
	flag := cmd.Flags().Lookup("qemu-arg")
	if flag != nil && flag.Changed {
		args, err := cmd.Flags().GetStringArray("qemu-arg")
		if err == nil {
			return args
		}
	}

	return v.GetStringSlice("qemu-arg")
}

func newRunSpec(v *viper.Viper, rawQEMUArgs []string) (harness.Spec, error) {
	if v.GetString("root") == "" {
		return harness.Spec{}, &ParseArgsError{msg: "flag --root is required"}
	}

	root, err := sys.AbsolutePath(v.GetString("root"))
	if err != nil {
		return harness.Spec{}, &ParseArgsError{msg: "root", err: err}
	}

	spec := harness.DefaultSpec(root)

	err = spec.Arch.Set(v.GetString("arch"))
	if err != nil {
		return harness.Spec{}, &ParseArgsError{msg: "arch", err: err}
	}

	if v.GetString("platform-config") != "" {
		spec.PlatformConfig, err = sys.AbsolutePath(v.GetString("platform-config"))
		if err != nil {
			return harness.Spec{}, &ParseArgsError{msg: "platform config", err: err}
		}
	}

	spec.Executable = v.GetString("make")

	for _, raw := range rawQEMUArgs {
		arg, err := qemu.ParseArgument(raw)
		if err != nil {
			return harness.Spec{}, &ParseArgsError{msg: "qemu arg", err: err}
		}

		spec.QEMUArgs = append(spec.QEMUArgs, arg)
	}

	spec.Host = v.GetString("host")
	spec.Port = v.GetInt("port")
	spec.BootTimeout = v.GetDuration("boot-timeout")
	spec.Retries = v.GetUint("retries")
	spec.Command = v.GetString("command")
	spec.CommandTimeout = v.GetDuration("command-timeout")
	spec.PromptTimeout = v.GetDuration("prompt-timeout")

	err = spec.Validate()
	if err != nil {
		return harness.Spec{}, &ParseArgsError{msg: "validate", err: err}
	}

	return spec, nil
}

func run(ctx context.Context, spec harness.Spec, cfg IO) error {
	result, err := harness.Run(ctx, spec, cfg.Stdout, cfg.Stderr)
	if err != nil {
		return err //nolint:wrapcheck
	}

	err = printPayload(cfg.Stdout, result.Payload)
	if err != nil {
		return err
	}

	if result.ExitCode != 0 {
		return exitcode.Error(result.ExitCode)
	}

	return nil
}

// printPayload prints the payload with a trailing line break, unless it is
// empty or already has one.
func printPayload(w io.Writer, payload string) error {
	if payload == "" {
		return nil
	}

	if !strings.HasSuffix(payload, "\n") {
		payload += "\n"
	}

	_, err := io.WriteString(w, payload)
	if err != nil {
		return fmt.Errorf("print payload: %w", err)
	}

	return nil
}

func handleRunError(err error) int {
	// Do not print the error in case the guest command ran and exited with
	// a non-zero exit code.
	if exitCode, ok := exitcode.From(err); ok {
		slog.Debug("Command failed in guest", slog.Int("exit_code", exitCode))
		return exitCode
	}

	slog.Error(err.Error())

	return errRC
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false, false)

	root := newRootCommand(cfg)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		return handleRunError(err)
	}

	return 0
}

func newRootCommand(cfg IO) *cobra.Command {
	root := &cobra.Command{
		Use:           "starryrun",
		Short:         "Run commands in a Starry OS guest via its serial console",
		Version:       version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ParseArgsError{msg: "parse flags", err: err}
	})

	flags := root.PersistentFlags()
	flags.String("config", "", "TOML file with flag values")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("quiet", false, "log warnings and errors only")

	root.AddCommand(
		newRunCommand(cfg),
		newSuiteCommand(cfg),
	)

	return root
}

func version() string {
	buildInfo, err := getBuildInfo()
	if err != nil || buildInfo.Main.Version == "" {
		return "unknown"
	}

	return buildInfo.Main.Version
}

func getBuildInfo() (*debug.BuildInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrReadBuildInfo
	}

	return buildInfo, nil
}
