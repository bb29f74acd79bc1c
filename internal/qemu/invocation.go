// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aibor/starryrun/internal/sys"
)

const (
	// DefaultMake is the executable used to run the build tree's targets.
	DefaultMake = "make"

	runTarget = "justrun"

	minPort = 1
	maxPort = 65535
)

// Invocation defines the parameters for launching the guest via the build
// tree's run target.
type Invocation struct {
	// Executable of the build tool. Defaults to [DefaultMake].
	Executable string

	// Arch of the guest system.
	Arch sys.Arch

	// PlatformConfig is the path to the generated platform config file.
	PlatformConfig string

	// Port is the local TCP port the guest serial console is exposed on.
	Port int

	// ExtraArgs are additional QEMU arguments. They must not interfere with
	// the essential arguments set by the invocation itself.
	ExtraArgs []Argument
}

// Validate checks the invocation for obvious issues.
func (i *Invocation) Validate() error {
	if i.Arch == "" {
		return &ArgumentError{"no arch given"}
	}

	if i.PlatformConfig == "" {
		return &ArgumentError{"no platform config given"}
	}

	if i.Port < minPort || i.Port > maxPort {
		return &ArgumentError{"port out of range: " + strconv.Itoa(i.Port)}
	}

	return nil
}

// Name returns the executable to run.
func (i *Invocation) Name() string {
	if i.Executable == "" {
		return DefaultMake
	}

	return i.Executable
}

// Args compiles the argument list for the build tool.
//
// Networking, vsock and hardware acceleration are disabled for a
// deterministic boot.
func (i *Invocation) Args() ([]string, error) {
	err := i.Validate()
	if err != nil {
		return nil, err
	}

	qemuArgs, err := i.qemuArgsString()
	if err != nil {
		return nil, err
	}

	return []string{
		"ARCH=" + i.Arch.String(),
		"PLAT_CONFIG=" + i.PlatformConfig,
		"NET=n",
		"VSOCK=n",
		"ACCEL=n",
		runTarget,
		"QEMU_ARGS=" + qemuArgs,
	}, nil
}

// String returns the full command line for logging.
func (i *Invocation) String() string {
	args, err := i.Args()
	if err != nil {
		return i.Name()
	}

	return i.Name() + " " + strings.Join(args, " ")
}

func (i *Invocation) arguments() []Argument {
	args := []Argument{
		// Disable QEMU monitor.
		UniqueArg("monitor", "none"),
		// Serial console as TCP server. QEMU waits for the first client.
		UniqueArg("serial", fmt.Sprintf("tcp::%d", i.Port), "server=on"),
	}

	return append(args, i.ExtraArgs...)
}

func (i *Invocation) qemuArgsString() (string, error) {
	args := i.arguments()

	for _, arg := range args {
		if strings.ContainsAny(arg.value, " \t\n") {
			return "", fmt.Errorf("%w: %s", ErrArgumentWhitespace, arg.String())
		}
	}

	argStrings, err := BuildArgumentStrings(args)
	if err != nil {
		return "", err
	}

	return strings.Join(argStrings, " "), nil
}
