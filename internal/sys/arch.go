// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

// Arch is a guest architecture as named by the guest build system.
type Arch string

// Supported guest architectures.
const (
	AArch64     Arch = "aarch64"
	X86_64      Arch = "x86_64" //nolint:revive
	RISCV64     Arch = "riscv64"
	LoongArch64 Arch = "loongarch64"
)

// String implements [fmt.Stringer].
func (a *Arch) String() string {
	return string(*a)
}

// Set implements [pflag.Value].
func (a *Arch) Set(s string) error {
	switch Arch(s) {
	case AArch64, X86_64, RISCV64, LoongArch64:
		*a = Arch(s)
	default:
		return ErrArchNotSupported
	}

	return nil
}

// Type implements [pflag.Value].
func (*Arch) Type() string {
	return "arch"
}
