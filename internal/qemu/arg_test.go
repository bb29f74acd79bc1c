// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"testing"

	"github.com/aibor/starryrun/internal/qemu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgument(t *testing.T) {
	unique := qemu.UniqueArg("serial", "tcp::4444", "server=on")
	assert.Equal(t, "serial", unique.Name())
	assert.Equal(t, "tcp::4444,server=on", unique.Value())
	assert.True(t, unique.UniqueName())
	assert.Equal(t, "-serial tcp::4444,server=on", unique.String())

	repeatable := qemu.RepeatableArg("nographic")
	assert.False(t, repeatable.UniqueName())
	assert.Equal(t, "-nographic", repeatable.String())
}

func TestBuildArgumentStrings(t *testing.T) {
	t.Run("builds", func(t *testing.T) {
		args := []qemu.Argument{
			qemu.UniqueArg("monitor", "none"),
			qemu.RepeatableArg("d", "int"),
			qemu.RepeatableArg("d", "mmu"),
			qemu.UniqueArg("no-reboot"),
		}
		expected := []string{
			"-monitor", "none",
			"-d", "int",
			"-d", "mmu",
			"-no-reboot",
		}

		actual, err := qemu.BuildArgumentStrings(args)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	})

	collisions := []struct {
		name string
		args []qemu.Argument
	}{
		{
			name: "unique",
			args: []qemu.Argument{
				qemu.UniqueArg("monitor", "none"),
				qemu.UniqueArg("monitor", "stdio"),
			},
		},
		{
			name: "repeatable after unique",
			args: []qemu.Argument{
				qemu.UniqueArg("serial", "tcp::4444"),
				qemu.RepeatableArg("serial", "stdio"),
			},
		},
		{
			name: "repeatable with same value",
			args: []qemu.Argument{
				qemu.RepeatableArg("d", "int"),
				qemu.RepeatableArg("d", "int"),
			},
		},
	}

	for _, tt := range collisions {
		t.Run("collision "+tt.name, func(t *testing.T) {
			_, err := qemu.BuildArgumentStrings(tt.args)
			require.ErrorIs(t, err, qemu.ErrArgumentCollision)
		})
	}
}

func TestParseArgument(t *testing.T) {
	tests := []struct {
		input       string
		expected    qemu.Argument
		expectedErr error
	}{
		{input: "d=guest_errors", expected: qemu.RepeatableArg("d", "guest_errors")},
		{input: "-d=int,mmu", expected: qemu.RepeatableArg("d", "int,mmu")},
		{input: "no-reboot", expected: qemu.RepeatableArg("no-reboot")},
		{input: "smp=cpus=2", expected: qemu.RepeatableArg("smp", "cpus=2")},
		{input: "", expectedErr: &qemu.ArgumentError{}},
		{input: "-=x", expectedErr: &qemu.ArgumentError{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual, err := qemu.ParseArgument(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestArgumentErrorIs(t *testing.T) {
	//nolint:testifylint
	assert.ErrorIs(t, error(&qemu.ArgumentError{}), &qemu.ArgumentError{})
	assert.NotErrorIs(t, assert.AnError, &qemu.ArgumentError{})
}
