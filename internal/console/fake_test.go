// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/aibor/starryrun/internal/console"
)

// guest handles a single accepted console connection.
type guest func(conn net.Conn)

// fakeDialer hands out in-memory connections, served by the guest at the
// index of the dial. A nil guest refuses the connection.
type fakeDialer struct {
	guests []guest
	dials  int
	wg     sync.WaitGroup
}

func newFakeDialer(t *testing.T, guests ...guest) *fakeDialer {
	t.Helper()

	dialer := &fakeDialer{guests: guests}
	t.Cleanup(dialer.wg.Wait)

	return dialer
}

func (d *fakeDialer) DialContext(
	_ context.Context,
	_, _ string,
) (net.Conn, error) {
	idx := d.dials
	d.dials++

	if idx >= len(d.guests) || d.guests[idx] == nil {
		return nil, syscall.ECONNREFUSED
	}

	client, server := net.Pipe()

	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		defer server.Close()

		d.guests[idx](server)
	}()

	return client, nil
}

func testConfig(command string) console.Config {
	cfg := console.DefaultConfig("guest:4444")
	cfg.Command = command
	cfg.Attempts = 3
	cfg.RetryDelay = time.Millisecond
	cfg.DialTimeout = time.Second
	cfg.ReadTimeout = 20 * time.Millisecond
	cfg.PromptTimeout = time.Second
	cfg.CommandTimeout = time.Second

	return cfg
}

// write sends all chunks as separate writes, so each one arrives in its own
// read on the other end.
func write(conn net.Conn, chunks ...string) bool {
	for _, chunk := range chunks {
		if _, err := io.WriteString(conn, chunk); err != nil {
			return false
		}
	}

	return true
}

// shell is a guest that shows the prompt, reads one line and answers with
// the given chunks. Received lines are sent to lines.
func shell(lines chan<- string, answer ...string) guest {
	return func(conn net.Conn) {
		if !write(conn, "[  0.123 INFO] booting\r\n", "starry:~# ") {
			return
		}

		reader := bufio.NewReader(conn)

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		lines <- line

		if !write(conn, answer...) {
			return
		}

		// Wait for the exit instruction or the client to go away.
		if line, err := reader.ReadString('\n'); err == nil {
			lines <- line
		}
	}
}

// hangUp is a guest that sends some noise and closes the connection.
func hangUp(conn net.Conn) {
	write(conn, "[  0.001 INFO] still booting\r\n")
}

// silent is a guest that never shows a prompt and just consumes input until
// the client closes the connection.
func silent(conn net.Conn) {
	write(conn, "[  0.001 INFO] booting forever\r\n")
	_, _ = io.Copy(io.Discard, conn)
}

// hangingDialer never connects. Each dial blocks until its context ends, like
// a dial to a host that drops SYN packets.
type hangingDialer struct {
	mu    sync.Mutex
	dials int
}

func (d *hangingDialer) DialContext(
	ctx context.Context,
	network, _ string,
) (net.Conn, error) {
	d.mu.Lock()
	d.dials++
	d.mu.Unlock()

	<-ctx.Done()

	return nil, &net.OpError{Op: "dial", Net: network, Err: ctx.Err()}
}
