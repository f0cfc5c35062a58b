// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/apparentlymart/go-shquot/shquot"
	"golang.org/x/crypto/ssh"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

// exitMissing is the exit status of the read command when the document
// file does not exist.
const exitMissing = 44

// RemoteClient reads and writes one file over SSH, opening a new
// connection for every call.
type RemoteClient struct {
	addr   string
	path   string
	config *ssh.ClientConfig
}

var _ remote.Client = (*RemoteClient)(nil)

func (c *RemoteClient) Identity() string {
	path := c.path
	if !strings.HasPrefix(path, "/") {
		path = "/~/" + path
	}
	return fmt.Sprintf("ssh://%s@%s%s", c.config.User, c.addr, path)
}

func (c *RemoteClient) readCommand() string {
	p := shquot.POSIXShell([]string{c.path})
	return fmt.Sprintf("if [ -e %s ]; then cat -- %s; else exit %d; fi", p, p, exitMissing)
}

// writeCommand replaces the file by renaming a temporary file over it, so a
// concurrent reader never sees a partial document.
func (c *RemoteClient) writeCommand() string {
	p := shquot.POSIXShell([]string{c.path})
	tmp := shquot.POSIXShell([]string{c.path + ".lazydoc-tmp"})
	return fmt.Sprintf("cat > %s && mv -f -- %s %s", tmp, tmp, p)
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	var stdout bytes.Buffer
	err := c.run(ctx, c.readCommand(), nil, &stdout)
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitStatus() == exitMissing {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if stdout.Len() == 0 {
		return nil, nil
	}
	return &remote.Payload{Data: stdout.Bytes()}, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	return c.run(ctx, c.writeCommand(), bytes.NewReader(data), nil)
}

func (c *RemoteClient) run(ctx context.Context, cmd string, stdin *bytes.Reader, stdout *bytes.Buffer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, c.addr, c.config)
	if err != nil {
		conn.Close()
		return err
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	// Closing the client unblocks a command still running when ctx ends.
	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	var stderr bytes.Buffer
	if stdin != nil {
		session.Stdin = stdin
	}
	if stdout != nil {
		session.Stdout = stdout
	}
	session.Stderr = &stderr

	log.Printf("[TRACE] ssh: running %q on %s", cmd, c.addr)
	if err := session.Run(cmd); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitStatus() != exitMissing && stderr.Len() > 0 {
			return fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return err
	}
	return nil
}
