// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package ssh implements a remote store keeping the document in a file on
// a host reachable over SSH. The file is read and written by running POSIX
// shell commands on the host, so no server-side component beyond a shell is
// required.
package ssh

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

const defaultPort = 22

// Config configures the SSH store.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`

	// Path is the location of the document file on the host.
	Path string `mapstructure:"path"`

	// Password enables password authentication. Without it the private
	// key in KeyFile is used.
	Password string `mapstructure:"password"`

	// KeyFile defaults to ~/.ssh/id_rsa.
	KeyFile string `mapstructure:"key_file"`

	// KnownHosts defaults to ~/.ssh/known_hosts. The host key is always
	// verified against it unless InsecureIgnoreHostKey is set.
	KnownHosts            string `mapstructure:"known_hosts"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key"`

	Timeout time.Duration `mapstructure:"timeout"`

	remote.Config `mapstructure:",squash"`
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.Host == "" {
		diags = multierror.Append(diags, errors.New("host must be set"))
	}
	if c.Path == "" {
		diags = multierror.Append(diags, errors.New("path must be set"))
	}
	if c.Port < 0 || c.Port > 65535 {
		diags = multierror.Append(diags, fmt.Errorf("port %d is out of range", c.Port))
	}
	if c.Timeout < 0 {
		diags = multierror.Append(diags, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	return diags.ErrorOrNil()
}

// New returns a backend storing its document in cfg.Path on cfg.Host. No
// connection is made until the document is first read or written.
func New(cfg Config) (*remote.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ssh backend configuration: %w", err)
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return remote.NewBackend(client, cfg.Config)
}

func newClient(cfg Config) (*RemoteClient, error) {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	user := cfg.User
	if user == "" {
		user = os.Getenv("USER")
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if cfg.InsecureIgnoreHostKey {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		knownHostsFile := cfg.KnownHosts
		if knownHostsFile == "" {
			knownHostsFile = homePath(".ssh", "known_hosts")
		}
		hostKeyCallback, err = knownhosts.New(knownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("loading known hosts: %w", err)
		}
	}

	return &RemoteClient{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		path: cfg.Path,
		config: &ssh.ClientConfig{
			User:            user,
			Auth:            auth,
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.Timeout,
		},
	}, nil
}

func authMethods(cfg Config) ([]ssh.AuthMethod, error) {
	if cfg.Password != "" {
		return []ssh.AuthMethod{ssh.Password(cfg.Password)}, nil
	}

	keyFile := cfg.KeyFile
	if keyFile == "" {
		keyFile = homePath(".ssh", "id_rsa")
	}
	pem, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", keyFile, err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

func homePath(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(elem...)
	}
	return filepath.Join(append([]string{home}, elem...)...)
}
