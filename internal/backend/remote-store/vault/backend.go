// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package vault implements a remote store keeping the document in one
// secret of a KV version 2 secrets engine, served by OpenBao or Vault.
package vault

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hashicorp/go-multierror"
	openbao "github.com/openbao/openbao/api/v2"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

const defaultMount = "secret"

// Config configures the Vault store. Empty connection settings fall back
// to the BAO_* and VAULT_* environment variables read by the OpenBao
// client.
type Config struct {
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	Namespace string `mapstructure:"namespace"`
	CACert    string `mapstructure:"ca_cert"`

	// Mount is the path the KV version 2 engine is mounted at.
	Mount string `mapstructure:"mount"`

	// Name is the secret path below Mount.
	Name string `mapstructure:"name"`

	// GZip compresses the document before writing it. Compressed and plain
	// secrets are both readable regardless of this setting.
	GZip bool `mapstructure:"gzip"`

	remote.Config `mapstructure:",squash"`
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.Name == "" {
		diags = multierror.Append(diags, errors.New("name must be set"))
	}
	if strings.HasPrefix(c.Name, "/") || strings.HasSuffix(c.Name, "/") {
		diags = multierror.Append(diags, fmt.Errorf("name %q must not start or end with '/'", c.Name))
	}
	if strings.Contains(c.Mount, "/data") {
		diags = multierror.Append(diags, fmt.Errorf("mount %q must be the engine's mount path, without /data", c.Mount))
	}
	return diags.ErrorOrNil()
}

// New returns a backend storing its document in the secret cfg.Name.
func New(cfg Config) (*remote.Backend, error) {
	if cfg.Mount == "" {
		cfg.Mount = defaultMount
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vault backend configuration: %w", err)
	}

	config := openbao.DefaultConfig()
	if config.Error != nil {
		return nil, config.Error
	}
	if cfg.Address != "" {
		config.Address = cfg.Address
	}
	if cfg.CACert != "" {
		if err := config.ConfigureTLS(&openbao.TLSConfig{CACert: cfg.CACert}); err != nil {
			return nil, err
		}
	}

	client, err := openbao.NewClient(config)
	if err != nil {
		return nil, err
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	mount := strings.Trim(cfg.Mount, "/")
	log.Printf("[DEBUG] vault: using %s, mount %s", config.Address, mount)
	return remote.NewBackend(&RemoteClient{
		KV:   client.KVv2(mount),
		Name: cfg.Name,
		GZip: cfg.GZip,
		id:   fmt.Sprintf("%s/v1/%s/data/%s", strings.TrimSuffix(config.Address, "/"), mount, cfg.Name),
	}, cfg.Config)
}
