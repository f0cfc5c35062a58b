// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package consul implements a remote store keeping the document under a
// single key of the Consul KV store.
package consul

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/hashicorp/go-multierror"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

// Config configures the Consul store. Empty connection settings fall back
// to the CONSUL_HTTP_* environment variables read by the Consul client.
type Config struct {
	Path        string `mapstructure:"path"`
	Address     string `mapstructure:"address"`
	Scheme      string `mapstructure:"scheme"`
	Datacenter  string `mapstructure:"datacenter"`
	AccessToken string `mapstructure:"access_token"`
	HTTPAuth    string `mapstructure:"http_auth"`
	CAFile      string `mapstructure:"ca_file"`
	CertFile    string `mapstructure:"cert_file"`
	KeyFile     string `mapstructure:"key_file"`

	remote.Config `mapstructure:",squash"`
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.Path == "" {
		diags = multierror.Append(diags, errors.New("path must be set"))
	}
	if strings.HasPrefix(c.Path, "/") {
		diags = multierror.Append(diags, fmt.Errorf("path %q must not start with '/'", c.Path))
	}
	if c.Scheme != "" && c.Scheme != "http" && c.Scheme != "https" {
		diags = multierror.Append(diags, fmt.Errorf("scheme must be http or https, got %q", c.Scheme))
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		diags = multierror.Append(diags, errors.New("cert_file and key_file must be set together"))
	}
	return diags.ErrorOrNil()
}

// New returns a backend storing its document at cfg.Path in Consul.
func New(cfg Config) (*remote.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid consul backend configuration: %w", err)
	}

	config := consulapi.DefaultConfig()
	if cfg.Address != "" {
		config.Address = cfg.Address
	}
	if cfg.Scheme != "" {
		config.Scheme = cfg.Scheme
	}
	if cfg.Datacenter != "" {
		config.Datacenter = cfg.Datacenter
	}
	if cfg.AccessToken != "" {
		config.Token = cfg.AccessToken
	}
	if cfg.CAFile != "" {
		config.TLSConfig.CAFile = cfg.CAFile
	}
	if cfg.CertFile != "" {
		config.TLSConfig.CertFile = cfg.CertFile
		config.TLSConfig.KeyFile = cfg.KeyFile
	}
	if cfg.HTTPAuth != "" {
		var username, password string
		if strings.Contains(cfg.HTTPAuth, ":") {
			split := strings.SplitN(cfg.HTTPAuth, ":", 2)
			username = split[0]
			password = split[1]
		} else {
			username = cfg.HTTPAuth
		}
		config.HttpAuth = &consulapi.HttpBasicAuth{
			Username: username,
			Password: password,
		}
	}

	log.Printf("[DEBUG] consul: connecting to %s://%s", config.Scheme, config.Address)
	client, err := consulapi.NewClient(config)
	if err != nil {
		return nil, err
	}

	return remote.NewBackend(&RemoteClient{
		KV:   client.KV(),
		Path: cfg.Path,
		id:   fmt.Sprintf("consul://%s/%s", config.Address, cfg.Path),
	}, cfg.Config)
}

// RemoteClient reads and writes one Consul key.
type RemoteClient struct {
	KV   *consulapi.KV
	Path string

	id string
}

var _ remote.Client = (*RemoteClient)(nil)

func (c *RemoteClient) Identity() string {
	return c.id
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	pair, _, err := c.KV.Get(c.Path, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil || len(pair.Value) == 0 {
		return nil, nil
	}
	return &remote.Payload{Data: pair.Value}, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	_, err := c.KV.Put(&consulapi.KVPair{
		Key:   c.Path,
		Value: data,
	}, (&consulapi.WriteOptions{}).WithContext(ctx))
	return err
}
