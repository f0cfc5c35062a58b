// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package azure implements a remote store keeping the document in one block
// blob of an Azure Storage container.
package azure

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/hashicorp/go-multierror"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

// Config configures the Azure Blob store.
type Config struct {
	// ConnectionString authenticates against the storage account. Empty
	// means AZURE_STORAGE_CONNECTION_STRING.
	ConnectionString string `mapstructure:"connection_string"`
	ContainerName    string `mapstructure:"container_name"`
	Key              string `mapstructure:"key"`

	// Snapshot takes a blob snapshot before every write.
	Snapshot bool `mapstructure:"snapshot"`

	// Timeout bounds each request. Zero means no limit beyond the caller's
	// context.
	Timeout time.Duration `mapstructure:"timeout"`

	remote.Config `mapstructure:",squash"`
}

func (c *Config) connectionString() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return os.Getenv("AZURE_STORAGE_CONNECTION_STRING")
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.connectionString() == "" {
		diags = multierror.Append(diags, errors.New("connection_string must be set, or AZURE_STORAGE_CONNECTION_STRING"))
	}
	if c.ContainerName == "" {
		diags = multierror.Append(diags, errors.New("container_name must be set"))
	}
	if c.Key == "" {
		diags = multierror.Append(diags, errors.New("key must be set"))
	}
	if c.Timeout < 0 {
		diags = multierror.Append(diags, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	return diags.ErrorOrNil()
}

// New returns a backend storing its document in the blob cfg.Key.
func New(cfg Config) (*remote.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid azure backend configuration: %w", err)
	}

	client, err := blockblob.NewClientFromConnectionString(cfg.connectionString(), cfg.ContainerName, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating azure blob client: %w", err)
	}

	return remote.NewBackend(&RemoteClient{
		blobClient: client,
		snapshot:   cfg.Snapshot,
		timeout:    cfg.Timeout,
	}, cfg.Config)
}
