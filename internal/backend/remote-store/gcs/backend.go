// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package gcs implements a remote store keeping the document in one object
// of a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/hashicorp/go-multierror"
	"google.golang.org/api/option"

	"github.com/opentofu/lazydoc/internal/backend/remote"
	"github.com/opentofu/lazydoc/internal/httpclient"
	"github.com/opentofu/lazydoc/version"
)

// Config configures the GCS store.
type Config struct {
	Bucket string `mapstructure:"bucket"`
	Object string `mapstructure:"object"`

	// Credentials is a service account key, either as a file path or as
	// its JSON content. Empty means GOOGLE_CREDENTIALS, and failing that
	// the application default credentials.
	Credentials string `mapstructure:"credentials"`

	// StorageEndpoint overrides the API endpoint, for emulators.
	StorageEndpoint string `mapstructure:"storage_endpoint"`

	remote.Config `mapstructure:",squash"`
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.Bucket == "" {
		diags = multierror.Append(diags, errors.New("bucket must be set"))
	}
	if c.Object == "" {
		diags = multierror.Append(diags, errors.New("object must be set"))
	}
	if strings.HasPrefix(c.Object, "/") {
		diags = multierror.Append(diags, fmt.Errorf("object %q must not start with '/'", c.Object))
	}
	return diags.ErrorOrNil()
}

// New returns a backend storing its document in gs://cfg.Bucket/cfg.Object.
func New(ctx context.Context, cfg Config) (*remote.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gcs backend configuration: %w", err)
	}

	opts := []option.ClientOption{
		option.WithUserAgent(httpclient.UserAgent(version.String())),
	}
	creds := cfg.Credentials
	if creds == "" {
		creds = os.Getenv("GOOGLE_CREDENTIALS")
	}
	if creds != "" {
		// to mirror how the other Google integrations work, we accept the file path or the contents
		contents, err := readPathOrContents(creds)
		if err != nil {
			return nil, fmt.Errorf("Error loading credentials: %w", err)
		}
		if !json.Valid([]byte(contents)) {
			return nil, errors.New("the string provided in credentials is neither valid json nor a valid file path")
		}
		opts = append(opts, option.WithCredentialsJSON([]byte(contents)))
	}
	if cfg.StorageEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.StorageEndpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient() failed: %w", err)
	}

	return remote.NewBackend(&RemoteClient{
		storageClient: client,
		bucketName:    cfg.Bucket,
		objectName:    cfg.Object,
	}, cfg.Config)
}

func readPathOrContents(poc string) (string, error) {
	if len(poc) == 0 || strings.HasPrefix(strings.TrimSpace(poc), "{") {
		return poc, nil
	}
	contents, err := os.ReadFile(poc)
	if err != nil {
		return "", err
	}
	return string(contents), nil
}

// RemoteClient reads and writes one GCS object.
type RemoteClient struct {
	storageClient *storage.Client
	bucketName    string
	objectName    string
}

var _ remote.Client = (*RemoteClient)(nil)

func (c *RemoteClient) Identity() string {
	return fmt.Sprintf("gs://%s/%s", c.bucketName, c.objectName)
}

func (c *RemoteClient) object() *storage.ObjectHandle {
	return c.storageClient.Bucket(c.bucketName).Object(c.objectName)
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	r, err := c.object().NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("Failed to open document object %s: %w", c.Identity(), err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Failed to read document object %s: %w", c.Identity(), err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &remote.Payload{Data: data}, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	log.Printf("[DEBUG] Uploading document to %s", c.Identity())
	w := c.object().NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("Failed to upload document to %s: %w", c.Identity(), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Failed to upload document to %s: %w", c.Identity(), err)
	}
	return nil
}
