// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package s3 implements a remote store keeping the document in one object
// of an Amazon S3, or S3 compatible, bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-multierror"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

// Config configures the S3 store. Credentials are resolved by the AWS SDK's
// default chain: environment, shared config files and instance roles.
type Config struct {
	Bucket string `mapstructure:"bucket"`
	Key    string `mapstructure:"key"`
	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint, for S3 compatible services.
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	Profile      string `mapstructure:"profile"`

	// SkipS3Checksum disables the SHA-256 checksum sent with uploads, which
	// some S3 compatible services reject.
	SkipS3Checksum bool   `mapstructure:"skip_s3_checksum"`
	ACL            string `mapstructure:"acl"`

	remote.Config `mapstructure:",squash"`
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.Bucket == "" {
		diags = multierror.Append(diags, errors.New("bucket must be set"))
	}
	if c.Key == "" {
		diags = multierror.Append(diags, errors.New("key must be set"))
	}
	if strings.HasPrefix(c.Key, "/") || strings.HasSuffix(c.Key, "/") {
		diags = multierror.Append(diags, fmt.Errorf("key %q must not start or end with '/'", c.Key))
	}
	return diags.ErrorOrNil()
}

// New returns a backend storing its document in s3://cfg.Bucket/cfg.Key.
func New(ctx context.Context, cfg Config) (*remote.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid s3 backend configuration: %w", err)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		options.UsePathStyle = cfg.UsePathStyle
	})

	return remote.NewBackend(&RemoteClient{
		s3Client:       s3Client,
		bucketName:     cfg.Bucket,
		path:           cfg.Key,
		acl:            cfg.ACL,
		skipS3Checksum: cfg.SkipS3Checksum,
	}, cfg.Config)
}
