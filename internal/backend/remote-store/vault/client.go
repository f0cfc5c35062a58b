// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	openbao "github.com/openbao/openbao/api/v2"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

const (
	dataKey     = "data"
	encodingKey = "encoding"

	// encodingGZip marks a secret whose data is base64 of gzip of the
	// document.
	encodingGZip = "gzip+base64"
)

// RemoteClient reads and writes one Vault secret.
type RemoteClient struct {
	KV   *openbao.KVv2
	Name string
	GZip bool

	id string
}

var _ remote.Client = (*RemoteClient)(nil)

func (c *RemoteClient) Identity() string {
	return c.id
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	secret, err := c.KV.Get(ctx, c.Name)
	if errors.Is(err, openbao.ErrSecretNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// The latest version of a soft-deleted secret has no data.
	if secret == nil || secret.Data == nil {
		return nil, nil
	}

	raw, ok := secret.Data[dataKey]
	if !ok {
		return nil, fmt.Errorf("secret %s has no %q field", c.Name, dataKey)
	}
	payload, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("secret %s field %q is a %T, not a string", c.Name, dataKey, raw)
	}

	if enc, _ := secret.Data[encodingKey].(string); enc == encodingGZip {
		data, err := uncompress(payload)
		if err != nil {
			return nil, fmt.Errorf("secret %s: %w", c.Name, err)
		}
		return &remote.Payload{Data: data}, nil
	}
	if payload == "" {
		return nil, nil
	}
	return &remote.Payload{Data: []byte(payload)}, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	secret := map[string]any{
		dataKey: string(data),
	}
	if c.GZip {
		compressed, err := compress(data)
		if err != nil {
			return err
		}
		secret[dataKey] = compressed
		secret[encodingKey] = encodingGZip
	}

	_, err := c.KV.Put(ctx, c.Name, secret)
	return err
}

func compress(data []byte) (string, error) {
	b := new(bytes.Buffer)
	gz := gzip.NewWriter(b)
	if _, err := gz.Write(data); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b.Bytes()), nil
}

func uncompress(payload string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid compressed data: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("invalid compressed data: %w", err)
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
