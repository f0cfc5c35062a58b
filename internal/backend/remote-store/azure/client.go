// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

// blobAPI is the part of *blockblob.Client the store uses.
type blobAPI interface {
	DownloadStream(ctx context.Context, o *blob.DownloadStreamOptions) (blob.DownloadStreamResponse, error)
	UploadBuffer(ctx context.Context, buffer []byte, o *blockblob.UploadBufferOptions) (blockblob.UploadBufferResponse, error)
	CreateSnapshot(ctx context.Context, options *blob.CreateSnapshotOptions) (blob.CreateSnapshotResponse, error)
	URL() string
}

// RemoteClient reads and writes one block blob.
type RemoteClient struct {
	blobClient blobAPI
	snapshot   bool
	timeout    time.Duration
}

var _ remote.Client = (*RemoteClient)(nil)

func (c *RemoteClient) Identity() string {
	return c.blobClient.URL()
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	// Get should time out after the timeoutSeconds
	ctx, ctxCancel := c.getContextWithTimeout(ctx)
	defer ctxCancel()
	resp, err := c.blobClient.DownloadStream(ctx, nil)
	if err != nil {
		if notFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error downloading azure blob: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading azure blob: %w", err)
	}

	// If there was no data, then return nil
	if len(data) == 0 {
		return nil, nil
	}

	payload := &remote.Payload{
		Data: data,
	}
	if len(resp.ContentMD5) > 0 {
		payload.MD5 = resp.ContentMD5
	}
	return payload, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	ctx, ctxCancel := c.getContextWithTimeout(ctx)
	defer ctxCancel()
	if c.snapshot {
		log.Printf("[DEBUG] Snapshotting existing Blob %s", c.blobClient.URL())
		if _, err := c.blobClient.CreateSnapshot(ctx, nil); err != nil && !notFoundError(err) {
			return fmt.Errorf("error snapshotting Blob %s: %w", c.blobClient.URL(), err)
		}

		log.Print("[DEBUG] Created blob snapshot")
	}

	_, err := c.blobClient.UploadBuffer(ctx, data, &blockblob.UploadBufferOptions{
		HTTPHeaders: httpHeaders(),
	})
	if err != nil {
		return fmt.Errorf("error uploading blob: %w", err)
	}
	return nil
}

func (c *RemoteClient) getContextWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func notFoundError(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return true
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}

func httpHeaders() *blob.HTTPHeaders {
	contentType := "application/json"
	return &blob.HTTPHeaders{
		BlobContentType: &contentType,
	}
}
