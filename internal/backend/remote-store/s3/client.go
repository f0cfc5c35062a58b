// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package s3

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

const contentTypeJSON = "application/json"

// s3API is the part of *s3.Client the store uses.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// RemoteClient reads and writes one S3 object.
type RemoteClient struct {
	s3Client       s3API
	bucketName     string
	path           string
	acl            string
	skipS3Checksum bool
}

var _ remote.Client = (*RemoteClient)(nil)

func (c *RemoteClient) Identity() string {
	return fmt.Sprintf("s3://%s/%s", c.bucketName, c.path)
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	// Head works around some s3 compatible backends not handling missing GetObject requests correctly (ex: minio Get returns Missing Bucket)
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &c.bucketName,
		Key:    &c.path,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.bucketName,
		Key:    &c.path,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	defer output.Body.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, output.Body); err != nil {
		return nil, fmt.Errorf("Failed to read document: %w", err)
	}
	if buf.Len() == 0 {
		return nil, nil
	}

	sum := md5.Sum(buf.Bytes())
	return &remote.Payload{
		Data: buf.Bytes(),
		MD5:  sum[:],
	}, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	i := &s3.PutObjectInput{
		ContentType:   aws.String(contentTypeJSON),
		ContentLength: aws.Int64(int64(len(data))),
		Body:          bytes.NewReader(data),
		Bucket:        &c.bucketName,
		Key:           &c.path,
	}

	if !c.skipS3Checksum {
		i.ChecksumAlgorithm = types.ChecksumAlgorithmSha256

		// There is a conflict in the aws-go-sdk-v2 that prevents it from working with many s3 compatible services
		// Since we can pre-compute the hash here, we can work around it.
		// ref: https://github.com/aws/aws-sdk-go-v2/issues/1689
		sum := sha256.Sum256(data)
		sum64str := base64.StdEncoding.EncodeToString(sum[:])
		i.ChecksumSHA256 = &sum64str
	}

	if c.acl != "" {
		i.ACL = types.ObjectCannedACL(c.acl)
	}

	log.Printf("[DEBUG] Uploading document to %s", c.Identity())
	if _, err := c.s3Client.PutObject(ctx, i); err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}
	return nil
}

// isNotFound reports whether err means the object does not exist. HeadObject
// responses carry no body, so only the generic API error code identifies
// them.
func isNotFound(err error) bool {
	var nk *types.NoSuchKey
	if errors.As(err, &nk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
