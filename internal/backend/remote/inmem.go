// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"crypto/md5"
	"sync"
)

// InmemClient is a Client that keeps the blob in memory. It is used in
// tests and as the transport behind the "inmem" backend type.
type InmemClient struct {
	Name string

	mu   sync.Mutex
	data []byte
	md5  []byte
}

var _ Client = (*InmemClient)(nil)

func (c *InmemClient) Get(_ context.Context) (*Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil, nil
	}

	return &Payload{
		Data: append([]byte(nil), c.data...),
		MD5:  append([]byte(nil), c.md5...),
	}, nil
}

func (c *InmemClient) Put(_ context.Context, data []byte) error {
	md5 := md5.Sum(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = append([]byte(nil), data...)
	c.md5 = md5[:]
	return nil
}

// Delete empties the client, as if nothing had ever been put.
func (c *InmemClient) Delete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.md5 = nil
}

func (c *InmemClient) Identity() string {
	return "inmem:" + c.Name
}
