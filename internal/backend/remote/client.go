// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package remote turns a store that can only get and put an opaque blob into
// a document [backend.Backend].
//
// Each concrete store lives in its own package under remote-store and only
// implements [Client]. Encoding, decoding, the decode retry policy and the
// initial value are handled here once for all of them.
package remote

import (
	"context"
)

// Client is the transport of a remote store.
type Client interface {
	// Get returns the current blob, or a nil payload if the store holds
	// nothing yet.
	Get(ctx context.Context) (*Payload, error)

	// Put replaces the blob with data.
	Put(ctx context.Context, data []byte) error

	// Identity returns a stable string naming the remote resource, such as
	// its URL.
	Identity() string
}

// Payload is the blob returned by a Client.
type Payload struct {
	Data []byte

	// MD5 is the checksum of Data as reported by the store. It is optional;
	// when present it is verified before the data is decoded.
	MD5 []byte
}
