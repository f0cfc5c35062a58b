// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNotContainer means a segment was applied to a scalar value.
	ErrNotContainer = errors.New("value is not a map or list")
	// ErrSegmentKind means a key segment met a list or an index segment met a map.
	ErrSegmentKind = errors.New("segment does not match container kind")
	// ErrNoSuchKey means a map has no entry for the requested key.
	ErrNoSuchKey = errors.New("no such key")
	// ErrIndexOutOfRange means a list index is negative or past the end.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// PathError reports that a path could not be applied to the current shape
// of a document. Depth is the index of the segment that failed.
type PathError struct {
	Path  Path
	Depth int
	Found Kind
	Err   error
}

func (e *PathError) Error() string {
	var seg string
	if e.Depth < len(e.Path) {
		seg = e.Path[e.Depth].String()
	}
	return fmt.Sprintf("path %s: segment %d (%s) on %s: %s", e.Path, e.Depth, seg, e.Found, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// DecodeError reports persisted bytes that are not a valid document.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid document: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a value that the codec cannot represent.
type EncodeError struct {
	Path   Path
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode value at %s: %s", e.Path, e.Reason)
}
