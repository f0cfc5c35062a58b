// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package document defines the JSON-shaped value model that every backend
// stores and returns, the canonical codec used to persist it, and the
// key-path vocabulary used to address locations inside a document.
//
// A [Value] is one of [Null], [Bool], [Number], [String], [List] or [Map].
// Numbers keep the exact decimal literal they were decoded from, so a
// document survives a decode/encode round trip without losing precision.
//
// Nothing in this package performs I/O. The functions that walk a [Path]
// through a Value ([Resolve], [Assign], [Insert] and [Remove]) operate on
// an in-memory document and report shape mismatches as [*PathError].
package document
