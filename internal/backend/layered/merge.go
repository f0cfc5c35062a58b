// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package layered

import (
	"github.com/opentofu/lazydoc/internal/document"
)

// Merge combines docs, highest priority first, into one document.
//
// If the first document is not a map it is the result as is. Otherwise the
// leading run of documents that are all maps is merged key by key: each key
// found in any of those maps takes the Merge of the values stored under it
// in the maps of the run that have it, in order. Documents after the first
// non-map contribute nothing, even where they are maps again. Merging no
// documents gives null.
func Merge(docs ...document.Value) document.Value {
	if len(docs) == 0 {
		return document.Null{}
	}
	if _, ok := docs[0].(document.Map); !ok {
		return docs[0]
	}

	run := mapRun(docs)
	if len(run) == 1 {
		return run[0]
	}

	ret := make(document.Map)
	for _, m := range run {
		for k := range m {
			if _, done := ret[k]; done {
				continue
			}
			ret[k] = Merge(valuesAt(run, k)...)
		}
	}
	return ret
}

// mapRun returns the maps at the start of docs, up to the first document
// of any other kind.
func mapRun(docs []document.Value) []document.Map {
	var run []document.Map
	for _, doc := range docs {
		m, ok := doc.(document.Map)
		if !ok {
			break
		}
		run = append(run, m)
	}
	return run
}

func valuesAt(run []document.Map, key string) []document.Value {
	var vals []document.Value
	for _, m := range run {
		if v, ok := m[key]; ok {
			vals = append(vals, v)
		}
	}
	return vals
}
