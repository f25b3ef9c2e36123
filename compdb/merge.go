// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"os"

	"go.chromium.org/infra/build/compiledb/ui"
)

// MergeOptions controls Merge.
type MergeOptions struct {
	// CheckFiles drops entries whose file doesn't exist.
	CheckFiles bool

	// Exists reports whether the file exists.
	// If nil, it checks the local disk.
	Exists func(fname string) bool

	// Verbose reports each dropped entry to UI.
	Verbose bool
	UI      ui.UI
}

// Merge merges incoming entries into existing entries.
//
// Entries are identified by Key, and an incoming entry replaces the
// existing entry of the same key. Entries without file are dropped.
// Replaced entries keep their position, and new entries are appended in
// incoming order.
func Merge(existing, incoming []Entry, opts MergeOptions) []Entry {
	idx := make(map[Key]int, len(existing)+len(incoming))
	merged := make([]Entry, 0, len(existing)+len(incoming))
	add := func(e Entry) {
		if e.File == "" {
			return
		}
		k := e.Key()
		if i, ok := idx[k]; ok {
			merged[i] = e
			return
		}
		idx[k] = len(merged)
		merged = append(merged, e)
	}
	for _, e := range existing {
		add(e)
	}
	for _, e := range incoming {
		add(e)
	}
	if !opts.CheckFiles {
		return merged
	}
	exists := opts.Exists
	if exists == nil {
		exists = fileExists
	}
	result := merged[:0]
	for _, e := range merged {
		fname := e.Key().Path()
		if !exists(fname) {
			if opts.Verbose && opts.UI != nil {
				opts.UI.Warningf("drop entry for missing file %s", fname)
			}
			continue
		}
		result = append(result, e)
	}
	return result
}

func fileExists(fname string) bool {
	_, err := os.Stat(fname)
	return err == nil
}
