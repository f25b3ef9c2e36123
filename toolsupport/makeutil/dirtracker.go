// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make.
package makeutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

// ErrUnbalancedLeave is reported when make leaves a directory it did not
// enter.
var ErrUnbalancedLeave = errors.New("leaving directory without entering")

// make -w prints
//
//	make[1]: Entering directory '/path/to/dir'
//	make[1]: Leaving directory '/path/to/dir'
//
// older make quotes the dir as `/path/to/dir'.
var dirMarkerRE = regexp.MustCompile("^\\s*\\S*make\\S*?(?:\\[\\d+\\])?: (Entering|Leaving) directory [`'\"‘](.*)['\"’]\\s*$")

// DirTracker tracks the current directory of recursive make.
type DirTracker struct {
	cur   string
	stack []string
}

// NewDirTracker returns a new tracker starting at root.
func NewDirTracker(root string) *DirTracker {
	return &DirTracker{cur: filepath.Clean(root)}
}

// Dir returns the current directory.
func (t *DirTracker) Dir() string {
	return t.cur
}

// Depth returns the number of entered directories not yet left.
func (t *DirTracker) Depth() int {
	return len(t.stack)
}

// Observe checks whether line is make's directory marker and updates the
// current directory. It returns false if line is not a marker.
// A leaving marker with no matching entering marker returns
// ErrUnbalancedLeave and keeps the current directory.
func (t *DirTracker) Observe(line string) (bool, error) {
	m := dirMarkerRE.FindStringSubmatch(line)
	if m == nil {
		return false, nil
	}
	switch m[1] {
	case "Entering":
		t.stack = append(t.stack, t.cur)
		t.cur = t.Resolve(m[2])
	case "Leaving":
		if len(t.stack) == 0 {
			return true, fmt.Errorf("%w: %q", ErrUnbalancedLeave, m[2])
		}
		t.cur = t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
	}
	return true, nil
}

// Resolve resolves fname relative to the current directory.
func (t *DirTracker) Resolve(fname string) string {
	return ResolvePath(t.cur, fname)
}

// ResolvePath returns fname if it is absolute, or fname joined to dir.
func ResolvePath(dir, fname string) string {
	if filepath.IsAbs(fname) {
		return filepath.Clean(fname)
	}
	return filepath.Join(dir, fname)
}
