// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildlog

import (
	"fmt"
	"regexp"
	"strings"
)

// Excluder matches source files to exclude from the database.
type Excluder struct {
	re *regexp.Regexp
}

// NewExcluder returns an excluder for the regexp patterns.
// A file is excluded if any pattern matches some part of its absolute
// path, so both "^/src/third_party/" and "third_party/" work.
func NewExcluder(patterns []string) (*Excluder, error) {
	var pats []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", p, err)
		}
		pats = append(pats, "(?:"+p+")")
	}
	if len(pats) == 0 {
		return &Excluder{}, nil
	}
	re, err := regexp.Compile(strings.Join(pats, "|"))
	if err != nil {
		return nil, fmt.Errorf("bad exclude patterns %q: %w", patterns, err)
	}
	return &Excluder{re: re}, nil
}

// Match reports whether the file at the absolute path is excluded.
func (e *Excluder) Match(fname string) bool {
	if e == nil || e.re == nil {
		return false
	}
	return e.re.MatchString(fname)
}
