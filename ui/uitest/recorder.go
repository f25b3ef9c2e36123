// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package uitest provides a ui.UI for tests.
package uitest

import (
	"fmt"
	"strings"

	"go.chromium.org/infra/build/compiledb/ui"
)

// Recorder is a ui.UI that records reported messages.
type Recorder struct {
	Infos    []string
	Warnings []string
	Errors   []string
}

// Infof records an info message.
func (r *Recorder) Infof(format string, args ...any) {
	r.Infos = append(r.Infos, fmt.Sprintf(format, args...))
}

// Warningf records a warning message.
func (r *Recorder) Warningf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Errorf records an error message.
func (r *Recorder) Errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// NewSpinner returns a spinner that records to r.Infos.
func (r *Recorder) NewSpinner() ui.Spinner {
	return &spinner{r: r}
}

// HasWarning reports whether any warning contains substr.
func (r *Recorder) HasWarning(substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

type spinner struct {
	r   *Recorder
	msg string
}

func (s *spinner) Start(format string, args ...any) {
	s.msg = fmt.Sprintf(format, args...)
}

func (s *spinner) Stop(err error) {
	if err != nil {
		s.r.Errorf("%s failed %v", s.msg, err)
		return
	}
	s.r.Infof("%s done", s.msg)
}

func (s *spinner) Done(format string, args ...any) {
	s.r.Infof("%s %s", s.msg, fmt.Sprintf(format, args...))
}
