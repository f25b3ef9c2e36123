// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

type termSpinner struct {
	quit, done chan struct{}
	started    time.Time
	n          int
	msg        string
}

// Start starts the spinner.
func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	fmt.Printf("%s... ", s.msg)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.quit:
				return
			case <-time.After(1 * time.Second):
				const chars = `/-\|`
				fmt.Printf("\b%c", chars[s.n])
				s.n++
				if s.n >= len(chars) {
					s.n = 0
				}
			}
		}
	}()
}

// Stop stops the spinner.
func (s *termSpinner) Stop(err error) {
	close(s.quit)
	<-s.done
	d := time.Since(s.started)
	if err != nil {
		fmt.Printf("\r\033[K%6s %s %s %v\n", FormatDuration(d), s.msg, SGR(Red, "failed"), err)
		return
	}
	fmt.Printf("\r\033[K%6s %s\n", FormatDuration(d), s.msg)
}

// Done finishes the spinner with message.
func (s *termSpinner) Done(format string, args ...any) {
	close(s.quit)
	<-s.done
	msg := fmt.Sprintf(format, args...)
	d := time.Since(s.started)
	fmt.Printf("\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, msg)
}

// TermUI is a terminal-based UI.
type TermUI struct {
	width int
}

func (t *TermUI) init() {
	t.width, _, _ = term.GetSize(int(os.Stdout.Fd()))
}

func (t *TermUI) fit(msg string) string {
	if t.width > 4 {
		return elideMiddle(msg, t.width)
	}
	return msg
}

// Infof reports to stdout, eliding the middle of a too long message.
func (t *TermUI) Infof(format string, args ...any) {
	fmt.Println(t.fit(fmt.Sprintf(format, args...)))
}

// Warningf reports to stderr.
func (t *TermUI) Warningf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", SGR(Yellow, "warning:"), t.fit(fmt.Sprintf(format, args...)))
}

// Errorf reports to stderr.
func (t *TermUI) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", SGR(Red, "error:"), fmt.Sprintf(format, args...))
}

// NewSpinner returns a terminal-based spinner.
func (TermUI) NewSpinner() Spinner {
	return &termSpinner{}
}
