// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineReader reads logical lines of build output.
// A line ending with an odd number of backslashes continues on the next
// line, and the backslash-newline is removed as sh does.
type LineReader struct {
	r *bufio.Reader
	n int
}

// NewLineReader returns a new LineReader reading from r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Line returns the number of physical lines read so far.
func (lr *LineReader) Line() int {
	return lr.n
}

// ReadLine returns the next logical line without line terminator.
// It returns io.EOF when no more lines are available.
func (lr *LineReader) ReadLine() (string, error) {
	var sb strings.Builder
	for {
		line, err := lr.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" && errors.Is(err, io.EOF) {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", io.EOF
		}
		lr.n++
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if !continued(line) || errors.Is(err, io.EOF) {
			sb.WriteString(line)
			return sb.String(), nil
		}
		sb.WriteString(line[:len(line)-1])
	}
}

func continued(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
