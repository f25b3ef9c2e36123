// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides utilities for shell command lines.
package shutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTokenize is returned when a command line can not be split into words.
var ErrTokenize = errors.New("failed to tokenize")

// Split splits a command line into words in the manner of POSIX sh.
// Only unquoted blanks separate words. Single quotes preserve their
// content literally, double quotes honor backslash before `"`, `\`, `$`,
// '`' and newline, and an unquoted backslash escapes the next character.
// It returns error wrapping ErrTokenize for unterminated quote or
// dangling backslash.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	// inword is true once the current word has started, even when it is
	// still empty (e.g. "").
	inword := false
	escaped := false
	var quote rune
	quoteAt := 0
	for i, ch := range cmdline {
		if escaped {
			// backslash-newline is a line continuation.
			if ch != '\n' {
				sb.WriteRune(ch)
			}
			escaped = false
			continue
		}
		switch quote {
		case '\'':
			if ch == '\'' {
				quote = 0
				continue
			}
			sb.WriteRune(ch)
			continue
		case '"':
			switch ch {
			case '"':
				quote = 0
			case '\\':
				if i+1 < len(cmdline) && strings.IndexByte("\"\\$`\n", cmdline[i+1]) >= 0 {
					escaped = true
					continue
				}
				sb.WriteRune(ch)
			default:
				sb.WriteRune(ch)
			}
			continue
		}
		switch ch {
		case ' ', '\t', '\n', '\r':
			if inword {
				args = append(args, sb.String())
				sb.Reset()
				inword = false
			}
		case '\\':
			inword = true
			escaped = true
		case '\'', '"':
			inword = true
			quote = ch
			quoteAt = i
		default:
			inword = true
			sb.WriteRune(ch)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: trailing backslash in %q", ErrTokenize, cmdline)
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated %c quote at %d in %q", ErrTokenize, quote, quoteAt, cmdline)
	}
	if inword {
		args = append(args, sb.String())
	}
	return args, nil
}
