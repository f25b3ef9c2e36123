// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import "testing"

func TestElideMiddle(t *testing.T) {
	for _, tc := range []struct {
		msg   string
		width int
		want  string
	}{
		{
			msg:   "## Writing compilation database with 1234 entries to /home/user/src/linux/out/compile_commands.json",
			width: 80,
			want:  "## Writing compilation database with 1...er/src/linux/out/compile_commands.json",
		},
		{
			msg:   "entries: 12 skipped:\033[41m653\033[0m excluded:\033[41m45\033[0m tokenize errors: \033[41m3\033[0m",
			width: 80,
			want:  "entries: 12 skipped:\033[41m653\033[0m excluded:\033[41m45\033[0m tokenize errors: \033[41m3\033[0m",
		},
		{
			msg:   "entries: 0 skipped:\033[41m653\033[0m excluded:\033[41m12345\033[0m",
			width: 18,
			want:  "entries...d:\033[41m12345\033[0m",
		},
	} {
		got := elideMiddle(tc.msg, tc.width)
		if got != tc.want {
			t.Errorf("elideMiddle(%q, %d)=%q; want %q\nmsg:\n%s\ngot:\n%s", tc.msg, tc.width, got, tc.want, tc.msg, got)
		}
	}
}
