// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

// SplitCommands splits words returned by Split into simple commands
// separated by standalone `&&`, `||`, `;` or `|` words.
// Empty commands are dropped.
func SplitCommands(args []string) [][]string {
	var cmds [][]string
	start := 0
	for i, arg := range args {
		switch arg {
		case "&&", "||", ";", "|":
		default:
			continue
		}
		if i > start {
			cmds = append(cmds, args[start:i])
		}
		start = i + 1
	}
	if start < len(args) {
		cmds = append(cmds, args[start:])
	}
	return cmds
}
