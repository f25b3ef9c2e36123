// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// compiledb generates compilation database from build logs.
package main

import (
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/compiledb/subcmd/gencmd"
	"go.chromium.org/infra/build/compiledb/subcmd/help"
	"go.chromium.org/infra/build/compiledb/subcmd/version"
	"go.chromium.org/infra/build/compiledb/ui"
)

const versionID = "v1.0.0"

func getApplication() *cli.Application {
	return &cli.Application{
		Name:  "compiledb",
		Title: "Compilation database generator for make-based builds",
		Commands: []*subcommands.Command{
			gencmd.Cmd(),

			help.Cmd(),
			version.Cmd(versionID),
		},
	}
}

func main() {
	os.Exit(compiledbMain(os.Args[1:]))
}

func compiledbMain(args []string) int {
	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	ui.Init()
	defer ui.Restore()

	return subcommands.Run(getApplication(), args)
}
