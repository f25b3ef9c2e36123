// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package generate generates a compilation database from a build log.
package generate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/compiledb/buildlog"
	"go.chromium.org/infra/build/compiledb/compdb"
	"go.chromium.org/infra/build/compiledb/toolsupport/gccutil"
	"go.chromium.org/infra/build/compiledb/ui"
)

// Options is options to generate a compilation database.
type Options struct {
	// InputName is a name of the build log used in messages.
	InputName string

	// Output is a filename of the compilation database.
	// compdb.Stdout writes to stdout.
	Output string

	// ProjectDir is a directory where the build ran.
	// It must be an existing directory.
	ProjectDir string

	// Exclude are regexp patterns of source files to exclude.
	Exclude []string

	Verbose bool

	// Overwrite ignores the existing compilation database.
	Overwrite bool

	// Strict drops entries for files that don't exist.
	Strict bool

	// CommandStyle writes "command" instead of "arguments".
	CommandStyle bool

	// FullPath writes absolute path of source files.
	FullPath bool

	// Pretty indents the output.
	Pretty bool

	// Policy is the compiler recognition policy.
	// If nil, gccutil.DefaultPolicy is used.
	Policy *gccutil.Policy

	// UI reports progress. If nil, nothing is reported.
	UI ui.UI
}

type nopUI struct{}

func (nopUI) Infof(string, ...any)    {}
func (nopUI) Warningf(string, ...any) {}
func (nopUI) Errorf(string, ...any)   {}
func (nopUI) NewSpinner() ui.Spinner  { return nopSpinner{} }

type nopSpinner struct{}

func (nopSpinner) Start(string, ...any) {}
func (nopSpinner) Stop(error)           {}
func (nopSpinner) Done(string, ...any)  {}

// Run reads a build log from in, and updates the compilation database
// at opts.Output.
//
// Unless opts.Overwrite, entries in the existing database are kept
// unless the build log has a new command for the same file.
// opts.Output is not touched if it returns an error.
func Run(ctx context.Context, in io.Reader, opts Options) error {
	u := opts.UI
	if u == nil {
		u = nopUI{}
	}
	fi, err := os.Stat(opts.ProjectDir)
	if err != nil {
		return fmt.Errorf("%w: %w", buildlog.ErrProjectDir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", buildlog.ErrProjectDir, opts.ProjectDir)
	}
	inputName := opts.InputName
	if inputName == "" {
		inputName = "stdin"
	}

	u.Infof("## Processing build commands from %s", inputName)
	spin := u.NewSpinner()
	spin.Start("parsing build log")
	result, err := buildlog.Parse(ctx, in, buildlog.Options{
		ProjectDir:   opts.ProjectDir,
		Exclude:      opts.Exclude,
		Verbose:      opts.Verbose,
		CommandStyle: opts.CommandStyle,
		FullPath:     opts.FullPath,
		Policy:       opts.Policy,
		UI:           opts.UI,
	})
	spin.Stop(err)
	if err != nil {
		return err
	}
	log.Debugf("parse stats: %+v", result.Stats)
	u.Infof("## Found %d compile commands (%d entries) in %d lines", result.Stats.Commands, len(result.Entries), result.Stats.Lines)

	prior := loadPrior(opts, u)
	entries := compdb.Merge(prior, result.Entries, compdb.MergeOptions{
		CheckFiles: opts.Strict,
		Verbose:    opts.Verbose,
		UI:         opts.UI,
	})
	style := compdb.StyleArguments
	if opts.CommandStyle {
		style = compdb.StyleCommand
	}
	entries = compdb.Normalize(entries, style, opts.UI)

	u.Infof("## Writing compilation database with %d entries to %s", len(entries), opts.Output)
	err = compdb.Write(opts.Output, entries, opts.Pretty)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	u.Infof("## Done.")
	return nil
}

// loadPrior loads the existing database at opts.Output.
// The database is best effort: any load error is treated as
// no entries.
func loadPrior(opts Options, u ui.UI) []compdb.Entry {
	if opts.Overwrite || opts.Output == compdb.Stdout {
		return nil
	}
	prior, err := compdb.Load(opts.Output)
	if err != nil {
		log.Debugf("load %s: %v", opts.Output, err)
		if opts.Verbose {
			u.Warningf("ignore existing compilation database: %v", err)
		}
		return nil
	}
	if len(prior) > 0 {
		u.Infof("## Loaded compilation database with %d entries from %s", len(prior), opts.Output)
	}
	return prior
}
