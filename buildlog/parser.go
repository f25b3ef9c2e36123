// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildlog parses build logs of make-like build tools into
// compilation database entries.
package buildlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/compiledb/compdb"
	"go.chromium.org/infra/build/compiledb/toolsupport/gccutil"
	"go.chromium.org/infra/build/compiledb/toolsupport/makeutil"
	"go.chromium.org/infra/build/compiledb/toolsupport/shutil"
	"go.chromium.org/infra/build/compiledb/ui"
)

// ErrProjectDir is returned when the project directory is not usable.
var ErrProjectDir = errors.New("bad project directory")

// Options controls Parse.
type Options struct {
	// ProjectDir is an absolute path of the directory where the build
	// started.
	ProjectDir string

	// Exclude are regexp patterns of source files to exclude.
	Exclude []string

	// Verbose reports each skipped line to UI.
	Verbose bool

	// CommandStyle stores compile commands as a command string
	// instead of arguments.
	CommandStyle bool

	// FullPath stores absolute path of source files.
	FullPath bool

	// Policy is the compiler recognition policy.
	// If nil, gccutil.DefaultPolicy is used.
	Policy *gccutil.Policy

	// UI receives diagnostics. If nil, nothing is reported.
	UI ui.UI
}

// Stats is statistics of a parse.
type Stats struct {
	// Lines is the number of physical lines.
	Lines int
	// LogicalLines is the number of lines after joining continuations.
	LogicalLines int
	// DirChanges is the number of entering/leaving directory markers.
	DirChanges int
	// DirAnomalies is the number of leaving markers without entering.
	DirAnomalies int
	// TokenizeErrors is the number of lines that failed to tokenize.
	TokenizeErrors int
	// Commands is the number of compile commands.
	Commands int
	// Ignored is the number of compiler commands that don't compile,
	// e.g. link.
	Ignored int
	// Excluded is the number of source files excluded.
	Excluded int
	// Skipped is the number of lines without compile command.
	Skipped int
}

// Result is a result of Parse.
type Result struct {
	// Entries are entries in the order found in the log.
	Entries []compdb.Entry
	Stats   Stats
}

type parser struct {
	opts     Options
	policy   *gccutil.Policy
	excluder *Excluder
	dirs     *makeutil.DirTracker
	result   *Result
	lineno   int
}

// Parse parses the build log read from r.
//
// It never fails on a line it can't understand; such lines are skipped
// and counted in Stats. It fails only when the log can't be read, or
// the options are invalid.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	if opts.ProjectDir == "" || !filepath.IsAbs(opts.ProjectDir) {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrProjectDir, opts.ProjectDir)
	}
	excluder, err := NewExcluder(opts.Exclude)
	if err != nil {
		return nil, err
	}
	p := &parser{
		opts:     opts,
		policy:   opts.Policy,
		excluder: excluder,
		dirs:     makeutil.NewDirTracker(opts.ProjectDir),
		result:   &Result{},
	}
	if p.policy == nil {
		p.policy = gccutil.DefaultPolicy()
	}
	lr := makeutil.NewLineReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read build log at line %d: %w", lr.Line(), err)
		}
		p.lineno = lr.Line()
		p.result.Stats.LogicalLines++
		p.parseLine(line)
	}
	p.result.Stats.Lines = lr.Line()
	log.Debugf("parsed build log: %+v", p.result.Stats)
	return p.result, nil
}

func (p *parser) skip(line, reason string) {
	p.result.Stats.Skipped++
	if p.opts.Verbose && p.opts.UI != nil {
		p.opts.UI.Warningf("line %d: %s. ignoring %q", p.lineno, reason, line)
	}
}

func (p *parser) parseLine(line string) {
	ok, err := p.dirs.Observe(line)
	if ok {
		p.result.Stats.DirChanges++
		if err != nil {
			p.result.Stats.DirAnomalies++
			if p.opts.Verbose && p.opts.UI != nil {
				p.opts.UI.Warningf("line %d: %v. stay in %s", p.lineno, err, p.dirs.Dir())
			}
		}
		return
	}
	args, err := shutil.Split(line)
	if err != nil {
		p.result.Stats.TokenizeErrors++
		p.skip(line, err.Error())
		return
	}
	// `cd` only affects the rest of the line, since make runs each line
	// in a new shell.
	dir := p.dirs.Dir()
	found := false
	for _, cmd := range shutil.SplitCommands(args) {
		if cmd[0] == "cd" {
			if len(cmd) == 2 {
				dir = makeutil.ResolvePath(dir, cmd[1])
			}
			continue
		}
		inv := p.policy.Classify(cmd)
		switch inv.Kind {
		case gccutil.NotCompiler:
			continue
		case gccutil.Ignored:
			p.result.Stats.Ignored++
			found = true
			continue
		}
		found = true
		p.result.Stats.Commands++
		p.addEntries(dir, inv)
	}
	if !found {
		p.skip(line, "not a compile command")
	}
}

func (p *parser) addEntries(dir string, inv gccutil.Invocation) {
	var command compdb.CommandLine
	if p.opts.CommandStyle {
		command = compdb.CommandLine(shutil.Join(inv.Args))
	}
	for i, src := range inv.Sources {
		fullpath := makeutil.ResolvePath(dir, src)
		if p.excluder.Match(fullpath) {
			p.result.Stats.Excluded++
			if p.opts.Verbose && p.opts.UI != nil {
				p.opts.UI.Warningf("line %d: excluded %s", p.lineno, fullpath)
			}
			continue
		}
		file := src
		if p.opts.FullPath {
			file = fullpath
		}
		var invocation compdb.Invocation = command
		if !p.opts.CommandStyle {
			// each entry owns its args.
			invocation = compdb.Arguments(slices.Clone(inv.Filtered))
		}
		p.result.Entries = append(p.result.Entries, compdb.Entry{
			Directory:  dir,
			File:       file,
			Invocation: invocation,
			Output:     inv.Outputs[i],
		})
	}
}
