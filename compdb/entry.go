// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compdb provides the compilation database (compile_commands.json)
// model, merge and storage.
package compdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"go.chromium.org/infra/build/compiledb/toolsupport/shutil"
)

// Style is a representation of the compile command in the database.
type Style int

const (
	// StyleArguments stores the command as "arguments" list.
	StyleArguments Style = iota
	// StyleCommand stores the command as a "command" string.
	StyleCommand
)

func (s Style) String() string {
	switch s {
	case StyleArguments:
		return "arguments"
	case StyleCommand:
		return "command"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Invocation is the compile command of an entry.
// It is either CommandLine or Arguments.
type Invocation interface {
	// Style returns the style of the invocation.
	Style() Style
	// Args returns the command line args.
	Args() ([]string, error)
	// String returns the command line as a string.
	String() string

	invocation()
}

// CommandLine is a compile command as a shell command line.
type CommandLine string

// Style returns StyleCommand.
func (CommandLine) Style() Style { return StyleCommand }

// Args splits the command line.
func (c CommandLine) Args() ([]string, error) { return shutil.Split(string(c)) }

func (c CommandLine) String() string { return string(c) }

func (CommandLine) invocation() {}

// Arguments is a compile command as args.
type Arguments []string

// Style returns StyleArguments.
func (Arguments) Style() Style { return StyleArguments }

// Args returns a copy of the args.
func (a Arguments) Args() ([]string, error) { return slices.Clone(a), nil }

func (a Arguments) String() string { return shutil.Join(a) }

func (Arguments) invocation() {}

// Entry is an entry of compilation database.
type Entry struct {
	// Directory is the working directory of the compilation.
	Directory string

	// File is the source file, as given to the compiler.
	// It may be relative to Directory.
	File string

	// Invocation is the compile command.
	Invocation Invocation

	// Output is the output of the compilation, if known.
	Output string
}

// Key is an identity of an entry in a database.
type Key struct {
	Directory string
	File      string
}

// Key returns the key of the entry.
func (e Entry) Key() Key {
	return Key{
		Directory: filepath.Clean(e.Directory),
		File:      filepath.Clean(e.File),
	}
}

// Path returns the path of the file.
func (k Key) Path() string {
	if filepath.IsAbs(k.File) {
		return k.File
	}
	return filepath.Join(k.Directory, k.File)
}

// WithStyle returns the entry with the invocation in style.
func (e Entry) WithStyle(style Style) (Entry, error) {
	if e.Invocation == nil {
		return e, fmt.Errorf("no compile command for %s", e.Key().Path())
	}
	if e.Invocation.Style() == style {
		return e, nil
	}
	switch style {
	case StyleCommand:
		e.Invocation = CommandLine(e.Invocation.String())
	case StyleArguments:
		args, err := e.Invocation.Args()
		if err != nil {
			return e, fmt.Errorf("bad command for %s: %w", e.Key().Path(), err)
		}
		e.Invocation = Arguments(args)
	default:
		return e, fmt.Errorf("unknown style %v", style)
	}
	return e, nil
}

// jsonEntry is an entry in compile_commands.json.
// https://clang.llvm.org/docs/JSONCompilationDatabase.html
type jsonEntry struct {
	Directory string    `json:"directory"`
	Arguments *[]string `json:"arguments,omitempty"`
	Command   *string   `json:"command,omitempty"`
	File      string    `json:"file"`
	Output    string    `json:"output,omitempty"`
}

var errNoInvocation = errors.New("neither arguments nor command")

func (e Entry) toJSON() (jsonEntry, error) {
	je := jsonEntry{
		Directory: e.Directory,
		File:      e.File,
		Output:    e.Output,
	}
	switch inv := e.Invocation.(type) {
	case Arguments:
		// An empty list is still written, so it loads back as arguments.
		args := []string(inv)
		if args == nil {
			args = []string{}
		}
		je.Arguments = &args
	case CommandLine:
		s := string(inv)
		je.Command = &s
	default:
		return je, fmt.Errorf("%s: %w", e.Key().Path(), errNoInvocation)
	}
	return je, nil
}

func (je jsonEntry) toEntry() (Entry, error) {
	e := Entry{
		Directory: je.Directory,
		File:      je.File,
		Output:    je.Output,
	}
	// clang prefers arguments if both are given.
	switch {
	case je.Arguments != nil:
		e.Invocation = Arguments(*je.Arguments)
	case je.Command != nil:
		e.Invocation = CommandLine(*je.Command)
	default:
		return e, errNoInvocation
	}
	return e, nil
}

// MarshalJSON encodes the entry as compile_commands.json's entry.
func (e Entry) MarshalJSON() ([]byte, error) {
	je, err := e.toJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(je)
}

// UnmarshalJSON decodes compile_commands.json's entry.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var je jsonEntry
	err := json.Unmarshal(b, &je)
	if err != nil {
		return err
	}
	*e, err = je.toEntry()
	return err
}
