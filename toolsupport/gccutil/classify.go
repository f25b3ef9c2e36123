// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"regexp"
	"slices"
	"strings"
)

// Kind is a kind of command.
type Kind int

const (
	// NotCompiler is a command that doesn't run a compiler.
	NotCompiler Kind = iota
	// Ignored is a compiler run that doesn't compile sources to objects,
	// e.g. link or preprocess.
	Ignored
	// Compile is a compiler run that compiles sources.
	Compile
)

func (k Kind) String() string {
	switch k {
	case NotCompiler:
		return "not-compiler"
	case Ignored:
		return "ignored"
	case Compile:
		return "compile"
	}
	return "unknown"
}

// Invocation is a classified command.
type Invocation struct {
	Kind Kind

	// Args is the command line from the compiler, excluding wrappers
	// and env assignments.
	Args []string

	// Filtered is Args without empty and cosmetic flags.
	Filtered []string

	// Sources are source files in Args.
	Sources []string

	// Outputs are object files for each of Sources, or "" if unknown.
	Outputs []string
}

// flags that take value as the next arg.
var separateValueFlags = map[string]bool{
	"-MF":            true,
	"-MT":            true,
	"-MQ":            true,
	"-MJ":            true,
	"-I":             true,
	"-D":             true,
	"-U":             true,
	"-include":       true,
	"-imacros":       true,
	"-isystem":       true,
	"-iquote":        true,
	"-idirafter":     true,
	"-iprefix":       true,
	"-iwithprefix":   true,
	"-isysroot":      true,
	"--sysroot":      true,
	"-x":             true,
	"-arch":          true,
	"-target":        true,
	"-Xclang":        true,
	"-Xlinker":       true,
	"-Xpreprocessor": true,
	"-Xassembler":    true,
	"-L":             true,
	"-T":             true,
	"--param":        true,

	// nvcc
	"-ccbin":     true,
	"-Xcompiler": true,
	"-Xptxas":    true,
	"-Xcudafe":   true,
}

var assignmentRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// Classify classifies the command line args.
//
// It skips leading env assignments ("CCACHE_DIR=/tmp gcc ..."), wrappers
// ("ccache gcc ...") and libtool's echo ("libtool: compile:  gcc ...").
// args is a compile command if the program is a compiler, args have one
// of CompileFlags and at least one source file.
func (p *Policy) Classify(args []string) Invocation {
	i := p.skipWrappers(args)
	if i >= len(args) || !p.IsCompiler(args[i]) {
		return Invocation{Kind: NotCompiler}
	}
	args = args[i:]
	inv := Invocation{
		Kind: Ignored,
		Args: args,
	}
	compile := false
	output := ""
	hasOutput := false
	for j := 1; j < len(args); j++ {
		arg := args[j]
		switch {
		case arg == "":
			continue
		case slices.Contains(p.CompileFlags, arg):
			compile = true
		case arg == "-o":
			if j+1 < len(args) {
				j++
				output = args[j]
				hasOutput = true
			}
		case isJoinedOutput(arg):
			output = strings.TrimPrefix(arg, "-o")
			hasOutput = true
		case separateValueFlags[arg]:
			j++
		case strings.HasPrefix(arg, "-"):
		case p.IsSource(arg):
			inv.Sources = append(inv.Sources, arg)
		}
	}
	if !compile || len(inv.Sources) == 0 {
		inv.Sources = nil
		return inv
	}
	inv.Kind = Compile
	for _, src := range inv.Sources {
		switch {
		case !hasOutput:
			inv.Outputs = append(inv.Outputs, p.OutputFor(src))
		case len(inv.Sources) == 1:
			inv.Outputs = append(inv.Outputs, output)
		default:
			// gcc rejects -o with multiple sources and -c.
			inv.Outputs = append(inv.Outputs, "")
		}
	}
	for _, arg := range args {
		if arg == "" || slices.Contains(p.CosmeticFlags, arg) {
			continue
		}
		inv.Filtered = append(inv.Filtered, arg)
	}
	return inv
}

func (p *Policy) skipWrappers(args []string) int {
	i := 0
	for i < len(args) {
		arg := args[i]
		if assignmentRE.MatchString(arg) {
			i++
			continue
		}
		if !p.IsWrapper(strings.TrimSuffix(arg, ":")) {
			return i
		}
		i++
		// wrapper's options, e.g. "libtool --tag=CC --mode=compile gcc",
		// or libtool's mode echo "libtool: compile:  gcc".
		for i < len(args) && (strings.HasPrefix(args[i], "-") || strings.HasSuffix(args[i], ":")) {
			i++
		}
	}
	return i
}

func isJoinedOutput(arg string) bool {
	if !strings.HasPrefix(arg, "-o") || arg == "-o" {
		return false
	}
	// clang's -objcmt-*, icc's -openmp.
	return !strings.HasPrefix(arg, "-obj") && !strings.HasPrefix(arg, "-openmp")
}
