// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc.
package gccutil

import (
	"path"
	"regexp"
	"slices"
	"strings"
)

// Policy is the set of names used to recognize gcc compatible compiler
// invocations.
type Policy struct {
	// Compilers are compiler program names, e.g. "gcc", "clang++".
	// Cross compilers ("aarch64-linux-gnu-gcc") and versioned names
	// ("clang-17") match too.
	Compilers []string

	// Wrappers are programs that run the compiler given as their
	// argument, e.g. "ccache".
	Wrappers []string

	// SourceExts are extensions of source files, with leading dot.
	// Extensions are case sensitive (".C" is C++, ".c" is C).
	SourceExts []string

	// CompileFlags are flags to compile without linking.
	CompileFlags []string

	// CosmeticFlags are flags that don't change compile semantics
	// and are dropped from arguments.
	CosmeticFlags []string
}

// DefaultPolicy returns a policy for gcc, clang and compatibles.
func DefaultPolicy() *Policy {
	return &Policy{
		Compilers: []string{
			"cc", "c++",
			"gcc", "g++",
			"clang", "clang++",
			"icc", "icpc", "icx", "icpx",
			"nvcc",
			"emcc", "em++",
			"tcc",
		},
		Wrappers: []string{
			"ccache",
			"sccache",
			"distcc",
			"icecc",
			"buildcache",
			"libtool",
			"env",
		},
		SourceExts: []string{
			".c",
			".cc", ".cp", ".cpp", ".cxx", ".c++", ".C", ".CPP",
			".m", ".mm", ".M",
			".S", ".s", ".sx",
			".cu",
			".i", ".ii",
		},
		CompileFlags: []string{"-c"},
		CosmeticFlags: []string{
			"-fdiagnostics-color",
			"-fdiagnostics-color=always",
			"-fdiagnostics-color=auto",
			"-fdiagnostics-color=never",
			"-fno-diagnostics-color",
			"-fcolor-diagnostics",
			"-fno-color-diagnostics",
			"-fansi-escape-codes",
		},
	}
}

// versionSuffixRE matches version suffix of compiler name, e.g. "-17", "-4.9".
var versionSuffixRE = regexp.MustCompile(`-[0-9]+(\.[0-9]+)*$`)

func progName(arg string) string {
	// build logs may come from windows too.
	name := path.Base(strings.ReplaceAll(arg, `\`, "/"))
	name = strings.TrimSuffix(name, ".exe")
	return versionSuffixRE.ReplaceAllString(name, "")
}

// IsCompiler reports whether arg names a compiler program.
func (p *Policy) IsCompiler(arg string) bool {
	name := progName(arg)
	for _, c := range p.Compilers {
		if name == c || strings.HasSuffix(name, "-"+c) {
			return true
		}
	}
	return false
}

// IsWrapper reports whether arg names a compiler wrapper program.
func (p *Policy) IsWrapper(arg string) bool {
	return slices.Contains(p.Wrappers, progName(arg))
}

// IsSource reports whether fname looks like a source file.
func (p *Policy) IsSource(fname string) bool {
	ext := path.Ext(fname)
	if ext == "" {
		return false
	}
	return slices.Contains(p.SourceExts, ext)
}

// OutputFor returns the object file a compiler writes for src when no
// -o is given.
func (p *Policy) OutputFor(src string) string {
	base := path.Base(strings.ReplaceAll(src, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base)) + ".o"
}
