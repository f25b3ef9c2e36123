// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/compiledb/ui/uitest"
)

func TestLoad_FirstRun(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	err := os.WriteFile(empty, []byte(" \n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	for _, fname := range []string{
		filepath.Join(dir, "nonexistent.json"),
		empty,
		Stdout,
	} {
		got, err := Load(fname)
		if err != nil || len(got) != 0 {
			t.Errorf("Load(%q)=%v, %v; want no entries, nil err", fname, got, err)
		}
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	for _, content := range []string{
		"{not json",
		`{"directory": "/src"}`,
		"[1, 2]",
	} {
		fname := filepath.Join(dir, "compile_commands.json")
		err := os.WriteFile(fname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Load(fname)
		if !errors.Is(err, ErrMalformed) || len(got) != 0 {
			t.Errorf("Load(%q)=%v, %v; want no entries, %v", content, got, err, ErrMalformed)
		}
	}
}

func TestLoad_SkipsIncompleteEntries(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "compile_commands.json")
	err := os.WriteFile(fname, []byte(`[
  {"directory": "/src", "file": "a.c", "command": "gcc -c a.c"},
  {"directory": "/src", "command": "gcc -c b.c"},
  {"directory": "/src", "file": "c.c"},
  {"directory": "/src", "file": "d.c", "arguments": ["gcc", "-c", "d.c"], "output": "d.o"}
]`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Load(fname)
	if err != nil {
		t.Fatalf("Load(%q)=%v; want nil err", fname, err)
	}
	want := []Entry{
		{Directory: "/src", File: "a.c", Invocation: CommandLine("gcc -c a.c")},
		{Directory: "/src", File: "d.c", Invocation: Arguments{"gcc", "-c", "d.c"}, Output: "d.o"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load(%q): diff -want +got:\n%s", fname, diff)
	}
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	entries := []Entry{
		{
			Directory:  "/src/out",
			File:       "../a.c",
			Invocation: Arguments{"gcc", "-DINC=<a.h>", "-c", "../a.c", "-o", "a.o"},
			Output:     "a.o",
		},
		{
			Directory:  "/src/out",
			File:       "../b c.c",
			Invocation: Arguments{"gcc", "-c", "../b c.c"},
		},
		{
			Directory:  "/a",
			File:       "x.c",
			Invocation: Arguments{},
		},
	}
	dir := t.TempDir()
	for _, tc := range []struct {
		name   string
		fname  string
		pretty bool
	}{
		{name: "pretty", fname: "compile_commands.json", pretty: true},
		{name: "compact", fname: "compact.json"},
		{name: "gzip", fname: "compile_commands.json.gz", pretty: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fname := filepath.Join(dir, tc.fname)
			err := Write(fname, entries, tc.pretty)
			if err != nil {
				t.Fatalf("Write(%q)=%v; want nil err", fname, err)
			}
			if _, err := os.Stat(fname + ".tmp"); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("temporary file %s.tmp remains: %v", fname, err)
			}
			got, err := Load(fname)
			if err != nil {
				t.Fatalf("Load(%q)=%v; want nil err", fname, err)
			}
			if diff := cmp.Diff(entries, got); diff != "" {
				t.Errorf("Load(Write(entries)): diff -want +got:\n%s", diff)
			}
			// write again what is loaded.
			err = Write(fname, got, tc.pretty)
			if err != nil {
				t.Fatalf("Write(%q)=%v; want nil err", fname, err)
			}
			got, err = Load(fname)
			if err != nil {
				t.Fatalf("Load(%q)=%v; want nil err", fname, err)
			}
			if diff := cmp.Diff(entries, got); diff != "" {
				t.Errorf("Load(Write(Load(Write(entries)))): diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestLoadWrite_EmptyArguments(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "compile_commands.json")
	err := os.WriteFile(fname, []byte(`[{"directory":"/a","file":"x.c","arguments":[]}]`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{{Directory: "/a", File: "x.c", Invocation: Arguments{}}}
	for i := range 2 {
		got, err := Load(fname)
		if err != nil {
			t.Fatalf("Load(%q)=%v; want nil err", fname, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Load(%q) #%d: diff -want +got:\n%s", fname, i, diff)
		}
		err = Write(fname, got, false)
		if err != nil {
			t.Fatalf("Write(%q)=%v; want nil err", fname, err)
		}
	}
	b, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"arguments":[]`) {
		t.Errorf("Write(%q)=%s; want empty arguments", fname, b)
	}
}

func TestWrite_Symlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "build", "compile_commands.json")
	err := os.MkdirAll(filepath.Dir(target), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(target, []byte("[]\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "compile_commands.json")
	err = os.Symlink(filepath.Join("build", "compile_commands.json"), link)
	if err != nil {
		t.Skipf("symlink is not supported: %v", err)
	}
	entries := []Entry{
		{Directory: "/src/build", File: "../a.c", Invocation: Arguments{"gcc", "-c", "../a.c"}},
	}
	err = Write(link, entries, false)
	if err != nil {
		t.Fatalf("Write(%q)=%v; want nil err", link, err)
	}
	fi, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Errorf("%s mode=%v; want symlink", link, fi.Mode())
	}
	got, err := Load(target)
	if err != nil {
		t.Fatalf("Load(%q)=%v; want nil err", target, err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("Load(%q): diff -want +got:\n%s", target, diff)
	}
}

func TestWrite_Replaces(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "compile_commands.json")
	err := os.WriteFile(fname, []byte(strings.Repeat("stale content\n", 1000)), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = Write(fname, nil, true)
	if err != nil {
		t.Fatalf("Write(%q, nil)=%v; want nil err", fname, err)
	}
	b, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "[]\n"; got != want {
		t.Errorf("content=%q; want %q", got, want)
	}
}

func TestEncode(t *testing.T) {
	entries := []Entry{
		{Directory: "/src", File: "a.c", Invocation: CommandLine("gcc -DX=<x> -c a.c")},
	}
	got, err := Encode(entries, true)
	if err != nil {
		t.Fatalf("Encode=%v; want nil err", err)
	}
	want := `[
  {
    "directory": "/src",
    "command": "gcc -DX=<x> -c a.c",
    "file": "a.c"
  }
]
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Encode: diff -want +got:\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	entries := []Entry{
		{Directory: "/src", File: "a.c", Invocation: CommandLine("gcc -c a.c")},
		{Directory: "/src", File: "b.c", Invocation: Arguments{"gcc", "-c", "b.c"}},
		{Directory: "/src", File: "c.c", Invocation: CommandLine(`gcc -c "c.c`)},
	}
	var rec uitest.Recorder
	got := Normalize(entries, StyleArguments, &rec)
	want := []Entry{
		{Directory: "/src", File: "a.c", Invocation: Arguments{"gcc", "-c", "a.c"}},
		{Directory: "/src", File: "b.c", Invocation: Arguments{"gcc", "-c", "b.c"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize(%v): diff -want +got:\n%s", StyleArguments, diff)
	}
	if !rec.HasWarning("/src/c.c") {
		t.Errorf("Normalize warnings=%q; want warning for /src/c.c", rec.Warnings)
	}
}
