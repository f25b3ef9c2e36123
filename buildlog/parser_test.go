// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildlog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/compiledb/compdb"
	"go.chromium.org/infra/build/compiledb/ui/uitest"
)

func parse(t *testing.T, buildlog string, opts Options) *Result {
	t.Helper()
	if opts.ProjectDir == "" {
		opts.ProjectDir = "/src"
	}
	result, err := Parse(context.Background(), strings.NewReader(buildlog), opts)
	if err != nil {
		t.Fatalf("Parse(%q)=%v; want nil err", buildlog, err)
	}
	return result
}

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name     string
		buildlog string
		opts     Options
		want     []compdb.Entry
	}{
		{
			name: "simple",
			buildlog: `echo building
gcc -Iinclude -DDEBUG -c main.c -o main.o
gcc -o app main.o -lm
`,
			want: []compdb.Entry{
				{
					Directory:  "/src",
					File:       "main.c",
					Invocation: compdb.Arguments{"gcc", "-Iinclude", "-DDEBUG", "-c", "main.c", "-o", "main.o"},
					Output:     "main.o",
				},
			},
		},
		{
			name: "commandStyle",
			buildlog: `ccache clang -DMSG="hello world" -fcolor-diagnostics -c 'my file.c'
`,
			opts: Options{CommandStyle: true},
			want: []compdb.Entry{
				{
					Directory:  "/src",
					File:       "my file.c",
					Invocation: compdb.CommandLine(`clang '-DMSG=hello world' -fcolor-diagnostics -c 'my file.c'`),
					Output:     "my file.o",
				},
			},
		},
		{
			name: "cosmeticFlags",
			buildlog: `clang++ -fcolor-diagnostics -std=c++17 -c a.cc
`,
			want: []compdb.Entry{
				{
					Directory:  "/src",
					File:       "a.cc",
					Invocation: compdb.Arguments{"clang++", "-std=c++17", "-c", "a.cc"},
					Output:     "a.o",
				},
			},
		},
		{
			name: "multipleSources",
			buildlog: `gcc -O2 -c a.c lib/b.c
`,
			want: []compdb.Entry{
				{
					Directory:  "/src",
					File:       "a.c",
					Invocation: compdb.Arguments{"gcc", "-O2", "-c", "a.c", "lib/b.c"},
					Output:     "a.o",
				},
				{
					Directory:  "/src",
					File:       "lib/b.c",
					Invocation: compdb.Arguments{"gcc", "-O2", "-c", "a.c", "lib/b.c"},
					Output:     "b.o",
				},
			},
		},
		{
			name: "continuation",
			buildlog: `gcc -DFOO \
  -c foo.c
`,
			want: []compdb.Entry{
				{
					Directory:  "/src",
					File:       "foo.c",
					Invocation: compdb.Arguments{"gcc", "-DFOO", "-c", "foo.c"},
					Output:     "foo.o",
				},
			},
		},
		{
			name: "cd",
			buildlog: `cd sub && gcc -c x.c
gcc -c y.c
`,
			want: []compdb.Entry{
				{
					Directory:  "/src/sub",
					File:       "x.c",
					Invocation: compdb.Arguments{"gcc", "-c", "x.c"},
					Output:     "x.o",
				},
				{
					Directory:  "/src",
					File:       "y.c",
					Invocation: compdb.Arguments{"gcc", "-c", "y.c"},
					Output:     "y.o",
				},
			},
		},
		{
			name: "fullPath",
			buildlog: `make: Entering directory '/src/out'
gcc -c ../a.c
`,
			opts: Options{FullPath: true},
			want: []compdb.Entry{
				{
					Directory:  "/src/out",
					File:       "/src/a.c",
					Invocation: compdb.Arguments{"gcc", "-c", "../a.c"},
					Output:     "a.o",
				},
			},
		},
		{
			name: "libtool",
			buildlog: `libtool: compile:  gcc -DHAVE_CONFIG_H -c util.c  -fPIC -DPIC -o .libs/util.o
`,
			want: []compdb.Entry{
				{
					Directory:  "/src",
					File:       "util.c",
					Invocation: compdb.Arguments{"gcc", "-DHAVE_CONFIG_H", "-c", "util.c", "-fPIC", "-DPIC", "-o", ".libs/util.o"},
					Output:     ".libs/util.o",
				},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := parse(t, tc.buildlog, tc.opts)
			if diff := cmp.Diff(tc.want, got.Entries); diff != "" {
				t.Errorf("Parse(%q): diff -want +got:\n%s", tc.buildlog, diff)
			}
		})
	}
}

func TestParse_DirectoryTracking(t *testing.T) {
	buildlog := `make: Entering directory '/a'
gcc -c x.c
make[1]: Entering directory '/a/b'
gcc -c y.c
make[1]: Leaving directory '/a/b'
gcc -c z.c
make: Leaving directory '/a'
`
	got := parse(t, buildlog, Options{})
	var dirs []string
	for _, e := range got.Entries {
		dirs = append(dirs, e.Directory)
	}
	want := []string{"/a", "/a/b", "/a"}
	if diff := cmp.Diff(want, dirs); diff != "" {
		t.Errorf("directories: diff -want +got:\n%s", diff)
	}
	if got.Stats.DirChanges != 4 || got.Stats.DirAnomalies != 0 {
		t.Errorf("stats=%+v; want 4 dir changes, no anomalies", got.Stats)
	}
}

func TestParse_MultipleSourcesIndependent(t *testing.T) {
	got := parse(t, "gcc -c a.c b.c\n", Options{})
	if len(got.Entries) != 2 {
		t.Fatalf("entries=%v; want 2 entries", got.Entries)
	}
	args, ok := got.Entries[0].Invocation.(compdb.Arguments)
	if !ok {
		t.Fatalf("entries[0].Invocation=%T; want compdb.Arguments", got.Entries[0].Invocation)
	}
	args[0] = "clang"
	want := compdb.Arguments{"gcc", "-c", "a.c", "b.c"}
	if diff := cmp.Diff(want, got.Entries[1].Invocation); diff != "" {
		t.Errorf("entries[1].Invocation: diff -want +got:\n%s", diff)
	}
}

func TestParse_UnbalancedLeave(t *testing.T) {
	buildlog := `make: Leaving directory '/elsewhere'
gcc -c x.c
`
	var rec uitest.Recorder
	got := parse(t, buildlog, Options{Verbose: true, UI: &rec})
	if len(got.Entries) != 1 || got.Entries[0].Directory != "/src" {
		t.Errorf("entries=%v; want one entry in /src", got.Entries)
	}
	if got.Stats.DirAnomalies != 1 {
		t.Errorf("stats.DirAnomalies=%d; want 1", got.Stats.DirAnomalies)
	}
	if !rec.HasWarning("line 1") {
		t.Errorf("warnings=%q; want warning for line 1", rec.Warnings)
	}
}

func TestParse_Exclude(t *testing.T) {
	buildlog := `gcc -c third_party/zlib/inflate.c
make: Entering directory '/src/third_party'
gcc -c zlib/deflate.c
make: Leaving directory '/src/third_party'
gcc -c base/file.c
gcc -c third_party/zlib/inflate.c
`
	got := parse(t, buildlog, Options{
		Exclude: []string{"^/src/third_party/"},
	})
	want := []compdb.Entry{
		{
			Directory:  "/src",
			File:       "base/file.c",
			Invocation: compdb.Arguments{"gcc", "-c", "base/file.c"},
			Output:     "file.o",
		},
	}
	if diff := cmp.Diff(want, got.Entries); diff != "" {
		t.Errorf("Parse: diff -want +got:\n%s", diff)
	}
	if got.Stats.Excluded != 3 {
		t.Errorf("stats.Excluded=%d; want 3", got.Stats.Excluded)
	}
}

func TestParse_TokenizeError(t *testing.T) {
	buildlog := `gcc -c "broken.c
echo 'unterminated
gcc -c ok.c
`
	var rec uitest.Recorder
	got := parse(t, buildlog, Options{Verbose: true, UI: &rec})
	if len(got.Entries) != 1 || got.Entries[0].File != "ok.c" {
		t.Errorf("entries=%v; want only ok.c", got.Entries)
	}
	if got.Stats.TokenizeErrors != 2 {
		t.Errorf("stats.TokenizeErrors=%d; want 2", got.Stats.TokenizeErrors)
	}
	if !rec.HasWarning("line 1") || !rec.HasWarning("line 2") {
		t.Errorf("warnings=%q; want warnings for line 1 and 2", rec.Warnings)
	}
}

func TestParse_Quiet(t *testing.T) {
	buildlog := `gcc -c "broken.c
make: Leaving directory '/x'
ar rcs libfoo.a foo.o
`
	var rec uitest.Recorder
	got := parse(t, buildlog, Options{UI: &rec})
	if len(got.Entries) != 0 {
		t.Errorf("entries=%v; want none", got.Entries)
	}
	if len(rec.Warnings) != 0 {
		t.Errorf("warnings=%q; want none without verbose", rec.Warnings)
	}
}

func TestParse_Stats(t *testing.T) {
	buildlog := `make: Entering directory '/src'
gcc -c a.c \
  -o a.o
gcc -o app a.o
echo done
`
	got := parse(t, buildlog, Options{})
	want := Stats{
		Lines:        5,
		LogicalLines: 4,
		DirChanges:   1,
		Commands:     1,
		Ignored:      1,
		Skipped:      1,
	}
	if diff := cmp.Diff(want, got.Stats); diff != "" {
		t.Errorf("stats: diff -want +got:\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	ctx := context.Background()
	for _, dir := range []string{"", "relative/dir"} {
		_, err := Parse(ctx, strings.NewReader("gcc -c a.c\n"), Options{ProjectDir: dir})
		if !errors.Is(err, ErrProjectDir) {
			t.Errorf("Parse(ProjectDir=%q)=%v; want %v", dir, err, ErrProjectDir)
		}
	}
	_, err := Parse(ctx, strings.NewReader("gcc -c a.c\n"), Options{
		ProjectDir: "/src",
		Exclude:    []string{"("},
	})
	if err == nil {
		t.Errorf("Parse(Exclude=%q)=nil; want error", "(")
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Parse(ctx, strings.NewReader("gcc -c a.c\n"), Options{ProjectDir: "/src"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Parse(canceled)=%v; want %v", err, context.Canceled)
	}
}
