// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"go.chromium.org/infra/build/compiledb/ui"
)

// Stdout is the filename to write the database to stdout.
const Stdout = "-"

// ErrMalformed is returned when the database is not a valid
// compile_commands.json.
var ErrMalformed = errors.New("malformed compilation database")

var gzipMagic = []byte{0x1f, 0x8b}

// Load loads entries from the database in fname.
// It returns no entries and no error if fname is Stdout, or doesn't
// exist or is empty, which is the case for the first run.
// Entries without file or compile command are skipped.
func Load(fname string) ([]Entry, error) {
	if fname == Stdout {
		return nil, nil
	}
	b, err := os.ReadFile(fname)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(b, gzipMagic) {
		b, err = gunzip(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, fname, err)
		}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var jentries []jsonEntry
	err = json.Unmarshal(b, &jentries)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, fname, err)
	}
	entries := make([]Entry, 0, len(jentries))
	for _, je := range jentries {
		if je.File == "" {
			continue
		}
		e, err := je.toEntry()
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func gunzip(b []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Encode encodes entries as compile_commands.json.
// If pretty is true, it is indented for human readability.
func Encode(entries []Entry, pretty bool) ([]byte, error) {
	jentries := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		je, err := e.toJSON()
		if err != nil {
			return nil, err
		}
		jentries = append(jentries, je)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// keep -DFOO=<bar.h> readable.
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	err := enc.Encode(jentries)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes entries to fname, replacing its contents.
// The file is replaced atomically by renaming a temporary file.
// If fname ends with ".gz", it is gzip compressed.
// If fname is a symlink, its target is replaced.
// If fname is Stdout, entries are written to stdout.
func Write(fname string, entries []Entry, pretty bool) error {
	b, err := Encode(entries, pretty)
	if err != nil {
		return err
	}
	if fname == Stdout {
		_, err = os.Stdout.Write(b)
		return err
	}
	if strings.HasSuffix(fname, ".gz") {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		_, err = gw.Write(b)
		if err != nil {
			return err
		}
		err = gw.Close()
		if err != nil {
			return err
		}
		b = buf.Bytes()
	}
	// Keep a link such as compile_commands.json -> out/compile_commands.json.
	if resolved, err := filepath.EvalSymlinks(fname); err == nil {
		fname = resolved
	}
	// Write to a temporary file first before renaming to perform an atomic
	// write.
	tmp := fname + ".tmp"
	err = os.WriteFile(tmp, b, 0644)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	err = os.Rename(tmp, fname)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Normalize converts all entries to style, so the database has
// the same style for all entries.
// Entries that can't be converted are dropped and reported to u, if
// it is not nil.
func Normalize(entries []Entry, style Style, u ui.UI) []Entry {
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		ne, err := e.WithStyle(style)
		if err != nil {
			if u != nil {
				u.Warningf("drop entry: %v", err)
			}
			continue
		}
		result = append(result, ne)
	}
	return result
}
