// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gencmd

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type input struct {
	io.Reader
	closers []func() error
}

func (in *input) Close() error {
	var errs []error
	for i := len(in.closers) - 1; i >= 0; i-- {
		errs = append(errs, in.closers[i]())
	}
	return errors.Join(errs...)
}

// openInput opens the build log in fname.
// "-" or "" is stdin.
// gzip or zstd compressed logs are decompressed.
func openInput(fname string) (io.ReadCloser, error) {
	in := &input{}
	var r io.Reader = os.Stdin
	if fname != "" && fname != "-" {
		f, err := os.Open(fname)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, f.Close)
		r = f
	}
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		in.Close()
		return nil, err
	}
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gr, err := gzip.NewReader(br)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.closers = append(in.closers, gr.Close)
		in.Reader = gr
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.closers = append(in.closers, func() error {
			zr.Close()
			return nil
		})
		in.Reader = zr
	default:
		in.Reader = br
	}
	return in, nil
}
