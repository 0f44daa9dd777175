// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package comtrade

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the compression wrapping a source file.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
	CompressionS2   Compression = "s2"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
	// Stream identifier chunk shared by the s2 and snappy framing formats.
	s2Magic = []byte{0xff, 0x06, 0x00, 0x00}
)

// DetectCompression sniffs the leading bytes of a file.
func DetectCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(head, lz4Magic):
		return CompressionLZ4
	case bytes.HasPrefix(head, s2Magic):
		return CompressionS2
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

type source struct {
	io.Reader
	closers []func() error
}

func (s *source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openSource opens path for reading, unwrapping any recognised compression
// when decompress is set.
func openSource(path string, decompress bool) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "opening", Path: path, Err: err}
	}

	br := bufio.NewReader(f)
	src := &source{Reader: br, closers: []func() error{f.Close}}
	if !decompress {
		return src, nil
	}

	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, &IOError{Op: "reading", Path: path, Err: err}
	}

	switch DetectCompression(head) {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, &IOError{Op: "decompressing", Path: path, Err: fmt.Errorf("gzip: %w", err)}
		}
		src.Reader = zr
		src.closers = append(src.closers, zr.Close)
	case CompressionZstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			_ = f.Close()
			return nil, &IOError{Op: "decompressing", Path: path, Err: fmt.Errorf("zstd: %w", err)}
		}
		src.Reader = zr
		src.closers = append(src.closers, func() error {
			zr.Close()
			return nil
		})
	case CompressionLZ4:
		src.Reader = lz4.NewReader(br)
	case CompressionS2:
		src.Reader = s2.NewReader(br)
	}

	return src, nil
}

// wrapIOError leaves errors that already carry a category untouched and
// reports anything else as an IOError.
func wrapIOError(op, path string, err error) error {
	var (
		structural  *StructuralError
		unsupported *UnsupportedFeatureError
		format      *FormatError
		ioErr       *IOError
	)
	if errors.As(err, &structural) || errors.As(err, &unsupported) ||
		errors.As(err, &format) || errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
