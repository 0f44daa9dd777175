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
	"io"
	"log/slog"
)

// Option configures how configuration and data files are loaded.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	metrics    *Metrics
	decompress bool
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		decompress: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used to report load progress and failures.
// Nothing is logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records load outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithDecompression enables or disables transparent decompression of gzip,
// zstd, lz4 and s2 compressed files. It is enabled by default.
func WithDecompression(enabled bool) Option {
	return func(o *options) {
		o.decompress = enabled
	}
}
