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
	"errors"
	"fmt"
)

var (
	// ErrChannelCountMismatch is returned when the declared total channel count
	// is not the sum of the analog and digital channel counts.
	ErrChannelCountMismatch = errors.New("total channels != analog channels + digital channels")
	// ErrRowChannelCount is returned when a data row does not carry exactly one
	// value per declared channel.
	ErrRowChannelCount = errors.New("number of channels in data row differs from configuration")
	// ErrRowCount is returned when the data file holds fewer (or, for binary
	// files, more) rows than the configuration declares.
	ErrRowCount = errors.New("number of rows in data file differs from configuration")
	// ErrTimestampOrder is returned when a raw tick is smaller than the tick of
	// the preceding row.
	ErrTimestampOrder = errors.New("timestamps are not non-decreasing")
	// ErrDuplicateChannel is returned when two channels of the same kind share
	// an identifier.
	ErrDuplicateChannel = errors.New("duplicate channel identifier")
	// ErrUnknownChannel is returned by accessors asked for an identifier the
	// configuration does not declare.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrSampleRateSections is returned for anything other than exactly one
	// sample rate section.
	ErrSampleRateSections = errors.New("only a single sample rate section is supported")
	// ErrDataFileType is returned for data file encodings other than ASCII and
	// BINARY.
	ErrDataFileType = errors.New("unsupported data file type")
)

// StructuralError reports a violated structural invariant of a configuration
// or data file.
type StructuralError struct {
	Line int // 1-based line (or row) number, 0 if not applicable
	Err  error
}

func (e *StructuralError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("structural error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("structural error: %v", e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// UnsupportedFeatureError reports a well-formed file that uses a COMTRADE
// feature this package does not decode.
type UnsupportedFeatureError struct {
	Feature string
	Value   string
	Err     error
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported %s %q: %v", e.Feature, e.Value, e.Err)
}

func (e *UnsupportedFeatureError) Unwrap() error { return e.Err }

// FormatError reports a field that failed to parse as its expected type.
type FormatError struct {
	Field string
	Line  int
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: error parsing %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a file that is missing or unreadable.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("error %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func formatError(line int, field, value string, err error) error {
	return &FormatError{Field: field, Line: line, Value: value, Err: err}
}

func structuralError(line int, err error) error {
	return &StructuralError{Line: line, Err: err}
}
