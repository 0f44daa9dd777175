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
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// DataDecoder decodes the rows of a data file using cfg as its schema.
// Exactly cfg.LastSample() rows are decoded; every row must carry one value
// per declared channel.
type DataDecoder interface {
	Decode(r io.Reader, cfg *Configuration) ([]int64, []AnalogSampleRow, []DigitalSampleRow, error)
}

var builtinDecoders = map[DataFileType]DataDecoder{
	DataFileASCII:  ASCIIDecoder{},
	DataFileBinary: NewBinaryDecoder(),
}

// DecoderFor returns the decoder for a data file type.
func DecoderFor(t DataFileType) (DataDecoder, error) {
	if d, ok := builtinDecoders[t]; ok {
		return d, nil
	}
	return nil, &UnsupportedFeatureError{Feature: "data file type", Value: string(t), Err: ErrDataFileType}
}

// rowSink accumulates decoded rows, enforcing the per-row invariants shared
// by every encoding.
type rowSink struct {
	cfg        *Configuration
	timestamps []int64
	analogs    []AnalogSampleRow
	digitals   []DigitalSampleRow
}

// maxPreallocRows bounds the capacity reserved up front; the declared row
// count comes from the configuration file and is not trusted.
const maxPreallocRows = 1 << 16

func newRowSink(cfg *Configuration) *rowSink {
	n := min(cfg.LastSample(), maxPreallocRows)
	return &rowSink{
		cfg:        cfg,
		timestamps: make([]int64, 0, n),
		analogs:    make([]AnalogSampleRow, 0, n),
		digitals:   make([]DigitalSampleRow, 0, n),
	}
}

// add takes ownership of analogs and digitals.
func (s *rowSink) add(row int, timestamp int64, analogs []decimal.Decimal, digitals []bool) error {
	if len(analogs) != s.cfg.TotalAnalog() || len(digitals) != s.cfg.TotalDigital() {
		return structuralError(row, fmt.Errorf("%w: got %d, want %d",
			ErrRowChannelCount, len(analogs)+len(digitals), s.cfg.TotalChannels()))
	}
	if n := len(s.timestamps); n > 0 && timestamp < s.timestamps[n-1] {
		return structuralError(row, fmt.Errorf("%w: %d after %d", ErrTimestampOrder, timestamp, s.timestamps[n-1]))
	}

	s.timestamps = append(s.timestamps, timestamp)
	s.analogs = append(s.analogs, AnalogSampleRow{Timestamp: timestamp, Values: analogs})
	s.digitals = append(s.digitals, DigitalSampleRow{Timestamp: timestamp, States: digitals})
	return nil
}

func (s *rowSink) rows() ([]int64, []AnalogSampleRow, []DigitalSampleRow, error) {
	return s.timestamps, s.analogs, s.digitals, nil
}
