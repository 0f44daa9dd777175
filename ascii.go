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
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const maxASCIILine = 16 << 20

var (
	decimalZero = decimal.NewFromInt(0)
	decimalOne  = decimal.NewFromInt(1)
)

// ASCIIDecoder decodes comma separated data files:
//
//	sample_index, timestamp, a_1..a_N, d_1..d_M
type ASCIIDecoder struct{}

func (ASCIIDecoder) Decode(r io.Reader, cfg *Configuration) ([]int64, []AnalogSampleRow, []DigitalSampleRow, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxASCIILine)

	sink := newRowSink(cfg)
	analogOrder := cfg.AnalogOrder()
	digitalOrder := cfg.DigitalOrder()

	for row := 1; row <= cfg.LastSample(); row++ {
		if !s.Scan() {
			if err := s.Err(); err != nil {
				return nil, nil, nil, fmt.Errorf("error reading row %d: %w", row, err)
			}
			return nil, nil, nil, structuralError(row, fmt.Errorf("%w: got %d rows, want %d",
				ErrRowCount, row-1, cfg.LastSample()))
		}

		fields := strings.Split(strings.TrimRight(s.Text(), "\r"), ",")
		if len(fields) < 2 || len(fields)-2 != cfg.TotalChannels() {
			return nil, nil, nil, structuralError(row, fmt.Errorf("%w: got %d, want %d",
				ErrRowChannelCount, max(len(fields)-2, 0), cfg.TotalChannels()))
		}

		timestamp, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, nil, nil, formatError(row, "timestamp", fields[1], err)
		}

		channels := fields[2:]
		analogs := make([]decimal.Decimal, len(analogOrder))
		for i, id := range analogOrder {
			if analogs[i], err = decimal.NewFromString(strings.TrimSpace(channels[i])); err != nil {
				return nil, nil, nil, formatError(row, "analog value "+id, channels[i], err)
			}
		}

		digitals := make([]bool, len(digitalOrder))
		for i, id := range digitalOrder {
			raw := channels[len(analogOrder)+i]
			if digitals[i], err = parseDigital(raw); err != nil {
				return nil, nil, nil, formatError(row, "digital value "+id, raw, err)
			}
		}

		if err := sink.add(row, timestamp, analogs, digitals); err != nil {
			return nil, nil, nil, err
		}
	}

	return sink.rows()
}

func parseDigital(s string) (bool, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return false, err
	}
	switch {
	case v.Equal(decimalZero):
		return false, nil
	case v.Equal(decimalOne):
		return true, nil
	default:
		return false, errors.New("digital value must be 0 or 1")
	}
}
