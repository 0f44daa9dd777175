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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

const bitsPerWord = 16

// BinaryDecoder decodes fixed width binary data files. Each row is:
//
//	u32 sample index (discarded)
//	u32 timestamp
//	N x i16 analog values
//	ceil(M/16) x u16 digital words, bit 0 first
type BinaryDecoder struct {
	order binary.ByteOrder
}

// NewBinaryDecoder returns a little-endian binary decoder.
func NewBinaryDecoder() BinaryDecoder {
	return BinaryDecoder{order: binary.LittleEndian}
}

// RecordSize returns the size in bytes of one row.
func (BinaryDecoder) RecordSize(cfg *Configuration) int {
	return 8 + 2*cfg.TotalAnalog() + 2*digitalWords(cfg.TotalDigital())
}

func (d BinaryDecoder) Decode(r io.Reader, cfg *Configuration) ([]int64, []AnalogSampleRow, []DigitalSampleRow, error) {
	br := bufio.NewReader(r)
	buf := make([]byte, d.RecordSize(cfg))

	sink := newRowSink(cfg)
	nAnalog := cfg.TotalAnalog()
	nDigital := cfg.TotalDigital()
	words := digitalWords(nDigital)

	for row := 1; row <= cfg.LastSample(); row++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, nil, nil, structuralError(row, fmt.Errorf("%w: got %d complete rows, want %d",
					ErrRowCount, row-1, cfg.LastSample()))
			}
			return nil, nil, nil, fmt.Errorf("error reading row %d: %w", row, err)
		}

		// buf[0:4] holds the sample index which is not used.
		timestamp := int64(d.order.Uint32(buf[4:8]))

		analogs := make([]decimal.Decimal, nAnalog)
		off := 8
		for i := range analogs {
			analogs[i] = decimal.NewFromInt(int64(int16(d.order.Uint16(buf[off:]))))
			off += 2
		}

		digitals := make([]bool, 0, nDigital)
		for w := 0; w < words; w++ {
			word := d.order.Uint16(buf[off:])
			off += 2
			digitals = unpackWord(digitals, word, digitalBitsInWord(nDigital, w))
		}

		if err := sink.add(row, timestamp, analogs, digitals); err != nil {
			return nil, nil, nil, err
		}
	}

	if _, err := br.ReadByte(); err == nil {
		return nil, nil, nil, structuralError(0, fmt.Errorf("%w: trailing bytes after %d rows",
			ErrRowCount, cfg.LastSample()))
	} else if !errors.Is(err, io.EOF) {
		return nil, nil, nil, fmt.Errorf("error reading data: %w", err)
	}

	return sink.rows()
}

// digitalWords returns the number of 16-bit words holding n digital channels.
func digitalWords(n int) int {
	return (n + bitsPerWord - 1) / bitsPerWord
}

// digitalBitsInWord returns how many bits of word w carry channel states when
// there are n digital channels. Every word but the last is full; the last
// holds the remaining n - 16*(words-1) channels.
func digitalBitsInWord(n, w int) int {
	words := digitalWords(n)
	if w < words-1 {
		return bitsPerWord
	}
	return n - bitsPerWord*(words-1)
}

// unpackWord appends the low bits of word to states, least significant first.
func unpackWord(states []bool, word uint16, bits int) []bool {
	for b := 0; b < bits; b++ {
		states = append(states, word>>b&1 == 1)
	}
	return states
}
