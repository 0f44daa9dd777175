// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package comtrade_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/OpenPSG/comtrade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryMatchesASCII(t *testing.T) {
	asciiCfg := parseConfig(t, fmt.Sprintf(sampleConfig, "ASCII"))
	binaryCfg := parseConfig(t, fmt.Sprintf(sampleConfig, "BINARY"))

	asciiDat, err := comtrade.LoadData(writeFile(t, "sample.dat", []byte(sampleASCII)), asciiCfg)
	require.NoError(t, err)
	binaryDat, err := comtrade.LoadData(writeFile(t, "sample.dat", sampleBinary()), binaryCfg)
	require.NoError(t, err)

	assert.Equal(t, asciiDat.Timestamps(), binaryDat.Timestamps())

	var asciiRows, binaryRows []string
	for tick, values := range asciiDat.RawAnalogs() {
		asciiRows = append(asciiRows, fmt.Sprint(tick, values))
	}
	for tick, values := range binaryDat.RawAnalogs() {
		binaryRows = append(binaryRows, fmt.Sprint(tick, values))
	}
	assert.Equal(t, asciiRows, binaryRows)

	asciiRows, binaryRows = nil, nil
	for tick, states := range asciiDat.RawDigitals() {
		asciiRows = append(asciiRows, fmt.Sprint(tick, states))
	}
	for tick, states := range binaryDat.RawDigitals() {
		binaryRows = append(binaryRows, fmt.Sprint(tick, states))
	}
	assert.Equal(t, asciiRows, binaryRows)

	seq, err := binaryDat.Analog("IA")
	require.NoError(t, err)
	for _, v := range seq {
		requireDecimal(t, "21", v)
		break
	}
}

func TestBinarySingleWord(t *testing.T) {
	cfg := parseConfig(t, generatedConfig(1, 8, 1, "BINARY"))
	data := encodeBinaryRows(binaryRow{index: 1, timestamp: 5, analogs: []int16{-32768}, words: []uint16{0b00000000_11010110}})
	require.Len(t, data, comtrade.NewBinaryDecoder().RecordSize(cfg))

	dat, err := comtrade.DecodeData(bytes.NewReader(data), cfg)
	require.NoError(t, err)

	for tick, states := range dat.RawDigitals() {
		assert.Equal(t, int64(5), tick)
		assert.Equal(t, []bool{false, true, true, false, true, false, true, true}, states)
	}
	for _, values := range dat.RawAnalogs() {
		requireDecimal(t, "-32768", values[0])
	}
}

func TestBinaryMultipleWords(t *testing.T) {
	// 20 channels: a full first word and 4 channels in the second.
	cfg := parseConfig(t, generatedConfig(0, 20, 2, "BINARY"))
	data := encodeBinaryRows(
		binaryRow{index: 1, timestamp: 0, words: []uint16{0x8001, 0b1010}},
		binaryRow{index: 2, timestamp: 1000, words: []uint16{0, 0xfff8}},
	)
	require.Len(t, data, 2*comtrade.NewBinaryDecoder().RecordSize(cfg))

	dat, err := comtrade.DecodeData(bytes.NewReader(data), cfg)
	require.NoError(t, err)

	var rows [][]bool
	for _, states := range dat.RawDigitals() {
		rows = append(rows, states)
	}
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 20)

	first := make([]bool, 20)
	first[0], first[15], first[17], first[19] = true, true, true, true
	assert.Equal(t, first, rows[0])

	// Bits above the last channel of the final word are ignored.
	second := make([]bool, 20)
	second[19] = true
	assert.Equal(t, second, rows[1])

	d20, err := dat.Digital("D20")
	require.NoError(t, err)
	var times []string
	for ts := range d20 {
		times = append(times, ts.String())
	}
	assert.Equal(t, []string{"0", "1"}, times)
}

func TestBinaryDigitalWordBoundaries(t *testing.T) {
	for _, n := range []int{1, 15, 16, 17, 31, 32, 33} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			cfg := parseConfig(t, generatedConfig(0, n, 1, "BINARY"))
			words := make([]uint16, (n+15)/16)
			for i := range words {
				words[i] = 0xffff
			}

			dat, err := comtrade.DecodeData(bytes.NewReader(encodeBinaryRows(binaryRow{words: words})), cfg)
			require.NoError(t, err)
			for _, states := range dat.RawDigitals() {
				require.Len(t, states, n)
				for _, s := range states {
					assert.True(t, s)
				}
			}
		})
	}
}

func TestBinaryDecodeErrors(t *testing.T) {
	cfg := parseConfig(t, fmt.Sprintf(sampleConfig, "BINARY"))
	data := sampleBinary()

	t.Run("short file", func(t *testing.T) {
		_, err := comtrade.DecodeData(bytes.NewReader(data[:len(data)-1]), cfg)

		var structural *comtrade.StructuralError
		require.ErrorAs(t, err, &structural)
		assert.Equal(t, 2, structural.Line)
		assert.ErrorIs(t, err, comtrade.ErrRowCount)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := comtrade.DecodeData(bytes.NewReader(append(data, 0)), cfg)
		assert.ErrorIs(t, err, comtrade.ErrRowCount)
	})

	t.Run("decreasing timestamps", func(t *testing.T) {
		bad := encodeBinaryRows(
			binaryRow{index: 1, timestamp: 10, analogs: []int16{0, 0, 0}, words: []uint16{0}},
			binaryRow{index: 2, timestamp: 9, analogs: []int16{0, 0, 0}, words: []uint16{0}},
		)
		_, err := comtrade.DecodeData(bytes.NewReader(bad), cfg)
		assert.ErrorIs(t, err, comtrade.ErrTimestampOrder)
	})

	t.Run("read error", func(t *testing.T) {
		_, err := comtrade.DecodeData(io.MultiReader(bytes.NewReader(data[:4]), errReader{}), cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, errBroken)
	})
}

func TestDecodeDeclaredRowsBeyondData(t *testing.T) {
	tests := []struct {
		fileType string
		data     []byte
	}{
		{"ASCII", []byte("1,0,1,0\n")},
		{"BINARY", encodeBinaryRows(binaryRow{index: 1, analogs: []int16{1}, words: []uint16{0}})},
	}

	for _, tt := range tests {
		t.Run(tt.fileType, func(t *testing.T) {
			cfg := parseConfig(t, generatedConfig(1, 1, 100000000000000, tt.fileType))

			var err error
			require.NotPanics(t, func() {
				_, err = comtrade.DecodeData(bytes.NewReader(tt.data), cfg)
			})

			var structural *comtrade.StructuralError
			require.ErrorAs(t, err, &structural)
			assert.Equal(t, 2, structural.Line)
			assert.ErrorIs(t, err, comtrade.ErrRowCount)
		})
	}
}

func TestDecoderFor(t *testing.T) {
	d, err := comtrade.DecoderFor(comtrade.DataFileASCII)
	require.NoError(t, err)
	assert.IsType(t, comtrade.ASCIIDecoder{}, d)

	d, err = comtrade.DecoderFor(comtrade.DataFileBinary)
	require.NoError(t, err)
	assert.IsType(t, comtrade.BinaryDecoder{}, d)

	_, err = comtrade.DecoderFor("BINARY32")
	var unsupported *comtrade.UnsupportedFeatureError
	require.ErrorAs(t, err, &unsupported)
	assert.ErrorIs(t, err, comtrade.ErrDataFileType)
}

var errBroken = fmt.Errorf("broken reader")

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errBroken }
