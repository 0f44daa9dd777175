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
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressWith(t *testing.T, c comtrade.Compression, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	switch c {
	case comtrade.CompressionGzip:
		w = gzip.NewWriter(&buf)
	case comtrade.CompressionZstd:
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = zw
	case comtrade.CompressionLZ4:
		w = lz4.NewWriter(&buf)
	case comtrade.CompressionS2:
		w = s2.NewWriter(&buf)
	default:
		return data
	}

	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLoadCompressed(t *testing.T) {
	for _, c := range []comtrade.Compression{
		comtrade.CompressionNone,
		comtrade.CompressionGzip,
		comtrade.CompressionZstd,
		comtrade.CompressionLZ4,
		comtrade.CompressionS2,
	} {
		t.Run(string(c), func(t *testing.T) {
			cfgData := compressWith(t, c, []byte(fmt.Sprintf(sampleConfig, "BINARY")))
			datData := compressWith(t, c, sampleBinary())
			assert.Equal(t, c, comtrade.DetectCompression(datData))

			rec, err := comtrade.Load(writeFile(t, "rec.cfg", cfgData), writeFile(t, "rec.dat", datData))
			require.NoError(t, err)
			assert.Equal(t, []int64{0, 833}, rec.Data.Timestamps())
		})
	}
}

func TestLoadCompressedDisabled(t *testing.T) {
	cfgPath := writeFile(t, "rec.cfg", compressWith(t, comtrade.CompressionGzip, []byte(fmt.Sprintf(sampleConfig, "ASCII"))))

	_, err := comtrade.LoadConfiguration(cfgPath, comtrade.WithDecompression(false))
	require.Error(t, err)
}

func TestLoadDataCorruptCompression(t *testing.T) {
	cfg := parseConfig(t, fmt.Sprintf(sampleConfig, "BINARY"))
	corrupt := append([]byte{0x1f, 0x8b}, bytes.Repeat([]byte{0xff}, 32)...)

	_, err := comtrade.LoadData(writeFile(t, "rec.dat", corrupt), cfg)

	var ioErr *comtrade.IOError
	require.ErrorAs(t, err, &ioErr)
}
