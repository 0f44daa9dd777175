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
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenPSG/comtrade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `SUB1,REL7,1999
5,3A,2D
1,IA,A,Line1,A,2,1,0,-32767,32767,1200,5,S
2,IB,B,Line1,A,0.5,0,0,-32767,32767,1200,5,S
3,VA,A,Bus1,kV,0.01,-0.5,0,-32767,32767,132,0.11,P
1,TRIP,,Breaker,0
2,CLOSE,,Breaker,1
60
1
1200,2
01/02/2023,10:15:30.123456
01/02/2023,10:15:30.124456
%s
1
`

const sampleASCII = "1,0,10,-4,250,0,1\n2,833,12,-6,-250,1,1\n"

// binaryRow is one row of a binary data file.
type binaryRow struct {
	index     uint32
	timestamp uint32
	analogs   []int16
	words     []uint16
}

func encodeBinaryRows(rows ...binaryRow) []byte {
	var buf []byte
	for _, r := range rows {
		buf = binary.LittleEndian.AppendUint32(buf, r.index)
		buf = binary.LittleEndian.AppendUint32(buf, r.timestamp)
		for _, v := range r.analogs {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
		}
		for _, w := range r.words {
			buf = binary.LittleEndian.AppendUint16(buf, w)
		}
	}
	return buf
}

// sampleBinary holds the same samples as sampleASCII.
func sampleBinary() []byte {
	return encodeBinaryRows(
		binaryRow{index: 1, timestamp: 0, analogs: []int16{10, -4, 250}, words: []uint16{0b10}},
		binaryRow{index: 2, timestamp: 833, analogs: []int16{12, -6, -250}, words: []uint16{0b11}},
	)
}

// generatedConfig returns a configuration with nAnalog analog channels named
// A1.. and nDigital digital channels named D1...
func generatedConfig(nAnalog, nDigital, lastSample int, fileType string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "GEN,DEV,1999\n%d,%dA,%dD\n", nAnalog+nDigital, nAnalog, nDigital)
	for i := 1; i <= nAnalog; i++ {
		fmt.Fprintf(&sb, "%d,A%d,,,V,1,0,0,-32767,32767,1,1,S\n", i, i)
	}
	for i := 1; i <= nDigital; i++ {
		fmt.Fprintf(&sb, "%d,D%d,,,0\n", i, i)
	}
	fmt.Fprintf(&sb, "50\n1\n1000,%d\n01/01/2024,00:00:00.000000\n01/01/2024,00:00:00.000000\n%s\n1\n",
		lastSample, fileType)
	return sb.String()
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func parseConfig(t *testing.T, text string) *comtrade.Configuration {
	t.Helper()
	cfg, err := comtrade.ParseConfiguration(strings.NewReader(text))
	require.NoError(t, err)
	return cfg
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
