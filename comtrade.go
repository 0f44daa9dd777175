// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package comtrade decodes COMTRADE (IEEE C37.111 1991/1999) disturbance
// recordings: a configuration file describing the channels and timing, and
// an ASCII or BINARY data file holding the samples.
//
// Every value is kept as an exact decimal; analog values are scaled with the
// channel's a*x + b law and timestamps with the configuration's
// multiplication factor.
package comtrade

import (
	"fmt"
	"strings"
)

// Recording is a configuration and the data decoded with it.
type Recording struct {
	Config *Configuration
	Data   *Data
}

// Load reads the configuration at cfgPath and then the data file at datPath.
// Either both succeed or an error is returned.
func Load(cfgPath, datPath string, opts ...Option) (*Recording, error) {
	cfg, err := LoadConfiguration(cfgPath, opts...)
	if err != nil {
		return nil, err
	}
	dat, err := LoadData(datPath, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Recording{Config: cfg, Data: dat}, nil
}

// Summary describes the size of a decoded data file.
type Summary struct {
	ID              string // Station name and device identification
	Fingerprint     uint64 // Configuration fingerprint
	Rows            int    // Number of decoded rows
	AnalogChannels  int    // Analog channels per row
	DigitalChannels int    // Digital channels per row
	AnalogSamples   int    // Rows * analog channels
	DigitalSamples  int    // Rows * digital channels
	FirstTimestamp  int64  // Raw timestamp of the first row
	LastTimestamp   int64  // Raw timestamp of the last row
}

// Summary reports row and sample counts for diagnostics.
func (d *Data) Summary() Summary {
	s := Summary{
		ID:              d.cfg.ID(),
		Fingerprint:     d.cfg.Fingerprint(),
		Rows:            d.Len(),
		AnalogChannels:  d.cfg.TotalAnalog(),
		DigitalChannels: d.cfg.TotalDigital(),
		AnalogSamples:   d.Len() * d.cfg.TotalAnalog(),
		DigitalSamples:  d.Len() * d.cfg.TotalDigital(),
	}
	if n := d.Len(); n > 0 {
		s.FirstTimestamp = d.timestamps[0]
		s.LastTimestamp = d.timestamps[n-1]
	}
	return s
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s (%016x)\n", s.ID, s.Fingerprint)
	fmt.Fprintf(&sb, "First timestamp: %d\n", s.FirstTimestamp)
	fmt.Fprintf(&sb, "Last timestamp: %d\n", s.LastTimestamp)
	fmt.Fprintf(&sb, "Analog samples: %d * %d = %d\n", s.Rows, s.AnalogChannels, s.AnalogSamples)
	fmt.Fprintf(&sb, "Digital samples: %d * %d = %d\n", s.Rows, s.DigitalChannels, s.DigitalSamples)
	return sb.String()
}
