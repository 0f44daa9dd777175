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
	"strings"

	"github.com/shopspring/decimal"
)

// DataFileType is the encoding of the data file declared by the configuration.
type DataFileType string

const (
	// DataFileASCII is a comma separated text data file.
	DataFileASCII DataFileType = "ASCII"
	// DataFileBinary is a fixed width little-endian data file.
	DataFileBinary DataFileType = "BINARY"
)

// AnalogChannel describes an analog channel and its scaling law.
type AnalogChannel struct {
	ID               string          // Channel identifier (e.g., IAW)
	Phase            string          // Phase identification (e.g., A)
	CircuitComponent string          // Circuit component being monitored
	Unit             string          // Physical unit (e.g., kV, A)
	Multiplier       decimal.Decimal // Channel multiplier (a)
	Offset           decimal.Decimal // Channel offset adder (b)
	Skew             decimal.Decimal // Time skew from the start of the sample period
	Min              decimal.Decimal // Minimum value of the channel's range
	Max              decimal.Decimal // Maximum value of the channel's range
	Primary          decimal.Decimal // Transformer primary ratio factor
	Secondary        decimal.Decimal // Transformer secondary ratio factor
	PrimaryReferred  bool            // True if values are referred to the primary side
}

// Convert scales a raw sample value to its physical value, a*x + b.
func (c AnalogChannel) Convert(raw decimal.Decimal) decimal.Decimal {
	return c.Multiplier.Mul(raw).Add(c.Offset)
}

func (c AnalogChannel) String() string {
	return fmt.Sprintf("%s (%s, %s)\nPrimary:\n > %t (%s ~ %s)\n > Primary: %s\n > Secondary: %s\nSkew: %s us\nUnit: %s (%s * x + %s)",
		c.ID, c.Phase, c.CircuitComponent,
		c.PrimaryReferred, c.Min, c.Max,
		c.Primary, c.Secondary,
		c.Skew,
		c.Unit, c.Multiplier, c.Offset)
}

// DigitalChannel describes a two state status channel.
type DigitalChannel struct {
	ID               string // Channel identifier (e.g., TRIP)
	Phase            string // Phase identification
	CircuitComponent string // Circuit component being monitored
	NormalState      uint8  // State of the channel when the primary device is in service (0 or 1)
}

func (c DigitalChannel) String() string {
	return fmt.Sprintf("%s (%s, %s)\nState: %d", c.ID, c.Phase, c.CircuitComponent, c.NormalState)
}

// Header is the unvalidated content of a configuration file.
// NewConfiguration turns it into a Configuration.
type Header struct {
	StationName          string           // Name of the substation
	DeviceID             string           // Identification of the recording device
	RevisionYear         int              // COMTRADE revision year (1991 or 1999)
	TotalChannels        int              // Declared total number of channels
	Analogs              []AnalogChannel  // Analog channels in file order
	Digitals             []DigitalChannel // Digital channels in file order
	Frequency            decimal.Decimal  // Nominal line frequency in Hz
	SampleRateSections   int              // Number of sample rate sections (must be 1)
	SampleRate           decimal.Decimal  // Sample rate in Hz
	LastSample           int              // Number of rows in the data file
	StartTimestamp       string           // Time of the first data value, DD/MM/YYYY,HH:MM:SS.ffffff
	TriggerTimestamp     string           // Time of the trigger point, same layout
	DataFileType         DataFileType     // Data file encoding
	MultiplicationFactor decimal.Decimal  // Multiplier applied to every raw timestamp
}

// AnalogSampleRow is one decoded row of raw analog values, ordered as the
// configuration orders its analog channels.
type AnalogSampleRow struct {
	Timestamp int64
	Values    []decimal.Decimal
}

// DigitalSampleRow is one decoded row of digital states, ordered as the
// configuration orders its digital channels.
type DigitalSampleRow struct {
	Timestamp int64
	States    []bool
}

// Sample is a fully converted row.
type Sample struct {
	Tick     int64             // Raw timestamp
	Time     decimal.Decimal   // Converted timestamp
	Analogs  []decimal.Decimal // Physical analog values, configuration order
	Digitals []bool            // Digital states, configuration order
}

func (s Sample) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: [", s.Time)
	for i, v := range s.Analogs {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteString("] [")
	for i, v := range s.Digitals {
		if i > 0 {
			sb.WriteString(" ")
		}
		if v {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
