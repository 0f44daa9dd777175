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
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

const timestampLayout = "02/01/2006,15:04:05"

// Configuration is a validated COMTRADE configuration. It is immutable and
// safe to share between any number of Data values.
type Configuration struct {
	stationName          string
	deviceID             string
	revisionYear         int
	totalChannels        int
	analogs              []AnalogChannel
	analogIndex          map[string]int
	digitals             []DigitalChannel
	digitalIndex         map[string]int
	frequency            decimal.Decimal
	sampleRateSections   int
	sampleRate           decimal.Decimal
	lastSample           int
	startTime            time.Time
	triggerTime          time.Time
	inMicroseconds       bool
	dataFileType         DataFileType
	multiplicationFactor decimal.Decimal
	fingerprint          uint64
}

// NewConfiguration validates a header and builds a Configuration from it.
func NewConfiguration(h Header) (*Configuration, error) {
	if h.TotalChannels != len(h.Analogs)+len(h.Digitals) {
		return nil, structuralError(0, fmt.Errorf("%w: %d != %d + %d",
			ErrChannelCountMismatch, h.TotalChannels, len(h.Analogs), len(h.Digitals)))
	}
	if h.SampleRateSections != 1 {
		return nil, &UnsupportedFeatureError{
			Feature: "sample rate sections",
			Value:   strconv.Itoa(h.SampleRateSections),
			Err:     ErrSampleRateSections,
		}
	}
	if h.DataFileType != DataFileASCII && h.DataFileType != DataFileBinary {
		return nil, &UnsupportedFeatureError{
			Feature: "data file type",
			Value:   string(h.DataFileType),
			Err:     ErrDataFileType,
		}
	}
	if h.LastSample < 0 {
		return nil, structuralError(0, fmt.Errorf("%w: negative last sample %d", ErrRowCount, h.LastSample))
	}

	cfg := &Configuration{
		stationName:          h.StationName,
		deviceID:             h.DeviceID,
		revisionYear:         h.RevisionYear,
		totalChannels:        h.TotalChannels,
		analogs:              slices.Clone(h.Analogs),
		analogIndex:          make(map[string]int, len(h.Analogs)),
		digitals:             slices.Clone(h.Digitals),
		digitalIndex:         make(map[string]int, len(h.Digitals)),
		frequency:            h.Frequency,
		sampleRateSections:   h.SampleRateSections,
		sampleRate:           h.SampleRate,
		lastSample:           h.LastSample,
		dataFileType:         h.DataFileType,
		multiplicationFactor: h.MultiplicationFactor,
	}

	for i, ch := range cfg.analogs {
		if _, ok := cfg.analogIndex[ch.ID]; ok {
			return nil, structuralError(0, fmt.Errorf("%w: analog %q", ErrDuplicateChannel, ch.ID))
		}
		cfg.analogIndex[ch.ID] = i
	}
	for i, ch := range cfg.digitals {
		if ch.NormalState > 1 {
			return nil, formatError(0, "normal state", strconv.Itoa(int(ch.NormalState)),
				fmt.Errorf("digital channel %q state must be 0 or 1", ch.ID))
		}
		if _, ok := cfg.digitalIndex[ch.ID]; ok {
			return nil, structuralError(0, fmt.Errorf("%w: digital %q", ErrDuplicateChannel, ch.ID))
		}
		cfg.digitalIndex[ch.ID] = i
	}

	var err error
	cfg.startTime, err = parseTimestamp(h.StartTimestamp)
	if err != nil {
		return nil, formatError(0, "start timestamp", h.StartTimestamp, err)
	}
	cfg.triggerTime, err = parseTimestamp(h.TriggerTimestamp)
	if err != nil {
		return nil, formatError(0, "trigger timestamp", h.TriggerTimestamp, err)
	}
	cfg.inMicroseconds = fractionDigits(h.StartTimestamp) > 6
	cfg.fingerprint = fingerprint(h)

	return cfg, nil
}

// parseTimestamp parses DD/MM/YYYY,HH:MM:SS.ffffff. The fractional part is
// required; any number of digits up to nanosecond resolution is accepted.
func parseTimestamp(s string) (time.Time, error) {
	date, clock, ok := strings.Cut(s, ",")
	if !ok {
		return time.Time{}, errors.New("expected DD/MM/YYYY,HH:MM:SS.ffffff")
	}
	if _, frac, ok := strings.Cut(clock, "."); !ok || strings.TrimSpace(frac) == "" {
		return time.Time{}, errors.New("missing fractional seconds")
	}
	return time.Parse(timestampLayout, strings.TrimSpace(date)+","+strings.TrimSpace(clock))
}

// fractionDigits returns the length of the trimmed text after the last
// decimal point, or 0 if there is none.
func fractionDigits(s string) int {
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return 0
	}
	return len(strings.TrimSpace(s[i+1:]))
}

func fingerprint(h Header) uint64 {
	d := xxhash.New()
	fmt.Fprintf(d, "%s,%s,%d\n%d,%dA,%dD\n", h.StationName, h.DeviceID, h.RevisionYear,
		h.TotalChannels, len(h.Analogs), len(h.Digitals))
	for _, a := range h.Analogs {
		fmt.Fprintf(d, "%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%t\n", a.ID, a.Phase, a.CircuitComponent, a.Unit,
			a.Multiplier, a.Offset, a.Skew, a.Min, a.Max, a.Primary, a.Secondary, a.PrimaryReferred)
	}
	for _, c := range h.Digitals {
		fmt.Fprintf(d, "%s,%s,%s,%d\n", c.ID, c.Phase, c.CircuitComponent, c.NormalState)
	}
	fmt.Fprintf(d, "%s\n%d\n%s,%d\n%s\n%s\n%s\n%s\n", h.Frequency, h.SampleRateSections,
		h.SampleRate, h.LastSample, h.StartTimestamp, h.TriggerTimestamp, h.DataFileType, h.MultiplicationFactor)
	return d.Sum64()
}

// StationName returns the name of the substation.
func (c *Configuration) StationName() string { return c.stationName }

// DeviceID returns the identification of the recording device.
func (c *Configuration) DeviceID() string { return c.deviceID }

// RevisionYear returns the COMTRADE revision year.
func (c *Configuration) RevisionYear() int { return c.revisionYear }

// ID returns the identity of the recording, station name and device joined by "_".
func (c *Configuration) ID() string { return c.stationName + "_" + c.deviceID }

// Fingerprint returns a 64-bit xxHash of the configuration content.
func (c *Configuration) Fingerprint() uint64 { return c.fingerprint }

// TotalChannels returns the declared total channel count.
func (c *Configuration) TotalChannels() int { return c.totalChannels }

// TotalAnalog returns the number of analog channels.
func (c *Configuration) TotalAnalog() int { return len(c.analogs) }

// TotalDigital returns the number of digital channels.
func (c *Configuration) TotalDigital() int { return len(c.digitals) }

// AnalogOrder returns the analog channel identifiers in file order.
func (c *Configuration) AnalogOrder() []string {
	ids := make([]string, len(c.analogs))
	for i, ch := range c.analogs {
		ids[i] = ch.ID
	}
	return ids
}

// DigitalOrder returns the digital channel identifiers in file order.
func (c *Configuration) DigitalOrder() []string {
	ids := make([]string, len(c.digitals))
	for i, ch := range c.digitals {
		ids[i] = ch.ID
	}
	return ids
}

// AnalogChannels returns a copy of the analog channel descriptors in file order.
func (c *Configuration) AnalogChannels() []AnalogChannel { return slices.Clone(c.analogs) }

// DigitalChannels returns a copy of the digital channel descriptors in file order.
func (c *Configuration) DigitalChannels() []DigitalChannel { return slices.Clone(c.digitals) }

// Analog looks up an analog channel by identifier.
func (c *Configuration) Analog(id string) (AnalogChannel, bool) {
	i, ok := c.analogIndex[id]
	if !ok {
		return AnalogChannel{}, false
	}
	return c.analogs[i], true
}

// Digital looks up a digital channel by identifier.
func (c *Configuration) Digital(id string) (DigitalChannel, bool) {
	i, ok := c.digitalIndex[id]
	if !ok {
		return DigitalChannel{}, false
	}
	return c.digitals[i], true
}

// Frequency returns the nominal line frequency in Hz.
func (c *Configuration) Frequency() decimal.Decimal { return c.frequency }

// SampleRateSections returns the number of sample rate sections, always 1.
func (c *Configuration) SampleRateSections() int { return c.sampleRateSections }

// SampleRate returns the sampling rate in Hz.
func (c *Configuration) SampleRate() decimal.Decimal { return c.sampleRate }

// LastSample returns the number of rows in the data file.
func (c *Configuration) LastSample() int { return c.lastSample }

// StartTime returns the time of the first data value.
func (c *Configuration) StartTime() time.Time { return c.startTime }

// TriggerTime returns the time of the trigger point.
func (c *Configuration) TriggerTime() time.Time { return c.triggerTime }

// InMicroseconds reports whether raw timestamps are in microseconds rather
// than milliseconds. It is inferred from the start timestamp having more
// than six fractional digits.
func (c *Configuration) InMicroseconds() bool { return c.inMicroseconds }

// DataFileType returns the encoding of the data file.
func (c *Configuration) DataFileType() DataFileType { return c.dataFileType }

// MultiplicationFactor returns the factor applied to every raw timestamp.
func (c *Configuration) MultiplicationFactor() decimal.Decimal { return c.multiplicationFactor }

// ConvertTimestamp converts a raw tick to physical time:
// tick * multiplication factor / (10^6 if in microseconds else 10^3).
func (c *Configuration) ConvertTimestamp(tick int64) decimal.Decimal {
	exp := int32(-3)
	if c.inMicroseconds {
		exp = -6
	}
	return decimal.NewFromInt(tick).Mul(c.multiplicationFactor).Shift(exp)
}

// String renders the configuration as a human-readable report.
func (c *Configuration) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Station name: %s\n", c.stationName)
	fmt.Fprintf(&sb, "Recording device identification: %s\n", c.deviceID)
	fmt.Fprintf(&sb, "COMTRADE standard revision year: %d\n\n", c.revisionYear)
	fmt.Fprintf(&sb, "Number of analog channels: %d\n", len(c.analogs))
	fmt.Fprintf(&sb, "\tChannels: %s\n\n", strings.Join(c.AnalogOrder(), ", "))
	fmt.Fprintf(&sb, "Number of digital channels: %d\n", len(c.digitals))
	fmt.Fprintf(&sb, "\tChannels: %s\n\n", strings.Join(c.DigitalOrder(), ", "))
	fmt.Fprintf(&sb, "Line frequency: %s Hz\n\n", c.frequency)
	fmt.Fprintf(&sb, "Sample rate: %s Hz\n", c.sampleRate)
	fmt.Fprintf(&sb, "Last sample number: %d\n\n", c.lastSample)
	fmt.Fprintf(&sb, "Datetime of the first data value: %s\n", c.startTime.Format(time.RFC3339Nano))
	fmt.Fprintf(&sb, "Trigger datetime: %s\n\n", c.triggerTime.Format(time.RFC3339Nano))
	fmt.Fprintf(&sb, "Data file type: %s\n\n", c.dataFileType)
	fmt.Fprintf(&sb, "Multiplication factor for the time differential: %s", c.multiplicationFactor)
	return sb.String()
}
