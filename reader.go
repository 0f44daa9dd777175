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
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LoadConfiguration reads and validates the configuration file at path.
func LoadConfiguration(path string, opts ...Option) (*Configuration, error) {
	o := newOptions(opts)
	start := time.Now()

	cfg, err := loadConfiguration(path, o)
	o.metrics.observeLoad(kindConfiguration, "", start, err)
	if err != nil {
		o.logger.Warn("Failed to load configuration", slog.String("path", path), slog.Any("error", err))
		return nil, err
	}

	o.logger.Debug("Loaded configuration",
		slog.String("path", path),
		slog.String("id", cfg.ID()),
		slog.Int("analogs", cfg.TotalAnalog()),
		slog.Int("digitals", cfg.TotalDigital()),
		slog.Int("rows", cfg.LastSample()),
		slog.String("encoding", string(cfg.DataFileType())),
		slog.Bool("microseconds", cfg.InMicroseconds()))

	return cfg, nil
}

func loadConfiguration(path string, o *options) (*Configuration, error) {
	f, err := openSource(path, o.decompress)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := ParseConfiguration(f)
	if err != nil {
		return nil, wrapIOError("reading", path, err)
	}
	return cfg, nil
}

// ParseConfiguration parses a COMTRADE configuration from r.
func ParseConfiguration(r io.Reader) (*Configuration, error) {
	lr := newLineReader(r)
	var h Header

	// Station name, recording device and revision year.
	fields, err := lr.fields("station line", 2, 3)
	if err != nil {
		return nil, err
	}
	h.StationName = fields[0]
	h.DeviceID = fields[1]
	h.RevisionYear = 1991
	if len(fields) == 3 && fields[2] != "" {
		if h.RevisionYear, err = lr.parseInt("revision year", fields[2]); err != nil {
			return nil, err
		}
	}

	// Channel counts.
	fields, err = lr.fields("channel counts", 3)
	if err != nil {
		return nil, err
	}
	if h.TotalChannels, err = lr.parseInt("total channels", fields[0]); err != nil {
		return nil, err
	}
	totalAnalog, err := lr.parseCount("analog channel count", fields[1], "A")
	if err != nil {
		return nil, err
	}
	totalDigital, err := lr.parseCount("digital channel count", fields[2], "D")
	if err != nil {
		return nil, err
	}
	if h.TotalChannels != totalAnalog+totalDigital {
		return nil, structuralError(lr.line, fmt.Errorf("%w: %d != %d + %d",
			ErrChannelCountMismatch, h.TotalChannels, totalAnalog, totalDigital))
	}

	h.Analogs = make([]AnalogChannel, 0, totalAnalog)
	for i := 0; i < totalAnalog; i++ {
		ch, err := lr.analogChannel()
		if err != nil {
			return nil, err
		}
		h.Analogs = append(h.Analogs, ch)
	}

	h.Digitals = make([]DigitalChannel, 0, totalDigital)
	for i := 0; i < totalDigital; i++ {
		ch, err := lr.digitalChannel()
		if err != nil {
			return nil, err
		}
		h.Digitals = append(h.Digitals, ch)
	}

	// Line frequency.
	fields, err = lr.fields("line frequency", 1)
	if err != nil {
		return nil, err
	}
	if h.Frequency, err = lr.parseDecimal("line frequency", fields[0]); err != nil {
		return nil, err
	}

	// Sample rate sections. Only a single section is decoded, so nothing
	// after the count is read when more are declared.
	fields, err = lr.fields("sample rate sections", 1)
	if err != nil {
		return nil, err
	}
	if h.SampleRateSections, err = lr.parseInt("sample rate sections", fields[0]); err != nil {
		return nil, err
	}
	if h.SampleRateSections != 1 {
		return nil, &UnsupportedFeatureError{
			Feature: "sample rate sections",
			Value:   fields[0],
			Err:     ErrSampleRateSections,
		}
	}

	fields, err = lr.fields("sample rate", 2)
	if err != nil {
		return nil, err
	}
	if h.SampleRate, err = lr.parseDecimal("sample rate", fields[0]); err != nil {
		return nil, err
	}
	if h.LastSample, err = lr.parseInt("last sample", fields[1]); err != nil {
		return nil, err
	}

	// Start and trigger timestamps.
	if h.StartTimestamp, err = lr.timestamp("start timestamp"); err != nil {
		return nil, err
	}
	if h.TriggerTimestamp, err = lr.timestamp("trigger timestamp"); err != nil {
		return nil, err
	}

	// Data file type.
	ft, err := lr.next("data file type")
	if err != nil {
		return nil, err
	}
	h.DataFileType = DataFileType(strings.TrimSpace(ft))

	// Time multiplication factor, absent from 1991 files.
	h.MultiplicationFactor = decimal.NewFromInt(1)
	if tm, ok, err := lr.optional(); err != nil {
		return nil, err
	} else if ok && strings.TrimSpace(tm) != "" {
		if h.MultiplicationFactor, err = lr.parseDecimal("time multiplication factor", tm); err != nil {
			return nil, err
		}
	}

	return NewConfiguration(h)
}

// lineReader reads the configuration one record at a time, keeping track of
// the line number for error reporting.
type lineReader struct {
	s    *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{s: bufio.NewScanner(r)}
}

func (lr *lineReader) next(field string) (string, error) {
	line, ok, err := lr.optional()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", formatError(lr.line+1, field, "", io.ErrUnexpectedEOF)
	}
	return line, nil
}

func (lr *lineReader) optional() (string, bool, error) {
	if !lr.s.Scan() {
		if err := lr.s.Err(); err != nil {
			return "", false, fmt.Errorf("error reading line %d: %w", lr.line+1, err)
		}
		return "", false, nil
	}
	lr.line++
	return strings.TrimRight(lr.s.Text(), "\r"), true, nil
}

// fields reads the next line and splits it into trimmed fields. The number of
// fields must be one of counts.
func (lr *lineReader) fields(field string, counts ...int) ([]string, error) {
	line, err := lr.next(field)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	for _, n := range counts {
		if len(fields) == n {
			return fields, nil
		}
	}
	return nil, formatError(lr.line, field, line, fmt.Errorf("expected %s fields, got %d", joinCounts(counts), len(fields)))
}

func (lr *lineReader) parseInt(field, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, formatError(lr.line, field, s, err)
	}
	return v, nil
}

func (lr *lineReader) parseDecimal(field, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, formatError(lr.line, field, s, err)
	}
	return v, nil
}

// parseCount parses a channel count carrying its type marker, e.g. "3A".
func (lr *lineReader) parseCount(field, s, marker string) (int, error) {
	if !strings.Contains(strings.ToUpper(s), marker) {
		return 0, formatError(lr.line, field, s, fmt.Errorf("missing letter '%s'", marker))
	}
	n := strings.TrimSpace(strings.TrimRight(s, marker+strings.ToLower(marker)))
	v, err := strconv.Atoi(n)
	if err != nil {
		return 0, formatError(lr.line, field, s, err)
	}
	if v < 0 {
		return 0, formatError(lr.line, field, s, errors.New("negative channel count"))
	}
	return v, nil
}

func (lr *lineReader) timestamp(field string) (string, error) {
	line, err := lr.next(field)
	if err != nil {
		return "", err
	}
	if _, err := parseTimestamp(line); err != nil {
		return "", formatError(lr.line, field, line, err)
	}
	return line, nil
}

func (lr *lineReader) analogChannel() (AnalogChannel, error) {
	fields, err := lr.fields("analog channel", 10, 13)
	if err != nil {
		return AnalogChannel{}, err
	}

	ch := AnalogChannel{
		ID:               fields[1],
		Phase:            fields[2],
		CircuitComponent: fields[3],
		Unit:             fields[4],
		Primary:          decimal.NewFromInt(1),
		Secondary:        decimal.NewFromInt(1),
	}

	values := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"multiplier", &ch.Multiplier},
		{"offset", &ch.Offset},
		{"skew", &ch.Skew},
		{"minimum", &ch.Min},
		{"maximum", &ch.Max},
		{"primary ratio", &ch.Primary},
		{"secondary ratio", &ch.Secondary},
	}
	for i, v := range values {
		if 5+i >= len(fields) {
			break
		}
		if *v.dst, err = lr.parseDecimal(fmt.Sprintf("analog channel %s %s", ch.ID, v.name), fields[5+i]); err != nil {
			return AnalogChannel{}, err
		}
	}
	if len(fields) == 13 {
		ch.PrimaryReferred = strings.EqualFold(fields[12], "p")
	}

	return ch, nil
}

func (lr *lineReader) digitalChannel() (DigitalChannel, error) {
	fields, err := lr.fields("digital channel", 3, 5)
	if err != nil {
		return DigitalChannel{}, err
	}

	ch := DigitalChannel{ID: fields[1]}
	state := fields[len(fields)-1]
	if len(fields) == 5 {
		ch.Phase = fields[2]
		ch.CircuitComponent = fields[3]
	}

	switch state {
	case "0":
		ch.NormalState = 0
	case "1":
		ch.NormalState = 1
	default:
		return DigitalChannel{}, formatError(lr.line, "digital channel "+ch.ID+" normal state", state,
			errors.New("state must be 0 or 1"))
	}

	return ch, nil
}

func joinCounts(counts []int) string {
	s := make([]string, len(counts))
	for i, n := range counts {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " or ")
}
