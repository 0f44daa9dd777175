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
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Data holds the decoded rows of a data file. It is never modified after
// construction.
type Data struct {
	cfg        *Configuration
	timestamps []int64
	analogs    []AnalogSampleRow
	digitals   []DigitalSampleRow
}

// LoadData decodes the data file at path using cfg as its schema. The
// decoder is selected by cfg.DataFileType().
func LoadData(path string, cfg *Configuration, opts ...Option) (*Data, error) {
	o := newOptions(opts)
	start := time.Now()

	d, err := loadData(path, cfg, o)
	o.metrics.observeLoad(kindData, cfg.DataFileType(), start, err)
	if err != nil {
		o.logger.Warn("Failed to load data",
			slog.String("path", path),
			slog.String("encoding", string(cfg.DataFileType())),
			slog.Any("error", err))
		return nil, err
	}
	o.metrics.addRows(cfg.DataFileType(), d.Len())

	o.logger.Debug("Loaded data",
		slog.String("path", path),
		slog.String("id", cfg.ID()),
		slog.String("encoding", string(cfg.DataFileType())),
		slog.Int("rows", d.Len()),
		slog.Duration("elapsed", time.Since(start)))

	return d, nil
}

func loadData(path string, cfg *Configuration, o *options) (*Data, error) {
	if _, err := DecoderFor(cfg.DataFileType()); err != nil {
		return nil, err
	}

	f, err := openSource(path, o.decompress)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := DecodeData(f, cfg)
	if err != nil {
		return nil, wrapIOError("reading", path, err)
	}
	return d, nil
}

// DecodeData decodes a data file read from r using cfg as its schema.
func DecodeData(r io.Reader, cfg *Configuration) (*Data, error) {
	dec, err := DecoderFor(cfg.DataFileType())
	if err != nil {
		return nil, err
	}

	timestamps, analogs, digitals, err := dec.Decode(r, cfg)
	if err != nil {
		return nil, err
	}

	return NewData(cfg, timestamps, analogs, digitals)
}

// NewData assembles decoded rows into a Data, checking that there is one row
// per declared sample and one value per declared channel. NewData takes
// ownership of the slices.
func NewData(cfg *Configuration, timestamps []int64, analogs []AnalogSampleRow, digitals []DigitalSampleRow) (*Data, error) {
	if len(timestamps) != cfg.LastSample() || len(analogs) != cfg.LastSample() || len(digitals) != cfg.LastSample() {
		return nil, structuralError(0, fmt.Errorf("%w: %d timestamps, %d analog rows, %d digital rows, want %d",
			ErrRowCount, len(timestamps), len(analogs), len(digitals), cfg.LastSample()))
	}
	for i := range timestamps {
		if len(analogs[i].Values) != cfg.TotalAnalog() || len(digitals[i].States) != cfg.TotalDigital() {
			return nil, structuralError(i+1, fmt.Errorf("%w: got %d, want %d", ErrRowChannelCount,
				len(analogs[i].Values)+len(digitals[i].States), cfg.TotalChannels()))
		}
		if i > 0 && timestamps[i] < timestamps[i-1] {
			return nil, structuralError(i+1, fmt.Errorf("%w: %d after %d", ErrTimestampOrder, timestamps[i], timestamps[i-1]))
		}
	}

	return &Data{
		cfg:        cfg,
		timestamps: timestamps,
		analogs:    analogs,
		digitals:   digitals,
	}, nil
}

// Config returns the configuration the data was decoded with.
func (d *Data) Config() *Configuration { return d.cfg }

// Len returns the number of rows.
func (d *Data) Len() int { return len(d.timestamps) }

// Timestamps returns a copy of the raw row timestamps.
func (d *Data) Timestamps() []int64 { return slices.Clone(d.timestamps) }

// RawAnalogs yields the raw timestamp and raw analog values of every row.
func (d *Data) RawAnalogs() iter.Seq2[int64, []decimal.Decimal] {
	return func(yield func(int64, []decimal.Decimal) bool) {
		for _, row := range d.analogs {
			if !yield(row.Timestamp, slices.Clone(row.Values)) {
				return
			}
		}
	}
}

// RawAnalogsBy yields the raw timestamp and raw value of one analog channel.
func (d *Data) RawAnalogsBy(id string) (iter.Seq2[int64, decimal.Decimal], error) {
	idx, err := d.analogIndex(id)
	if err != nil {
		return nil, err
	}
	return func(yield func(int64, decimal.Decimal) bool) {
		for _, row := range d.analogs {
			if !yield(row.Timestamp, row.Values[idx]) {
				return
			}
		}
	}, nil
}

// RawDigitals yields the raw timestamp and states of every row.
func (d *Data) RawDigitals() iter.Seq2[int64, []bool] {
	return func(yield func(int64, []bool) bool) {
		for _, row := range d.digitals {
			if !yield(row.Timestamp, slices.Clone(row.States)) {
				return
			}
		}
	}
}

// RawDigitalsBy yields the raw timestamp and state of one digital channel.
func (d *Data) RawDigitalsBy(id string) (iter.Seq2[int64, bool], error) {
	idx, err := d.digitalIndex(id)
	if err != nil {
		return nil, err
	}
	return func(yield func(int64, bool) bool) {
		for _, row := range d.digitals {
			if !yield(row.Timestamp, row.States[idx]) {
				return
			}
		}
	}, nil
}

// Analog yields the converted timestamp and physical value of one analog
// channel for every row. Each call to the returned sequence starts from the
// first row.
func (d *Data) Analog(id string) (iter.Seq2[decimal.Decimal, decimal.Decimal], error) {
	idx, err := d.analogIndex(id)
	if err != nil {
		return nil, err
	}
	ch := d.cfg.analogs[idx]
	return func(yield func(decimal.Decimal, decimal.Decimal) bool) {
		for _, row := range d.analogs {
			if !yield(d.cfg.ConvertTimestamp(row.Timestamp), ch.Convert(row.Values[idx])) {
				return
			}
		}
	}, nil
}

// Digital yields the converted timestamp and state of one digital channel for
// every row.
func (d *Data) Digital(id string) (iter.Seq2[decimal.Decimal, bool], error) {
	idx, err := d.digitalIndex(id)
	if err != nil {
		return nil, err
	}
	return func(yield func(decimal.Decimal, bool) bool) {
		for _, row := range d.digitals {
			if !yield(d.cfg.ConvertTimestamp(row.Timestamp), row.States[idx]) {
				return
			}
		}
	}, nil
}

// Analogs yields the converted timestamp and the physical values of the
// named analog channels, in the order given. With no ids every analog
// channel is returned in configuration order.
func (d *Data) Analogs(ids ...string) (iter.Seq2[decimal.Decimal, []decimal.Decimal], error) {
	if len(ids) == 0 {
		ids = d.cfg.AnalogOrder()
	}
	idxs := make([]int, len(ids))
	for i, id := range ids {
		idx, err := d.analogIndex(id)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}

	return func(yield func(decimal.Decimal, []decimal.Decimal) bool) {
		for _, row := range d.analogs {
			values := make([]decimal.Decimal, len(idxs))
			for i, idx := range idxs {
				values[i] = d.cfg.analogs[idx].Convert(row.Values[idx])
			}
			if !yield(d.cfg.ConvertTimestamp(row.Timestamp), values) {
				return
			}
		}
	}, nil
}

// Digitals yields the converted timestamp and the states of the named digital
// channels, in the order given. With no ids every digital channel is
// returned in configuration order.
func (d *Data) Digitals(ids ...string) (iter.Seq2[decimal.Decimal, []bool], error) {
	if len(ids) == 0 {
		ids = d.cfg.DigitalOrder()
	}
	idxs := make([]int, len(ids))
	for i, id := range ids {
		idx, err := d.digitalIndex(id)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}

	return func(yield func(decimal.Decimal, []bool) bool) {
		for _, row := range d.digitals {
			states := make([]bool, len(idxs))
			for i, idx := range idxs {
				states[i] = row.States[idx]
			}
			if !yield(d.cfg.ConvertTimestamp(row.Timestamp), states) {
				return
			}
		}
	}, nil
}

// Samples yields every row fully converted.
func (d *Data) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for i, tick := range d.timestamps {
			s := Sample{
				Tick:     tick,
				Time:     d.cfg.ConvertTimestamp(tick),
				Analogs:  make([]decimal.Decimal, len(d.analogs[i].Values)),
				Digitals: slices.Clone(d.digitals[i].States),
			}
			for j, v := range d.analogs[i].Values {
				s.Analogs[j] = d.cfg.analogs[j].Convert(v)
			}
			if !yield(s) {
				return
			}
		}
	}
}

func (d *Data) analogIndex(id string) (int, error) {
	idx, ok := d.cfg.analogIndex[id]
	if !ok {
		return 0, fmt.Errorf("%w: analog %q", ErrUnknownChannel, id)
	}
	return idx, nil
}

func (d *Data) digitalIndex(id string) (int, error) {
	idx, ok := d.cfg.digitalIndex[id]
	if !ok {
		return 0, fmt.Errorf("%w: digital %q", ErrUnknownChannel, id)
	}
	return idx, nil
}
