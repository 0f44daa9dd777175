// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/OpenPSG/comtrade"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// columns maps the selected channel identifiers to their positions in a
// comtrade.Sample.
type columns struct {
	header   []string
	analogs  []int
	digitals []int
}

func selectColumns(cfg *comtrade.Configuration, analogs, digitals []string) (columns, error) {
	if len(analogs) == 0 && len(digitals) == 0 {
		analogs = cfg.AnalogOrder()
		digitals = cfg.DigitalOrder()
	}

	c := columns{header: []string{"time"}}
	for _, id := range analogs {
		i := indexOf(cfg.AnalogOrder(), id)
		if i < 0 {
			return c, fmt.Errorf("%w: analog %q", comtrade.ErrUnknownChannel, id)
		}
		c.analogs = append(c.analogs, i)
		c.header = append(c.header, id)
	}
	for _, id := range digitals {
		i := indexOf(cfg.DigitalOrder(), id)
		if i < 0 {
			return c, fmt.Errorf("%w: digital %q", comtrade.ErrUnknownChannel, id)
		}
		c.digitals = append(c.digitals, i)
		c.header = append(c.header, id)
	}
	return c, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Export writes the selected channels to path, as XLSX if the extension is
// .xlsx and CSV otherwise.
func Export(w io.Writer, path string, dat *comtrade.Data, analogs, digitals []string) error {
	c, err := selectColumns(dat.Config(), analogs, digitals)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXLSX(w, dat, c)
	}
	return writeCSV(w, dat, c)
}

func writeCSV(w io.Writer, dat *comtrade.Data, c columns) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(c.header); err != nil {
		return err
	}

	record := make([]string, len(c.header))
	for s := range dat.Samples() {
		record[0] = s.Time.String()
		n := 1
		for _, i := range c.analogs {
			record[n] = s.Analogs[i].String()
			n++
		}
		for _, i := range c.digitals {
			record[n] = digitalString(s.Digitals[i])
			n++
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, dat *comtrade.Data, c columns) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "samples"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(c.header))
	for i, h := range c.header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	rowNum := 2
	for s := range dat.Samples() {
		row := make([]interface{}, 0, len(c.header))
		row = append(row, inexact(s.Time))
		for _, i := range c.analogs {
			row = append(row, inexact(s.Analogs[i]))
		}
		for _, i := range c.digitals {
			if s.Digitals[i] {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
		rowNum++
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// inexact converts to float64 for spreadsheet cells, which are IEEE doubles.
func inexact(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func digitalString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
