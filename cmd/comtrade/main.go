// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// comtrade prints a summary of a COMTRADE recording and optionally exports
// selected channels as CSV or XLSX.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenPSG/comtrade"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		profilePath  string
		logLevel     string
		showConfig   bool
		noDecompress bool
		flags        Profile
	)

	flagSet := pflag.NewFlagSet("comtrade", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&profilePath, "profile", "", "YAML profile selecting channels and export target")
	flagSet.StringVarP(&flags.Export, "export", "o", "", "export channels to this file (.csv or .xlsx)")
	flagSet.StringSliceVarP(&flags.Analogs, "analog", "a", nil, "analog channels to export (default: all)")
	flagSet.StringSliceVarP(&flags.Digitals, "digital", "d", nil, "digital channels to export (default: all)")
	flagSet.BoolVar(&showConfig, "show-config", false, "print the full configuration")
	flagSet.BoolVar(&noDecompress, "no-decompress", false, "do not unwrap compressed input files")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: comtrade [flags] <file.cfg> [file.dat]\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if noDecompress {
		off := false
		flags.Decompress = &off
	}

	positional := flagSet.Args()
	if len(positional) < 1 || len(positional) > 2 {
		flagSet.Usage()
		return fmt.Errorf("expected a configuration file and an optional data file")
	}
	cfgPath := positional[0]
	datPath := dataPathFor(cfgPath)
	if len(positional) == 2 {
		datPath = positional[1]
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	profile := Profile{}
	if profilePath != "" {
		var err error
		if profile, err = LoadProfile(profilePath); err != nil {
			return err
		}
	}
	profile = profile.merge(flags)

	opts := []comtrade.Option{comtrade.WithLogger(logger)}
	if profile.Decompress != nil {
		opts = append(opts, comtrade.WithDecompression(*profile.Decompress))
	}

	rec, err := comtrade.Load(cfgPath, datPath, opts...)
	if err != nil {
		return err
	}

	if showConfig {
		fmt.Fprintln(stdout, rec.Config)
		fmt.Fprintln(stdout)
	}
	fmt.Fprint(stdout, rec.Data.Summary())

	if profile.Export == "" {
		return nil
	}

	if _, err := selectColumns(rec.Config, profile.Analogs, profile.Digitals); err != nil {
		return fmt.Errorf("error exporting %s: %w", profile.Export, err)
	}

	f, err := os.Create(profile.Export)
	if err != nil {
		return err
	}
	if err := Export(f, profile.Export, rec.Data, profile.Analogs, profile.Digitals); err != nil {
		_ = f.Close()
		return fmt.Errorf("error exporting %s: %w", profile.Export, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("Exported channels", slog.String("path", profile.Export), slog.Int("rows", rec.Data.Len()))
	return nil
}

// dataPathFor derives the data file path from the configuration path,
// keeping the extension's case.
func dataPathFor(cfgPath string) string {
	ext := filepath.Ext(cfgPath)
	base := strings.TrimSuffix(cfgPath, ext)
	if ext == strings.ToUpper(ext) && ext != "" {
		return base + ".DAT"
	}
	return base + ".dat"
}
