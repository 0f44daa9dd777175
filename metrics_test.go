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
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = Load("testdata/sample.cfg", "testdata/sample.dat", WithMetrics(m))
	require.NoError(t, err)
	_, err = LoadConfiguration(filepath.Join(t.TempDir(), "missing.cfg"), WithMetrics(m))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues(kindConfiguration, "", resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues(kindConfiguration, "", resultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues(kindData, string(DataFileASCII), resultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rows.WithLabelValues(string(DataFileASCII))))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.addRows(DataFileBinary, 1)
	})
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Load("testdata/sample.cfg", "testdata/sample.dat", WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Loaded configuration")
	assert.Contains(t, out, "Loaded data")
	assert.Contains(t, out, "id=SUB1_REL7")
	assert.Contains(t, out, "rows=2")

	buf.Reset()
	_, err = LoadConfiguration("testdata/missing.cfg", WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Failed to load configuration")
}
