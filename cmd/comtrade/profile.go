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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a reusable export selection, loaded from YAML.
type Profile struct {
	Export     string   `yaml:"export"`
	Analogs    []string `yaml:"analogs"`
	Digitals   []string `yaml:"digitals"`
	Decompress *bool    `yaml:"decompress"`
}

// LoadProfile reads a profile from path.
func LoadProfile(path string) (Profile, error) {
	var p Profile

	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("error parsing profile %s: %w", path, err)
	}
	return p, nil
}

// merge overrides profile values with any set on the command line.
func (p Profile) merge(override Profile) Profile {
	if override.Export != "" {
		p.Export = override.Export
	}
	if len(override.Analogs) > 0 {
		p.Analogs = override.Analogs
	}
	if len(override.Digitals) > 0 {
		p.Digitals = override.Digitals
	}
	if override.Decompress != nil {
		p.Decompress = override.Decompress
	}
	return p
}
