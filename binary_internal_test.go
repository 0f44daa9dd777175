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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigitalBitsInWord(t *testing.T) {
	tests := []struct {
		channels int
		words    int
		bits     []int
	}{
		{0, 0, nil},
		{8, 1, []int{8}},
		{16, 1, []int{16}},
		{17, 2, []int{16, 1}},
		{20, 2, []int{16, 4}},
		{32, 2, []int{16, 16}},
		{40, 3, []int{16, 16, 8}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.words, digitalWords(tt.channels), "words for %d channels", tt.channels)
		for w, want := range tt.bits {
			assert.Equal(t, want, digitalBitsInWord(tt.channels, w), "word %d of %d channels", w, tt.channels)
		}
	}
}

func TestUnpackWord(t *testing.T) {
	states := unpackWord(nil, 0b00000000_11010110, digitalBitsInWord(8, 0))
	assert.Equal(t, []bool{false, true, true, false, true, false, true, true}, states)

	states = unpackWord(states, 0xffff, 2)
	assert.Len(t, states, 10)
	assert.True(t, states[8])
	assert.True(t, states[9])
}
