// elComplex: complex-locus variant calling for elPrep.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package allpaths

import "strings"

const (
	maxRepeatUnit   = 8
	maxRepeatLength = 20
	maxGapOpen      = 0.25
)

func forwardRepetitions(unit, s string) (n int) {
	for len(s) >= len(unit) && strings.HasPrefix(s, unit) {
		n++
		s = s[len(unit):]
	}
	return n
}

func backwardRepetitions(unit, s string) (n int) {
	for len(s) >= len(unit) && strings.HasSuffix(s, unit) {
		n++
		s = s[:len(s)-len(unit)]
	}
	return n
}

// tandemRepeatLength returns the number of repetitions of the shortest
// repeat unit that ends at offset or starts right after it, counted
// on both sides of the boundary.
func tandemRepeatLength(bases string, offset int) int {
	offset1 := offset + 1
	var maxBW int
	bestBW := bases[offset:offset1]
	for size := 1; size <= maxRepeatUnit; size++ {
		from := offset1 - size
		if from < 0 {
			break
		}
		unit := bases[from:offset1]
		if maxBW = backwardRepetitions(unit, bases[:offset1]); maxBW > 1 {
			bestBW = unit
			break
		}
	}
	length := maxBW
	if offset1 < len(bases) {
		var maxFW int
		bestFW := bases[offset1 : offset1+1]
		for size := 1; size <= maxRepeatUnit; size++ {
			to := offset1 + size
			if to > len(bases) {
				break
			}
			unit := bases[offset1:to]
			if maxFW = forwardRepetitions(unit, bases[offset1:]); maxFW > 1 {
				bestFW = unit
				break
			}
		}
		if bestFW != bestBW {
			maxBW = backwardRepetitions(bestFW, bases[:offset1])
		}
		length = maxFW + maxBW
	}
	if length > maxRepeatLength {
		length = maxRepeatLength
	}
	return length
}

// gapOpens returns the gap open probability for every read position.
func (p Params) gapOpens(read string, result []float64) []float64 {
	if cap(result) >= len(read) {
		result = result[:len(read)]
	} else {
		result = make([]float64, len(read))
	}
	for i := range result {
		result[i] = p.GapOpen
	}
	if p.RepeatGapScale == 0 {
		return result
	}
	for i := 0; i < len(read)-1; i++ {
		if length := tandemRepeatLength(read, i); length > 1 {
			g := p.GapOpen * (1 + p.RepeatGapScale*float64(length-1))
			if g > maxGapOpen {
				g = maxGapOpen
			}
			result[i] = g
		}
	}
	return result
}
