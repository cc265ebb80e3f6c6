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

package decompose

// IonTorrentFilter is the filter added to calls that look like ion
// torrent homopolymer length errors.
const IonTorrentFilter = "IONT"

const ionTableSize = 9

// ionTable[base][ref][call] flags homopolymer length changes from ref
// to call bases that ion torrent sequencing commonly produces in error.
var ionTable [4][ionTableSize][ionTableSize]bool

func init() {
	for b := range ionTable {
		weak := b == 0 || b == 3
		for r := 0; r < ionTableSize; r++ {
			for c := 0; c < ionTableSize; c++ {
				diff, longest := r-c, r
				if diff < 0 {
					diff, longest = -diff, c
				}
				ionTable[b][r][c] = (diff == 1 && longest >= 2) || (weak && diff == 2 && longest >= 6)
			}
		}
	}
}

func baseIndex(base byte) int {
	switch base {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	default:
		return -1
	}
}

// IonFilter reports whether a homopolymer run of base of length refLen
// being called with length callLen is a likely ion torrent artefact.
// Lengths outside the table are never flagged.
func IonFilter(base byte, refLen, callLen int) bool {
	b := baseIndex(base)
	if b < 0 || refLen < 0 || callLen < 0 || refLen >= ionTableSize || callLen >= ionTableSize {
		return false
	}
	return ionTable[b][refLen][callLen]
}

// homopolymerBase returns the base all given alleles consist of, if any.
func homopolymerBase(alleles ...string) (byte, bool) {
	var base byte
	for _, a := range alleles {
		for i := 0; i < len(a); i++ {
			if base == 0 {
				base = a[i]
			} else if a[i] != base {
				return 0, false
			}
		}
	}
	return base, base != 0
}

// runAround counts the copies of base directly left of start and right
// of end in ref.
func runAround(ref string, start, end int, base byte) (n int) {
	for i := start - 1; i >= 0 && ref[i] == base; i-- {
		n++
	}
	for i := end; i < len(ref) && ref[i] == base; i++ {
		n++
	}
	return n
}
