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

package model

import (
	"log"

	"github.com/biogo/hts/sam"

	"github.com/exascience/elcomplex/arith"
)

// Match is the evidence a single read provides for the sequence at a
// complex locus.
type Match interface {
	// Length is the number of bases the read places in the locus.
	Length() int
	// Base returns the base at offset i within the locus.
	Base(i int) byte
	// ErrorProbability returns the probability that the base at offset
	// i was miscalled.
	ErrorProbability(i int) float64
	// FixedLeft reports whether the read is anchored on the left
	// flank of the locus.
	FixedLeft() bool
	// FixedRight reports whether the read is anchored on the right
	// flank of the locus.
	FixedRight() bool
	// MapError is the probability that the read is mismapped.
	MapError() float64
	// Record is the full alignment record, or nil when the evidence is
	// only known over the locus.
	Record() *Record
}

// Record is the alignment of a read that supports a complex locus.
type Record struct {
	Name      string
	ReadGroup string
	// Platform of the read group, as found in the PL tag of the header.
	Platform string
	Flags    sam.Flags
	// Pos is the 0-based reference position of the first aligned base.
	Pos   int
	MapQ  byte
	Cigar sam.Cigar
	// Seq and Qual cover the whole read, including soft clips.
	Seq  string
	Qual []byte
}

// Reverse reports whether the read aligns to the reverse strand.
func (r *Record) Reverse() bool { return r.Flags&sam.Reverse != 0 }

// Paired reports whether the read is part of a pair.
func (r *Record) Paired() bool { return r.Flags&sam.Paired != 0 }

// Mated reports whether both reads of the pair are mapped properly.
func (r *Record) Mated() bool {
	return r.Flags&sam.Paired != 0 && r.Flags&sam.ProperPair != 0 && r.Flags&sam.MateUnmapped == 0
}

// First reports whether this is the first read of a pair.
func (r *Record) First() bool { return r.Flags&sam.Read1 != 0 }

// RefLength is the number of reference bases covered by the alignment.
func (r *Record) RefLength() int {
	ref, _ := r.Cigar.Lengths()
	return ref
}

// End is the 0-based exclusive reference end of the alignment.
func (r *Record) End() int {
	return r.Pos + r.RefLength()
}

// SoftClips returns the number of soft clipped bases at both ends.
func (r *Record) SoftClips() (leading, trailing int) {
	for _, op := range r.Cigar {
		if t := op.Type(); t == sam.CigarSoftClipped {
			leading += op.Len()
		} else if t != sam.CigarHardClipped {
			break
		}
	}
	for i := len(r.Cigar) - 1; i >= 0; i-- {
		if t := r.Cigar[i].Type(); t == sam.CigarSoftClipped {
			trailing += r.Cigar[i].Len()
		} else if t != sam.CigarHardClipped {
			break
		}
	}
	return
}

// ReferencePosition returns the reference position the read base at
// the given offset aligns to. Inserted bases map to the next aligned
// position, and soft clipped bases extend the alignment linearly.
func (r *Record) ReferencePosition(offset int) int {
	lead, _ := r.SoftClips()
	read, ref := 0, r.Pos-lead
	for _, op := range r.Cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarSoftClipped:
			if offset < read+n {
				return ref + offset - read
			}
			read += n
			ref += n
		case sam.CigarInsertion:
			if offset < read+n {
				return ref
			}
			read += n
		case sam.CigarDeletion, sam.CigarSkipped:
			ref += n
		}
	}
	return ref + offset - read
}

// IndelLength is the total length of all insertions and deletions in
// the alignment.
func (r *Record) IndelLength() (sum int) {
	for _, op := range r.Cigar {
		switch op.Type() {
		case sam.CigarInsertion, sam.CigarDeletion:
			sum += op.Len()
		}
	}
	return
}

// MapErrorFromQuality converts a mapping quality into a mismapping
// probability.
func MapErrorFromQuality(mapq byte) float64 {
	return arith.QualityToErrorProbability(float64(mapq))
}

// ReadMatch is an immutable Match backed by explicit bases and phred
// qualities.
type ReadMatch struct {
	bases                 string
	errors                []float64
	fixedLeft, fixedRight bool
	mapError              float64
	record                *Record
}

// NewReadMatch creates a Match from the bases a read places in a locus
// and their phred qualities. A nil quality slice means every base is
// called with certainty. The record may be nil.
func NewReadMatch(bases string, quals []byte, fixedLeft, fixedRight bool, mapError float64, record *Record) *ReadMatch {
	if quals != nil && len(quals) != len(bases) {
		log.Panicf("read match has %v bases but %v qualities", len(bases), len(quals))
	}
	errors := make([]float64, len(bases))
	if quals != nil {
		for i, q := range quals {
			errors[i] = arith.QualityToErrorProbability(float64(q))
		}
	}
	return &ReadMatch{
		bases:      bases,
		errors:     errors,
		fixedLeft:  fixedLeft,
		fixedRight: fixedRight,
		mapError:   mapError,
		record:     record,
	}
}

// Length implements the Match interface.
func (m *ReadMatch) Length() int { return len(m.bases) }

// Base implements the Match interface.
func (m *ReadMatch) Base(i int) byte { return m.bases[i] }

// ErrorProbability implements the Match interface.
func (m *ReadMatch) ErrorProbability(i int) float64 { return m.errors[i] }

// FixedLeft implements the Match interface.
func (m *ReadMatch) FixedLeft() bool { return m.fixedLeft }

// FixedRight implements the Match interface.
func (m *ReadMatch) FixedRight() bool { return m.fixedRight }

// MapError implements the Match interface.
func (m *ReadMatch) MapError() float64 { return m.mapError }

// Record implements the Match interface.
func (m *ReadMatch) Record() *Record { return m.record }

// Bases returns the bases of the match as a string.
func (m *ReadMatch) Bases() string { return m.bases }

// MatchString returns the bases of any Match as a string.
func MatchString(m Match) string {
	if rm, ok := m.(*ReadMatch); ok {
		return rm.bases
	}
	buf := make([]byte, m.Length())
	for i := range buf {
		buf[i] = m.Base(i)
	}
	return string(buf)
}
