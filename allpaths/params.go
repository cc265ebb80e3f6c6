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

// Package allpaths implements a banded all-paths pair HMM that scores a
// read against a template by summing the probabilities of every
// alignment between the two, rather than only the best one.
package allpaths

import (
	"fmt"

	"github.com/exascience/elcomplex/arith"
	"github.com/exascience/elcomplex/internal"
)

// Params is the error model of a read group.
type Params struct {
	// GapOpen is the probability of a transition from a match into an
	// insertion or a deletion.
	GapOpen float64 `yaml:"gap-open"`
	// GapExtend is the probability of staying in an insertion or a
	// deletion.
	GapExtend float64 `yaml:"gap-extend"`
	// Qualities below MinQuality are replaced by LowQuality.
	MinQuality byte `yaml:"min-quality"`
	LowQuality byte `yaml:"low-quality"`
	// CapByMapQ caps base qualities by the mapping quality of the read.
	CapByMapQ bool `yaml:"cap-by-mapq"`
	// DefaultQuality is used for sequences without base qualities.
	DefaultQuality byte `yaml:"default-quality"`
	// RepeatGapScale scales the gap open probability with the length
	// of the tandem repeat at each read position. 0 disables it.
	RepeatGapScale float64 `yaml:"repeat-gap-scale"`
}

// DefaultParams returns the error model used when a read group does not
// configure its own.
func DefaultParams() Params {
	return Params{
		GapOpen:        arith.QualityToErrorProbability(45),
		GapExtend:      arith.QualityToErrorProbability(10),
		MinQuality:     18,
		LowQuality:     6,
		CapByMapQ:      true,
		DefaultQuality: 20,
	}
}

// Validate checks that the parameters describe a proper error model.
func (p Params) Validate() error {
	if p.GapOpen <= 0 || 2*p.GapOpen >= 1 {
		return fmt.Errorf("gap open probability %v out of range (0,0.5)", p.GapOpen)
	}
	if p.GapExtend < 0 || p.GapExtend >= 1 {
		return fmt.Errorf("gap extend probability %v out of range [0,1)", p.GapExtend)
	}
	if p.RepeatGapScale < 0 {
		return fmt.Errorf("negative repeat gap scale %v", p.RepeatGapScale)
	}
	return nil
}

// Hash implements the pargo sync.Hasher interface.
func (p Params) Hash() uint64 {
	hash := internal.Float64Hash(p.GapOpen)
	hash = 31*hash + internal.Float64Hash(p.GapExtend)
	hash = 31*hash + uint64(p.MinQuality)
	hash = 31*hash + uint64(p.LowQuality)
	hash = 31*hash + internal.BoolHash(p.CapByMapQ)
	hash = 31*hash + uint64(p.DefaultQuality)
	return 31*hash + internal.Float64Hash(p.RepeatGapScale)
}

var qualToErrorProb [256]float64

func init() {
	for q := range qualToErrorProb {
		qualToErrorProb[q] = arith.QualityToErrorProbability(float64(q))
	}
}

func (p Params) modifiedQuality(qual, mapq byte) byte {
	if p.CapByMapQ && qual > mapq {
		qual = mapq
	}
	if qual < p.MinQuality {
		return p.LowQuality
	}
	return qual
}

// ErrorProbabilities converts the base qualities of a read with the
// given mapping quality into error probabilities.
func (p Params) ErrorProbabilities(quals []byte, mapq byte) []float64 {
	result := make([]float64, len(quals))
	for i, q := range quals {
		result[i] = qualToErrorProb[p.modifiedQuality(q, mapq)]
	}
	return result
}

// FixedErrorProbabilities returns n copies of the error probability of
// the default quality.
func (p Params) FixedErrorProbabilities(n int) []float64 {
	result := make([]float64, n)
	e := qualToErrorProb[p.DefaultQuality]
	for i := range result {
		result[i] = e
	}
	return result
}
