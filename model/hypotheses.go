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

	"github.com/exascience/elcomplex/arith"
)

// Hypotheses is a set of genotype hypotheses over a description of
// alleles together with their prior possibilities.
type Hypotheses struct {
	description *Description
	code        Code
	haploid     bool
	arithmetic  arith.PossibilityArithmetic
	priors      []float64
	reference   int
}

// NewHypotheses bundles hypotheses over the given description. The
// priors are possibilities in the given arithmetic, one per hypothesis.
// Reference is the hypothesis index that denotes the reference, or -1
// when the reference is not among the hypotheses.
func NewHypotheses(description *Description, arithmetic arith.PossibilityArithmetic, haploid bool, priors []float64, reference int) *Hypotheses {
	var code Code
	if haploid {
		code = HaploidCode(description.Size())
	} else {
		code = NewDiploidCode(description.Size())
	}
	if len(priors) != code.Size() {
		log.Panicf("%v priors for %v hypotheses", len(priors), code.Size())
	}
	if reference < -1 || reference >= code.Size() {
		log.Panicf("reference hypothesis %v out of range", reference)
	}
	return &Hypotheses{
		description: description,
		code:        code,
		haploid:     haploid,
		arithmetic:  arithmetic,
		priors:      priors,
		reference:   reference,
	}
}

// Description returns the alleles the hypotheses are built from.
func (h *Hypotheses) Description() *Description { return h.description }

// Code returns the code that maps hypotheses to alleles.
func (h *Hypotheses) Code() Code { return h.code }

// Haploid reports whether each hypothesis consists of a single allele.
func (h *Hypotheses) Haploid() bool { return h.haploid }

// Arithmetic returns the arithmetic the priors are expressed in.
func (h *Hypotheses) Arithmetic() arith.PossibilityArithmetic { return h.arithmetic }

// Size is the number of hypotheses.
func (h *Hypotheses) Size() int { return h.code.Size() }

// Prior returns the prior possibility of hypothesis k.
func (h *Hypotheses) Prior(k int) float64 { return h.priors[k] }

// Priors returns all priors. The result must not be modified.
func (h *Hypotheses) Priors() []float64 { return h.priors }

// Reference returns the index of the reference hypothesis, or -1.
func (h *Hypotheses) Reference() int { return h.reference }

// Name returns a printable name for hypothesis k: the allele for
// haploid hypotheses, or both alleles separated by a colon.
func (h *Hypotheses) Name(k int) string {
	a := h.description.Name(h.code.A(k))
	if h.haploid {
		return a
	}
	return a + ":" + h.description.Name(h.code.B(k))
}
