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

package complex

import (
	"log"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/exascience/elcomplex/internal"
	"github.com/exascience/elcomplex/model"
)

// Hypotheses are the genotype hypotheses of a complex locus, with
// priors derived from the transition matrix of its template.
type Hypotheses struct {
	*model.Hypotheses
	template    *Template
	description *Description
}

// normalizedTransitionsLn returns the transition matrix in natural log
// space, with each row normalized over the alleles of the description.
func normalizedTransitionsLn(t *Template) [][]float64 {
	a := t.Arithmetic()
	n := t.Description().Size()
	result := make([][]float64, t.MatrixSize())
	for i := range result {
		row := make([]float64, n)
		for j := range row {
			row[j] = a.Poss2Ln(t.Transition(i, j))
		}
		floats.AddConst(-floats.LogSumExp(row), row)
		result[i] = row
	}
	return result
}

func haploidPriorsLn(transitions [][]float64, ref int) []float64 {
	return append([]float64(nil), transitions[ref]...)
}

func diploidPriorsLn(transitions [][]float64, ref int, code *model.DiploidCode, strategy DiploidPriorStrategy) []float64 {
	haploid := transitions[ref]
	result := make([]float64, code.Size())
	for k := range result {
		a, b := code.A(k), code.B(k)
		if a == b {
			result[k] = haploid[a]
			continue
		}
		switch strategy {
		case DiploidPriorsLegacy:
			result[k] = math.Ln2 + haploid[a] + haploid[b]
		default:
			viaA := haploid[a] + transitions[a][b]
			viaB := haploid[b] + transitions[b][a]
			independent := haploid[a] + haploid[b]
			result[k] = math.Ln2 + math.Max(viaA, math.Max(viaB, independent))
		}
	}
	return result
}

func normalizeLn(values []float64) bool {
	sum := floats.LogSumExp(values)
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return false
	}
	floats.AddConst(-sum, values)
	return true
}

// alleleFrequenciesLn returns the log population frequency of every
// allele of the description.
func alleleFrequenciesLn(d *Description, params *Params) []float64 {
	n := d.Size()
	freqs := make([]float64, n)
	ref := d.ReferenceIndex()
	var others float64
	for i := 0; i < n; i++ {
		f, ok := params.AlleleFrequencies[d.Name(i)]
		if !ok {
			if i == ref {
				continue
			}
			f = params.DefaultAlleleFrequency
		}
		freqs[i] = f
		if i != ref {
			others += f
		}
	}
	if ref >= 0 {
		if _, ok := params.AlleleFrequencies[d.Name(ref)]; !ok {
			freqs[ref] = math.Max(0, 1-others)
		}
	}
	for i, f := range freqs {
		freqs[i] = math.Log(f)
	}
	return freqs
}

func adjustPriorsLn(priors []float64, code model.Code, haploid bool, freqs []float64, hetPenalty float64) {
	adjusted := make([]float64, len(priors))
	for k := range adjusted {
		a, b := code.A(k), code.B(k)
		switch {
		case haploid:
			adjusted[k] = priors[k] + freqs[a]
		case a == b:
			adjusted[k] = priors[k] + 2*freqs[a]
		default:
			adjusted[k] = priors[k] + math.Ln2 + freqs[a] + freqs[b] + math.Log(hetPenalty)
		}
	}
	if normalizeLn(adjusted) {
		copy(priors, adjusted)
	}
}

// NewHypotheses derives haploid or diploid hypotheses and their priors
// from a template whose complex context has been set.
func NewHypotheses(template *Template, haploid bool, params *Params) *Hypotheses {
	d := template.Description()
	if d == nil {
		log.Panic("hypotheses requested before SetComplexContext")
	}
	transitions := normalizedTransitionsLn(template)
	ref := template.ReferenceMatrixIndex()

	var code model.Code
	var priors []float64
	if haploid {
		code = model.HaploidCode(d.Size())
		priors = haploidPriorsLn(transitions, ref)
	} else {
		diploid := model.NewDiploidCode(d.Size())
		code = diploid
		priors = diploidPriorsLn(transitions, ref, diploid, params.DiploidPriors)
	}
	if !normalizeLn(priors) {
		log.Panicf("degenerate priors at locus [%v,%v)", template.Start(), template.End())
	}
	if params.AdjustPriors {
		adjustPriorsLn(priors, code, haploid, alleleFrequenciesLn(d, params), params.HetPenalty)
	}
	if internal.PedanticMode {
		if sum := floats.LogSumExp(priors); math.Abs(sum) > 1e-9 {
			log.Panicf("priors sum to %v", math.Exp(sum))
		}
	}

	a := template.Arithmetic()
	possibilities := make([]float64, len(priors))
	for k, p := range priors {
		possibilities[k] = a.Ln2Poss(p)
	}
	refHypothesis := -1
	if !template.ReferenceAbsent() {
		refHypothesis = code.Code(ref, ref)
	}
	return &Hypotheses{
		Hypotheses:  model.NewHypotheses(d.Description, a, haploid, possibilities, refHypothesis),
		template:    template,
		description: d,
	}
}

// Template returns the template the hypotheses were derived from.
func (h *Hypotheses) Template() *Template {
	return h.template
}

// ComplexDescription returns the description of the locus.
func (h *Hypotheses) ComplexDescription() *Description {
	return h.description
}
