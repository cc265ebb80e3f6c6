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

	"github.com/exascience/elcomplex/allpaths"
	"github.com/exascience/elcomplex/arith"
	"github.com/exascience/elcomplex/internal"
)

// Template is the reference around a complex locus together with the
// range of it that candidate alleles replace.
type Template struct {
	ref        []byte
	start, end int
	params     *Params

	description *Description
	arithmetic  arith.PossibilityArithmetic
	// refIndex is the matrix index of the reference allele; when the
	// reference is absent from the description it is appended as an
	// extra row and column.
	refIndex    int
	refAbsent   bool
	transitions [][]float64
}

// NewTemplate creates a template for the locus [start, end) of ref.
func NewTemplate(ref []byte, start, end int, params *Params) *Template {
	if start < 0 || end < start || end > len(ref) {
		log.Panicf("locus [%v,%v) out of range for reference of length %v", start, end, len(ref))
	}
	return &Template{ref: ref, start: start, end: end, params: params}
}

// Start is the 0-based reference start of the locus.
func (t *Template) Start() int { return t.start }

// End is the 0-based exclusive reference end of the locus.
func (t *Template) End() int { return t.end }

// Reference returns the reference bases.
func (t *Template) Reference() []byte { return t.ref }

// ReferenceAllele returns the reference bases of the locus.
func (t *Template) ReferenceAllele() string {
	return string(t.ref[t.start:t.end])
}

// Replace returns the reference window [from, to) with the locus
// replaced by allele.
func (t *Template) Replace(allele string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if from > t.start {
		from = t.start
	}
	if to > len(t.ref) {
		to = len(t.ref)
	}
	if to < t.end {
		to = t.end
	}
	buf := internal.ReserveByteBuffer()
	buf = append(buf, t.ref[from:t.start]...)
	buf = append(buf, allele...)
	buf = append(buf, t.ref[t.end:to]...)
	result := string(buf)
	internal.ReleaseByteBuffer(buf)
	return result
}

// Description returns the description set by SetComplexContext.
func (t *Template) Description() *Description { return t.description }

// Arithmetic returns the arithmetic set by SetComplexContext.
func (t *Template) Arithmetic() arith.PossibilityArithmetic { return t.arithmetic }

// ReferenceMatrixIndex returns the index of the reference allele in the
// transition matrix.
func (t *Template) ReferenceMatrixIndex() int { return t.refIndex }

// ReferenceAbsent reports whether the reference allele is missing from
// the description.
func (t *Template) ReferenceAbsent() bool { return t.refAbsent }

// matrixAllele returns the allele of row or column i of the transition
// matrix.
func (t *Template) matrixAllele(i int) string {
	if i == t.description.Size() {
		return t.ReferenceAllele()
	}
	return t.description.Name(i)
}

func (t *Template) window() int {
	w := t.params.MinTemplateWindow
	if l := t.description.MaxLength() + 1; l > w {
		w = l
	}
	if l := t.end - t.start + 1; l > w {
		w = l
	}
	return w
}

// SetComplexContext sets the alleles of the locus and computes the
// transition matrix between them. Cell (i, j) is the all-paths
// possibility of observing allele j when the truth is allele i, both
// embedded in their reference flanks.
func (t *Template) SetComplexContext(description *Description, arithmetic arith.PossibilityArithmetic) {
	t.description = description
	t.arithmetic = arithmetic
	n := description.Size()
	t.refIndex = description.IndexOf(t.ReferenceAllele())
	t.refAbsent = t.refIndex < 0
	if t.refAbsent {
		t.refIndex = n
		n++
	}

	w := t.window()
	from, to := t.start-w, t.end+w
	sequences := make([]string, n)
	for i := range sequences {
		sequences[i] = t.Replace(t.matrixAllele(i), from, to)
	}

	em := t.params.TransitionModel
	scorer := allpaths.NewPooledScorer(em)
	defer scorer.Release()
	t.transitions = make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		li := len(t.matrixAllele(i))
		for j := 0; j < n; j++ {
			lj := len(t.matrixAllele(j))
			shift := (li - lj) / 2
			maxShift := (li+lj)/2 + 1
			scorer.SetEnv(allpaths.NewFixedQualityEnv(sequences[j], sequences[i], shift, maxShift, em))
			row[j] = arithmetic.Ln2Poss(scorer.TotalScoreLn())
		}
		t.transitions[i] = row
	}
}

// MatrixSize is the size of the transition matrix.
func (t *Template) MatrixSize() int {
	return len(t.transitions)
}

// Transition returns the possibility of observing allele j when the
// truth is allele i.
func (t *Template) Transition(i, j int) float64 {
	if t.transitions == nil {
		log.Panic("transition requested before SetComplexContext")
	}
	return t.transitions[i][j]
}
