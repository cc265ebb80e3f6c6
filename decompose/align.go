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

import (
	"math"
	"sync"

	"github.com/biogo/hts/sam"
)

// Weights for aligning alleles to the reference.
const (
	matchValue       = 200
	mismatchPenalty  = -150
	gapOpenPenalty   = -260
	gapExtendPenalty = -11
)

type int32Matrix struct {
	cols  int32
	array []int32
}

func (m *int32Matrix) ensureSize(rows, cols int32) {
	m.cols = cols
	totalSize := rows * cols
	if totalSize <= int32(cap(m.array)) {
		m.array = m.array[:totalSize]
		for i := int32(0); i < totalSize; i++ {
			m.array[i] = 0
		}
	} else {
		m.array = make([]int32, totalSize)
	}
}

func (m *int32Matrix) at(row, col int32) int32 {
	return m.array[row*m.cols+col]
}

func (m *int32Matrix) setAt(row, col, value int32) {
	m.array[row*m.cols+col] = value
}

func (m *int32Matrix) rowView(row int32) []int32 {
	offset := row * m.cols
	return m.array[offset : offset+m.cols]
}

type alignmentMatrices struct {
	score, backtrack                       int32Matrix
	bestGapV, bestGapH, gapSizeV, gapSizeH []int32
}

var alignmentMatricesPool = sync.Pool{New: func() interface{} { return &alignmentMatrices{} }}

func getAlignmentMatrices() *alignmentMatrices {
	return alignmentMatricesPool.Get().(*alignmentMatrices)
}

func putAlignmentMatrices(m *alignmentMatrices) {
	alignmentMatricesPool.Put(m)
}

func ensureVector(v []int32, sz, initValue int32) (result []int32) {
	if sz <= int32(cap(v)) {
		result = v[:sz]
	} else {
		result = make([]int32, sz)
	}
	for i := int32(0); i < sz; i++ {
		result[i] = initValue
	}
	return
}

func maxInt32(x, y int32) int32 {
	if x > y {
		return x
	}
	return y
}

// cigarBuilder collects operations from the end of an alignment
// towards its start.
type cigarBuilder []sam.CigarOp

func (b *cigarBuilder) prepend(t sam.CigarOpType, n int32) {
	if n <= 0 {
		return
	}
	if l := len(*b); l > 0 && (*b)[l-1].Type() == t {
		(*b)[l-1] = sam.NewCigarOp(t, (*b)[l-1].Len()+int(n))
		return
	}
	*b = append(*b, sam.NewCigarOp(t, int(n)))
}

func (b cigarBuilder) cigar() sam.Cigar {
	result := make(sam.Cigar, len(b))
	for i, op := range b {
		result[len(b)-1-i] = op
	}
	return result
}

// align globally aligns alternate against reference with affine gap
// penalties. In the result, M covers aligned columns whether or not the
// bases agree, I bases only occur in alternate and D bases only occur
// in reference.
func align(reference, alternate string) sam.Cigar {
	refLength := int32(len(reference))
	altLength := int32(len(alternate))

	switch {
	case refLength == 0 && altLength == 0:
		return nil
	case refLength == 0:
		return sam.Cigar{sam.NewCigarOp(sam.CigarInsertion, int(altLength))}
	case altLength == 0:
		return sam.Cigar{sam.NewCigarOp(sam.CigarDeletion, int(refLength))}
	case reference == alternate:
		return sam.Cigar{sam.NewCigarOp(sam.CigarMatch, int(refLength))}
	}

	m := getAlignmentMatrices()
	defer putAlignmentMatrices(m)

	nrow := refLength + 1
	ncol := altLength + 1
	m.score.ensureSize(nrow, ncol)
	m.backtrack.ensureSize(nrow, ncol)

	const (
		matrixMinCutoff = -1.0e8
		lowInitValue    = math.MinInt32 / 2
	)

	m.bestGapV = ensureVector(m.bestGapV, ncol+1, lowInitValue)
	m.gapSizeV = ensureVector(m.gapSizeV, ncol+1, 0)
	m.bestGapH = ensureVector(m.bestGapH, nrow+1, lowInitValue)
	m.gapSizeH = ensureVector(m.gapSizeH, nrow+1, 0)

	topRow := m.score.rowView(0)
	topRow[1] = gapOpenPenalty
	currentValue := int32(gapOpenPenalty)
	for i := 2; i < len(topRow); i++ {
		currentValue += gapExtendPenalty
		topRow[i] = currentValue
	}
	m.score.setAt(1, 0, gapOpenPenalty)
	currentValue = gapOpenPenalty
	for i := int32(2); i < nrow; i++ {
		currentValue += gapExtendPenalty
		m.score.setAt(i, 0, currentValue)
	}

	curRow := m.score.rowView(0)

	for i := int32(1); i < nrow; i++ {
		aBase := reference[i-1]
		lastRow := curRow
		curRow = m.score.rowView(i)
		curBacktrackRow := m.backtrack.rowView(i)

		for j := int32(1); j < ncol; j++ {
			bBase := alternate[j-1]
			stepDiag := lastRow[j-1]
			if aBase == bBase {
				stepDiag += matchValue
			} else {
				stepDiag += mismatchPenalty
			}

			prevGap := lastRow[j] + gapOpenPenalty
			m.bestGapV[j] += gapExtendPenalty
			if prevGap > m.bestGapV[j] {
				m.bestGapV[j] = prevGap
				m.gapSizeV[j] = 1
			} else {
				m.gapSizeV[j]++
			}

			stepDown := m.bestGapV[j]
			kd := m.gapSizeV[j]

			prevGap = curRow[j-1] + gapOpenPenalty
			m.bestGapH[i] += gapExtendPenalty
			if prevGap > m.bestGapH[i] {
				m.bestGapH[i] = prevGap
				m.gapSizeH[i] = 1
			} else {
				m.gapSizeH[i]++
			}

			stepRight := m.bestGapH[i]
			ki := m.gapSizeH[i]

			if stepDiag >= stepDown && stepDiag >= stepRight {
				curRow[j] = maxInt32(matrixMinCutoff, stepDiag)
				curBacktrackRow[j] = 0
			} else if stepRight >= stepDown {
				curRow[j] = maxInt32(matrixMinCutoff, stepRight)
				curBacktrackRow[j] = -ki
			} else {
				curRow[j] = maxInt32(matrixMinCutoff, stepDown)
				curBacktrackRow[j] = kd
			}
		}
	}

	var b cigarBuilder
	p1, p2 := refLength, altLength
	for p1 > 0 && p2 > 0 {
		switch btr := m.backtrack.at(p1, p2); {
		case btr > 0:
			b.prepend(sam.CigarDeletion, btr)
			p1 -= btr
		case btr < 0:
			b.prepend(sam.CigarInsertion, -btr)
			p2 += btr
		default:
			b.prepend(sam.CigarMatch, 1)
			p1--
			p2--
		}
	}
	switch {
	case p1 > 0:
		b.prepend(sam.CigarDeletion, p1)
	case p2 > 0:
		b.prepend(sam.CigarInsertion, p2)
	}
	return b.cigar()
}
