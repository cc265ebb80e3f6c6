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

import (
	"sync"

	"github.com/exascience/pargo/parallel"
)

type float64Matrix struct {
	cols  int
	array []float64
}

func (m *float64Matrix) ensureSize(rows, cols int) {
	m.cols = cols
	totalSize := rows * cols
	if totalSize <= cap(m.array) {
		m.array = m.array[:totalSize]
		for i := range m.array {
			m.array[i] = 0
		}
	} else {
		m.array = make([]float64, totalSize)
	}
}

func (m *float64Matrix) rowView(row int) []float64 {
	offset := row * m.cols
	return m.array[offset : offset+m.cols]
}

type hmmMatrices struct {
	match, insertion, deletion float64Matrix
}

var hmmMatricesPool = sync.Pool{New: func() interface{} { return new(hmmMatrices) }}

func getHMMMatrices() *hmmMatrices {
	return hmmMatricesPool.Get().(*hmmMatrices)
}

func putHMMMatrices(p *hmmMatrices) {
	hmmMatricesPool.Put(p)
}

const parallelEnsureSizeThreshold = 1 << 16

func (p *hmmMatrices) ensureSize(readBases, templateBases int) {
	if readBases*templateBases < parallelEnsureSizeThreshold {
		p.match.ensureSize(readBases, templateBases)
		p.insertion.ensureSize(readBases, templateBases)
		p.deletion.ensureSize(readBases, templateBases)
		return
	}
	parallel.Do(
		func() { p.match.ensureSize(readBases, templateBases) },
		func() { p.insertion.ensureSize(readBases, templateBases) },
		func() { p.deletion.ensureSize(readBases, templateBases) },
	)
}
