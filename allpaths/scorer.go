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
	"log"
	"math"

	"github.com/exascience/elcomplex/internal"
)

var (
	initialCondition   = math.Pow(2, 1020)
	initialConditionLn = math.Log(initialCondition)
	rescaleThreshold   = math.Pow(2, -500)
	rescaleFactor      = math.Pow(2, 500)
	rescaleFactorLn    = 500 * math.Ln2
)

// Scorer computes the all-paths score of a read against a template.
//
// A Scorer keeps scratch matrices between calls and must not be used by
// more than one goroutine at a time.
type Scorer struct {
	params   Params
	matrices *hmmMatrices
	pooled   bool
	read     []byte
	gapOpen  []float64
	totalLn  float64
}

// NewScorer creates a scorer for the given error model.
func NewScorer(params Params) *Scorer {
	return &Scorer{params: params, matrices: new(hmmMatrices), totalLn: math.Inf(-1)}
}

// NewPooledScorer creates a scorer whose scratch matrices are taken from
// a pool shared by all goroutines. Call Release when done.
func NewPooledScorer(params Params) *Scorer {
	return &Scorer{params: params, matrices: getHMMMatrices(), pooled: true, totalLn: math.Inf(-1)}
}

// Release returns the scratch matrices of a pooled scorer.
func (s *Scorer) Release() {
	if s.pooled && s.matrices != nil {
		putHMMMatrices(s.matrices)
		s.matrices = nil
	}
}

// Params returns the error model of the scorer.
func (s *Scorer) Params() Params {
	return s.params
}

// TotalScoreLn returns the natural logarithm of the probability of the
// read of the most recent environment, summed over all alignments
// against its template.
func (s *Scorer) TotalScoreLn() float64 {
	return s.totalLn
}

func band(expected, shift, templateLength int) (lo, hi int) {
	lo, hi = expected-shift, expected+shift+1
	if lo < 0 {
		lo = 0
	}
	if hi > templateLength {
		hi = templateLength
	}
	return
}

func (s *Scorer) readString(env Env) string {
	if basic, ok := env.(*BasicEnv); ok {
		return basic.read
	}
	s.read = s.read[:0]
	for i := 0; i < env.ReadLength(); i++ {
		s.read = append(s.read, env.ReadBase(i))
	}
	return string(s.read)
}

// SetEnv scores the read of env against its template. The result is
// available through TotalScoreLn.
func (s *Scorer) SetEnv(env Env) {
	if s.matrices == nil {
		log.Panic("scorer used after Release")
	}
	n, m := env.ReadLength(), env.TemplateLength()
	if n == 0 {
		s.totalLn = 0
		return
	}
	s.totalLn = math.Inf(-1)
	if m == 0 {
		return
	}
	shift, start := env.MaxShift(), env.Start()
	s.gapOpen = s.params.gapOpens(s.readString(env), s.gapOpen)
	gapExtend := s.params.GapExtend
	indelToMatch := 1 - gapExtend

	p := s.matrices
	p.ensureSize(n+1, m+1)

	initialValue := initialCondition / float64(2*shift+1)
	pDeletion0 := p.deletion.rowView(0)
	lo, hi := band(start, shift, m)
	for j := lo; j < hi; j++ {
		pDeletion0[j] = initialValue
	}

	var scaleLn float64
	for i := 0; i < n; i++ {
		lo, hi := band(start+i, shift, m)
		if lo >= hi {
			return
		}
		x := env.ReadBase(i)
		e := env.ErrorProbability(i)
		matchPrior := 1 - e
		nonMatchPrior := e / 3
		gapOpen := s.gapOpen[i]
		matchToMatch := 1 - 2*gapOpen

		pMatchI := p.match.rowView(i)
		pMatchI1 := p.match.rowView(i + 1)
		pInsertionI := p.insertion.rowView(i)
		pInsertionI1 := p.insertion.rowView(i + 1)
		pDeletionI := p.deletion.rowView(i)
		pDeletionI1 := p.deletion.rowView(i + 1)

		var rowMax float64
		for j := lo; j < hi; j++ {
			y := env.TemplateBase(j)
			var prior float64
			if x == y || x == 'N' || y == 'N' {
				prior = matchPrior
			} else {
				prior = nonMatchPrior
			}
			pMatchI1[j+1] = prior * (pMatchI[j]*matchToMatch +
				pInsertionI[j]*indelToMatch +
				pDeletionI[j]*indelToMatch)
			pInsertionI1[j+1] = pMatchI[j+1]*gapOpen + pInsertionI[j+1]*gapExtend
			pDeletionI1[j+1] = pMatchI1[j]*gapOpen + pDeletionI1[j]*gapExtend
			rowMax = math.Max(rowMax, math.Max(pMatchI1[j+1], math.Max(pInsertionI1[j+1], pDeletionI1[j+1])))
		}
		if rowMax == 0 {
			return
		}
		if rowMax < rescaleThreshold {
			for j := lo + 1; j <= hi; j++ {
				pMatchI1[j] *= rescaleFactor
				pInsertionI1[j] *= rescaleFactor
				pDeletionI1[j] *= rescaleFactor
			}
			scaleLn += rescaleFactorLn
		}
	}

	var sum float64
	pMatchEnd := p.match.rowView(n)
	pInsertionEnd := p.insertion.rowView(n)
	for j := 1; j <= m; j++ {
		sum += pMatchEnd[j] + pInsertionEnd[j]
	}
	s.totalLn = math.Log(sum) - initialConditionLn - scaleLn
	if internal.PedanticMode && (s.totalLn > 1e-9 || math.IsNaN(s.totalLn)) {
		log.Panicf("all-paths score %v is not a log probability", s.totalLn)
	}
}

// ScoreLn scores a single environment with a private pooled scorer. It
// is safe for concurrent use.
func ScoreLn(params Params, env Env) float64 {
	s := NewPooledScorer(params)
	defer s.Release()
	s.SetEnv(env)
	return s.TotalScoreLn()
}
