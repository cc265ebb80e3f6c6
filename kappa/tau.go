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

package kappa

import (
	"log"
	"math"

	"github.com/exascience/pargo/sync"

	"github.com/exascience/elcomplex/internal"
	"github.com/exascience/elcomplex/model"
)

const (
	// errors at or above this probability carry no information
	uninformativeError = 0.75
	unknownBase        = 0.25

	qRelativeTolerance = 1e-5
	qMaxTerms          = 1 << 16
)

// TransformProbability estimates the probability that a hypothesis
// allele produced the bases observed in a read, allowing for indels
// between the two according to an indel length model.
type TransformProbability struct {
	kappa Kappa
	q     *sync.Map
}

// NewTransformProbability creates a transform probability on top of the
// given indel length model.
func NewTransformProbability(k Kappa) *TransformProbability {
	return &TransformProbability{kappa: k, q: sync.NewMap(0)}
}

// Kappa returns the indel length model.
func (t *TransformProbability) Kappa() Kappa {
	return t.kappa
}

func baseProbability(match model.Match, i int, hyp byte) float64 {
	q := match.ErrorProbability(i)
	if q >= uninformativeError {
		return unknownBase
	}
	b := match.Base(i)
	if b == 'N' || hyp == 'N' {
		return unknownBase
	}
	if b == hyp {
		return 1 - q
	}
	return q / 3
}

// leftProducts returns p[d], the product of the probabilities that the
// first d bases of the match agree with the first d bases of hyp.
func leftProducts(match model.Match, hyp string, n int) []float64 {
	p := make([]float64, n+1)
	p[0] = 1
	for d := 1; d <= n; d++ {
		p[d] = p[d-1] * baseProbability(match, d-1, hyp[d-1])
	}
	return p
}

// rightProducts returns p[d], the product of the probabilities that the
// last d bases of the match agree with the last d bases of hyp.
func rightProducts(match model.Match, hyp string, n int) []float64 {
	p := make([]float64, n+1)
	p[0] = 1
	m, l := match.Length(), len(hyp)
	for d := 1; d <= n; d++ {
		p[d] = p[d-1] * baseProbability(match, m-d, hyp[l-d])
	}
	return p
}

// tau is the probability that hyp produced the match when both ends of
// the match are anchored.
func (t *TransformProbability) tau(match model.Match, hyp string) float64 {
	m, l := match.Length(), len(hyp)
	n := m
	if l < m {
		n = l
	}
	left := leftProducts(match, hyp, n)
	right := rightProducts(match, hyp, n)
	var sum float64
	for d := 0; d <= n; d++ {
		sum += left[d] * right[n-d]
	}
	k := t.kappa.Kappa(m, l)
	if l >= m {
		return sum * k / float64(m+1)
	}
	return sum * k * math.Pow(4, float64(l-m)) / float64(l+1)
}

// Tau estimates the probability that hyp produced the match. Matches
// that are not anchored on both flanks are compared against all
// truncations of hyp that are consistent with their anchoring.
func (t *TransformProbability) Tau(match model.Match, hyp string) float64 {
	l := len(hyp)
	var result float64
	switch left, right := match.FixedLeft(), match.FixedRight(); {
	case left && right:
		result = t.tau(match, hyp)
	case left:
		var sum float64
		for k := 0; k <= l; k++ {
			sum += t.tau(match, hyp[:k])
		}
		result = sum / float64(l+1)
	case right:
		var sum float64
		for k := 0; k <= l; k++ {
			sum += t.tau(match, hyp[k:])
		}
		result = sum / float64(l+1)
	default:
		if l == 0 {
			result = t.tau(match, hyp)
			break
		}
		var sum float64
		for i := 0; i < l; i++ {
			for j := i + 1; j <= l; j++ {
				sum += t.tau(match, hyp[i:j])
			}
		}
		result = sum / float64(l*(l+1)/2)
	}
	if internal.PedanticMode && (result < 0 || result > 1 || math.IsNaN(result)) {
		log.Panicf("tau of %v against %q = %v is not a probability", model.MatchString(match), hyp, result)
	}
	return result
}

type hypothesisLength int

func (l hypothesisLength) Hash() uint64 {
	return internal.IntHash(int(l))
}

// Q is the sum of kappa(m, l)^2 * 4^-m over all evidence lengths m. It
// is the expected tau of a random match against itself and is memoized
// per hypothesis length.
func (t *TransformProbability) Q(l int) float64 {
	if l < 0 {
		log.Panicf("negative hypothesis length %v", l)
	}
	key := hypothesisLength(l)
	if value, ok := t.q.Load(key); ok {
		return value.(float64)
	}
	value, _ := t.q.LoadOrStore(key, t.computeQ(l))
	return value.(float64)
}

func (t *TransformProbability) computeQ(l int) float64 {
	var sum float64
	scale := 1.0
	for m := 0; m < qMaxTerms; m++ {
		k := t.kappa.Kappa(m, l)
		increment := k * k * scale
		sum += increment
		if m >= l && increment < qRelativeTolerance*sum {
			return sum
		}
		scale /= 4
	}
	log.Panicf("q(%v) did not converge after %v terms", l, qMaxTerms)
	return sum
}
