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

// Package kappa implements the indel length model and the transform
// probability built on top of it.
//
// The indel length model assigns a prior to every net length change i
// between a hypothesis and the evidence observed for it: pi(0) is the
// probability that no indel happened, pi(i) for i > 0 the probability of
// an insertion of length i, and pi(i) for i < 0 the probability of a
// deletion of length -i. Beyond the empirical length tables the
// distribution decays geometrically.
package kappa

import (
	"fmt"
	"log"
	"math"

	"github.com/exascience/elcomplex/internal"
)

// Kappa is the interface shared by the indel length model and its
// memoizing wrapper.
type Kappa interface {
	// Pi is the prior for a net length change of i.
	Pi(i int) float64
	// PiSum is the sum of Pi(j) for all j >= i.
	PiSum(i int) float64
	// Kappa is the probability that evidence of length m arose from a
	// hypothesis of length l.
	Kappa(m, l int) float64
}

const distributionTolerance = 1e-6

// Model is an immutable indel length model.
type Model struct {
	insRate, delRate float64
	insDist, delDist []float64
	decay            float64
	noIndel          float64

	insEdge, delEdge float64
	// insSuffix[i] is the sum of the tabulated insertion priors from i
	// up to the end of the table.
	insSuffix []float64
	// delPrefix[k] is the sum of the tabulated deletion priors for
	// lengths 1..k.
	delPrefix []float64
}

func checkDistribution(name string, dist []float64) error {
	if len(dist) < 2 {
		return fmt.Errorf("%v length distribution needs at least one non-zero length, got %v entries", name, len(dist))
	}
	if dist[0] != 0 {
		return fmt.Errorf("%v length distribution must exclude length 0, got %v", name, dist[0])
	}
	var sum float64
	for i, p := range dist {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("%v length distribution has invalid entry %v at index %v", name, p, i)
		}
		sum += p
	}
	if math.Abs(sum-1) > distributionTolerance {
		return fmt.Errorf("%v length distribution sums to %v instead of 1", name, sum)
	}
	return nil
}

// New creates an indel length model from the insertion and deletion
// event rates, their empirical length distributions, and the geometric
// decay used to extrapolate beyond the end of the distributions.
//
// The distributions are indexed by length; index 0 must be 0 and the
// entries must sum to 1.
func New(insRate float64, insDist []float64, delRate float64, delDist []float64, decay float64) (*Model, error) {
	if insRate < 0 || delRate < 0 || insRate+delRate > 1 {
		return nil, fmt.Errorf("invalid indel rates: insertion %v, deletion %v", insRate, delRate)
	}
	if decay < 0 || decay >= 1 {
		return nil, fmt.Errorf("indel decay %v out of range [0,1)", decay)
	}
	if err := checkDistribution("insertion", insDist); err != nil {
		return nil, err
	}
	if err := checkDistribution("deletion", delDist); err != nil {
		return nil, err
	}
	m := &Model{
		insRate: insRate,
		delRate: delRate,
		insDist: append([]float64(nil), insDist...),
		delDist: append([]float64(nil), delDist...),
		decay:   decay,
		noIndel: 1 - insRate - delRate,
		insEdge: insRate * insDist[len(insDist)-1],
		delEdge: delRate * delDist[len(delDist)-1],
	}
	m.insSuffix = make([]float64, len(insDist)+1)
	for i := len(insDist) - 1; i >= 1; i-- {
		m.insSuffix[i] = m.insSuffix[i+1] + insRate*insDist[i]
	}
	m.delPrefix = make([]float64, len(delDist))
	for k := 1; k < len(delDist); k++ {
		m.delPrefix[k] = m.delPrefix[k-1] + delRate*delDist[k]
	}
	return m, nil
}

// geometricTail is the sum of edge*decay^n for all n >= k.
func (m *Model) geometricTail(edge float64, k int) float64 {
	if m.decay == 0 {
		return 0
	}
	return edge * math.Pow(m.decay, float64(k)) / (1 - m.decay)
}

// geometricRange is the sum of edge*decay^n for n in 1..k.
func (m *Model) geometricRange(edge float64, k int) float64 {
	if m.decay == 0 || k <= 0 {
		return 0
	}
	return edge * m.decay * (1 - math.Pow(m.decay, float64(k))) / (1 - m.decay)
}

// Pi implements the Kappa interface.
func (m *Model) Pi(i int) float64 {
	switch {
	case i == 0:
		return m.noIndel
	case i > 0:
		if last := len(m.insDist) - 1; i > last {
			return m.insEdge * math.Pow(m.decay, float64(i-last))
		}
		return m.insRate * m.insDist[i]
	default:
		k := -i
		if last := len(m.delDist) - 1; k > last {
			return m.delEdge * math.Pow(m.decay, float64(k-last))
		}
		return m.delRate * m.delDist[k]
	}
}

// PiSum implements the Kappa interface.
func (m *Model) PiSum(i int) float64 {
	last := len(m.insDist) - 1
	if i > last {
		return m.geometricTail(m.insEdge, i-last)
	}
	if i >= 1 {
		return m.insSuffix[i] + m.geometricTail(m.insEdge, 1)
	}
	sum := m.insSuffix[1] + m.geometricTail(m.insEdge, 1) + m.noIndel
	if i == 0 {
		return sum
	}
	k := -i
	if lastDel := len(m.delDist) - 1; k > lastDel {
		return sum + m.delPrefix[lastDel] + m.geometricRange(m.delEdge, k-lastDel)
	}
	return sum + m.delPrefix[k]
}

func checkKappa(m, l int, result float64) float64 {
	if internal.PedanticMode && (result < 0 || result > 1 || math.IsNaN(result)) {
		log.Panicf("kappa(%v, %v) = %v is not a probability", m, l, result)
	}
	return result
}

func kappa(k Kappa, m, l int) float64 {
	if m < 0 || l < 0 {
		log.Panicf("kappa arguments out of range: m=%v l=%v", m, l)
	}
	return checkKappa(m, l, k.Pi(m-l)/k.PiSum(-l))
}

// Kappa implements the Kappa interface.
func (m *Model) Kappa(evidenceLength, hypothesisLength int) float64 {
	return kappa(m, evidenceLength, hypothesisLength)
}

// Memo caches Pi and PiSum of another Kappa for all arguments within a
// fixed radius around 0. It is filled at construction and immutable
// afterwards, so it can be shared between goroutines.
type Memo struct {
	kappa  Kappa
	radius int
	pi     []float64
	piSum  []float64
}

// DefaultMemoRadius covers the length differences that occur in
// practice at complex loci.
const DefaultMemoRadius = 256

// NewMemo creates a memoizing wrapper for k.
func NewMemo(k Kappa, radius int) *Memo {
	if radius < 0 {
		log.Panicf("negative memo radius %v", radius)
	}
	memo := &Memo{
		kappa:  k,
		radius: radius,
		pi:     make([]float64, 2*radius+1),
		piSum:  make([]float64, 2*radius+1),
	}
	for i := -radius; i <= radius; i++ {
		memo.pi[i+radius] = k.Pi(i)
		memo.piSum[i+radius] = k.PiSum(i)
	}
	return memo
}

// Pi implements the Kappa interface.
func (memo *Memo) Pi(i int) float64 {
	if index := i + memo.radius; index >= 0 && index < len(memo.pi) {
		return memo.pi[index]
	}
	return memo.kappa.Pi(i)
}

// PiSum implements the Kappa interface.
func (memo *Memo) PiSum(i int) float64 {
	if index := i + memo.radius; index >= 0 && index < len(memo.piSum) {
		return memo.piSum[index]
	}
	return memo.kappa.PiSum(i)
}

// Kappa implements the Kappa interface.
func (memo *Memo) Kappa(m, l int) float64 {
	return kappa(memo, m, l)
}

// Flatten combines a length distribution and the rate of the event it
// describes into a single distribution where index 0 is the probability
// that the event does not happen.
func Flatten(dist []float64, rate float64) []float64 {
	result := make([]float64, len(dist))
	if len(result) == 0 {
		return result
	}
	result[0] = 1 - rate
	for i := 1; i < len(dist); i++ {
		result[i] = dist[i] * rate
	}
	return result
}

// UnFlatten is the inverse of Flatten. It recovers the event rate and
// the length distribution from a flattened distribution.
func UnFlatten(flat []float64) (dist []float64, rate float64) {
	dist = make([]float64, len(flat))
	if len(flat) == 0 {
		return dist, 0
	}
	rate = 1 - flat[0]
	if rate <= 0 {
		return dist, 0
	}
	for i := 1; i < len(flat); i++ {
		dist[i] = flat[i] / rate
	}
	return dist, rate
}
