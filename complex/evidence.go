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
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/exascience/elcomplex/allpaths"
	"github.com/exascience/elcomplex/arith"
	"github.com/exascience/elcomplex/kappa"
	"github.com/exascience/elcomplex/model"
)

// Platform is a sequencing platform as far as scoring is concerned.
type Platform int

const (
	// PlatformGeneric is any platform without dedicated handling.
	PlatformGeneric Platform = iota
	// PlatformIllumina reads are scored without their soft clips.
	PlatformIllumina
	// PlatformCompleteGenomics reads are scored per arm.
	PlatformCompleteGenomics
)

var upper = cases.Upper(language.Und)

// ParsePlatform interprets the PL tag of a read group.
func ParsePlatform(name string) Platform {
	switch upper.String(strings.TrimSpace(name)) {
	case "ILLUMINA":
		return PlatformIllumina
	case "COMPLETE", "COMPLETEGENOMICS", "CG":
		return PlatformCompleteGenomics
	default:
		return PlatformGeneric
	}
}

const (
	minGenericShift = 7
	// Unresolved is the best hypothesis of evidence that supports no
	// allele with a probability above one half.
	Unresolved = -1
)

// Context is the state shared between the evidence scorers of a run.
type Context struct {
	Params *Params

	// Cache shares scorers between loci. It must be nil when evidence is
	// scored concurrently.
	Cache *allpaths.Cache

	Tau *kappa.TransformProbability
}

// NewContext creates the shared scoring state for the given parameters.
func NewContext(params *Params) (*Context, error) {
	indels, err := params.Indels.Model()
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		Params: params,
		Tau:    kappa.NewTransformProbability(kappa.NewMemo(indels, kappa.DefaultMemoRadius)),
	}
	if !params.Parallel {
		ctx.Cache = allpaths.NewCache()
	}
	return ctx, nil
}

// EvidenceScorer scores read evidence against the alleles of a locus.
type EvidenceScorer struct {
	hypotheses *Hypotheses
	template   *Template
	ctx        *Context
}

// NewEvidenceScorer creates a scorer for the given hypotheses.
func NewEvidenceScorer(hypotheses *Hypotheses, ctx *Context) *EvidenceScorer {
	return &EvidenceScorer{hypotheses: hypotheses, template: hypotheses.Template(), ctx: ctx}
}

// Evidence is the support of one read for the alleles of a locus.
type Evidence struct {
	match model.Match
	probs []float64
	best  int
	err   float64

	leftOverhang, rightOverhang int
}

// Match returns the read evidence.
func (e *Evidence) Match() model.Match { return e.match }

// Probability returns the possibility that the read came from allele i.
func (e *Evidence) Probability(i int) float64 { return e.probs[i] }

// Best returns the best supported allele, or Unresolved.
func (e *Evidence) Best() int { return e.best }

// Error is the probability that the read does not support its best
// allele.
func (e *Evidence) Error() float64 { return e.err }

// MapError is the probability that the read is mismapped.
func (e *Evidence) MapError() float64 { return e.match.MapError() }

// Reverse reports whether the read aligns to the reverse strand.
func (e *Evidence) Reverse() bool {
	r := e.match.Record()
	return r != nil && r.Reverse()
}

// Paired reports whether the read is part of a pair.
func (e *Evidence) Paired() bool {
	r := e.match.Record()
	return r != nil && r.Paired()
}

// Mated reports whether both reads of the pair are properly mapped.
func (e *Evidence) Mated() bool {
	r := e.match.Record()
	return r != nil && r.Mated()
}

// Overhangs returns the number of aligned bases of the read on either
// side of the locus, soft clips excluded.
func (e *Evidence) Overhangs() (left, right int) {
	return e.leftOverhang, e.rightOverhang
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// envScorer returns a function that scores environments with the given
// error model. Sequential runs share a cached scorer; parallel runs score
// every environment with a private pooled scorer.
func (s *EvidenceScorer) envScorer(em allpaths.Params) func(allpaths.Env) float64 {
	if s.ctx.Cache != nil && !s.ctx.Params.Parallel {
		scorer := s.ctx.Cache.Scorer(em)
		return func(env allpaths.Env) float64 {
			scorer.SetEnv(env)
			return scorer.TotalScoreLn()
		}
	}
	return func(env allpaths.Env) float64 {
		return allpaths.ScoreLn(em, env)
	}
}

// scoreRecordLn scores the read of a record against allele.
func (s *EvidenceScorer) scoreRecordLn(score func(allpaths.Env) float64, em allpaths.Params, record *model.Record, platform Platform, allele string) float64 {
	t := s.template
	diff := absInt(len(allele) - (t.End() - t.Start()))
	var shift int
	if platform == PlatformIllumina {
		shift = record.IndelLength() + diff + 1
	} else {
		shift = len(record.Seq) / 10
		if shift < minGenericShift {
			shift = minGenericShift
		}
		shift += diff
	}
	readStart := record.ReferencePosition(0)
	readEnd := record.ReferencePosition(len(record.Seq))
	from := readStart
	if t.Start() < from {
		from = t.Start()
	}
	from -= shift
	if from < 0 {
		from = 0
	}
	to := readEnd
	if t.End() > to {
		to = t.End()
	}
	to += shift
	template := t.Replace(allele, from, to)

	switch {
	case platform == PlatformIllumina:
		return score(allpaths.NewSoftClipEnv(record, template, from, shift, em))
	case platform == PlatformCompleteGenomics && s.ctx.Params.CGHandling:
		arms := allpaths.NewCGEnvs(record, template, from, shift, em)
		return score(arms[0]) + score(arms[1])
	default:
		return score(allpaths.NewRecordEnv(record, template, from, shift, em))
	}
}

// Score scores one read against every allele of the locus. Reads that
// are certainly mismapped contribute nothing and yield false. Reads that
// no allele can explain are unresolved with error 1 and equal support
// for every allele.
func (s *EvidenceScorer) Score(match model.Match) (*Evidence, bool) {
	mapError := match.MapError()
	if mapError >= 1 || math.IsNaN(mapError) {
		return nil, false
	}
	d := s.hypotheses.ComplexDescription()
	a := s.hypotheses.Arithmetic()
	n := d.Size()
	scores := make([]float64, n)

	evidence := &Evidence{match: match, best: Unresolved, err: 1}
	if record := match.Record(); record != nil {
		platform := ParsePlatform(record.Platform)
		em := s.ctx.Params.ErrorModel(record.ReadGroup)
		score := s.envScorer(em)
		for i := 0; i < n; i++ {
			scores[i] = s.scoreRecordLn(score, em, record, platform, d.Name(i))
		}
		readStart := record.ReferencePosition(0)
		readEnd := record.ReferencePosition(len(record.Seq))
		lead, trail := record.SoftClips()
		if left := s.template.Start() - readStart - lead; left > 0 {
			evidence.leftOverhang = left
		}
		if right := readEnd - trail - s.template.End(); right > 0 {
			evidence.rightOverhang = right
		}
	} else {
		for i := 0; i < n; i++ {
			scores[i] = math.Log(s.ctx.Tau.Tau(match, d.Name(i)))
		}
	}

	sum := math.Inf(-1)
	for _, score := range scores {
		sum = arith.Log.Add(sum, score)
	}
	evidence.probs = make([]float64, n)
	if math.IsInf(sum, -1) || math.IsNaN(sum) {
		uniform := a.Prob2Poss(1 / float64(n))
		for i := range evidence.probs {
			evidence.probs[i] = uniform
		}
		return evidence, true
	}

	background := mapError / float64(n)
	bestProb := -1.0
	for i, score := range scores {
		p := (1-mapError)*math.Exp(score-sum) + background
		evidence.probs[i] = a.Prob2Poss(p)
		if p > bestProb {
			bestProb = p
			evidence.best = i
		}
	}
	evidence.err = 1 - bestProb
	if bestProb <= 0.5 {
		evidence.best = Unresolved
	}
	return evidence, true
}

// Posteriors combines the priors of the hypotheses with the evidence
// and returns the normalized posterior possibility of every hypothesis.
func Posteriors(h *Hypotheses, evidence []*Evidence) []float64 {
	a := h.Arithmetic()
	code := h.Code()
	half := a.Prob2Poss(0.5)
	result := make([]float64, h.Size())
	for k := range result {
		p := h.Prior(k)
		x, y := code.A(k), code.B(k)
		for _, e := range evidence {
			if x == y {
				p = a.Multiply(p, e.Probability(x))
			} else {
				p = a.Multiply(p, a.Multiply(half, a.Add(e.Probability(x), e.Probability(y))))
			}
		}
		result[k] = p
	}
	total := a.Sum(result)
	if total == a.Zero() {
		return result
	}
	for k, p := range result {
		result[k] = a.Divide(p, total)
	}
	return result
}
