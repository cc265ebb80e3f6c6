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

package cmd

import (
	"fmt"
	"log"
	"math"

	"github.com/biogo/hts/sam"
	"github.com/exascience/pargo/parallel"
	"github.com/urfave/cli/v2"

	"github.com/exascience/elcomplex/arith"
	"github.com/exascience/elcomplex/complex"
	"github.com/exascience/elcomplex/fasta"
	"github.com/exascience/elcomplex/intervals"
	"github.com/exascience/elcomplex/model"
	"github.com/exascience/elcomplex/utils"
	"github.com/exascience/elcomplex/variant"
)

// RecordInput is an alignment record in a loci file.
type RecordInput struct {
	Name      string `yaml:"name"`
	ReadGroup string `yaml:"read-group"`
	Platform  string `yaml:"platform"`
	Flags     uint16 `yaml:"flags"`
	Pos       int    `yaml:"pos"`
	MapQ      byte   `yaml:"mapq"`
	Cigar     string `yaml:"cigar"`
	Seq       string `yaml:"seq"`
	Qual      string `yaml:"qual"`
}

// MatchInput is the evidence of one read in a loci file.
type MatchInput struct {
	Bases      string       `yaml:"bases"`
	Quals      string       `yaml:"quals"`
	FixedLeft  bool         `yaml:"fixed-left"`
	FixedRight bool         `yaml:"fixed-right"`
	MapQ       *byte        `yaml:"mapq"`
	Record     *RecordInput `yaml:"record,omitempty"`
}

// defaultMatchMapQ is used for matches that specify no mapping quality.
const defaultMatchMapQ = 60

// LocusInput is a complex locus to be called.
type LocusInput struct {
	variant.Locus `yaml:",inline"`
	Sample        string       `yaml:"sample"`
	Haploid       bool         `yaml:"haploid"`
	Mandatory     []string     `yaml:"mandatory,flow"`
	Matches       []MatchInput `yaml:"matches"`
}

// LociInput is the contents of a loci file.
type LociInput struct {
	Loci []LocusInput `yaml:"loci"`
}

func phred33(s string) []byte {
	if s == "" {
		return nil
	}
	quals := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		quals[i] = s[i] - 33
	}
	return quals
}

func normalizeBases(s string) string {
	b := []byte(s)
	for i, c := range b {
		b[i] = fasta.ToUpperAndN(c)
	}
	return string(b)
}

func (r *RecordInput) record() (*model.Record, error) {
	cigar, err := sam.ParseCigar([]byte(r.Cigar))
	if err != nil {
		return nil, fmt.Errorf("read %v: %w", r.Name, err)
	}
	if _, read := cigar.Lengths(); read != len(r.Seq) {
		return nil, fmt.Errorf("read %v: cigar %v does not match %v bases", r.Name, r.Cigar, len(r.Seq))
	}
	qual := phred33(r.Qual)
	if qual != nil && len(qual) != len(r.Seq) {
		return nil, fmt.Errorf("read %v: %v qualities for %v bases", r.Name, len(qual), len(r.Seq))
	}
	return &model.Record{
		Name:      r.Name,
		ReadGroup: utils.Canonical(r.ReadGroup),
		Platform:  utils.Canonical(r.Platform),
		Flags:     sam.Flags(r.Flags),
		Pos:       r.Pos,
		MapQ:      r.MapQ,
		Cigar:     cigar,
		Seq:       normalizeBases(r.Seq),
		Qual:      qual,
	}, nil
}

func (m *MatchInput) match() (model.Match, error) {
	quals := phred33(m.Quals)
	if quals != nil && len(quals) != len(m.Bases) {
		return nil, fmt.Errorf("%v qualities for %v bases", len(quals), len(m.Bases))
	}
	var record *model.Record
	if m.Record != nil {
		var err error
		if record, err = m.Record.record(); err != nil {
			return nil, err
		}
	}
	mapq := byte(defaultMatchMapQ)
	if m.MapQ != nil {
		mapq = *m.MapQ
	}
	return model.NewReadMatch(normalizeBases(m.Bases), quals, m.FixedLeft, m.FixedRight, model.MapErrorFromQuality(mapq), record), nil
}

// EvidenceOutput reports how one read was scored.
type EvidenceOutput struct {
	Bases   string  `yaml:"bases"`
	Best    string  `yaml:"best"`
	Error   float64 `yaml:"error"`
	Quality float64 `yaml:"quality"`
}

// LocusOutput is the result of calling a locus.
type LocusOutput struct {
	Locus      variant.Locus      `yaml:"locus"`
	Alleles    []string           `yaml:"alleles,flow"`
	Priors     map[string]float64 `yaml:"priors"`
	Posteriors map[string]float64 `yaml:"posteriors"`
	Best       string             `yaml:"best"`
	Quality    float64            `yaml:"quality"`
	Evidence   []EvidenceOutput   `yaml:"evidence"`
}

// callQuality is the phred-scaled probability that the hypothesis with
// the given ln posterior is wrong.
func callQuality(posteriorLn float64) float64 {
	if posteriorLn > 0 {
		posteriorLn = 0
	}
	return -10 * arith.Log10OneMinusPow10(posteriorLn/math.Ln10)
}

// callLocus builds the hypothesis space of a locus, scores its evidence
// and derives a call from the posteriors.
func callLocus(locus *LocusInput, ref fasta.Reference, ctx *complex.Context) (*LocusOutput, *variant.Variant, error) {
	seq, err := ref.Window(locus.Sequence, locus.Start, locus.End)
	if err != nil {
		return nil, nil, err
	}
	matches := make([]model.Match, len(locus.Matches))
	for i := range locus.Matches {
		if matches[i], err = locus.Matches[i].match(); err != nil {
			return nil, nil, fmt.Errorf("locus %v, match %v: %w", locus.Locus, i, err)
		}
	}

	params := ctx.Params
	template := complex.NewTemplate(seq, locus.Start, locus.End, params)
	mandatory := make([]string, len(locus.Mandatory))
	for i, allele := range locus.Mandatory {
		mandatory[i] = normalizeBases(allele)
	}
	description := complex.NewDescription(template.ReferenceAllele(), matches, mandatory, params)
	if description.Size() == 0 {
		return nil, nil, fmt.Errorf("locus %v has no candidate alleles", locus.Locus)
	}
	template.SetComplexContext(description, arith.Log)
	hypotheses := complex.NewHypotheses(template, locus.Haploid, params)
	scorer := complex.NewEvidenceScorer(hypotheses, ctx)

	a := hypotheses.Arithmetic()
	output := &LocusOutput{
		Locus:      locus.Locus,
		Alleles:    description.Names(),
		Priors:     make(map[string]float64, hypotheses.Size()),
		Posteriors: make(map[string]float64, hypotheses.Size()),
	}
	stats := make(map[string]variant.AlleleStats)
	var evidence []*complex.Evidence
	for _, match := range matches {
		e, ok := scorer.Score(match)
		if !ok {
			continue
		}
		evidence = append(evidence, e)
		eo := EvidenceOutput{
			Bases:   model.MatchString(match),
			Error:   e.Error(),
			Quality: arith.ErrorProbabilityToQuality(e.Error()),
		}
		if best := e.Best(); best != complex.Unresolved {
			eo.Best = description.Name(best)
			s := variant.AlleleStats{Count: 1}
			if e.Reverse() {
				s.Reverse = 1
			} else {
				s.Forward = 1
			}
			stats[eo.Best] = stats[eo.Best].Add(s)
		}
		output.Evidence = append(output.Evidence, eo)
	}

	posteriors := complex.Posteriors(hypotheses, evidence)
	code := hypotheses.Code()
	likelihoods := make(map[string]float64, len(posteriors))
	best := 0
	for k, p := range posteriors {
		name := hypotheses.Name(k)
		output.Priors[name] = a.Poss2Prob(hypotheses.Prior(k))
		output.Posteriors[name] = a.Poss2Prob(p)
		var key string
		if locus.Haploid {
			key = description.Name(code.A(k))
		} else {
			key = variant.GenotypeKey(description.Name(code.A(k)), description.Name(code.B(k)))
		}
		likelihoods[key] = a.Poss2Ln(p) / math.Ln10
		if a.Gt(p, posteriors[best]) {
			best = k
		}
	}
	output.Best = hypotheses.Name(best)
	output.Quality = callQuality(a.Poss2Ln(posteriors[best]))

	call := []string{description.Name(code.A(best))}
	if !locus.Haploid {
		call = append(call, description.Name(code.B(best)))
	}
	sample := locus.Sample
	if sample == "" {
		sample = "sample"
	}
	v := &variant.Variant{
		Locus:   locus.Locus,
		Ref:     template.ReferenceAllele(),
		Alleles: description.Names(),
		Samples: []*variant.Sample{{
			Name:        utils.Canonical(sample),
			Call:        call,
			Stats:       stats,
			Likelihoods: likelihoods,
		}},
	}
	return output, v, nil
}

// warnOverlappingLoci logs loci that touch or overlap other loci. Such
// loci are called independently of each other.
func warnOverlappingLoci(loci []LocusInput) {
	perSequence := make(map[string][]intervals.Interval)
	for i := range loci {
		l := &loci[i].Locus
		perSequence[l.Sequence] = append(perSequence[l.Sequence], intervals.Interval{Start: int32(l.Start), End: int32(l.End), Index: i})
	}
	for _, indices := range intervals.Overlapping(perSequence) {
		for _, i := range indices {
			log.Printf("Warning: locus %v overlaps another locus.", loci[i].Locus)
		}
	}
}

// HypothesesOutput is the contents of the output of the hypotheses
// command.
type HypothesesOutput struct {
	Loci  []*LocusOutput     `yaml:"loci"`
	Calls []*variant.Variant `yaml:"calls"`
}

// Hypotheses implements the elcomplex hypotheses command.
func Hypotheses(c *cli.Context) error {
	params := complex.DefaultParams()
	if filename := c.String("params"); filename != "" {
		if err := readYAML(filename, &params); err != nil {
			return err
		}
	}
	if err := params.Validate(); err != nil {
		return err
	}
	ctx, err := complex.NewContext(&params)
	if err != nil {
		return err
	}

	var ref fasta.Reference
	if err := timedRun(c.Bool("timed"), "Loading reference.", func() (err error) {
		ref, err = fasta.ReadFasta(c.String("reference"))
		return err
	}); err != nil {
		return err
	}
	var loci LociInput
	if err := readYAML(c.String("loci"), &loci); err != nil {
		return err
	}

	warnOverlappingLoci(loci.Loci)

	output := HypothesesOutput{
		Loci:  make([]*LocusOutput, len(loci.Loci)),
		Calls: make([]*variant.Variant, len(loci.Loci)),
	}
	errs := make([]error, len(loci.Loci))
	call := func(i int) {
		output.Loci[i], output.Calls[i], errs[i] = callLocus(&loci.Loci[i], ref, ctx)
	}
	if err := timedRun(c.Bool("timed"), "Calling complex loci.", func() error {
		if params.Parallel {
			parallel.Range(0, len(loci.Loci), 0, func(low, high int) {
				for i := low; i < high; i++ {
					call(i)
				}
			})
		} else {
			for i := range loci.Loci {
				call(i)
			}
		}
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	for _, l := range output.Loci {
		log.Printf("%v: %v", l.Locus, l.Best)
	}
	return writeYAML(c.String("output"), &output)
}

// HypothesesCommand describes the elcomplex hypotheses command.
var HypothesesCommand = &cli.Command{
	Name:  "hypotheses",
	Usage: "build the hypothesis space of complex loci and score their evidence",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "reference",
			Aliases:  []string{"r"},
			Usage:    "reference FASTA file, optionally bgzip-compressed",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "loci",
			Aliases:  []string{"l"},
			Usage:    "YAML file with the loci and their evidence",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "params",
			Aliases: []string{"p"},
			Usage:   "YAML file with calling parameters",
		},
		outputFlag,
	},
	Action: Hypotheses,
}
