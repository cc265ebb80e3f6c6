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

// Package complex builds and scores the hypothesis space of complex
// loci: regions where the candidate alleles differ from the reference,
// or from each other, by more than a single base substitution.
package complex

import (
	"fmt"
	"strings"

	"github.com/exascience/elcomplex/allpaths"
	"github.com/exascience/elcomplex/kappa"
)

// DiploidPriorStrategy selects how diploid priors are derived from the
// transition matrix.
type DiploidPriorStrategy int

const (
	// DiploidPriorsNew uses the most likely mutation path from the
	// reference to each heterozygous pair.
	DiploidPriorsNew DiploidPriorStrategy = iota
	// DiploidPriorsLegacy multiplies the haploid priors of both alleles.
	DiploidPriorsLegacy
)

func (s DiploidPriorStrategy) String() string {
	switch s {
	case DiploidPriorsNew:
		return "new"
	case DiploidPriorsLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("DiploidPriorStrategy(%d)", int(s))
	}
}

// ParseDiploidPriorStrategy parses the name of a diploid prior strategy.
func ParseDiploidPriorStrategy(name string) (DiploidPriorStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "new", "":
		return DiploidPriorsNew, nil
	case "legacy":
		return DiploidPriorsLegacy, nil
	default:
		return 0, fmt.Errorf("unknown diploid prior strategy %q", name)
	}
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (s *DiploidPriorStrategy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	strategy, err := ParseDiploidPriorStrategy(name)
	if err != nil {
		return err
	}
	*s = strategy
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (s DiploidPriorStrategy) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// IndelParams configures the indel length model used for evidence that
// is only known over the locus.
type IndelParams struct {
	InsertionRate    float64   `yaml:"insertion-rate"`
	InsertionLengths []float64 `yaml:"insertion-lengths"`
	DeletionRate     float64   `yaml:"deletion-rate"`
	DeletionLengths  []float64 `yaml:"deletion-lengths"`
	Decay            float64   `yaml:"decay"`
}

// Model creates the indel length model.
func (p IndelParams) Model() (*kappa.Model, error) {
	return kappa.New(p.InsertionRate, p.InsertionLengths, p.DeletionRate, p.DeletionLengths, p.Decay)
}

// Params are the calling parameters for complex loci. They are immutable
// once constructed and shared by all loci of a run.
type Params struct {
	// Prune enables pruning of weakly supported alleles.
	Prune bool `yaml:"prune"`
	// PruneDivisor determines the support cutoff as a fraction of the
	// support of the best allele.
	PruneDivisor float64 `yaml:"prune-divisor"`
	// MinRetainedHypotheses is the number of top alleles whose support
	// raises the cutoff when coverage allows it.
	MinRetainedHypotheses int `yaml:"min-retained-hypotheses"`
	// CoverageMultiplier is the minimum average support per allele for
	// the cutoff to be raised.
	CoverageMultiplier float64 `yaml:"coverage-multiplier"`
	// MaxHypotheses caps the number of alleles taken from evidence.
	MaxHypotheses int `yaml:"max-hypotheses"`
	// AmbiguityThreshold is the largest map error of evidence that may
	// contribute an allele.
	AmbiguityThreshold float64 `yaml:"ambiguity-threshold"`

	DiploidPriors DiploidPriorStrategy `yaml:"diploid-priors"`

	// AdjustPriors reweights priors by population allele frequencies.
	AdjustPriors           bool               `yaml:"adjust-priors"`
	AlleleFrequencies      map[string]float64 `yaml:"allele-frequencies"`
	DefaultAlleleFrequency float64            `yaml:"default-allele-frequency"`
	HetPenalty             float64            `yaml:"het-penalty"`

	// MinTemplateWindow is the smallest flank used to compute
	// transitions between alleles.
	MinTemplateWindow int `yaml:"min-template-window"`
	// TransitionModel is the error model used to compare alleles.
	TransitionModel allpaths.Params `yaml:"transition-model"`

	// CGHandling scores reads of the Complete Genomics platform per arm.
	CGHandling bool `yaml:"cg-handling"`
	// Parallel makes evidence scoring use private scorers instead of
	// the shared scorer cache.
	Parallel bool `yaml:"parallel"`

	Indels IndelParams `yaml:"indels"`

	DefaultErrorModel allpaths.Params            `yaml:"default-error-model"`
	ErrorModels       map[string]allpaths.Params `yaml:"error-models"`
}

// DefaultParams returns the default calling parameters.
func DefaultParams() Params {
	return Params{
		Prune:                  true,
		PruneDivisor:           10,
		MinRetainedHypotheses:  4,
		CoverageMultiplier:     3,
		MaxHypotheses:          6,
		AmbiguityThreshold:     0.1,
		DiploidPriors:          DiploidPriorsNew,
		DefaultAlleleFrequency: 0.001,
		HetPenalty:             1,
		MinTemplateWindow:      5,
		TransitionModel:        allpaths.DefaultParams(),
		Indels: IndelParams{
			InsertionRate:    0.0002,
			InsertionLengths: []float64{0, 0.6, 0.2, 0.1, 0.05, 0.05},
			DeletionRate:     0.0002,
			DeletionLengths:  []float64{0, 0.6, 0.2, 0.1, 0.05, 0.05},
			Decay:            0.5,
		},
		DefaultErrorModel: allpaths.DefaultParams(),
	}
}

// Validate checks the parameters for consistency.
func (p *Params) Validate() error {
	if p.PruneDivisor <= 0 {
		return fmt.Errorf("prune divisor %v must be positive", p.PruneDivisor)
	}
	if p.MinRetainedHypotheses < 1 {
		return fmt.Errorf("min retained hypotheses %v must be at least 1", p.MinRetainedHypotheses)
	}
	if p.CoverageMultiplier < 0 {
		return fmt.Errorf("negative coverage multiplier %v", p.CoverageMultiplier)
	}
	if p.MaxHypotheses < 1 {
		return fmt.Errorf("max hypotheses %v must be at least 1", p.MaxHypotheses)
	}
	if p.AmbiguityThreshold < 0 || p.AmbiguityThreshold > 1 {
		return fmt.Errorf("ambiguity threshold %v out of range [0,1]", p.AmbiguityThreshold)
	}
	if p.DiploidPriors != DiploidPriorsNew && p.DiploidPriors != DiploidPriorsLegacy {
		return fmt.Errorf("invalid diploid prior strategy %v", p.DiploidPriors)
	}
	if p.DefaultAlleleFrequency < 0 || p.DefaultAlleleFrequency > 1 {
		return fmt.Errorf("default allele frequency %v out of range [0,1]", p.DefaultAlleleFrequency)
	}
	for allele, f := range p.AlleleFrequencies {
		if f < 0 || f > 1 {
			return fmt.Errorf("allele frequency %v of %q out of range [0,1]", f, allele)
		}
	}
	if p.HetPenalty <= 0 {
		return fmt.Errorf("het penalty %v must be positive", p.HetPenalty)
	}
	if p.MinTemplateWindow < 0 {
		return fmt.Errorf("negative min template window %v", p.MinTemplateWindow)
	}
	if err := p.TransitionModel.Validate(); err != nil {
		return fmt.Errorf("transition model: %w", err)
	}
	if err := p.DefaultErrorModel.Validate(); err != nil {
		return fmt.Errorf("default error model: %w", err)
	}
	for rg, em := range p.ErrorModels {
		if err := em.Validate(); err != nil {
			return fmt.Errorf("error model of read group %v: %w", rg, err)
		}
	}
	if _, err := p.Indels.Model(); err != nil {
		return fmt.Errorf("indel model: %w", err)
	}
	return nil
}

// ErrorModel returns the error model of the given read group.
func (p *Params) ErrorModel(readGroup string) allpaths.Params {
	if em, ok := p.ErrorModels[readGroup]; ok {
		return em
	}
	return p.DefaultErrorModel
}
