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

// Package variant contains the multi-sample call records produced at
// complex loci.
package variant

import (
	"fmt"
	"sort"
	"strings"
)

// DeNovoStatus records whether a call in a descendant sample is
// explained by inheritance.
type DeNovoStatus int

// The de novo statuses.
const (
	Unspecified DeNovoStatus = iota
	IsDeNovo
	NotDeNovo
)

func (s DeNovoStatus) String() string {
	switch s {
	case Unspecified:
		return "unspecified"
	case IsDeNovo:
		return "de-novo"
	case NotDeNovo:
		return "not-de-novo"
	default:
		return fmt.Sprintf("DeNovoStatus(%d)", int(s))
	}
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (s *DeNovoStatus) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "", "unspecified":
		*s = Unspecified
	case "de-novo", "yes":
		*s = IsDeNovo
	case "not-de-novo", "no":
		*s = NotDeNovo
	default:
		return fmt.Errorf("unknown de novo status %q", name)
	}
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (s DeNovoStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Locus is a 0-based half-open range on a reference sequence.
type Locus struct {
	Sequence string `yaml:"sequence"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
}

// Length is the number of reference bases covered by the locus.
func (l Locus) Length() int {
	return l.End - l.Start
}

func (l Locus) String() string {
	return fmt.Sprintf("%v:%v-%v", l.Sequence, l.Start+1, l.End)
}

// AlleleStats is the read support of an allele in a sample.
type AlleleStats struct {
	Count   int `yaml:"count"`
	Forward int `yaml:"forward"`
	Reverse int `yaml:"reverse"`
}

// Add returns the sum of two allele statistics.
func (s AlleleStats) Add(t AlleleStats) AlleleStats {
	return AlleleStats{Count: s.Count + t.Count, Forward: s.Forward + t.Forward, Reverse: s.Reverse + t.Reverse}
}

// Sample is the call of one sample.
type Sample struct {
	Name string `yaml:"name"`

	// Call holds one allele for haploid and two for diploid calls, or
	// is empty when the sample was not called.
	Call []string `yaml:"call,flow"`

	DeNovo DeNovoStatus           `yaml:"de-novo,omitempty"`
	Stats  map[string]AlleleStats `yaml:"stats,omitempty"`

	// Likelihoods maps genotype keys to log10 likelihoods.
	Likelihoods map[string]float64 `yaml:"likelihoods,omitempty"`
}

// Called reports whether the sample has a call.
func (s *Sample) Called() bool {
	return len(s.Call) > 0
}

// CallString returns the alleles of the call separated by colons.
func (s *Sample) CallString() string {
	return strings.Join(s.Call, ":")
}

// GenotypeKey returns the key of the unordered genotype made up of the
// given alleles.
func GenotypeKey(alleles ...string) string {
	sorted := append([]string(nil), alleles...)
	sort.Strings(sorted)
	return strings.Join(sorted, ":")
}

// SplitGenotypeKey returns the alleles of a genotype key.
func SplitGenotypeKey(key string) []string {
	return strings.Split(key, ":")
}

// Variant is a multi-sample call at a locus. Variants are not modified
// once constructed; operations on them produce new variants.
type Variant struct {
	Locus Locus  `yaml:"locus"`
	Ref   string `yaml:"ref"`

	// Alleles are all hypothesis alleles at the locus, called or not.
	Alleles []string  `yaml:"alleles,flow,omitempty"`
	Samples []*Sample `yaml:"samples"`

	// PossibleCause is the allele held responsible for the call by a
	// somatic or pedigree caller, if any.
	PossibleCause *string  `yaml:"possible-cause,omitempty"`
	Filters       []string `yaml:"filters,flow,omitempty"`
}

// NumberOfSamples is the number of samples of the variant.
func (v *Variant) NumberOfSamples() int {
	return len(v.Samples)
}

// CalledAlleles returns the distinct alleles called in any sample, in
// order of appearance.
func (v *Variant) CalledAlleles() []string {
	seen := make(map[string]bool)
	var result []string
	for _, s := range v.Samples {
		for _, a := range s.Call {
			if !seen[a] {
				seen[a] = true
				result = append(result, a)
			}
		}
	}
	return result
}

// HasFilter reports whether the variant carries the given filter.
func (v *Variant) HasFilter(filter string) bool {
	for _, f := range v.Filters {
		if f == filter {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the variant.
func (v *Variant) Copy() *Variant {
	result := *v
	result.Alleles = append([]string(nil), v.Alleles...)
	result.Filters = append([]string(nil), v.Filters...)
	if v.PossibleCause != nil {
		cause := *v.PossibleCause
		result.PossibleCause = &cause
	}
	result.Samples = make([]*Sample, len(v.Samples))
	for i, s := range v.Samples {
		c := *s
		c.Call = append([]string(nil), s.Call...)
		if s.Stats != nil {
			c.Stats = make(map[string]AlleleStats, len(s.Stats))
			for k, st := range s.Stats {
				c.Stats[k] = st
			}
		}
		if s.Likelihoods != nil {
			c.Likelihoods = make(map[string]float64, len(s.Likelihoods))
			for k, l := range s.Likelihoods {
				c.Likelihoods[k] = l
			}
		}
		result.Samples[i] = &c
	}
	return &result
}

// Validate checks that the variant is well-formed.
func (v *Variant) Validate() error {
	if v.Locus.Start < 0 || v.Locus.End < v.Locus.Start {
		return fmt.Errorf("invalid locus %v", v.Locus)
	}
	if len(v.Ref) != v.Locus.Length() {
		return fmt.Errorf("reference %q does not match locus %v", v.Ref, v.Locus)
	}
	for _, s := range v.Samples {
		if len(s.Call) > 2 {
			return fmt.Errorf("sample %v has %v alleles in its call", s.Name, len(s.Call))
		}
	}
	return nil
}

func (v *Variant) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v %v", v.Locus, v.Ref)
	for _, s := range v.Samples {
		fmt.Fprintf(&b, " %v", s.CallString())
	}
	return b.String()
}
