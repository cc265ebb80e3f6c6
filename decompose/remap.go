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
	"sort"

	"github.com/exascience/elcomplex/arith"
	"github.com/exascience/elcomplex/variant"
)

// An alleleMap maps an allele of a variant onto an allele of one of its
// parts, or fails for alleles the part cannot represent.
type alleleMap func(allele string) (string, bool)

func mapAll(alleles []string, f alleleMap) ([]string, bool) {
	result := make([]string, len(alleles))
	for i, a := range alleles {
		m, ok := f(a)
		if !ok {
			return nil, false
		}
		result[i] = m
	}
	return result, true
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func remapSample(s *variant.Sample, f alleleMap) *variant.Sample {
	result := &variant.Sample{Name: s.Name, DeNovo: s.DeNovo}
	if call, ok := mapAll(s.Call, f); ok && len(call) > 0 {
		result.Call = call
	}
	if s.Stats != nil {
		result.Stats = make(map[string]variant.AlleleStats, len(s.Stats))
		for a, stats := range s.Stats {
			if m, ok := f(a); ok {
				result.Stats[m] = result.Stats[m].Add(stats)
			}
		}
	}
	if s.Likelihoods != nil {
		result.Likelihoods = make(map[string]float64, len(s.Likelihoods))
		for _, key := range sortedKeys(s.Likelihoods) {
			alleles, ok := mapAll(variant.SplitGenotypeKey(key), f)
			if !ok {
				continue
			}
			l := s.Likelihoods[key]
			k := variant.GenotypeKey(alleles...)
			if prev, ok := result.Likelihoods[k]; ok {
				l = arith.Log10SumLog10(prev, l)
			}
			result.Likelihoods[k] = l
		}
	}
	return result
}

// remap creates a new variant at locus whose alleles, calls, statistics
// and likelihoods are those of v mapped through f. Entries that refer
// to an allele f cannot map are dropped. Alleles that map onto the same
// allele are merged: their statistics are summed and their likelihoods
// combined.
func remap(v *variant.Variant, locus variant.Locus, ref string, f alleleMap) *variant.Variant {
	result := &variant.Variant{
		Locus:   locus,
		Ref:     ref,
		Samples: make([]*variant.Sample, len(v.Samples)),
		Filters: append([]string(nil), v.Filters...),
	}
	seen := make(map[string]bool)
	for _, a := range v.Alleles {
		if m, ok := f(a); ok && !seen[m] {
			seen[m] = true
			result.Alleles = append(result.Alleles, m)
		}
	}
	if v.PossibleCause != nil {
		if m, ok := f(*v.PossibleCause); ok {
			result.PossibleCause = &m
		}
	}
	for i, s := range v.Samples {
		result.Samples[i] = remapSample(s, f)
	}
	return result
}

// onlyReference reports whether every call of v is homozygous for the
// reference allele.
func onlyReference(v *variant.Variant) bool {
	for _, a := range v.CalledAlleles() {
		if a != v.Ref {
			return false
		}
	}
	return true
}
