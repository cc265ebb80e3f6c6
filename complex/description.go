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
	"sort"

	"github.com/exascience/elcomplex/model"
)

// Description is the catalog of candidate alleles at a complex locus,
// in lexicographic order, together with the support each allele has
// among the evidence.
type Description struct {
	*model.Description
	reference string
	counts    []int
}

// Unambiguous reports whether s consists of A, C, G and T only.
func Unambiguous(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

// contributes reports whether the match may propose an allele.
func contributes(match model.Match, params *Params) bool {
	if !match.FixedLeft() || !match.FixedRight() || match.MapError() > params.AmbiguityThreshold {
		return false
	}
	for i := 0; i < match.Length(); i++ {
		switch match.Base(i) {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

type alleleCount struct {
	allele string
	count  int
}

// prune returns the alleles that survive pruning. The counts must be
// ranked by decreasing support.
func prune(ranked []alleleCount, params *Params) []alleleCount {
	if len(ranked) == 0 {
		return ranked
	}
	var total int
	for _, ac := range ranked {
		total += ac.count
	}
	cutoff := float64(ranked[0].count) / params.PruneDivisor
	if n := params.MinRetainedHypotheses; len(ranked) > n && float64(total) >= params.CoverageMultiplier*float64(len(ranked)) {
		if c := float64(ranked[n-1].count); c > cutoff {
			cutoff = c
		}
	}
	var result []alleleCount
	for _, ac := range ranked {
		if float64(ac.count) < cutoff || len(result) == params.MaxHypotheses {
			break
		}
		result = append(result, ac)
	}
	return result
}

// NewDescription collects the candidate alleles of a locus from the
// evidence. Only matches that span the whole locus, consist of
// unambiguous bases, and have a map error at most the ambiguity
// threshold propose alleles. The reference, unless it contains
// ambiguity codes, and the mandatory alleles are always included.
func NewDescription(reference string, matches []model.Match, mandatory []string, params *Params) *Description {
	index := make(map[string]int)
	var ranked []alleleCount
	for _, match := range matches {
		if !contributes(match, params) {
			continue
		}
		allele := model.MatchString(match)
		if i, ok := index[allele]; ok {
			ranked[i].count++
		} else {
			index[allele] = len(ranked)
			ranked = append(ranked, alleleCount{allele, 1})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].allele < ranked[j].allele
	})
	if params.Prune {
		ranked = prune(ranked, params)
	}

	support := make(map[string]int, len(ranked)+len(mandatory)+1)
	for _, ac := range ranked {
		support[ac.allele] = ac.count
	}
	if Unambiguous(reference) {
		if _, ok := support[reference]; !ok {
			support[reference] = 0
		}
	}
	for _, allele := range mandatory {
		if _, ok := support[allele]; !ok {
			support[allele] = 0
		}
	}
	alleles := make([]string, 0, len(support))
	for allele := range support {
		alleles = append(alleles, allele)
	}
	sort.Strings(alleles)
	counts := make([]int, len(alleles))
	for i, allele := range alleles {
		counts[i] = support[allele]
	}
	return &Description{
		Description: model.NewDescription(alleles...),
		reference:   reference,
		counts:      counts,
	}
}

// Reference returns the reference allele of the locus.
func (d *Description) Reference() string {
	return d.reference
}

// ReferenceIndex returns the index of the reference allele, or -1 when
// the reference was excluded because of ambiguity codes.
func (d *Description) ReferenceIndex() int {
	return d.IndexOf(d.reference)
}

// Count returns the number of matches that support allele i.
func (d *Description) Count(i int) int {
	return d.counts[i]
}
