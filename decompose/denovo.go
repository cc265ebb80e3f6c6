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

import "github.com/exascience/elcomplex/variant"

// A DenovoChecker decides whether the call of a sample is explained by
// inheritance.
type DenovoChecker interface {
	// IsDeNovo reports whether the call of the given sample of v may be
	// de novo. Checkers that cannot decide return true.
	IsDeNovo(v *variant.Variant, sample int) bool
}

// PedigreeChecker maps the name of a child sample to the names of its
// two parents and applies Mendelian inheritance.
type PedigreeChecker map[string][2]string

func findSample(v *variant.Variant, name string) *variant.Sample {
	for _, s := range v.Samples {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func contains(alleles []string, allele string) bool {
	for _, a := range alleles {
		if a == allele {
			return true
		}
	}
	return false
}

// IsDeNovo implements the DenovoChecker interface. A haploid child call
// is inherited when either parent carries the allele, a diploid one when
// each parent can contribute one of its alleles.
func (p PedigreeChecker) IsDeNovo(v *variant.Variant, sample int) bool {
	child := v.Samples[sample]
	parents, ok := p[child.Name]
	if !ok || !child.Called() {
		return true
	}
	var calls [2][]string
	for i, name := range parents {
		parent := findSample(v, name)
		if parent == nil || !parent.Called() {
			return true
		}
		calls[i] = parent.Call
	}
	if len(child.Call) == 1 {
		a := child.Call[0]
		return !contains(calls[0], a) && !contains(calls[1], a)
	}
	a, b := child.Call[0], child.Call[1]
	return !(contains(calls[0], a) && contains(calls[1], b)) &&
		!(contains(calls[0], b) && contains(calls[1], a))
}
