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

// Package model contains the data model shared by hypothesis
// construction, evidence scoring and calling: allele descriptions,
// hypothesis codes, hypotheses with their priors, and read evidence.
package model

import "log"

// Description is an ordered catalog of unique alleles. Alleles are
// nucleotide strings, possibly empty, and are compared by exact
// equality.
type Description struct {
	names                []string
	index                map[string]int
	minLength, maxLength int
}

// NewDescription creates a description for the given alleles, in the
// given order. Duplicate alleles are dropped; the first occurrence
// determines the position.
func NewDescription(alleles ...string) *Description {
	d := &Description{
		names: make([]string, 0, len(alleles)),
		index: make(map[string]int, len(alleles)),
	}
	for _, allele := range alleles {
		if _, ok := d.index[allele]; ok {
			continue
		}
		if len(d.names) == 0 {
			d.minLength, d.maxLength = len(allele), len(allele)
		} else {
			if l := len(allele); l < d.minLength {
				d.minLength = l
			} else if l > d.maxLength {
				d.maxLength = l
			}
		}
		d.index[allele] = len(d.names)
		d.names = append(d.names, allele)
	}
	return d
}

// Size is the number of alleles.
func (d *Description) Size() int {
	return len(d.names)
}

// Name returns the allele at index i.
func (d *Description) Name(i int) string {
	if i < 0 || i >= len(d.names) {
		log.Panicf("allele index %v out of range [0,%v)", i, len(d.names))
	}
	return d.names[i]
}

// Names returns all alleles. The result must not be modified.
func (d *Description) Names() []string {
	return d.names
}

// IndexOf returns the index of the given allele, or -1.
func (d *Description) IndexOf(allele string) int {
	if i, ok := d.index[allele]; ok {
		return i
	}
	return -1
}

// MinLength is the length of the shortest allele.
func (d *Description) MinLength() int {
	return d.minLength
}

// MaxLength is the length of the longest allele.
func (d *Description) MaxLength() int {
	return d.maxLength
}
