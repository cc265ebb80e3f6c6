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
	"github.com/willf/bitset"

	"github.com/exascience/elcomplex/variant"
)

// Split breaks a variant whose reference and called alleles all have
// the same length into one variant per run of columns in which some
// called allele differs from the reference. Uncalled alleles of another
// length are dropped from the parts. Split returns v itself when the
// lengths differ, or when at most one run covers the whole locus.
func Split(v *variant.Variant) []*variant.Variant {
	n := len(v.Ref)
	called := v.CalledAlleles()
	for _, a := range called {
		if len(a) != n {
			return []*variant.Variant{v}
		}
	}

	points := bitset.New(uint(n))
	for _, a := range called {
		for i := 0; i < n; i++ {
			if a[i] != v.Ref[i] {
				points.Set(uint(i))
			}
		}
	}
	if count := points.Count(); count == 0 || count == uint(n) {
		return []*variant.Variant{v}
	}

	var result []*variant.Variant
	for i, ok := points.NextSet(0); ok; i, ok = points.NextSet(i) {
		start := int(i)
		for i < uint(n) && points.Test(i) {
			i++
		}
		end := int(i)
		locus := variant.Locus{Sequence: v.Locus.Sequence, Start: v.Locus.Start + start, End: v.Locus.Start + end}
		result = append(result, remap(v, locus, v.Ref[start:end], func(a string) (string, bool) {
			if len(a) != n {
				return "", false
			}
			return a[start:end], true
		}))
	}
	return result
}

// AlignAndSplit aligns every allele of v to the reference and returns
// one trimmed variant per independent slice of the locus. Two
// differences from the reference are dependent when their reference
// ranges overlap or touch. Slices in which every call is the reference
// are left out. AlignAndSplit returns v itself when the locus does not
// fall apart into several slices.
func AlignAndSplit(v *variant.Variant) []*variant.Variant {
	cols := make(map[string]*columns)
	var events []event
	addAllele := func(a string) {
		if a == v.Ref {
			return
		}
		if _, ok := cols[a]; ok {
			return
		}
		c, e := alignColumns(v.Ref, a)
		cols[a] = c
		events = append(events, e...)
	}
	for _, a := range v.Alleles {
		addAllele(a)
	}
	for _, a := range v.CalledAlleles() {
		addAllele(a)
	}
	if len(events) == 0 {
		return []*variant.Variant{v}
	}
	spans := partition(events)
	if len(spans) == 1 {
		return []*variant.Variant{v}
	}

	var result []*variant.Variant
	for _, span := range spans {
		span := span
		locus := variant.Locus{Sequence: v.Locus.Sequence, Start: v.Locus.Start + span.start, End: v.Locus.Start + span.end}
		ref := v.Ref[span.start:span.end]
		part := remap(v, locus, ref, func(a string) (string, bool) {
			if a == v.Ref {
				return ref, true
			}
			c, ok := cols[a]
			if !ok {
				c, _ = alignColumns(v.Ref, a)
				cols[a] = c
			}
			return c.slice(span.start, span.end), true
		})
		if onlyReference(part) {
			continue
		}
		result = append(result, Trim(part))
	}
	if len(result) == 0 {
		return []*variant.Variant{v}
	}
	return result
}
