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

// Trim removes the longest suffix and then the longest prefix shared by
// the reference and every called allele. Uncalled alleles that do not
// share them are dropped. Trim returns v itself when nothing can be
// trimmed, or when every call is the reference.
func Trim(v *variant.Variant) *variant.Variant {
	called := v.CalledAlleles()
	if onlyReference(v) {
		return v
	}
	minLength := len(v.Ref)
	for _, a := range called {
		if len(a) < minLength {
			minLength = len(a)
		}
	}

	shared := func(at func(a string) byte) bool {
		b := at(v.Ref)
		for _, a := range called {
			if at(a) != b {
				return false
			}
		}
		return true
	}
	suffix := 0
	for suffix < minLength && shared(func(a string) byte { return a[len(a)-1-suffix] }) {
		suffix++
	}
	prefix := 0
	for prefix < minLength-suffix && shared(func(a string) byte { return a[prefix] }) {
		prefix++
	}
	if prefix == 0 && suffix == 0 {
		return v
	}

	head, tail := v.Ref[:prefix], v.Ref[len(v.Ref)-suffix:]
	locus := v.Locus
	locus.Start += prefix
	locus.End -= suffix
	return remap(v, locus, v.Ref[prefix:len(v.Ref)-suffix], func(a string) (string, bool) {
		if len(a) < prefix+suffix || a[:prefix] != head || a[len(a)-suffix:] != tail {
			return "", false
		}
		return a[prefix : len(a)-suffix], true
	})
}
