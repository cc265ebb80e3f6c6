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

// Package decompose rewrites finished multi-sample calls at complex
// loci into minimal calls.
//
// Decomposition never modifies its input. Parts that differ from the
// input are new variants, with samples, allele statistics, likelihoods
// and the possible cause remapped onto the alleles of the part.
package decompose

import (
	"fmt"
	"strings"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elcomplex/variant"
)

// Mode selects how far a Decomposer breaks up calls.
type Mode int

// The decomposition modes.
const (
	// TrimOnly only trims shared prefixes and suffixes.
	TrimOnly Mode = iota
	// SplitColumns trims and then splits equal-length calls into runs
	// of differing columns.
	SplitColumns
	// AlignSplit aligns every allele to the reference and splits the
	// locus into independent slices.
	AlignSplit
)

func (m Mode) String() string {
	switch m {
	case TrimOnly:
		return "trim"
	case SplitColumns:
		return "split"
	case AlignSplit:
		return "align"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the name of a decomposition mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "trim":
		return TrimOnly, nil
	case "split":
		return SplitColumns, nil
	case "align", "align-and-split":
		return AlignSplit, nil
	default:
		return TrimOnly, fmt.Errorf("unknown decomposition mode %q", name)
	}
}

// Decomposer breaks multi-sample calls into minimal parts.
type Decomposer struct {
	Mode Mode

	// Checker re-evaluates de novo calls of the parts, if set.
	Checker DenovoChecker

	// IonTorrent enables the homopolymer filter.
	IonTorrent bool
}

func (d *Decomposer) parts(v *variant.Variant) []*variant.Variant {
	switch d.Mode {
	case TrimOnly:
		return []*variant.Variant{Trim(v)}
	case SplitColumns:
		return Split(Trim(v))
	default:
		parts := AlignAndSplit(v)
		if len(parts) == 1 && parts[0] == v {
			parts[0] = Trim(v)
		}
		return parts
	}
}

// correctDeNovo clears de novo flags of a part that the checker can
// explain by inheritance. Flags never become de novo here.
func (d *Decomposer) correctDeNovo(part *variant.Variant) {
	if d.Checker == nil {
		return
	}
	for i, s := range part.Samples {
		if s.DeNovo == variant.IsDeNovo && !d.Checker.IsDeNovo(part, i) {
			s.DeNovo = variant.NotDeNovo
		}
	}
}

// ionFilter adds the ion torrent filter to part when its calls are
// homopolymer length changes. It returns the possibly copied part.
func (d *Decomposer) ionFilter(v, part *variant.Variant) *variant.Variant {
	called := part.CalledAlleles()
	base, ok := homopolymerBase(append(called, part.Ref)...)
	if !ok || part.HasFilter(IonTorrentFilter) {
		return part
	}
	start := part.Locus.Start - v.Locus.Start
	increment := runAround(v.Ref, start, start+len(part.Ref), base)
	for _, a := range called {
		if a != part.Ref && IonFilter(base, len(part.Ref)+increment, len(a)+increment) {
			if part == v {
				part = v.Copy()
			}
			part.Filters = append(part.Filters, IonTorrentFilter)
			break
		}
	}
	return part
}

// Decompose returns the minimal parts of v. Every part has the samples
// of v in the same order. When v cannot be broken up, the only part is
// v itself.
func (d *Decomposer) Decompose(v *variant.Variant) []*variant.Variant {
	parts := d.parts(v)
	for i, part := range parts {
		if part != v {
			d.correctDeNovo(part)
		}
		if d.IonTorrent {
			parts[i] = d.ionFilter(v, part)
		}
	}
	return parts
}

// DecomposeAll decomposes independent variants in parallel.
func (d *Decomposer) DecomposeAll(variants []*variant.Variant) [][]*variant.Variant {
	result := make([][]*variant.Variant, len(variants))
	parallel.Range(0, len(variants), 0, func(low, high int) {
		for i := low; i < high; i++ {
			result[i] = d.Decompose(variants[i])
		}
	})
	return result
}
