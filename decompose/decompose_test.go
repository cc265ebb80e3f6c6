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
	"math"
	"testing"

	"github.com/biogo/hts/sam"

	"github.com/exascience/elcomplex/variant"
)

func near(x, y float64) bool {
	return math.Abs(x-y) <= 1e-9*math.Max(1, math.Abs(y))
}

func sameCall(call []string, alleles ...string) bool {
	if len(call) != len(alleles) {
		return false
	}
	for i, a := range alleles {
		if call[i] != a {
			return false
		}
	}
	return true
}

func newVariant(start int, ref string, calls ...[]string) *variant.Variant {
	v := &variant.Variant{
		Locus: variant.Locus{Sequence: "chr1", Start: start, End: start + len(ref)},
		Ref:   ref,
	}
	for i, call := range calls {
		v.Samples = append(v.Samples, &variant.Sample{Name: string(rune('a' + i)), Call: call})
	}
	return v
}

func TestAlign(t *testing.T) {
	if cigar := align("ACGT", "ACGT"); cigar.String() != "4M" {
		t.Error("align 1 failed", cigar)
	}
	if cigar := align("", "AC"); cigar.String() != "2I" {
		t.Error("align 2 failed", cigar)
	}
	if cigar := align("AC", ""); cigar.String() != "2D" {
		t.Error("align 3 failed", cigar)
	}
	if cigar := align("ACGTACGTAC", "AGGTACGTTC"); cigar.String() != "10M" {
		t.Error("align 4 failed", cigar)
	}
	cigar := align("ACGTTTACGA", "ACGTACGA")
	if len(cigar) != 3 || cigar[0].Type() != sam.CigarMatch || cigar[1].Type() != sam.CigarDeletion || cigar[2].Type() != sam.CigarMatch {
		t.Fatal("align 5 failed", cigar)
	}
	if cigar[1].Len() != 2 || cigar[0].Len()+cigar[2].Len() != 8 {
		t.Error("align 6 failed", cigar)
	}
}

func TestAlignColumns(t *testing.T) {
	ref := "ACGTACGTACGT"
	alt := "ATGTACGCCCTACGT"
	c, events := alignColumns(ref, alt)
	if len(events) != 2 || events[0] != (event{1, 2}) || events[1] != (event{7, 7}) {
		t.Fatal("alignColumns 1 failed", events)
	}
	if s := c.slice(1, 2); s != "T" {
		t.Error("alignColumns 2 failed", s)
	}
	if s := c.slice(7, 7); s != "CCC" {
		t.Error("alignColumns 3 failed", s)
	}
	if s := c.slice(6, 8); s != "GCCCT" {
		t.Error("alignColumns 4 failed", s)
	}
	if s := c.slice(0, len(ref)); s != alt {
		t.Error("alignColumns 5 failed", s)
	}
	if s := c.slice(2, 6); s != ref[2:6] {
		t.Error("alignColumns 6 failed", s)
	}
}

func TestPartition(t *testing.T) {
	spans := partition([]event{{8, 9}, {1, 2}, {2, 2}, {5, 5}, {1, 3}, {4, 5}})
	if len(spans) != 3 || spans[0] != (event{1, 3}) || spans[1] != (event{4, 5}) || spans[2] != (event{8, 9}) {
		t.Error("partition failed", spans)
	}
}

func TestTrim(t *testing.T) {
	v := newVariant(10, "AT", []string{"AT", "CT"})
	trimmed := Trim(v)
	if trimmed.Ref != "A" || trimmed.Locus.Start != 10 || trimmed.Locus.End != 11 {
		t.Fatal("Trim 1 failed", trimmed)
	}
	if !sameCall(trimmed.Samples[0].Call, "A", "C") {
		t.Error("Trim 2 failed", trimmed)
	}
	if v.Ref != "AT" || !sameCall(v.Samples[0].Call, "AT", "CT") || v.Locus.End != 12 {
		t.Error("Trim 3 failed: input modified", v)
	}
	if Trim(trimmed) != trimmed {
		t.Error("Trim 4 failed: not idempotent")
	}

	v = newVariant(0, "CAGTA", []string{"CAGTA", "CTTA"}, []string{"CAGTA", "CAGTA"})
	v.Alleles = []string{"CAGTA", "CTTA", "GAGTA"}
	trimmed = Trim(v)
	if trimmed.Ref != "AG" || trimmed.Locus.Start != 1 || trimmed.Locus.End != 3 {
		t.Fatal("Trim 5 failed", trimmed)
	}
	if !sameCall(trimmed.Samples[0].Call, "AG", "T") || !sameCall(trimmed.Samples[1].Call, "AG", "AG") {
		t.Error("Trim 6 failed", trimmed)
	}
	if len(trimmed.Alleles) != 2 || trimmed.Alleles[0] != "AG" || trimmed.Alleles[1] != "T" {
		t.Error("Trim 7 failed: unshared allele kept", trimmed.Alleles)
	}
	if Trim(trimmed) != trimmed {
		t.Error("Trim 8 failed: not idempotent")
	}

	v = newVariant(0, "ACG", []string{"ACG", "ACG"})
	if Trim(v) != v {
		t.Error("Trim 9 failed: reference call trimmed")
	}
	v = newVariant(0, "ACG", []string{"TCA"})
	if Trim(v) != v {
		t.Error("Trim 10 failed")
	}
}

func TestSplit(t *testing.T) {
	ref := "GACGTACT"
	v := newVariant(100, ref, []string{"GACGTACT", "GAGGTTCT"}, []string{"GAGGTACT", "GAGGTACT"}, nil)
	parts := Split(v)
	if len(parts) != 2 {
		t.Fatal("Split 1 failed", parts)
	}
	for _, p := range parts {
		if p.NumberOfSamples() != v.NumberOfSamples() {
			t.Error("Split 2 failed", p)
		}
	}
	if parts[0].Locus.Start != 102 || parts[0].Locus.End != 103 || parts[1].Locus.Start != 105 || parts[1].Locus.End != 106 {
		t.Error("Split 3 failed", parts)
	}
	for i, s := range v.Samples {
		for k := range s.Call {
			rebuilt := ""
			pos := v.Locus.Start
			for _, p := range parts {
				rebuilt += ref[pos-v.Locus.Start : p.Locus.Start-v.Locus.Start]
				rebuilt += p.Samples[i].Call[k]
				pos = p.Locus.End
			}
			rebuilt += ref[pos-v.Locus.Start:]
			if rebuilt != s.Call[k] {
				t.Error("Split 4 failed", i, k, rebuilt)
			}
		}
	}
	if parts[0].Samples[2].Called() || parts[1].Samples[2].Called() {
		t.Error("Split 5 failed: uncalled sample called")
	}

	if parts := Split(newVariant(0, "ACG", []string{"TGA"})); len(parts) != 1 || parts[0].Ref != "ACG" {
		t.Error("Split 6 failed: all-disagreeing span split")
	}
	v = newVariant(0, "ACG", []string{"AG"})
	if parts := Split(v); len(parts) != 1 || parts[0] != v {
		t.Error("Split 7 failed: unequal lengths split")
	}
}

func TestAlignAndSplit(t *testing.T) {
	ref := "ACGTACGTACGT"
	alt := "ATGTACGCCCTACGT"
	v := newVariant(0, ref, []string{ref, alt})
	parts := AlignAndSplit(v)
	if len(parts) != 2 {
		t.Fatal("AlignAndSplit 1 failed", parts)
	}
	if p := parts[0]; p.Ref != "C" || p.Locus.Start != 1 || p.Locus.End != 2 || !sameCall(p.Samples[0].Call, "C", "T") {
		t.Error("AlignAndSplit 2 failed", p)
	}
	if p := parts[1]; p.Ref != "" || p.Locus.Start != 7 || p.Locus.End != 7 || !sameCall(p.Samples[0].Call, "", "CCC") {
		t.Error("AlignAndSplit 3 failed", p)
	}

	v = newVariant(0, "ACGT", []string{"ACGT", "AGGT"})
	if parts := AlignAndSplit(v); len(parts) != 1 || parts[0] != v {
		t.Error("AlignAndSplit 4 failed")
	}
}

func TestCollapse(t *testing.T) {
	r, x, y := "ACGTACGTAC", "AGGTACGTAC", "AGGTACGTTC"
	v := newVariant(0, r, []string{x, y})
	v.Alleles = []string{r, x, y}
	v.PossibleCause = &y
	s := v.Samples[0]
	s.Stats = map[string]variant.AlleleStats{
		r: {Count: 1, Forward: 1},
		x: {Count: 3, Forward: 2, Reverse: 1},
		y: {Count: 2, Forward: 1, Reverse: 1},
	}
	s.Likelihoods = map[string]float64{
		variant.GenotypeKey(r, x): -1,
		variant.GenotypeKey(r, y): -1,
		variant.GenotypeKey(x, y): -0.5,
	}
	d := &Decomposer{Mode: AlignSplit}
	parts := d.Decompose(v)
	if len(parts) != 2 {
		t.Fatal("Collapse 1 failed", parts)
	}

	p := parts[0]
	if p.Ref != "C" || !sameCall(p.Samples[0].Call, "G", "G") || len(p.Alleles) != 2 || *p.PossibleCause != "G" {
		t.Error("Collapse 2 failed", p)
	}
	if st := p.Samples[0].Stats["G"]; st.Count != 5 || st.Forward != 3 || st.Reverse != 2 {
		t.Error("Collapse 3 failed", st)
	}
	if l := p.Samples[0].Likelihoods["C:G"]; !near(l, -1+math.Log10(2)) {
		t.Error("Collapse 4 failed", l)
	}
	if l := p.Samples[0].Likelihoods["G:G"]; l != -0.5 {
		t.Error("Collapse 5 failed", l)
	}

	p = parts[1]
	if p.Ref != "A" || !sameCall(p.Samples[0].Call, "A", "T") || *p.PossibleCause != "T" {
		t.Error("Collapse 6 failed", p)
	}
	if st := p.Samples[0].Stats["A"]; st.Count != 4 || st.Forward != 3 || st.Reverse != 1 {
		t.Error("Collapse 7 failed", st)
	}
	if l := p.Samples[0].Likelihoods["A:T"]; !near(l, math.Log10(0.1+math.Pow(10, -0.5))) {
		t.Error("Collapse 8 failed", l)
	}
	if l := p.Samples[0].Likelihoods["A:A"]; l != -1 {
		t.Error("Collapse 9 failed", l)
	}
	if len(s.Stats) != 3 || len(s.Likelihoods) != 3 || *v.PossibleCause != y {
		t.Error("Collapse 10 failed: input modified")
	}
}

func TestDeNovo(t *testing.T) {
	r, x, y := "ACGTAC", "AGGTTC", "AGGTAC"
	v := newVariant(0, r, []string{r, x}, []string{r, y}, []string{r, r})
	v.Samples[0].DeNovo = variant.IsDeNovo
	v.Samples[1].DeNovo = variant.NotDeNovo
	checker := PedigreeChecker{"a": {"b", "c"}}
	if !checker.IsDeNovo(v, 0) {
		t.Error("DeNovo 1 failed")
	}
	if !checker.IsDeNovo(v, 1) {
		t.Error("DeNovo 2 failed: sample without parents decided")
	}

	for _, mode := range []Mode{SplitColumns, AlignSplit} {
		d := &Decomposer{Mode: mode, Checker: checker}
		parts := d.Decompose(v)
		if len(parts) != 2 {
			t.Fatal("DeNovo 3 failed", mode, parts)
		}
		if parts[0].Samples[0].DeNovo != variant.NotDeNovo {
			t.Error("DeNovo 4 failed: inherited call still de novo", mode)
		}
		if parts[1].Samples[0].DeNovo != variant.IsDeNovo {
			t.Error("DeNovo 5 failed", mode)
		}
		for _, p := range parts {
			if p.Samples[1].DeNovo != variant.NotDeNovo || p.Samples[2].DeNovo != variant.Unspecified {
				t.Error("DeNovo 6 failed: status became de novo", mode)
			}
			if p.NumberOfSamples() != v.NumberOfSamples() {
				t.Error("DeNovo 7 failed", mode)
			}
		}
	}
	if v.Samples[0].DeNovo != variant.IsDeNovo {
		t.Error("DeNovo 8 failed: input modified")
	}
}

func TestIonFilter(t *testing.T) {
	if !IonFilter('A', 2, 1) {
		t.Error("IonFilter 1 failed")
	}
	if IonFilter('A', 1, 0) || IonFilter('C', 3, 1) || IonFilter('C', 3, 3) {
		t.Error("IonFilter 2 failed")
	}
	if !IonFilter('T', 7, 5) || IonFilter('G', 7, 5) {
		t.Error("IonFilter 3 failed")
	}
	if IonFilter('A', 9, 8) || IonFilter('A', -1, 0) || IonFilter('N', 2, 1) {
		t.Error("IonFilter 4 failed: out of table")
	}

	v := newVariant(10, "AA", []string{"AA", "A"})
	d := &Decomposer{Mode: TrimOnly, IonTorrent: true}
	parts := d.Decompose(v)
	if len(parts) != 1 || !parts[0].HasFilter(IonTorrentFilter) || parts[0].Ref != "A" {
		t.Error("IonFilter 5 failed", parts)
	}
	if v.HasFilter(IonTorrentFilter) {
		t.Error("IonFilter 6 failed: input modified")
	}
	v = newVariant(10, "CA", []string{"CA", "GA"})
	if parts := d.Decompose(v); parts[0].HasFilter(IonTorrentFilter) {
		t.Error("IonFilter 7 failed")
	}
}

func TestDecomposeAll(t *testing.T) {
	variants := []*variant.Variant{
		newVariant(0, "AT", []string{"AT", "CT"}),
		newVariant(20, "GACGTACT", []string{"GAGGTTCT"}),
	}
	d := &Decomposer{Mode: SplitColumns}
	result := d.DecomposeAll(variants)
	if len(result) != 2 || len(result[0]) != 1 || len(result[1]) != 2 {
		t.Error("DecomposeAll failed", result)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{TrimOnly, SplitColumns, AlignSplit} {
		if n, err := ParseMode(m.String()); err != nil || n != m {
			t.Error("ParseMode 1 failed", m)
		}
	}
	if _, err := ParseMode("fancy"); err == nil {
		t.Error("ParseMode 2 failed")
	}
}
