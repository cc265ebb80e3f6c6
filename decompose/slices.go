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

	"github.com/biogo/hts/sam"
)

// An event is a reference range in which an allele differs from the
// reference. Insertions are empty ranges at the boundary where they
// occur.
type event struct {
	start, end int
}

func (e event) overlaps(f event) bool {
	return e.start <= f.end && f.start <= e.end
}

// columns maps the reference boundaries of a locus onto offsets in an
// allele aligned to it. before[p] is the allele offset at boundary p
// and after[p] the offset past any bases inserted at p.
type columns struct {
	allele        string
	before, after []int
}

// slice returns the part of the allele aligned to the reference range
// [start, end), including bases inserted at either boundary.
func (c *columns) slice(start, end int) string {
	return c.allele[c.before[start]:c.after[end]]
}

// alignColumns aligns allele to ref and returns its column mapping and
// the events in which it differs from ref.
func alignColumns(ref, allele string) (*columns, []event) {
	c := &columns{
		allele: allele,
		before: make([]int, len(ref)+1),
		after:  make([]int, len(ref)+1),
	}
	var events []event
	p, q := 0, 0
	for _, op := range align(ref, allele) {
		n := op.Len()
		switch op.Type() {
		case sam.CigarInsertion:
			events = append(events, event{p, p})
			q += n
			c.after[p] = q
		case sam.CigarDeletion:
			events = append(events, event{p, p + n})
			for k := 0; k < n; k++ {
				p++
				c.before[p], c.after[p] = q, q
			}
		default:
			for k := 0; k < n; k++ {
				if ref[p] != allele[q] {
					events = append(events, event{p, p + 1})
				}
				p++
				q++
				c.before[p], c.after[p] = q, q
			}
		}
	}
	return c, events
}

// partition groups overlapping events and returns the reference span of
// every group, ordered by position. Spans are pairwise disjoint.
func partition(events []event) []event {
	g := newGraph(len(events))
	for i := range events {
		for j := i + 1; j < len(events); j++ {
			if events[i].overlaps(events[j]) {
				g.addEdge(i, j)
			}
		}
	}
	spans := make(map[int]event)
	for i, rep := range g.cluster() {
		e := events[i]
		if span, ok := spans[rep]; ok {
			if e.start < span.start {
				span.start = e.start
			}
			if e.end > span.end {
				span.end = e.end
			}
			spans[rep] = span
		} else {
			spans[rep] = e
		}
	}
	result := make([]event, 0, len(spans))
	for _, span := range spans {
		result = append(result, span)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].start < result[j].start
	})
	return result
}
