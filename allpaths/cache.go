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

package allpaths

import (
	"github.com/exascience/pargo/sync"
)

// Cache shares one Scorer per error model.
//
// The cache itself is safe for concurrent use, but the scorers it hands
// out are not. Use a cache only when evidence is scored by a single
// goroutine; otherwise use NewPooledScorer or ScoreLn.
type Cache struct {
	scorers *sync.Map
}

// NewCache creates an empty scorer cache.
func NewCache() *Cache {
	return &Cache{scorers: sync.NewMap(0)}
}

// Scorer returns the scorer for the given error model, creating it on
// first use.
func (c *Cache) Scorer(params Params) *Scorer {
	if scorer, ok := c.scorers.Load(params); ok {
		return scorer.(*Scorer)
	}
	scorer, _ := c.scorers.LoadOrStore(params, NewScorer(params))
	return scorer.(*Scorer)
}
