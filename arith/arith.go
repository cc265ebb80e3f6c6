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

// Package arith implements possibility arithmetic: numeric
// representations of probabilities that can be combined without
// underflow.
//
// A possibility is an unnormalized non-negative quantity. The
// complex-locus code never computes in raw probability space; it asks a
// PossibilityArithmetic to convert into and out of its representation
// instead.
package arith

import (
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
)

// PossibilityArithmetic is the arithmetic over possibility values.
type PossibilityArithmetic interface {
	// Zero is the representation of the possibility 0.
	Zero() float64
	// One is the representation of the possibility 1.
	One() float64
	Add(a, b float64) float64
	Multiply(a, b float64) float64
	Divide(a, b float64) float64
	Pow(a, e float64) float64
	// Ln2Poss converts a natural logarithm into a possibility.
	Ln2Poss(ln float64) float64
	// Poss2Ln converts a possibility into its natural logarithm.
	Poss2Ln(p float64) float64
	Prob2Poss(prob float64) float64
	Poss2Prob(p float64) float64
	// Gt reports whether a is strictly larger than b.
	Gt(a, b float64) bool
	IsValid(p float64) bool
	// Sum adds all values of the given slice.
	Sum(values []float64) float64
}

// LogPossibility represents possibilities by their natural logarithm.
type LogPossibility struct{}

// Log is the default arithmetic.
var Log PossibilityArithmetic = LogPossibility{}

// Zero implements the PossibilityArithmetic interface.
func (LogPossibility) Zero() float64 { return math.Inf(-1) }

// One implements the PossibilityArithmetic interface.
func (LogPossibility) One() float64 { return 0 }

// Add implements the PossibilityArithmetic interface.
func (LogPossibility) Add(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if math.IsInf(b, -1) {
		return a
	}
	return a + math.Log1p(math.Exp(b-a))
}

// Multiply implements the PossibilityArithmetic interface.
func (LogPossibility) Multiply(a, b float64) float64 { return a + b }

// Divide implements the PossibilityArithmetic interface.
func (LogPossibility) Divide(a, b float64) float64 {
	if math.IsInf(b, -1) {
		log.Panicf("division by zero possibility %v/%v", a, b)
	}
	return a - b
}

// Pow implements the PossibilityArithmetic interface.
func (LogPossibility) Pow(a, e float64) float64 {
	if e == 0 {
		return 0
	}
	return a * e
}

// Ln2Poss implements the PossibilityArithmetic interface.
func (LogPossibility) Ln2Poss(ln float64) float64 { return ln }

// Poss2Ln implements the PossibilityArithmetic interface.
func (LogPossibility) Poss2Ln(p float64) float64 { return p }

// Prob2Poss implements the PossibilityArithmetic interface.
func (LogPossibility) Prob2Poss(prob float64) float64 { return math.Log(prob) }

// Poss2Prob implements the PossibilityArithmetic interface.
func (LogPossibility) Poss2Prob(p float64) float64 { return math.Exp(p) }

// Gt implements the PossibilityArithmetic interface.
func (LogPossibility) Gt(a, b float64) bool { return a > b }

// IsValid implements the PossibilityArithmetic interface.
func (LogPossibility) IsValid(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 1)
}

// Sum implements the PossibilityArithmetic interface.
func (LogPossibility) Sum(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}
	max := floats.Max(values)
	if math.IsInf(max, -1) {
		return max
	}
	return floats.LogSumExp(values)
}

// SimplePossibility represents possibilities as plain float64 values.
// It underflows easily, but is handy for cross-checking results.
type SimplePossibility struct{}

// Simple is the plain arithmetic.
var Simple PossibilityArithmetic = SimplePossibility{}

// Zero implements the PossibilityArithmetic interface.
func (SimplePossibility) Zero() float64 { return 0 }

// One implements the PossibilityArithmetic interface.
func (SimplePossibility) One() float64 { return 1 }

// Add implements the PossibilityArithmetic interface.
func (SimplePossibility) Add(a, b float64) float64 { return a + b }

// Multiply implements the PossibilityArithmetic interface.
func (SimplePossibility) Multiply(a, b float64) float64 { return a * b }

// Divide implements the PossibilityArithmetic interface.
func (SimplePossibility) Divide(a, b float64) float64 {
	if b == 0 {
		log.Panicf("division by zero possibility %v/%v", a, b)
	}
	return a / b
}

// Pow implements the PossibilityArithmetic interface.
func (SimplePossibility) Pow(a, e float64) float64 { return math.Pow(a, e) }

// Ln2Poss implements the PossibilityArithmetic interface.
func (SimplePossibility) Ln2Poss(ln float64) float64 { return math.Exp(ln) }

// Poss2Ln implements the PossibilityArithmetic interface.
func (SimplePossibility) Poss2Ln(p float64) float64 { return math.Log(p) }

// Prob2Poss implements the PossibilityArithmetic interface.
func (SimplePossibility) Prob2Poss(prob float64) float64 { return prob }

// Poss2Prob implements the PossibilityArithmetic interface.
func (SimplePossibility) Poss2Prob(p float64) float64 { return p }

// Gt implements the PossibilityArithmetic interface.
func (SimplePossibility) Gt(a, b float64) bool { return a > b }

// IsValid implements the PossibilityArithmetic interface.
func (SimplePossibility) IsValid(p float64) bool {
	return p >= 0 && !math.IsNaN(p) && !math.IsInf(p, 1)
}

// Sum implements the PossibilityArithmetic interface.
func (SimplePossibility) Sum(values []float64) float64 {
	return floats.Sum(values)
}
