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

package arith

import "math"

var (
	ln10              = math.Log(10)
	log1mexpThreshold = math.Log(0.5)
)

// Log1mexp computes ln(1 - e^a) for a <= 0 without losing precision.
func Log1mexp(a float64) float64 {
	if a > 0 {
		return math.NaN()
	}
	if a == 0 {
		return math.Inf(-1)
	}
	if a < log1mexpThreshold {
		return math.Log1p(-math.Exp(a))
	}
	return math.Log(-math.Expm1(a))
}

// Log10OneMinusPow10 computes log10(1 - 10^a) for a <= 0.
func Log10OneMinusPow10(a float64) float64 {
	if a > 0 {
		return math.NaN()
	}
	if a == 0 {
		return math.Inf(-1)
	}
	return Log1mexp(a*ln10) / ln10
}

// Log10SumLog10 computes log10(10^a + 10^b).
func Log10SumLog10(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if math.IsInf(b, -1) {
		return a
	}
	return a + math.Log10(1+math.Pow(10, b-a))
}

// QualityToErrorProbability converts a phred score into an error
// probability.
func QualityToErrorProbability(phred float64) float64 {
	return math.Pow(10, phred/-10)
}

// ErrorProbabilityToQuality converts an error probability into a phred
// score.
func ErrorProbabilityToQuality(p float64) float64 {
	return -10 * math.Log10(p)
}
