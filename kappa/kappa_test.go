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

package kappa

import (
	"math"
	"testing"

	"github.com/exascience/elcomplex/model"
)

func near(x, y float64) bool {
	return math.Abs(x-y) <= 1e-9*math.Max(1, math.Abs(y))
}

func testModel(t *testing.T) *Model {
	m, err := New(0.02, []float64{0, 0.5, 0.3, 0.2}, 0.03, []float64{0, 0.6, 0.4}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNew(t *testing.T) {
	if _, err := New(0.02, []float64{0, 0.5, 0.4}, 0.03, []float64{0, 1}, 0.5); err == nil {
		t.Error("New 1 failed: improper insertion distribution accepted")
	}
	if _, err := New(0.02, []float64{0.1, 0.9}, 0.03, []float64{0, 1}, 0.5); err == nil {
		t.Error("New 2 failed: length 0 accepted")
	}
	if _, err := New(0.02, []float64{0, 1}, 0.03, []float64{0, 1}, 1); err == nil {
		t.Error("New 3 failed: decay 1 accepted")
	}
	if _, err := New(0.6, []float64{0, 1}, 0.6, []float64{0, 1}, 0.5); err == nil {
		t.Error("New 4 failed: rates above 1 accepted")
	}
	if _, err := New(0.02, []float64{0, 1}, 0.03, []float64{0, 1}, 0); err != nil {
		t.Error("New 5 failed", err)
	}
}

func TestKappaRange(t *testing.T) {
	for _, k := range []Kappa{testModel(t), NewMemo(testModel(t), 8)} {
		for m := 0; m <= 40; m++ {
			for l := 0; l <= 40; l++ {
				if v := k.Kappa(m, l); v < 0 || v > 1 || math.IsNaN(v) {
					t.Errorf("%T Kappa(%v, %v) = %v", k, m, l, v)
				}
			}
		}
	}
}

func TestKappaPanics(t *testing.T) {
	k := testModel(t)
	for _, args := range [][2]int{{-1, 0}, {0, -1}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Kappa(%v, %v) did not panic", args[0], args[1])
				}
			}()
			k.Kappa(args[0], args[1])
		}()
	}
}

func TestPiSum(t *testing.T) {
	k := testModel(t)
	for i := -50; i < 50; i++ {
		if k.PiSum(i) < k.PiSum(i+1) {
			t.Errorf("PiSum increases from %v to %v", i, i+1)
		}
		if diff := k.PiSum(i) - k.PiSum(i+1); !near(diff, k.Pi(i)) {
			t.Errorf("PiSum(%v) - PiSum(%v) = %v, Pi(%v) = %v", i, i+1, diff, i, k.Pi(i))
		}
	}
	if !near(k.Pi(0), 0.95) || !near(k.Pi(2), 0.006) || !near(k.Pi(-2), 0.012) {
		t.Error("Pi table lookup failed")
	}
	if !near(k.Pi(5), 0.004*0.25) || !near(k.Pi(-4), 0.012*0.25) {
		t.Error("Pi extrapolation failed")
	}
	if !near(k.PiSum(0), 0.974) {
		t.Error("PiSum(0) failed", k.PiSum(0))
	}
}

func TestMemo(t *testing.T) {
	k := testModel(t)
	memo := NewMemo(k, 4)
	for i := -10; i <= 10; i++ {
		if memo.Pi(i) != k.Pi(i) || memo.PiSum(i) != k.PiSum(i) {
			t.Errorf("Memo disagrees at %v", i)
		}
	}
	if memo.Kappa(3, 7) != k.Kappa(3, 7) {
		t.Error("Memo Kappa failed")
	}
}

func TestFlatten(t *testing.T) {
	flat := Flatten([]float64{0, 0.4, 0.6}, 0.5)
	expected := []float64{0.5, 0.2, 0.3}
	if len(flat) != len(expected) {
		t.Fatal("Flatten 1 failed", flat)
	}
	for i := range flat {
		if !near(flat[i], expected[i]) {
			t.Error("Flatten 1 failed", flat)
		}
	}
	dist := []float64{0, 0.1, 0.25, 0.65}
	back, rate := UnFlatten(Flatten(dist, 0.07))
	if !near(rate, 0.07) {
		t.Error("UnFlatten rate failed", rate)
	}
	for i := range dist {
		if !near(back[i], dist[i]) {
			t.Error("UnFlatten round trip failed", back)
		}
	}
	if len(Flatten(nil, 0.5)) != 0 {
		t.Error("empty Flatten failed")
	}
}

func TestTau(t *testing.T) {
	k := testModel(t)
	tp := NewTransformProbability(k)

	exact := model.NewReadMatch("A", nil, true, true, 0, nil)
	if got := tp.Tau(exact, "A"); !near(got, k.Kappa(1, 1)) {
		t.Error("Tau 1 failed", got)
	}
	if got := tp.Tau(exact, "C"); got != 0 {
		t.Error("Tau 2 failed", got)
	}
	unknown := model.NewReadMatch("N", nil, true, true, 0, nil)
	if got := tp.Tau(unknown, "C"); !near(got, 0.25*k.Kappa(1, 1)) {
		t.Error("Tau 3 failed", got)
	}
	empty := model.NewReadMatch("", nil, true, true, 0, nil)
	if got := tp.Tau(empty, ""); !near(got, k.Kappa(0, 0)) {
		t.Error("Tau 4 failed", got)
	}

	quals := []byte{30, 30, 30}
	good := model.NewReadMatch("ACG", quals, true, true, 0, nil)
	bad := tp.Tau(good, "AGG")
	if tp.Tau(good, "ACG") <= bad {
		t.Error("Tau 5 failed")
	}
	if tp.Tau(good, "ACGT") <= tp.Tau(good, "TTTT") {
		t.Error("Tau 6 failed")
	}

	noisy := model.NewReadMatch("ACG", []byte{0, 0, 0}, true, true, 0, nil)
	if got := tp.Tau(noisy, "ACG"); !near(got, tp.Tau(noisy, "TTT")) {
		t.Error("Tau 7 failed: uninformative bases discriminate", got)
	}

	for _, flags := range [][2]bool{{true, false}, {false, true}, {false, false}} {
		match := model.NewReadMatch("AC", []byte{20, 20}, flags[0], flags[1], 0, nil)
		for _, hyp := range []string{"", "A", "AC", "ACGT", "TTT"} {
			if got := tp.Tau(match, hyp); got < 0 || got > 1 || math.IsNaN(got) {
				t.Errorf("Tau %v %q = %v", flags, hyp, got)
			}
		}
		if tp.Tau(match, "ACGT") <= 0 {
			t.Errorf("Tau %v failed: partial anchor has no support", flags)
		}
	}
}

func TestQ(t *testing.T) {
	k := testModel(t)
	tp := NewTransformProbability(k)
	for l := 0; l < 10; l++ {
		q := tp.Q(l)
		if kk := k.Kappa(l, l); q < kk*kk*math.Pow(4, -float64(l)) {
			t.Errorf("Q(%v) = %v below its own term", l, q)
		}
		if q != tp.Q(l) {
			t.Errorf("Q(%v) not memoized", l)
		}
	}
}
