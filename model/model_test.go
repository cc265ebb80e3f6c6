package model

import (
	"math"
	"testing"

	"github.com/biogo/hts/sam"

	"github.com/exascience/elcomplex/arith"
)

func TestDiploidCode(t *testing.T) {
	c := NewDiploidCode(3)
	if c.Size() != 6 {
		t.Fatal("DiploidCode 1 failed", c.Size())
	}
	for k := 0; k < c.Size(); k++ {
		a, b := c.A(k), c.B(k)
		if a > b || c.Code(a, b) != k || c.Code(b, a) != k {
			t.Error("DiploidCode 2 failed", k, a, b)
		}
		if c.Homozygous(k) != (a == b) {
			t.Error("DiploidCode 4 failed", k)
		}
	}
	if c.Code(0, 1) != 1 || c.Code(1, 1) != 2 || c.Code(2, 0) != 3 {
		t.Error("DiploidCode 5 failed")
	}
	if big := NewDiploidCode(10); big.A(54) != 9 || big.B(54) != 9 || big.Code(3, 7) != 31 {
		t.Error("DiploidCode 3 failed")
	}
}

func TestHaploidCode(t *testing.T) {
	c := HaploidCode(4)
	if c.Size() != 4 || c.A(2) != 2 || c.B(2) != 2 || c.Code(3, 3) != 3 || !c.Homozygous(1) {
		t.Error("HaploidCode failed")
	}
}

func TestDescription(t *testing.T) {
	d := NewDescription("AC", "", "ACGT", "AC", "G")
	if d.Size() != 4 {
		t.Error("Description 1 failed", d.Names())
	}
	if d.IndexOf("ACGT") != 2 || d.IndexOf("G") != 3 || d.IndexOf("T") != -1 {
		t.Error("Description 2 failed", d.Names())
	}
	if d.MinLength() != 0 || d.MaxLength() != 4 {
		t.Error("Description 3 failed", d.MinLength(), d.MaxLength())
	}
	if d.Name(1) != "" {
		t.Error("Description 4 failed", d.Name(1))
	}
}

func TestHypothesesName(t *testing.T) {
	d := NewDescription("A", "C")
	priors := []float64{math.Log(0.5), math.Log(0.25), math.Log(0.25)}
	h := NewHypotheses(d, arith.Log, false, priors, 0)
	if h.Size() != 3 || h.Name(0) != "A:A" || h.Name(1) != "A:C" || h.Name(2) != "C:C" {
		t.Error("Hypotheses 1 failed", h.Name(1))
	}
	hh := NewHypotheses(d, arith.Log, true, priors[:2], -1)
	if hh.Name(1) != "C" || hh.Reference() != -1 {
		t.Error("Hypotheses 2 failed", hh.Name(1))
	}
}

func TestRecord(t *testing.T) {
	cigar, err := sam.ParseCigar([]byte("2S3M2I2M1D3M"))
	if err != nil {
		t.Fatal(err)
	}
	r := &Record{Pos: 100, Cigar: cigar, Flags: sam.Paired | sam.ProperPair | sam.Reverse}
	if r.RefLength() != 9 || r.End() != 109 {
		t.Error("Record 1 failed", r.RefLength(), r.End())
	}
	if lead, trail := r.SoftClips(); lead != 2 || trail != 0 {
		t.Error("Record 2 failed", lead, trail)
	}
	if r.ReferencePosition(0) != 98 || r.ReferencePosition(2) != 100 {
		t.Error("Record 3 failed", r.ReferencePosition(0), r.ReferencePosition(2))
	}
	if r.ReferencePosition(5) != 103 || r.ReferencePosition(7) != 103 || r.ReferencePosition(9) != 106 {
		t.Error("Record 4 failed", r.ReferencePosition(5), r.ReferencePosition(9))
	}
	if r.IndelLength() != 3 {
		t.Error("Record 5 failed", r.IndelLength())
	}
	if !r.Reverse() || !r.Paired() || !r.Mated() || r.First() {
		t.Error("Record 6 failed")
	}
}

func TestReadMatch(t *testing.T) {
	m := NewReadMatch("ACG", []byte{10, 20, 30}, true, false, MapErrorFromQuality(30), nil)
	if MatchString(m) != "ACG" || m.Length() != 3 || m.Base(1) != 'C' {
		t.Error("ReadMatch 1 failed")
	}
	if math.Abs(m.ErrorProbability(0)-0.1) > 1e-12 || math.Abs(m.MapError()-0.001) > 1e-12 {
		t.Error("ReadMatch 2 failed", m.ErrorProbability(0), m.MapError())
	}
	if n := NewReadMatch("AC", nil, false, false, 0, nil); n.ErrorProbability(1) != 0 {
		t.Error("ReadMatch 3 failed")
	}
}
