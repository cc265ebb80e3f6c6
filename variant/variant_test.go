package variant

import (
	"testing"

	"gopkg.in/yaml.v2"
)

func TestGenotypeKey(t *testing.T) {
	if key := GenotypeKey("C", "A"); key != "A:C" {
		t.Error("GenotypeKey 1 failed", key)
	}
	if key := GenotypeKey("", "T"); key != ":T" {
		t.Error("GenotypeKey 2 failed", key)
	}
	if alleles := SplitGenotypeKey(":T"); len(alleles) != 2 || alleles[0] != "" || alleles[1] != "T" {
		t.Error("SplitGenotypeKey failed", alleles)
	}
}

func TestCopy(t *testing.T) {
	cause := "C"
	v := &Variant{
		Locus:         Locus{Sequence: "chr2", Start: 5, End: 6},
		Ref:           "A",
		Alleles:       []string{"A", "C"},
		PossibleCause: &cause,
		Samples: []*Sample{{
			Name:        "s",
			Call:        []string{"A", "C"},
			Stats:       map[string]AlleleStats{"C": {Count: 2}},
			Likelihoods: map[string]float64{"A:C": -0.1},
		}},
	}
	c := v.Copy()
	c.Alleles[1] = "G"
	*c.PossibleCause = "G"
	c.Samples[0].Call[1] = "G"
	c.Samples[0].Stats["G"] = AlleleStats{Count: 1}
	c.Samples[0].Likelihoods["A:C"] = -2
	if v.Alleles[1] != "C" || *v.PossibleCause != "C" || v.Samples[0].Call[1] != "C" {
		t.Error("Copy 1 failed", v)
	}
	if len(v.Samples[0].Stats) != 1 || v.Samples[0].Likelihoods["A:C"] != -0.1 {
		t.Error("Copy 2 failed", v)
	}
	if c.Samples[0].Name != "s" || c.Locus != v.Locus {
		t.Error("Copy 3 failed", c)
	}
}

func TestValidate(t *testing.T) {
	v := &Variant{Locus: Locus{Sequence: "chr1", Start: 3, End: 5}, Ref: "AC"}
	if err := v.Validate(); err != nil {
		t.Error("Validate 1 failed", err)
	}
	v.Ref = "A"
	if err := v.Validate(); err == nil {
		t.Error("Validate 2 failed")
	}
	v.Ref = "AC"
	v.Samples = []*Sample{{Name: "s", Call: []string{"A", "A", "A"}}}
	if err := v.Validate(); err == nil {
		t.Error("Validate 3 failed")
	}
}

func TestReadVariant(t *testing.T) {
	const input = `
locus: {sequence: chr1, start: 10, end: 12}
ref: AT
alleles: [AT, CT]
samples:
  - name: child
    call: [AT, CT]
    de-novo: de-novo
    stats: {CT: {count: 3, forward: 2, reverse: 1}}
  - name: mother
    call: [AT, AT]
`
	var v Variant
	if err := yaml.Unmarshal([]byte(input), &v); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(); err != nil {
		t.Error("ReadVariant 1 failed", err)
	}
	if v.NumberOfSamples() != 2 || v.Samples[0].DeNovo != IsDeNovo || v.Samples[1].DeNovo != Unspecified {
		t.Error("ReadVariant 2 failed", v.String())
	}
	if v.Samples[0].Stats["CT"].Forward != 2 {
		t.Error("ReadVariant 3 failed")
	}
	if called := v.CalledAlleles(); len(called) != 2 || called[0] != "AT" || called[1] != "CT" {
		t.Error("ReadVariant 4 failed", called)
	}
	if v.String() != "chr1:11-12 AT AT:CT AT:AT" {
		t.Error("ReadVariant 5 failed", v.String())
	}
}
