package cmd

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/exascience/elcomplex/complex"
)

func TestPhred33(t *testing.T) {
	if q := phred33(""); q != nil {
		t.Error("phred33 1 failed", q)
	}
	if q := phred33("!+I"); len(q) != 3 || q[0] != 0 || q[1] != 10 || q[2] != 40 {
		t.Error("phred33 2 failed", q)
	}
	if s := normalizeBases("acgtRn"); s != "ACGTNN" {
		t.Error("normalizeBases failed", s)
	}
}

func TestReadLoci(t *testing.T) {
	const input = `
loci:
  - sequence: chr1
    start: 4
    end: 6
    haploid: true
    mandatory: [GT]
    matches:
      - bases: acgtta
        quals: IIIIII
        fixed-left: true
        mapq: 60
        record:
          name: r1
          read-group: rg1
          flags: 16
          pos: 2
          cigar: 6M
          seq: ACGTTA
`
	var loci LociInput
	if err := yaml.Unmarshal([]byte(input), &loci); err != nil {
		t.Fatal(err)
	}
	if len(loci.Loci) != 1 {
		t.Fatal("ReadLoci 1 failed", loci)
	}
	locus := loci.Loci[0]
	if locus.Sequence != "chr1" || locus.Start != 4 || locus.End != 6 || !locus.Haploid || len(locus.Mandatory) != 1 {
		t.Error("ReadLoci 2 failed", locus)
	}
	m, err := locus.Matches[0].match()
	if err != nil {
		t.Fatal(err)
	}
	if m.Length() != 6 || m.Base(0) != 'A' || !m.FixedLeft() || m.FixedRight() {
		t.Error("ReadLoci 3 failed")
	}
	if r := m.Record(); r == nil || !r.Reverse() || r.ReadGroup != "rg1" || r.Cigar.String() != "6M" {
		t.Error("ReadLoci 4 failed", r)
	}
	bad := locus.Matches[0]
	bad.Record = &RecordInput{Name: "r2", Cigar: "4M", Seq: "ACGTTA"}
	if _, err := bad.match(); err == nil {
		t.Error("ReadLoci 5 failed")
	}
	bad.Record = nil
	bad.Quals = "II"
	if _, err := bad.match(); err == nil {
		t.Error("ReadLoci 6 failed")
	}
}

func TestReadParams(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(filename, []byte("prune: false\nmax-hypotheses: 3\n"), 0666); err != nil {
		t.Fatal(err)
	}
	params := complex.DefaultParams()
	if err := readYAML(filename, &params); err != nil {
		t.Fatal(err)
	}
	if params.Prune || params.MaxHypotheses != 3 {
		t.Error("ReadParams 1 failed", params.Prune, params.MaxHypotheses)
	}
	if params.PruneDivisor != complex.DefaultParams().PruneDivisor {
		t.Error("ReadParams 2 failed", params.PruneDivisor)
	}
	if err := params.Validate(); err != nil {
		t.Error("ReadParams 3 failed", err)
	}
}

func TestReadPedigree(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "pedigree.yaml")
	if err := os.WriteFile(filename, []byte("child: [mother, father]\n"), 0666); err != nil {
		t.Fatal(err)
	}
	checker, err := readPedigree(filename)
	if err != nil {
		t.Fatal(err)
	}
	if parents, ok := checker["child"]; !ok || parents[0] != "mother" || parents[1] != "father" {
		t.Error("ReadPedigree 1 failed", checker)
	}
	if err := os.WriteFile(filename, []byte("child: [mother]\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := readPedigree(filename); err == nil {
		t.Error("ReadPedigree 2 failed")
	}
}

func TestWriteYAML(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out", "calls.yaml")
	in := CallsInput{}
	if err := writeYAML(filename, &in); err != nil {
		t.Fatal(err)
	}
	var out CallsInput
	if err := readYAML(filename, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Calls) != 0 {
		t.Error("WriteYAML failed", out)
	}
}

func TestCallQuality(t *testing.T) {
	if q := callQuality(math.Log(0.99)); math.Abs(q-20) > 1e-9 {
		t.Error("callQuality 1 failed", q)
	}
	if q := callQuality(math.Log(0.5)); math.Abs(q-10*math.Log10(2)) > 1e-9 {
		t.Error("callQuality 2 failed", q)
	}
	if q := callQuality(0); !math.IsInf(q, 1) {
		t.Error("callQuality 3 failed", q)
	}
	if q := callQuality(1e-12); !math.IsInf(q, 1) {
		t.Error("callQuality 4 failed", q)
	}
}
