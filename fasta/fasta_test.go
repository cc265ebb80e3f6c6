package fasta

import (
	"strings"
	"testing"
)

func TestParseFasta(t *testing.T) {
	const input = "\n>chr1 first contig\nACgtn\nRYac\n\n>chr2\nTTTT\n"
	ref, err := ParseFasta(strings.NewReader(input), map[string]FaiReference{"chr1": {Length: 9}})
	if err != nil {
		t.Fatal(err)
	}
	if len(ref) != 2 {
		t.Fatal("ParseFasta 1 failed", len(ref))
	}
	if s := string(ref["chr1"]); s != "ACGTNNNAC" {
		t.Error("ParseFasta 2 failed", s)
	}
	if s := string(ref["chr2"]); s != "TTTT" {
		t.Error("ParseFasta 3 failed", s)
	}
	if _, err := ParseFasta(strings.NewReader("ACGT\n"), nil); err == nil {
		t.Error("ParseFasta 4 failed: missing header accepted")
	}
	if _, err := ParseFasta(strings.NewReader("\n\n"), nil); err == nil {
		t.Error("ParseFasta 5 failed: empty input accepted")
	}
}

func TestWindow(t *testing.T) {
	ref := Reference{"chr1": []byte("ACGTACGT")}
	if seq, err := ref.Window("chr1", 2, 8); err != nil || len(seq) != 8 {
		t.Error("Window 1 failed", err)
	}
	if _, err := ref.Window("chr1", 2, 9); err == nil {
		t.Error("Window 2 failed")
	}
	if _, err := ref.Window("chrX", 0, 1); err == nil {
		t.Error("Window 3 failed")
	}
}

func TestParseFai(t *testing.T) {
	fai, err := ParseFai(strings.NewReader("chr1\t248956422\t112\t70\t71\nchr2\t242193529\t252513167\t70\t71\n"))
	if err != nil {
		t.Fatal(err)
	}
	if e := fai["chr2"]; e.Length != 242193529 || e.Offset != 252513167 || e.LineBases != 70 || e.LineWidth != 71 {
		t.Error("ParseFai 1 failed", e)
	}
	if _, err := ParseFai(strings.NewReader("chr1\t12\n")); err == nil {
		t.Error("ParseFai 2 failed")
	}
	if _, err := ParseFai(strings.NewReader("chr1\tx\t1\t1\t1\n")); err == nil {
		t.Error("ParseFai 3 failed")
	}
}

func TestToUpperAndN(t *testing.T) {
	for in, out := range map[byte]byte{'a': 'A', 'T': 'T', 'r': 'N', 'V': 'N', 'n': 'N', '-': '-'} {
		if b := ToUpperAndN(in); b != out {
			t.Errorf("ToUpperAndN(%c) = %c", in, b)
		}
	}
}
