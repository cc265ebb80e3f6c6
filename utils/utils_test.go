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

package utils

import (
	"bufio"
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/exascience/pargo/parallel"
)

func TestIntern(t *testing.T) {
	a := Intern(string([]byte("ILLUMINA")))
	b := Intern("ILLUMINA")
	if a != b || *a != "ILLUMINA" {
		t.Error("Intern 1 failed")
	}
	if Intern("CG") == a {
		t.Error("Intern 2 failed")
	}
	symbols := make([]Symbol, 64)
	parallel.Range(0, len(symbols), 0, func(low, high int) {
		for i := low; i < high; i++ {
			symbols[i] = Intern("rg" + string(rune('0'+i%4)))
		}
	})
	for i := 4; i < len(symbols); i++ {
		if symbols[i] != symbols[i%4] {
			t.Error("Intern 3 failed", i)
		}
	}
	if Canonical("sample") != "sample" {
		t.Error("Canonical failed")
	}
}

func TestHandleBGZF(t *testing.T) {
	const content = ">chr1\nACGT\n"
	r, err := HandleBGZF(bufio.NewReader(strings.NewReader(content)))
	if err != nil {
		t.Fatal(err)
	}
	if b, err := ioutil.ReadAll(r); err != nil || string(b) != content {
		t.Error("HandleBGZF 1 failed", string(b), err)
	}

	var buf bytes.Buffer
	w := bgzf.NewWriter(&buf, 1)
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	dir, err := ioutil.TempDir("", "elcomplex")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "ref.fa.gz")
	if err := ioutil.WriteFile(filename, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	in, err := OpenInput(filename)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadAll(in)
	if err != nil || string(b) != content {
		t.Error("HandleBGZF 2 failed", string(b), err)
	}
	if err := in.Close(); err != nil {
		t.Error("HandleBGZF 3 failed", err)
	}
}

func TestIsGzip(t *testing.T) {
	if ok, err := IsGzip(bufio.NewReader(strings.NewReader(""))); ok || err != nil {
		t.Error("IsGzip failed on empty input", ok, err)
	}
}
