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

// Package fasta loads reference sequences for complex-locus templates.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/exascience/elcomplex/utils"
)

// FaiReference represents an entry in an FAI file.
type FaiReference struct {
	Length    int32
	Offset    int64
	LineBases int32
	LineWidth int32
}

// ParseFai parses the contents of an FAI file.
func ParseFai(r io.Reader) (map[string]FaiReference, error) {
	fai := make(map[string]FaiReference)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		b := bytes.Split(scanner.Bytes(), []byte("\t"))
		if len(b) != 5 {
			return nil, fmt.Errorf("badly formatted fai entry on line %v: %v fields", line, len(b))
		}
		var fields [4]int64
		for i := range fields {
			n, err := strconv.ParseInt(string(b[i+1]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("badly formatted fai entry on line %v: %w", line, err)
			}
			fields[i] = n
		}
		fai[string(b[0])] = FaiReference{
			Length:    int32(fields[0]),
			Offset:    fields[1],
			LineBases: int32(fields[2]),
			LineWidth: int32(fields[3]),
		}
	}
	return fai, scanner.Err()
}

func contigFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	if i >= len(b) {
		return ""
	}
	return string(b[i:j])
}

func initSeq(contig string, fai map[string]FaiReference) []byte {
	if fai != nil {
		if ref, ok := fai[contig]; ok {
			return make([]byte, 0, ref.Length)
		}
	}
	return nil
}

var iupacUpperTable [256]byte

func init() {
	for i := range iupacUpperTable {
		iupacUpperTable[i] = byte(i)
	}
	for _, b := range []byte("ACGTN") {
		iupacUpperTable[b] = b
		iupacUpperTable[b+'a'-'A'] = b
	}
	for _, b := range []byte("RYMKWSBDHV") {
		iupacUpperTable[b] = 'N'
		iupacUpperTable[b+'a'-'A'] = 'N'
	}
}

// ToUpperAndN converts a base to upper case and replaces ambiguity
// codes by N.
func ToUpperAndN(base byte) byte {
	return iupacUpperTable[base]
}

// Reference maps contig names to their sequences. Sequences are upper
// case and contain no ambiguity codes other than N.
type Reference map[string][]byte

// Window returns the sequence of contig after checking that [start, end)
// lies within it.
func (ref Reference) Window(contig string, start, end int) ([]byte, error) {
	seq, ok := ref[contig]
	if !ok {
		return nil, fmt.Errorf("unknown contig %v", contig)
	}
	if start < 0 || end < start || end > len(seq) {
		return nil, fmt.Errorf("range [%v,%v) out of bounds for contig %v of length %v", start, end, contig, len(seq))
	}
	return seq, nil
}

// ParseFasta sequentially parses FASTA data.
//
// If fai is given, the sequences are pre-allocated.
func ParseFasta(r io.Reader, fai map[string]FaiReference) (Reference, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<24)

	var b []byte
	for len(b) == 0 {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("empty fasta data")
		}
		b = scanner.Bytes()
	}
	if b[0] != '>' {
		return nil, fmt.Errorf("invalid fasta data: missing first header")
	}

	contig := contigFromHeader(b)
	seq := initSeq(contig, fai)
	ref := make(Reference)
	for scanner.Scan() {
		b := scanner.Bytes()
		switch {
		case len(b) == 0:
		case b[0] == '>':
			ref[contig] = seq
			contig = contigFromHeader(b)
			seq = initSeq(contig, fai)
		default:
			for _, c := range b {
				seq = append(seq, iupacUpperTable[c])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	ref[contig] = seq
	return ref, nil
}

// ReadFasta reads a possibly bgzip-compressed FASTA file. An FAI index
// next to it is used for pre-allocation when present.
func ReadFasta(filename string) (ref Reference, err error) {
	var fai map[string]FaiReference
	if f, ferr := os.Open(filename + ".fai"); ferr == nil {
		fai, err = ParseFai(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%v.fai: %w", filename, err)
		}
	}
	in, err := utils.OpenInput(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := in.Close(); err == nil {
			err = nerr
		}
	}()
	ref, err = ParseFasta(in, fai)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return ref, nil
}
