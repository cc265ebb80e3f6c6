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
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
)

// IsGzip determines if the given byte scanner produces a gzip file. It
// uses ReadByte and UnreadByte to check only the initial byte from the
// input.
func IsGzip(scanner io.ByteScanner) (bool, error) {
	b, err := scanner.ReadByte()
	if err == io.EOF {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := scanner.UnreadByte(); err != nil {
		return false, err
	}
	return b == 0x1f, nil
}

// HandleBGZF checks if the given reader produces a gzip file by looking
// at the initial byte. It then either returns a bgzf.Reader, or returns
// the given reader unchanged.
func HandleBGZF(buf *bufio.Reader) (io.Reader, error) {
	if ok, err := IsGzip(buf); err != nil {
		return nil, err
	} else if ok {
		r, err := bgzf.NewReader(buf, 1)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return buf, nil
}

// Input is an opened input file that may be bgzip-compressed.
type Input struct {
	io.Reader
	file *os.File
}

// OpenInput opens the named file for reading, decompressing it if it is
// bgzip-compressed.
func OpenInput(filename string) (*Input, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	r, err := HandleBGZF(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Input{Reader: r, file: f}, nil
}

// Close closes the decompressor, if any, and the underlying file.
func (in *Input) Close() (err error) {
	if c, ok := in.Reader.(io.Closer); ok {
		err = c.Close()
	}
	if nerr := in.file.Close(); err == nil {
		err = nerr
	}
	return err
}
