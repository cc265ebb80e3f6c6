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

// elComplex calls variants at complex loci, where several overlapping
// candidate alleles compete, and decomposes the resulting calls into
// simpler ones.
//
// Please see https://github.com/exascience/elcomplex for a documentation
// of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/exascience/elcomplex/cmd"
	"github.com/exascience/elcomplex/utils"
)

func main() {
	app := &cli.App{
		Name:    utils.ProgramName,
		Usage:   "complex-locus variant calling",
		Version: utils.ProgramVersion,
		Flags:   cmd.CommonFlags(),
		Before: func(c *cli.Context) error {
			fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
			if c.Args().Len() == 0 {
				return nil
			}
			return cmd.SetLogOutput(c.String("log-path"))
		},
		Commands: []*cli.Command{
			cmd.HypothesesCommand,
			cmd.DecomposeCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
