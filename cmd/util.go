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

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v2"

	"github.com/exascience/elcomplex/internal"
	"github.com/exascience/elcomplex/utils"
)

// ProgramMessage is the first line printed when the elcomplex binary is
// called.
var ProgramMessage string

func init() {
	ProgramMessage = fmt.Sprint(
		"\n", utils.ProgramName, " version ", utils.ProgramVersion,
		" compiled with ", runtime.Version(), " ", internal.PedanticMessage,
		"- see ", utils.ProgramURL, " for more information.\n",
	)
}

// Flags shared by all commands.
var (
	logPathFlag = &cli.StringFlag{
		Name:  "log-path",
		Usage: "directory in which the log file is created, defaults to $HOME",
	}
	timedFlag = &cli.BoolFlag{
		Name:  "timed",
		Usage: "log the elapsed time of each phase",
	}
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "YAML output file, defaults to stdout",
	}
)

// CommonFlags returns the flags every command accepts.
func CommonFlags() []cli.Flag {
	return []cli.Flag{logPathFlag, timedFlag}
}

func createLogFilename() string {
	t := time.Now()
	zone, _ := t.Zone()
	return fmt.Sprintf("logs/elcomplex/elcomplex-%d-%02d-%02d-%02d-%02d-%02d-%09d-%v.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// SetLogOutput redirects standard error into a new log file and tags the
// run with a fresh identifier.
func SetLogOutput(path string) error {
	logPath := createLogFilename()
	var fullPath string
	if path == "" {
		fullPath = filepath.Join(os.Getenv("HOME"), logPath)
	} else {
		fullPath = filepath.Join(path, logPath)
	}
	fullPath, err := internal.FullPathname(fullPath)
	if err != nil {
		return err
	}
	f, err := internal.FileCreate(fullPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(f, ProgramMessage)

	orgStderr, err := unix.Dup(2)
	if err != nil {
		return err
	}
	ferr := os.NewFile(uintptr(orgStderr), "/dev/stderr")
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		return err
	}

	multi := io.MultiWriter(f, ferr)

	log.SetOutput(multi)
	log.Println("Created log file at", fullPath)
	log.Println("Command line:", os.Args)
	log.Println("Run id:", uuid.New())
	return nil
}

func timedRun(timed bool, msg string, f func() error) error {
	if timed {
		log.Println(msg)
		start := time.Now()
		defer func() {
			end := time.Now()
			log.Println("Elapsed time: ", end.Sub(start))
		}()
	}
	return f()
}

// readYAML decodes a possibly bgzip-compressed YAML file into value.
func readYAML(filename string, value interface{}) (err error) {
	in, err := utils.OpenInput(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := in.Close(); err == nil {
			err = nerr
		}
	}()
	if err := yaml.NewDecoder(in).Decode(value); err != nil {
		return fmt.Errorf("failed to parse %v: %w", filename, err)
	}
	return nil
}

// writeYAML encodes value into the named file, or to standard output
// when filename is empty.
func writeYAML(filename string, value interface{}) (err error) {
	var out io.Writer = os.Stdout
	if filename != "" {
		f, ferr := internal.FileCreate(filename)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if nerr := f.Close(); err == nil {
				err = nerr
			}
		}()
		out = f
	}
	enc := yaml.NewEncoder(out)
	if err := enc.Encode(value); err != nil {
		return err
	}
	return enc.Close()
}
