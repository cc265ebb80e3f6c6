package cmd

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/exascience/elcomplex/decompose"
	"github.com/exascience/elcomplex/utils"
	"github.com/exascience/elcomplex/variant"
)

// CallsInput is the contents of a calls file.
type CallsInput struct {
	Calls []*variant.Variant `yaml:"calls"`
}

// readPedigree reads a YAML map from child sample names to their two
// parents.
func readPedigree(filename string) (decompose.PedigreeChecker, error) {
	var pedigree map[string][]string
	if err := readYAML(filename, &pedigree); err != nil {
		return nil, err
	}
	checker := make(decompose.PedigreeChecker, len(pedigree))
	for child, parents := range pedigree {
		if len(parents) != 2 {
			return nil, fmt.Errorf("sample %v in %v has %v parents instead of 2", child, filename, len(parents))
		}
		checker[utils.Canonical(child)] = [2]string{utils.Canonical(parents[0]), utils.Canonical(parents[1])}
	}
	return checker, nil
}

func canonicalSamples(calls []*variant.Variant) error {
	for i, v := range calls {
		if v == nil {
			return fmt.Errorf("call %v is empty", i)
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("call %v: %w", i, err)
		}
		for _, s := range v.Samples {
			s.Name = utils.Canonical(s.Name)
		}
	}
	return nil
}

// Decompose implements the elcomplex decompose command.
func Decompose(c *cli.Context) error {
	mode, err := decompose.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}
	d := decompose.Decomposer{Mode: mode, IonTorrent: c.Bool("ion-torrent")}
	if filename := c.String("pedigree"); filename != "" {
		checker, err := readPedigree(filename)
		if err != nil {
			return err
		}
		d.Checker = checker
	}

	var input CallsInput
	if err := readYAML(c.String("calls"), &input); err != nil {
		return err
	}
	if err := canonicalSamples(input.Calls); err != nil {
		return err
	}

	var output CallsInput
	if err := timedRun(c.Bool("timed"), fmt.Sprint("Decomposing calls in ", mode, " mode."), func() error {
		for _, parts := range d.DecomposeAll(input.Calls) {
			output.Calls = append(output.Calls, parts...)
		}
		return nil
	}); err != nil {
		return err
	}
	log.Printf("Decomposed %v calls into %v.", len(input.Calls), len(output.Calls))
	return writeYAML(c.String("output"), &output)
}

// DecomposeCommand describes the elcomplex decompose command.
var DecomposeCommand = &cli.Command{
	Name:  "decompose",
	Usage: "decompose complex calls into simpler ones",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "calls",
			Aliases:  []string{"c"},
			Usage:    "YAML file with the calls to decompose",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "mode",
			Value: decompose.AlignSplit.String(),
			Usage: "decomposition mode: trim, split or align",
		},
		&cli.StringFlag{
			Name:  "pedigree",
			Usage: "YAML file mapping child samples to their parents",
		},
		&cli.BoolFlag{
			Name:  "ion-torrent",
			Usage: "filter homopolymer indels typical of Ion Torrent sequencing",
		},
		outputFlag,
	},
	Action: Decompose,
}
