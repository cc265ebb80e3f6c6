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

package allpaths

import (
	"log"

	"github.com/exascience/elcomplex/model"
)

// Env is the alignment environment of a read against a template.
type Env interface {
	ReadLength() int
	ReadBase(i int) byte
	// ErrorProbability is the probability that read base i was
	// miscalled.
	ErrorProbability(i int) float64
	TemplateLength() int
	TemplateBase(j int) byte
	// Start is the template position the first read base is expected
	// to align to. It may lie outside the template.
	Start() int
	// MaxShift bounds the distance between the expected and the actual
	// template position of every read base.
	MaxShift() int
}

// BasicEnv is an Env over explicit sequences.
type BasicEnv struct {
	read     string
	errors   []float64
	template string
	start    int
	maxShift int
}

// NewEnv creates an environment for read against template.
func NewEnv(read string, errors []float64, template string, start, maxShift int) *BasicEnv {
	if len(errors) != len(read) {
		log.Panicf("read of length %v has %v error probabilities", len(read), len(errors))
	}
	if maxShift < 0 {
		log.Panicf("negative max shift %v", maxShift)
	}
	return &BasicEnv{
		read:     read,
		errors:   errors,
		template: template,
		start:    start,
		maxShift: maxShift,
	}
}

// NewFixedQualityEnv creates an environment where every read base has
// the default quality of the error model.
func NewFixedQualityEnv(read, template string, start, maxShift int, params Params) *BasicEnv {
	return NewEnv(read, params.FixedErrorProbabilities(len(read)), template, start, maxShift)
}

// recordErrorProbabilities returns the error probabilities of all bases
// of a record. Records without qualities get the default quality.
func recordErrorProbabilities(record *model.Record, params Params) []float64 {
	if record.Qual == nil {
		return params.FixedErrorProbabilities(len(record.Seq))
	}
	return params.ErrorProbabilities(record.Qual, record.MapQ)
}

// NewRecordEnv creates an environment for a whole read, soft clips
// included, against a template that starts at reference position
// templatePos.
func NewRecordEnv(record *model.Record, template string, templatePos, maxShift int, params Params) *BasicEnv {
	lead, _ := record.SoftClips()
	return NewEnv(
		record.Seq,
		recordErrorProbabilities(record, params),
		template,
		record.Pos-lead-templatePos,
		maxShift,
	)
}

// NewSoftClipEnv creates an environment for the aligned part of a read.
// Soft clipped bases are left out.
func NewSoftClipEnv(record *model.Record, template string, templatePos, maxShift int, params Params) *BasicEnv {
	lead, trail := record.SoftClips()
	end := len(record.Seq) - trail
	if end < lead {
		end = lead
	}
	errors := recordErrorProbabilities(record, params)
	return NewEnv(
		record.Seq[lead:end],
		errors[lead:end],
		template,
		record.Pos-templatePos,
		maxShift,
	)
}

// NewCGEnvs creates one environment per arm of a read sequenced in two
// arms. The arm that is sequenced first lies on the left for forward
// reads, and on the right for reverse reads.
func NewCGEnvs(record *model.Record, template string, templatePos, maxShift int, params Params) [2]*BasicEnv {
	errors := recordErrorProbabilities(record, params)
	n := len(record.Seq)
	split := (n + 1) / 2
	if record.Reverse() {
		split = n - split
	}
	return [2]*BasicEnv{
		NewEnv(record.Seq[:split], errors[:split], template, record.ReferencePosition(0)-templatePos, maxShift),
		NewEnv(record.Seq[split:], errors[split:], template, record.ReferencePosition(split)-templatePos, maxShift),
	}
}

// ReadLength implements the Env interface.
func (env *BasicEnv) ReadLength() int { return len(env.read) }

// ReadBase implements the Env interface.
func (env *BasicEnv) ReadBase(i int) byte { return env.read[i] }

// ErrorProbability implements the Env interface.
func (env *BasicEnv) ErrorProbability(i int) float64 { return env.errors[i] }

// TemplateLength implements the Env interface.
func (env *BasicEnv) TemplateLength() int { return len(env.template) }

// TemplateBase implements the Env interface.
func (env *BasicEnv) TemplateBase(j int) byte { return env.template[j] }

// Start implements the Env interface.
func (env *BasicEnv) Start() int { return env.start }

// MaxShift implements the Env interface.
func (env *BasicEnv) MaxShift() int { return env.maxShift }

// Read returns the read bases.
func (env *BasicEnv) Read() string { return env.read }
