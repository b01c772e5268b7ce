// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package atropos

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/trimqc/report"
)

// Sample holds the counters parsed for one sample.
type Sample struct {
	Name string
	// Counts maps a counter name, e.g. "r_processed", to its value.  Which
	// counters are present depends on the run mode.  Finalize adds "r_lost".
	Counts map[string]int64
	// PercentTrimmed is the percentage of processed base pairs removed.  It is
	// valid only if HasPercentTrimmed is set.
	PercentTrimmed    float64
	HasPercentTrimmed bool
}

func newSample(name string) *Sample {
	return &Sample{Name: name, Counts: make(map[string]int64)}
}

func (s *Sample) count(key string) (float64, bool) {
	v, ok := s.Counts[key]
	return float64(v), ok
}

// finalize computes r_lost and percent_trimmed.  r_processed and r_written
// are required.
func (s *Sample) finalize() error {
	processed, ok := s.Counts["r_processed"]
	if !ok {
		return errors.E(errors.Invalid, fmt.Sprintf("sample %s: missing r_processed", s.Name))
	}
	written, ok := s.Counts["r_written"]
	if !ok {
		return errors.E(errors.Invalid, fmt.Sprintf("sample %s: missing r_written", s.Name))
	}
	s.Counts["r_lost"] = processed - written

	s.PercentTrimmed, s.HasPercentTrimmed = 0, false
	bpProcessed, ok := s.count("bp_processed")
	if !ok || bpProcessed == 0 {
		return nil
	}
	if bpWritten, ok := s.count("bp_written"); ok {
		s.PercentTrimmed = 100 * (bpProcessed - bpWritten) / bpProcessed
		s.HasPercentTrimmed = true
	} else if bpTrimmed, ok := s.count("bp_trimmed"); ok {
		qualityTrimmed, _ := s.count("quality_trimmed")
		s.PercentTrimmed = 100 * (bpTrimmed + qualityTrimmed) / bpProcessed
		s.HasPercentTrimmed = true
	}
	return nil
}

// Result accumulates the output of one or more parsed reports.
type Result struct {
	// Samples maps the sanitized sample name to its counters.
	Samples map[string]*Sample
	// LengthCounts maps adapter -> sample -> trimmed length -> observed count.
	LengthCounts map[string]map[string]map[int]int64
	// LengthExp maps adapter -> sample -> trimmed length -> expected count.
	LengthExp map[string]map[string]map[int]float64
	// Adapters lists adapter sequences in order of first appearance.
	Adapters []string
}

// NewResult creates an empty Result.
func NewResult() *Result {
	return &Result{
		Samples:      make(map[string]*Sample),
		LengthCounts: make(map[string]map[string]map[int]int64),
		LengthExp:    make(map[string]map[string]map[int]float64),
	}
}

// startSample creates a fresh record for name.  An existing record of the
// same name is replaced, along with its histograms.
func (r *Result) startSample(name string) *Sample {
	if _, ok := r.Samples[name]; ok {
		log.Printf("atropos: duplicate sample name found, overwriting: %s", name)
		r.dropHistograms(name)
	}
	s := newSample(name)
	r.Samples[name] = s
	return s
}

func (r *Result) dropHistograms(sample string) {
	for adapter := range r.LengthCounts {
		delete(r.LengthCounts[adapter], sample)
		delete(r.LengthExp[adapter], sample)
	}
}

// startAdapter registers adapter and resets its histograms for sample.
func (r *Result) startAdapter(adapter, sample string) {
	if _, ok := r.LengthCounts[adapter]; !ok {
		r.Adapters = append(r.Adapters, adapter)
		r.LengthCounts[adapter] = make(map[string]map[int]int64)
		r.LengthExp[adapter] = make(map[string]map[int]float64)
	}
	r.LengthCounts[adapter][sample] = make(map[int]int64)
	r.LengthExp[adapter][sample] = make(map[int]float64)
}

// Finalize computes the derived counters of every sample, in name order.  It
// fails on the first sample that lacks r_processed or r_written.
func (r *Result) Finalize() error {
	names := make([]string, 0, len(r.Samples))
	for name := range r.Samples {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Samples[name].finalize(); err != nil {
			return err
		}
	}
	return nil
}

// Merge moves the contents of o into r.  Samples present in both are taken
// from o.
func (r *Result) Merge(o *Result) {
	for name, s := range o.Samples {
		if _, ok := r.Samples[name]; ok {
			log.Printf("atropos: duplicate sample name found, overwriting: %s", name)
			r.dropHistograms(name)
		}
		r.Samples[name] = s
	}
	for _, adapter := range o.Adapters {
		if _, ok := r.LengthCounts[adapter]; !ok {
			r.Adapters = append(r.Adapters, adapter)
			r.LengthCounts[adapter] = make(map[string]map[int]int64)
			r.LengthExp[adapter] = make(map[string]map[int]float64)
		}
		for sample, h := range o.LengthCounts[adapter] {
			r.LengthCounts[adapter][sample] = h
		}
		for sample, h := range o.LengthExp[adapter] {
			r.LengthExp[adapter][sample] = h
		}
	}
}

// Filter removes every sample for which keep returns false.  Adapters left
// without samples are dropped from the discovery list.
func (r *Result) Filter(keep func(sample string) bool) {
	for name := range r.Samples {
		if !keep(name) {
			delete(r.Samples, name)
			r.dropHistograms(name)
		}
	}
	adapters := r.Adapters[:0]
	for _, adapter := range r.Adapters {
		if len(r.LengthCounts[adapter]) == 0 {
			delete(r.LengthCounts, adapter)
			delete(r.LengthExp, adapter)
			continue
		}
		adapters = append(adapters, adapter)
	}
	r.Adapters = adapters
}

// Table flattens the sample counters, plus percent_trimmed where known, into
// a report table.
func (r *Result) Table() report.Table {
	t := make(report.Table, len(r.Samples))
	for name, s := range r.Samples {
		row := make(map[string]float64, len(s.Counts)+1)
		for k, v := range s.Counts {
			row[k] = float64(v)
		}
		if s.HasPercentTrimmed {
			row["percent_trimmed"] = s.PercentTrimmed
		}
		t[name] = row
	}
	return t
}
