// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package atropos

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/trimqc/report"
)

// ModuleName identifies this module in data-source records.
const ModuleName = "Atropos"

const (
	versionMarker     = "Atropos version"
	inputFormatMarker = "Input format: "
	sampleIDMarker    = "Sample ID: "
	overviewMarker    = "Overview of removed sequences:"
	separatorMarker   = "---"

	// stdinName is the sample ID Atropos reports when reading from stdin.
	stdinName = "-"

	// Number of fixed lines between an "Adapter N" line and the line that
	// starts with the adapter sequence: a rule, a blank line, the table
	// header and another rule.
	adapterBoilerplate = 4

	maxLineSize = 16 << 20
)

var (
	versionRE   = regexp.MustCompile(`Atropos version: ([\d.]+)`)
	adapterRE   = regexp.MustCompile(`Adapter \d`)
	histogramRE = regexp.MustCompile(`^\s*(\d+)\s+([\d,]+)\s+([\d.,]+)`)
)

// Sanitizer turns a raw sample ID into a display name.  root is the
// directory of the report relative to the search root.
type Sanitizer interface {
	CleanSampleName(raw, root string) string
}

// SourceRecorder records that the report at path contributed to sample.
type SourceRecorder interface {
	AddSource(module, sample, path string)
}

// Parser reads Atropos reports.  Sanitizer is required; Sources may be nil.
type Parser struct {
	Sanitizer Sanitizer
	Sources   SourceRecorder
}

// state is the position of the scanner within an adapter section.
type state int

const (
	// outside any adapter section
	scanOuter state = iota
	// skipping the fixed lines after "Adapter N"
	skipBoilerplate
	// next line names the adapter sequence
	readAdapter
	// waiting for "Overview of removed sequences:"
	awaitingHeader
	// waiting for the rule above the histogram rows
	awaitingRule
	// reading "length count expect ..." rows
	inHistogram
)

// scanner holds the state of one Parse call.
type scanner struct {
	p   *Parser
	f   report.LogFile
	res *Result

	sample *Sample // nil until a "Sample ID:" line is seen
	mode   Mode
	rules  *ruleset

	state   state
	skip    int
	adapter string
}

// Parse reads one report from r and adds its samples and histograms to res.
// Derived counters are not computed; call res.Finalize once the report has
// been read.
//
// A malformed number is an error.  On error, res may hold part of the
// report; use ParseFile to get all-or-nothing behavior.
func (p *Parser) Parse(r io.Reader, f report.LogFile, res *Result) error {
	s := scanner{p: p, f: f, res: res, rules: &rulesets[0]}
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineSize)
	lineNum := 0
	for b.Scan() {
		lineNum++
		if err := s.line(b.Text()); err != nil {
			return errors.E(err, fmt.Sprintf("%s:%d", f.Path, lineNum))
		}
	}
	if err := b.Err(); err != nil {
		return errors.E(err, "reading", f.Path)
	}
	if s.state == skipBoilerplate || s.state == readAdapter {
		log.Debug.Printf("%s: report ends inside an adapter header", f.Path)
	}
	return nil
}

func (s *scanner) line(l string) error {
	switch s.state {
	case skipBoilerplate:
		if s.skip--; s.skip == 0 {
			s.state = readAdapter
		}
		return nil
	case readAdapter:
		s.state = scanOuter
		fields := strings.Fields(l)
		if len(fields) == 0 {
			log.Debug.Printf("%s: no adapter sequence for sample %s", s.f.Path, s.sample.Name)
			return nil
		}
		s.adapter = fields[0]
		s.res.startAdapter(s.adapter, s.sample.Name)
		s.state = awaitingHeader
		return nil
	case awaitingHeader:
		if strings.HasPrefix(l, overviewMarker) {
			s.state = awaitingRule
			return nil
		}
		if !isMarker(l) {
			return nil
		}
	case awaitingRule:
		if strings.HasPrefix(l, separatorMarker) {
			s.state = inHistogram
			return nil
		}
		if !isMarker(l) {
			return nil
		}
	case inHistogram:
		if m := histogramRE.FindStringSubmatch(l); m != nil {
			return s.histogramRow(m)
		}
	}
	// Either no adapter section is open, or l ends it.  In the latter case l
	// still gets the outer treatment, since it may start a new section.
	s.state = scanOuter
	return s.outer(l)
}

// isMarker reports whether l starts a new report, sample or adapter section.
func isMarker(l string) bool {
	return strings.Contains(l, versionMarker) ||
		strings.HasPrefix(l, sampleIDMarker) ||
		adapterRE.MatchString(l)
}

func (s *scanner) outer(l string) error {
	if strings.Contains(l, versionMarker) {
		s.sample = nil
		s.mode = Single
		if m := versionRE.FindStringSubmatch(l); m != nil {
			s.rules = lookupRules(strings.TrimSuffix(m[1], "."))
		}
	}
	if strings.HasPrefix(l, inputFormatMarker) {
		s.mode = Single
		if strings.Contains(l, "Paired") {
			s.mode = Paired
		}
	}
	if strings.HasPrefix(l, sampleIDMarker) {
		s.startSample(l)
	}
	if s.sample == nil {
		return nil
	}
	if s.p.Sources != nil {
		s.p.Sources.AddSource(ModuleName, s.sample.Name, s.f.Path)
	}
	for _, r := range s.rules.forMode(s.mode) {
		m := r.re.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		v, err := parseCount(m[1])
		if err != nil {
			return errors.E(errors.Invalid, err, fmt.Sprintf("sample %s: bad %s value %q", s.sample.Name, r.key, m[1]))
		}
		s.sample.Counts[r.key] = v
	}
	if adapterRE.MatchString(l) {
		s.state = skipBoilerplate
		s.skip = adapterBoilerplate
	}
	return nil
}

func (s *scanner) startSample(l string) {
	fields := strings.Fields(l)
	name := fields[len(fields)-1]
	if name == stdinName {
		name = s.f.SampleName
	} else {
		name = s.p.Sanitizer.CleanSampleName(name, s.f.Root)
	}
	s.sample = s.res.startSample(name)
}

func (s *scanner) histogramRow(m []string) error {
	length, err := strconv.Atoi(m[1])
	if err != nil {
		return errors.E(errors.Invalid, err, fmt.Sprintf("adapter %s: bad length %q", s.adapter, m[1]))
	}
	count, err := parseCount(m[2])
	if err != nil {
		return errors.E(errors.Invalid, err, fmt.Sprintf("adapter %s: bad count %q", s.adapter, m[2]))
	}
	expect, err := strconv.ParseFloat(strings.Replace(m[3], ",", "", -1), 64)
	if err != nil {
		return errors.E(errors.Invalid, err, fmt.Sprintf("adapter %s: bad expected count %q", s.adapter, m[3]))
	}
	s.res.LengthCounts[s.adapter][s.sample.Name][length] = count
	s.res.LengthExp[s.adapter][s.sample.Name][length] = expect
	return nil
}

// parseCount parses an integer that may contain thousands separators, e.g.
// "1,234,567".
func parseCount(s string) (int64, error) {
	return strconv.ParseInt(strings.Replace(s, ",", "", -1), 10, 64)
}
