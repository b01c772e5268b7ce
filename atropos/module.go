package atropos

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/trimqc/report"
)

// DataFileName is the name under which the per-sample table is written.
const DataFileName = "multiqc_atropos"

// Sink receives the module's report sections.
type Sink interface {
	AddGeneralStats(ctx context.Context, t report.Table, cols []report.Column) error
	LineGraph(ctx context.Context, cfg report.LineConfig, series []report.Series) error
	BarGraph(ctx context.Context, cfg report.BarConfig, keys []report.BarKey, t report.Table) error
}

var (
	percentTrimmedColumn = report.Column{
		ID:          "percent_trimmed",
		Title:       "% Trimmed",
		Description: "% Total Base Pairs trimmed",
		Min:         0,
		Max:         100,
		Suffix:      "%",
		Scale:       "RdYlBu-rev",
	}

	// readsRemainingKeys is ordered bottom to top.
	readsRemainingKeys = []report.BarKey{
		{Key: "r_written", Name: "Surviving Reads", Color: "#437bb1"},
		{Key: "r_lost", Name: "Dropped", Color: "#7f0000"},
	}
)

// ParseFile parses the report at f.Path and merges it into res.  res is left
// untouched if the report cannot be read, contains a malformed number, or
// lacks a required counter.
func ParseFile(ctx context.Context, p *Parser, f report.LogFile, res *Result) (err error) {
	in, err := report.Open(ctx, f.Path)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	fileRes := NewResult()
	if err = p.Parse(in, f, fileRes); err != nil {
		return err
	}
	if err = fileRes.Finalize(); err != nil {
		return errors.E(err, f.Path)
	}
	res.Merge(fileRes)
	return nil
}

// Module finds Atropos reports, parses them and emits the report sections.
type Module struct {
	opts    report.Opts
	cleaner *report.Cleaner
	parser  Parser
	sink    Sink
}

// NewModule creates a Module.  sources and sink may be nil, in which case
// provenance is not recorded and only the data file is written.
func NewModule(opts report.Opts, sources *report.Sources, sink Sink) *Module {
	m := &Module{
		opts:    opts,
		cleaner: report.NewCleaner(opts),
		sink:    sink,
	}
	m.parser.Sanitizer = m.cleaner
	if sources != nil {
		m.parser.Sources = sources
	}
	return m
}

// Run searches roots for reports and processes them one at a time.  A report
// that fails to parse is logged and skipped.  Run returns ErrNoData if no
// sample survives.
func (m *Module) Run(ctx context.Context, roots []string) (*Result, error) {
	logs, err := report.FindLogs(ctx, roots, versionMarker, m.cleaner)
	if err != nil {
		return nil, err
	}
	res := NewResult()
	for _, f := range logs {
		if err := ParseFile(ctx, &m.parser, f, res); err != nil {
			log.Error.Printf("atropos: skipping %s: %v", f.Path, err)
		}
	}
	res.Filter(func(sample string) bool { return !m.opts.Ignored(sample) })
	if len(res.Samples) == 0 {
		log.Debug.Printf("atropos: could not find any reports in %v", roots)
		return nil, ErrNoData
	}
	log.Printf("atropos: found %d reports", len(res.Samples))
	if err := m.Report(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Report writes the data file and sends the report sections to the sink.
func (m *Module) Report(ctx context.Context, res *Result) error {
	table := res.Table()
	if err := report.WriteDataFile(ctx, m.opts.OutDir, DataFileName, table); err != nil {
		return err
	}
	if m.sink == nil {
		return nil
	}
	if err := m.sink.AddGeneralStats(ctx, table, []report.Column{percentTrimmedColumn}); err != nil {
		return err
	}
	for i, adapter := range res.Adapters {
		cfg := report.LineConfig{
			ID:      fmt.Sprintf("atropos_plot_length_%d", i),
			Title:   "Lengths of Trimmed Sequences for adapter: " + adapter,
			XLabel:  "Length Trimmed (bp)",
			YLabel:  "Counts",
			YMin:    0,
			Tooltip: "<b>{point.x} bp trimmed</b>: {point.y:.0f}",
		}
		if err := m.sink.LineGraph(ctx, cfg, report.HistogramSeries(res.LengthCounts[adapter])); err != nil {
			return err
		}
	}
	cfg := report.BarConfig{
		ID:          "atropos_bar_plot",
		Title:       "Atropos",
		YLabel:      "# Reads",
		CountsLabel: "Number of Reads",
	}
	return m.sink.BarGraph(ctx, cfg, readsRemainingKeys, table)
}
