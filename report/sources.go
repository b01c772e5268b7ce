package report

import (
	"context"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// SourcesFileName is the name of the provenance table written by
// Sources.Write.
const SourcesFileName = "multiqc_sources.txt"

// Source says that the log at Path contributed to Sample in Module.
type Source struct {
	Module, Sample, Path string
}

// Sources records which log files each sample was read from.  Duplicate
// records are dropped.  Sources is not thread safe.
type Sources struct {
	seen map[Source]bool
	list []Source
}

// NewSources creates an empty Sources.
func NewSources() *Sources {
	return &Sources{seen: make(map[Source]bool)}
}

// AddSource records that path contributed to sample.
func (s *Sources) AddSource(module, sample, path string) {
	src := Source{Module: module, Sample: sample, Path: path}
	if s.seen[src] {
		return
	}
	s.seen[src] = true
	s.list = append(s.list, src)
}

// List returns the recorded sources in insertion order.
func (s *Sources) List() []Source {
	return s.list
}

// Write stores the sources as a TSV file under dir.
func (s *Sources) Write(ctx context.Context, dir string) (err error) {
	out, err := file.Create(ctx, file.Join(dir, SourcesFileName))
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("Module")
	w.WriteString("Sample Name")
	w.WriteString("Source")
	if err = w.EndLine(); err != nil {
		return err
	}
	for _, src := range s.list {
		w.WriteString(src.Module)
		w.WriteString(src.Sample)
		w.WriteString(src.Path)
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}
