package report

import (
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// Table maps sample name -> field -> value.
type Table map[string]map[string]float64

// Samples returns the sample names in sorted order.
func (t Table) Samples() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the sorted union of the fields of all samples.
func (t Table) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, row := range t {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	sort.Strings(fields)
	return fields
}

// formatValue prints integral values without a fraction.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteTable writes t as TSV: a "Sample" column followed by one column per
// field.  Fields a sample lacks are left empty.
func WriteTable(w io.Writer, t Table) error {
	fields := t.Fields()
	tw := tsv.NewWriter(w)
	tw.WriteString("Sample")
	for _, f := range fields {
		tw.WriteString(f)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, name := range t.Samples() {
		tw.WriteString(name)
		row := t[name]
		for _, f := range fields {
			if v, ok := row[f]; ok {
				tw.WriteString(formatValue(v))
			} else {
				tw.WriteString("")
			}
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteDataFile writes t to dir/name.txt.
func WriteDataFile(ctx context.Context, dir, name string, t Table) (err error) {
	out, err := file.Create(ctx, file.Join(dir, name+".txt"))
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return WriteTable(out.Writer(ctx), t)
}
