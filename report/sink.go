package report

import (
	"context"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

const (
	// GeneralStatsFileName holds the merged general statistics table.
	GeneralStatsFileName = "general_stats"
	// GeneralStatsHeadersFileName describes the columns of the general
	// statistics table.
	GeneralStatsHeadersFileName = "general_stats_headers.txt"
)

// Column describes one column of the general statistics table.
type Column struct {
	// ID is the field of the Table rows shown in this column.
	ID          string
	Title       string
	Description string
	Min, Max    float64
	Suffix      string
	// Scale names a color scale, e.g. "RdYlBu-rev".
	Scale string
}

// LineConfig configures a line graph.
type LineConfig struct {
	ID     string
	Title  string
	XLabel string
	YLabel string
	// YMin is the lower bound of the y axis.
	YMin float64
	// XDecimals shows fractional x tick labels.
	XDecimals bool
	// Tooltip is a point label template for interactive renderers.  Static
	// renderers ignore it.
	Tooltip string
}

// Series is one line of a line graph.
type Series struct {
	Name string
	X, Y []float64
}

// BarConfig configures a stacked bar graph.
type BarConfig struct {
	ID     string
	Title  string
	YLabel string
	// CountsLabel names the absolute-count view of interactive renderers.
	// Static renderers ignore it.
	CountsLabel string
}

// BarKey is one segment of a stacked bar: the Table field it shows, its
// legend name and its color as "#rrggbb".
type BarKey struct {
	Key, Name, Color string
}

// Dir is a report sink that writes tables and plot images under
// Opts.OutDir.  Dir is not thread safe.
type Dir struct {
	opts    Opts
	general Table
	columns []Column
}

// NewDir creates a Dir sink.
func NewDir(opts Opts) *Dir {
	return &Dir{opts: opts, general: make(Table)}
}

// AddGeneralStats adds the given columns of t to the general statistics
// table and rewrites it.  A column ID that was added before is replaced.
func (d *Dir) AddGeneralStats(ctx context.Context, t Table, cols []Column) error {
	for _, col := range cols {
		d.addColumn(col)
		for sample, row := range t {
			v, ok := row[col.ID]
			if !ok {
				continue
			}
			if d.general[sample] == nil {
				d.general[sample] = make(map[string]float64)
			}
			d.general[sample][col.ID] = v
		}
	}
	if err := WriteDataFile(ctx, d.opts.OutDir, GeneralStatsFileName, d.general); err != nil {
		return errors.E(err, "write general stats")
	}
	return d.writeHeaders(ctx)
}

func (d *Dir) addColumn(col Column) {
	for i := range d.columns {
		if d.columns[i].ID == col.ID {
			d.columns[i] = col
			return
		}
	}
	d.columns = append(d.columns, col)
	sort.SliceStable(d.columns, func(i, j int) bool { return d.columns[i].ID < d.columns[j].ID })
}

func (d *Dir) writeHeaders(ctx context.Context) (err error) {
	out, err := file.Create(ctx, file.Join(d.opts.OutDir, GeneralStatsHeadersFileName))
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	for _, h := range []string{"ID", "Title", "Description", "Min", "Max", "Suffix", "Scale"} {
		w.WriteString(h)
	}
	if err = w.EndLine(); err != nil {
		return err
	}
	for _, c := range d.columns {
		w.WriteString(c.ID)
		w.WriteString(c.Title)
		w.WriteString(c.Description)
		w.WriteString(formatValue(c.Min))
		w.WriteString(formatValue(c.Max))
		w.WriteString(c.Suffix)
		w.WriteString(c.Scale)
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LineGraph renders series to <ID>.<PlotFormat>.  Series without points
// are left out; nothing is written if none remain.
func (d *Dir) LineGraph(ctx context.Context, cfg LineConfig, series []Series) error {
	var nonEmpty []Series
	for _, s := range series {
		if len(s.X) > 0 {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		log.Debug.Printf("%s: no data to plot", cfg.ID)
		return nil
	}
	return d.render(ctx, cfg.ID, lineChart(cfg, nonEmpty))
}

// BarGraph renders one stacked bar per sample of t to <ID>.<PlotFormat>.
// The first key is drawn at the bottom.  The plotted values are also
// written to <ID>.txt.
func (d *Dir) BarGraph(ctx context.Context, cfg BarConfig, keys []BarKey, t Table) error {
	if len(t) == 0 {
		log.Debug.Printf("%s: no data to plot", cfg.ID)
		return nil
	}
	plotted := make(Table, len(t))
	for sample, row := range t {
		plotted[sample] = make(map[string]float64, len(keys))
		for _, k := range keys {
			plotted[sample][k.Name] = row[k.Key]
		}
	}
	if err := WriteDataFile(ctx, d.opts.OutDir, cfg.ID, plotted); err != nil {
		return err
	}
	return d.render(ctx, cfg.ID, stackedBarChart(cfg, keys, t))
}
