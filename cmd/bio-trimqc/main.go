// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

/*
bio-trimqc summarizes the reports of the Atropos adapter trimmer: per-sample
read and base-pair counts, the percentage of bases trimmed, and the length
distribution of trimmed sequences for each adapter.
*/

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/trimqc/atropos"
	"github.com/grailbio/trimqc/report"
	"v.io/x/lib/cmdline"
)

type reportFlags struct {
	outDir     *string
	config     *string
	plotFormat *string
	ignore     *string
}

// loadOpts merges the config file, if any, and the command-line flags into
// the report options.  Flags win.
func loadOpts(ctx context.Context, flags reportFlags) (report.Opts, error) {
	opts := report.DefaultOpts
	if *flags.config != "" {
		var err error
		if opts, err = report.LoadOpts(ctx, *flags.config); err != nil {
			return opts, err
		}
	}
	if *flags.outDir != "" {
		opts.OutDir = *flags.outDir
	}
	if *flags.plotFormat != "" {
		opts.PlotFormat = *flags.plotFormat
	}
	if *flags.ignore != "" {
		opts.IgnoreSamples = append(opts.IgnoreSamples, strings.Split(*flags.ignore, ",")...)
	}
	return opts, opts.Validate()
}

func runReport(flags reportFlags, env *cmdline.Env, roots []string) error {
	ctx := vcontext.Background()
	opts, err := loadOpts(ctx, flags)
	if err != nil {
		return err
	}
	if !strings.Contains(opts.OutDir, "://") {
		if err = os.MkdirAll(opts.OutDir, 0755); err != nil {
			return err
		}
	}
	sources := report.NewSources()
	m := atropos.NewModule(opts, sources, report.NewDir(opts))
	res, err := m.Run(ctx, roots)
	if err == atropos.ErrNoData {
		fmt.Fprintf(env.Stderr, "no Atropos reports found in %s, skipping\n", strings.Join(roots, " "))
		return nil
	}
	if err != nil {
		return err
	}
	if err = sources.Write(ctx, opts.OutDir); err != nil {
		return err
	}
	log.Printf("wrote %d samples, %d adapters to %s", len(res.Samples), len(res.Adapters), opts.OutDir)
	return nil
}

func newCmdReport() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "report",
		Short:    "Search directories for Atropos reports and write tables and plots",
		ArgsName: "dir...",
	}
	flags := reportFlags{
		outDir:     cmd.Flags.String("out", "", "Output directory. Defaults to "+report.DefaultOpts.OutDir),
		config:     cmd.Flags.String("config", "", "TOML file with report options"),
		plotFormat: cmd.Flags.String("plot-format", "", "Plot image format, 'png' or 'svg'"),
		ignore:     cmd.Flags.String("ignore", "", "Comma-separated glob patterns of sample names to leave out"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("report takes at least one directory, but got none")
		}
		return runReport(flags, env, argv)
	})
	return cmd
}

func newCmdStats() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "stats",
		Short:    "Print per-sample statistics of the given Atropos reports as TSV",
		ArgsName: "log...",
	}
	config := cmd.Flags.String("config", "", "TOML file with report options")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("stats takes at least one log path, but got none")
		}
		ctx := vcontext.Background()
		opts := report.DefaultOpts
		if *config != "" {
			var err error
			if opts, err = report.LoadOpts(ctx, *config); err != nil {
				return err
			}
		}
		cleaner := report.NewCleaner(opts)
		p := atropos.Parser{Sanitizer: cleaner}
		res := atropos.NewResult()
		for _, path := range argv {
			if err := atropos.ParseFile(ctx, &p, report.NewLogFile(path, cleaner), res); err != nil {
				log.Error.Printf("skipping %s: %v", path, err)
			}
		}
		res.Filter(func(sample string) bool { return !opts.Ignored(sample) })
		if len(res.Samples) == 0 {
			return atropos.ErrNoData
		}
		return report.WriteTable(env.Stdout, res.Table())
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-trimqc",
			Short:    "Summarize adapter trimming reports",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdReport(),
				newCmdStats(),
			},
		})
}
