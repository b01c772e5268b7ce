// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"io/ioutil"
	"path"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Opts configures a report run.
type Opts struct {
	// OutDir is where data files and plots are written.
	OutDir string
	// CleanExts are cut from sample names, along with everything after them.
	CleanExts []string
	// IgnoreSamples are glob patterns (path.Match syntax) of sample names to
	// leave out of the report.
	IgnoreSamples []string
	// PrependDirs prefixes sample names with the directory of their log.
	PrependDirs bool
	// DirsDepth limits PrependDirs to the last DirsDepth directories; 0 means
	// all of them.
	DirsDepth int
	// DirsSeparator joins the directory prefix and the name.
	DirsSeparator string
	// PlotFormat is "png" or "svg".
	PlotFormat string
	// SniffLines is the number of leading lines of a file searched for a
	// tool's marker.
	SniffLines int
	// MaxLogSize is the largest uncompressed size, in bytes, of a file
	// accepted as a log.  Larger files are skipped by FindLogs.
	MaxLogSize int64
}

// DefaultOpts are the default values for Opts.
var DefaultOpts = Opts{
	OutDir:        "trimqc_data",
	CleanExts:     []string{".gz", ".fastq", ".fq", ".bam", ".sam", ".txt", ".log", "_trimmed", ".trimmed"},
	DirsSeparator: " | ",
	PlotFormat:    "png",
	SniffLines:    50,
	MaxLogSize:    50 << 20,
}

// optsFile is the on-disk form of Opts.  Unset fields keep their current
// value.
type optsFile struct {
	OutDir        *string  `toml:"out_dir"`
	CleanExts     []string `toml:"clean_exts"`
	IgnoreSamples []string `toml:"ignore_samples"`
	PrependDirs   *bool    `toml:"prepend_dirs"`
	DirsDepth     *int     `toml:"dirs_depth"`
	DirsSeparator *string  `toml:"dirs_separator"`
	PlotFormat    *string  `toml:"plot_format"`
	SniffLines    *int     `toml:"sniff_lines"`
	MaxLogSize    *int64   `toml:"max_log_size"`
}

// LoadOpts reads the TOML file at configPath and applies it on top of DefaultOpts.
func LoadOpts(ctx context.Context, configPath string) (opts Opts, err error) {
	opts = DefaultOpts
	in, err := file.Open(ctx, configPath)
	if err != nil {
		return opts, errors.E(err, "open config", configPath)
	}
	defer file.CloseAndReport(ctx, in, &err)
	data, err := ioutil.ReadAll(in.Reader(ctx))
	if err != nil {
		return opts, errors.E(err, "read config", configPath)
	}
	var raw optsFile
	if err = toml.Unmarshal(data, &raw); err != nil {
		return opts, errors.E(errors.Invalid, err, "parse config", configPath)
	}
	raw.apply(&opts)
	if err = opts.Validate(); err != nil {
		return opts, errors.E(err, configPath)
	}
	log.Debug.Printf("loaded report options from %s: %+v", configPath, opts)
	return opts, nil
}

func (r *optsFile) apply(o *Opts) {
	if r.OutDir != nil {
		o.OutDir = *r.OutDir
	}
	if r.CleanExts != nil {
		o.CleanExts = r.CleanExts
	}
	if r.IgnoreSamples != nil {
		o.IgnoreSamples = r.IgnoreSamples
	}
	if r.PrependDirs != nil {
		o.PrependDirs = *r.PrependDirs
	}
	if r.DirsDepth != nil {
		o.DirsDepth = *r.DirsDepth
	}
	if r.DirsSeparator != nil {
		o.DirsSeparator = *r.DirsSeparator
	}
	if r.PlotFormat != nil {
		o.PlotFormat = *r.PlotFormat
	}
	if r.SniffLines != nil {
		o.SniffLines = *r.SniffLines
	}
	if r.MaxLogSize != nil {
		o.MaxLogSize = *r.MaxLogSize
	}
}

// Validate checks that the option values are usable.
func (o Opts) Validate() error {
	if o.OutDir == "" {
		return errors.E(errors.Invalid, "out_dir must be set")
	}
	if o.PlotFormat != "png" && o.PlotFormat != "svg" {
		return errors.E(errors.Invalid, "plot_format must be png or svg, got", o.PlotFormat)
	}
	if o.SniffLines <= 0 {
		return errors.E(errors.Invalid, "sniff_lines must be positive")
	}
	if o.MaxLogSize <= 0 {
		return errors.E(errors.Invalid, "max_log_size must be positive")
	}
	if o.DirsDepth < 0 {
		return errors.E(errors.Invalid, "dirs_depth must not be negative")
	}
	for _, p := range o.IgnoreSamples {
		if _, err := path.Match(p, ""); err != nil {
			return errors.E(errors.Invalid, err, "bad ignore pattern", p)
		}
	}
	return nil
}

// Ignored reports whether sample matches one of IgnoreSamples.
func (o Opts) Ignored(sample string) bool {
	for _, p := range o.IgnoreSamples {
		if ok, _ := path.Match(p, sample); ok {
			return true
		}
	}
	return false
}
