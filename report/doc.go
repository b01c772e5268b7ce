// Package report is the host side of the QC tools: it finds tool logs,
// cleans sample names, tracks which file contributed to which sample, and
// writes tables and plots under an output directory.  Paths go through
// github.com/grailbio/base/file, so any registered scheme can be used.
package report
