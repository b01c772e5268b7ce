// Package atropos extracts per-sample trimming statistics from the text
// reports written by the Atropos adapter trimmer.  A report looks like:
//
//   Atropos version: 1.1.5
//   ...
//   Sample ID: sample1
//   Input format: Single-end, FASTQ
//   ...
//   Total reads processed:     1,000,000
//   Reads with adapter:          120,310 (12.0%)
//   Reads written (passing filters): 990,100 (99.0%)
//
//   Total bp processed:      101,000,000
//   ...
//   === Adapter 1 ===
//   ...
//   Overview of removed sequences:
//   length  count   expect  max.err error counts
//   ------------------------------------------------
//       3    33,103  15625.0 0       33103
//
// A single file may contain reports for several samples, each introduced by a
// "Sample ID:" line.  Parse collects the scalar counters of each sample, and
// for every adapter the histogram of trimmed lengths.  Module ties the parser
// to log discovery and the reporting sinks of package report.
package atropos
